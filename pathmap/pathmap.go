// SPDX-License-Identifier: GPL-3.0-or-later

// Package pathmap translates file paths between the debugger engine's
// view of the filesystem and the AI assistant client's view, when the
// two run in different roots (a container versus its host, or a remote
// worker versus the operator's machine). Path mapping is external to
// the DBGp wire protocol itself: a [Translator] is applied only at the
// tool-invocation boundary, never inside dbgp's command encoding.
package pathmap

// Translator converts a path between the engine's filesystem and the
// client's filesystem.
type Translator interface {
	// ToHost converts an engine-side path (as seen in a DBGp file://
	// URI or filename attribute) to the client-visible path.
	ToHost(enginePath string) string

	// ToContainer converts a client-visible path to the engine-side
	// path the engine's filesystem actually has.
	ToContainer(hostPath string) string
}

// passthrough is the default [Translator]: both filesystems are the
// same, so no translation is needed.
type passthrough struct{}

// Default returns a [Translator] that returns every path unchanged.
func Default() Translator {
	return passthrough{}
}

func (passthrough) ToHost(enginePath string) string    { return enginePath }
func (passthrough) ToContainer(hostPath string) string { return hostPath }

// PrefixMapper translates paths by swapping a single root prefix, the
// common case for a debuggee running in a container with its source
// tree bind-mounted at a different path than the operator sees it.
type PrefixMapper struct {
	EnginePrefix string
	HostPrefix   string
}

var _ Translator = PrefixMapper{}

// ToHost replaces EnginePrefix with HostPrefix when enginePath starts
// with it; otherwise enginePath is returned unchanged.
func (m PrefixMapper) ToHost(enginePath string) string {
	return swapPrefix(enginePath, m.EnginePrefix, m.HostPrefix)
}

// ToContainer replaces HostPrefix with EnginePrefix when hostPath
// starts with it; otherwise hostPath is returned unchanged.
func (m PrefixMapper) ToContainer(hostPath string) string {
	return swapPrefix(hostPath, m.HostPrefix, m.EnginePrefix)
}

func swapPrefix(path, from, to string) string {
	if from == "" || len(path) < len(from) || path[:len(from)] != from {
		return path
	}
	return to + path[len(from):]
}

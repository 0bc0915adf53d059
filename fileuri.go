// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import "strings"

// NormalizeFileURI prefixes path with "file://" unless it already
// contains "://" anywhere, in which case it is passed through
// unchanged. Container/host path translation is an external concern; see
// the pathmap package.
func NormalizeFileURI(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return "file://" + path
}

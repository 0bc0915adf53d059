// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import (
	"encoding/base64"
	"strconv"
)

// InitRecord is the first frame an engine sends when it connects.
type InitRecord struct {
	AppID           string
	IDEKey          string
	Session         string
	Thread          string
	Language        string
	ProtocolVersion string
	FileURI         string
	EngineName      string
	EngineVersion   string
}

// parseInitRecord builds an [InitRecord] from a decoded <init> node.
func parseInitRecord(n *Node) *InitRecord {
	rec := &InitRecord{
		AppID:           n.Attribute("appid"),
		IDEKey:          n.Attribute("idekey"),
		Session:         n.Attribute("session"),
		Thread:          n.Attribute("thread"),
		Language:        n.Attribute("language"),
		ProtocolVersion: n.Attribute("protocol_version"),
		FileURI:         n.Attribute("fileuri"),
	}
	if engine := n.Child("engine"); engine != nil {
		rec.EngineName = engine.Text
		rec.EngineVersion = engine.Attribute("version")
	}
	return rec
}

// ResponseError is the decoded <error> element of a [Response].
type ResponseError struct {
	Code    int
	Message string
}

// Response is a reply to a command, or an unsolicited engine event
// carried on the same root element.
type Response struct {
	Command       string
	TransactionID int
	Status        string
	Reason        string
	Success       bool
	Error         *ResponseError
	MessageFile   string
	MessageLine   int
	Node          *Node
}

// parseResponse builds a [Response] from a decoded <response> node.
func parseResponse(n *Node) *Response {
	r := &Response{
		Command: n.Attribute("command"),
		Status:  n.Attribute("status"),
		Reason:  n.Attribute("reason"),
		Node:    n,
	}
	r.TransactionID, _ = strconv.Atoi(n.Attribute("transaction_id"))
	r.Success = n.Attribute("success") == "1" || n.Attribute("success") == "true"

	if errNode := n.Child("error"); errNode != nil {
		code, _ := strconv.Atoi(errNode.Attribute("code"))
		msg := ""
		if m := errNode.Child("message"); m != nil {
			msg = m.Text
		}
		r.Error = &ResponseError{Code: code, Message: msg}
	}

	if msg := firstNonNil(n.Child("message"), n.Child("xdebug:message")); msg != nil {
		r.MessageFile = msg.Attribute("filename")
		r.MessageLine, _ = strconv.Atoi(msg.Attribute("lineno"))
	}

	return r
}

func firstNonNil(nodes ...*Node) *Node {
	for _, n := range nodes {
		if n != nil {
			return n
		}
	}
	return nil
}

// StreamRecord is engine-initiated stdout/stderr content, uncorrelated
// with any transaction id.
type StreamRecord struct {
	Type    string
	Content string
}

func parseStreamRecord(n *Node) *StreamRecord {
	return &StreamRecord{
		Type:    n.Attribute("type"),
		Content: decodeText(n),
	}
}

// decodeText returns n's text content, base64-decoding it first when the
// element declares encoding="base64".
func decodeText(n *Node) string {
	if n.Attribute("encoding") != "base64" {
		return n.Text
	}
	decoded, err := base64.StdEncoding.DecodeString(n.Text)
	if err != nil {
		return n.Text
	}
	return string(decoded)
}

// StackFrame is one entry of a stack_get response.
type StackFrame struct {
	Level     int
	Type      string
	Filename  string
	Lineno    int
	Where     string
	CmdBegin  string
	CmdEnd    string
}

// ParseStackFrames extracts the <stack> children of a response.
func ParseStackFrames(r *Response) []StackFrame {
	var frames []StackFrame
	for _, n := range r.Node.ChildrenByName("stack") {
		level, _ := strconv.Atoi(n.Attribute("level"))
		lineno, _ := strconv.Atoi(n.Attribute("lineno"))
		frames = append(frames, StackFrame{
			Level:    level,
			Type:     n.Attribute("type"),
			Filename: n.Attribute("filename"),
			Lineno:   lineno,
			Where:    n.Attribute("where"),
			CmdBegin: n.Attribute("cmdbegin"),
			CmdEnd:   n.Attribute("cmdend"),
		})
	}
	return frames
}

// Context is a named variable scope (0 = locals, 1 = superglobals, 2 =
// constants, by engine convention).
type Context struct {
	ID   int
	Name string
}

// ParseContexts extracts the <context> children of a context_names
// response.
func ParseContexts(r *Response) []Context {
	var out []Context
	for _, n := range r.Node.ChildrenByName("context") {
		id, _ := strconv.Atoi(n.Attribute("id"))
		out = append(out, Context{ID: id, Name: n.Attribute("name")})
	}
	return out
}

// Property is one variable or value in an inspection tree.
type Property struct {
	Name        string
	Fullname    string
	Type        string
	ClassName   string
	Facet       string
	Constant    bool
	HasChildren bool
	NumChildren int
	Size        int
	Page        int
	PageSize    int
	Address     string
	Key         string
	Value       string
	Children    []Property
}

func parseProperty(n *Node) Property {
	numChildren, _ := strconv.Atoi(n.Attribute("numchildren"))
	size, _ := strconv.Atoi(n.Attribute("size"))
	page, _ := strconv.Atoi(n.Attribute("page"))
	pageSize, _ := strconv.Atoi(n.Attribute("pagesize"))

	p := Property{
		Name:        n.Attribute("name"),
		Fullname:    n.Attribute("fullname"),
		Type:        n.Attribute("type"),
		ClassName:   n.Attribute("classname"),
		Facet:       n.Attribute("facet"),
		Constant:    n.Attribute("constant") == "1",
		HasChildren: n.Attribute("children") == "1",
		NumChildren: numChildren,
		Size:        size,
		Page:        page,
		PageSize:    pageSize,
		Address:     n.Attribute("address"),
		Key:         n.Attribute("key"),
		Value:       decodeText(n),
	}
	for _, child := range n.ChildrenByName("property") {
		p.Children = append(p.Children, parseProperty(child))
	}
	return p
}

// ParseProperty extracts the (single, top-level) <property> element of a
// property_get, eval, or property_set response.
func ParseProperty(r *Response) (Property, bool) {
	n := r.Node.Child("property")
	if n == nil {
		return Property{}, false
	}
	return parseProperty(n), true
}

// ParseProperties extracts every top-level <property> child, used by
// responses (such as context_get) that return a flat sequence rather
// than a single tree.
func ParseProperties(r *Response) []Property {
	var out []Property
	for _, n := range r.Node.ChildrenByName("property") {
		out = append(out, parseProperty(n))
	}
	return out
}

// TypeMapEntry is one language-type-to-DBGp-common-type mapping entry
// returned by typemap_get.
type TypeMapEntry struct {
	Name string
	Type string
}

// ParseTypeMap extracts every <map> child of a typemap_get response.
func ParseTypeMap(r *Response) []TypeMapEntry {
	var out []TypeMapEntry
	for _, n := range r.Node.ChildrenByName("map") {
		out = append(out, TypeMapEntry{
			Name: n.Attribute("name"),
			Type: n.Attribute("type"),
		})
	}
	return out
}

// Breakpoint is a line, call, return, exception, conditional, or watch
// breakpoint as reported by breakpoint_list or after breakpoint_set.
type Breakpoint struct {
	ID           string
	Type         string
	State        string
	Resolved     bool
	Filename     string
	Lineno       int
	Function     string
	Exception    string
	Expression   string
	HitCount     int
	HitValue     int
	HitCondition string
}

func parseBreakpoint(n *Node) Breakpoint {
	lineno, _ := strconv.Atoi(n.Attribute("lineno"))
	hitCount, _ := strconv.Atoi(n.Attribute("hit_count"))
	hitValue, _ := strconv.Atoi(n.Attribute("hit_value"))
	return Breakpoint{
		ID:           n.Attribute("id"),
		Type:         n.Attribute("type"),
		State:        n.Attribute("state"),
		Resolved:     n.Attribute("resolved") == "1",
		Filename:     n.Attribute("filename"),
		Lineno:       lineno,
		Function:     n.Attribute("function"),
		Exception:    n.Attribute("exception"),
		Expression:   decodeText(n),
		HitCount:     hitCount,
		HitValue:     hitValue,
		HitCondition: n.Attribute("hit_condition"),
	}
}

// ParseBreakpoints extracts the <breakpoint> children of a
// breakpoint_list response.
func ParseBreakpoints(r *Response) []Breakpoint {
	var out []Breakpoint
	for _, n := range r.Node.ChildrenByName("breakpoint") {
		out = append(out, parseBreakpoint(n))
	}
	return out
}

// BreakpointSetResult is the outcome of a breakpoint_set command.
type BreakpointSetResult struct {
	ID       string
	Resolved bool
}

// ParseBreakpointSetResult extracts the id/resolved pair from a
// breakpoint_set response.
func ParseBreakpointSetResult(r *Response) BreakpointSetResult {
	return BreakpointSetResult{
		ID:       r.Node.Attribute("id"),
		Resolved: r.Node.Attribute("resolved") == "1",
	}
}

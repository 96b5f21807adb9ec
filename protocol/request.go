package protocol

import (
	"fmt"
	"strings"
)

// Verb identifies the request's command, the second token of its first line.
type Verb string

const (
	VerbLogin            Verb = "LOGIN"
	VerbExecuteStatement Verb = "EXECUTE-STATEMENT"
	VerbCloseStatement   Verb = "CLOSE-STATEMENT"
)

// Request is the structured form of an outbound request frame (§6). Kept
// structured rather than as a raw byte slice so that the statement executor
// can rewrite the command id and FIRST-PAGE-SIZE field for the two-phase
// exchange (§4.5) without textual surgery on already-built bytes (§9 design
// note on the two-phase rewrite).
type Request struct {
	CommandID int
	Verb      Verb
	Fields    []headerField
}

type headerField struct {
	Key   string
	Value string
}

// NewRequest creates a request with the given command id and verb.
func NewRequest(commandID int, verb Verb) *Request {
	return &Request{CommandID: commandID, Verb: verb}
}

// SetField sets (or replaces) a "Key : Value" header field, preserving
// first-seen order for new keys.
func (r *Request) SetField(key, value string) {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, headerField{Key: key, Value: value})
}

// Clone returns a deep copy of the request, used when serving a statement
// cache hit so the cached base frame is never mutated by a later bump of the
// command id (§8 invariant 8).
func (r *Request) Clone() *Request {
	clone := &Request{CommandID: r.CommandID, Verb: r.Verb}
	clone.Fields = make([]headerField, len(r.Fields))
	copy(clone.Fields, r.Fields)
	return clone
}

// Bytes renders the request as the CRLF-terminated wire frame (§6).
func (r *Request) Bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%03d %s\r\n", r.CommandID, r.Verb)
	for _, f := range r.Fields {
		fmt.Fprintf(&b, "%s : %s\r\n", f.Key, f.Value)
	}
	b.WriteString("\r\n")
	return []byte(b.String())
}

// NewExecuteStatementRequest builds the EXECUTE-STATEMENT frame for the
// probe phase of a two-phase execute (§4.5, §4.6).
func NewExecuteStatementRequest(commandID int, sql string) *Request {
	req := NewRequest(commandID, VerbExecuteStatement)
	req.SetField("STATEMENT", sql)
	req.SetField("OUTPUT-MODE", "RELEASE")
	req.SetField("FIRST-PAGE-SIZE", "1")
	return req
}

// WithFullFetch returns a copy of req rewritten for the full-fetch phase:
// the command id is bumped by 2 and FIRST-PAGE-SIZE is set to rowCount
// (§4.5).
func (r *Request) WithFullFetch(rowCount int) *Request {
	next := r.Clone()
	next.CommandID += 2
	next.SetField("FIRST-PAGE-SIZE", fmt.Sprintf("%d", rowCount))
	return next
}

// NewCloseStatementRequest builds the CLOSE-STATEMENT frame (§4.5).
func NewCloseStatementRequest(commandID, statementID int) *Request {
	req := NewRequest(commandID, VerbCloseStatement)
	req.SetField("STATEMENT-ID", fmt.Sprintf("%d", statementID))
	return req
}

// NewLoginRequest builds the LOGIN frame (§4.6).
func NewLoginRequest(commandID int, userB64, passB64 string) *Request {
	req := NewRequest(commandID, VerbLogin)
	req.SetField("USER-NAME-BASE64", userB64)
	req.SetField("USER-PASSWORD-BASE64", passB64)
	req.SetField("REPLY-WITH-BASE64-TEXT", "N")
	req.SetField("PROTOCOL-VERSION", "0.1a")
	return req
}

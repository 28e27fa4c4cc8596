package validation

import (
	"fmt"
	"strings"
)

// Message is a single finding about one entity
type Message struct {
	ID   string // id of the offending entity, empty when it has none
	Text string
}

// String renders the message with the entity id when known
func (m Message) String() string {
	if m.ID == "" {
		return m.Text
	}
	return fmt.Sprintf("%s: %s", m.ID, m.Text)
}

// Result collects the errors and warnings produced by a validation run.
// The zero value is an empty, successful result.
type Result struct {
	Errors   []Message
	Warnings []Message
}

// Concat returns a new result holding the messages of r followed by those of o
func (r Result) Concat(o Result) Result {
	out := Result{}
	if n := len(r.Errors) + len(o.Errors); n > 0 {
		out.Errors = make([]Message, 0, n)
		out.Errors = append(append(out.Errors, r.Errors...), o.Errors...)
	}
	if n := len(r.Warnings) + len(o.Warnings); n > 0 {
		out.Warnings = make([]Message, 0, n)
		out.Warnings = append(append(out.Warnings, r.Warnings...), o.Warnings...)
	}
	return out
}

// Ok reports whether there are neither errors nor warnings
func (r Result) Ok() bool {
	return !r.HasErrors() && !r.HasWarnings()
}

// HasErrors reports whether at least one error was found
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings reports whether at least one warning was found
func (r Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String lists all messages, errors first
func (r Result) String() string {
	var sb strings.Builder
	for _, m := range r.Errors {
		fmt.Fprintf(&sb, "ERROR: %s\n", m)
	}
	for _, m := range r.Warnings {
		fmt.Fprintf(&sb, "WARN: %s\n", m)
	}
	return sb.String()
}

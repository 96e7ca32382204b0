// Package check implements the static checks pass: a startup-time step that
// inspects declared configuration (field schemas, models) and reports problems
// before any value is saved.
package check

import (
	"fmt"
	"strings"
)

// Level is the severity of a check message.
type Level int

// Severity levels.
const (
	Debug Level = iota
	Info
	Warning
	Error
	Critical
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Message is a single finding of the checks pass.
type Message struct {
	Level Level
	Msg   string
	Hint  string
	// Obj is the checked object, usually a field descriptor or a model.
	Obj any
	ID  string
}

// Option configures a Message.
type Option func(*Message)

// WithHint attaches a hint to the message.
func WithHint(hint string) Option {
	return func(m *Message) {
		m.Hint = hint
	}
}

// WithID sets the message identifier, e.g. "fields.E100".
func WithID(id string) Option {
	return func(m *Message) {
		m.ID = id
	}
}

// New returns a message of the given level.
func New(level Level, msg string, obj any, opts ...Option) Message {
	m := Message{Level: level, Msg: msg, Obj: obj}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// NewError returns an Error level message.
func NewError(msg string, obj any, opts ...Option) Message {
	return New(Error, msg, obj, opts...)
}

// NewWarning returns a Warning level message.
func NewWarning(msg string, obj any, opts ...Option) Message {
	return New(Warning, msg, obj, opts...)
}

// IsSerious reports whether the message is at least of Error level.
func (m Message) IsSerious() bool {
	return m.Level >= Error
}

// String formats the message as "obj: (id) msg" followed by the hint.
func (m Message) String() string {
	var sb strings.Builder
	if m.Obj != nil {
		fmt.Fprintf(&sb, "%v: ", m.Obj)
	} else {
		sb.WriteString("?: ")
	}
	if m.ID != "" {
		fmt.Fprintf(&sb, "(%s) ", m.ID)
	}
	sb.WriteString(m.Msg)
	if m.Hint != "" {
		sb.WriteString("\n\tHINT: ")
		sb.WriteString(m.Hint)
	}
	return sb.String()
}

// Checker is implemented by objects that can verify their own configuration.
type Checker interface {
	Check() []Message
}

// Result holds the messages produced by a checks pass.
type Result struct {
	Messages []Message
}

// Errors returns the messages of Error level or above.
func (r *Result) Errors() []Message {
	var errs []Message
	for _, m := range r.Messages {
		if m.IsSerious() {
			errs = append(errs, m)
		}
	}
	return errs
}

// Warnings returns the Warning level messages.
func (r *Result) Warnings() []Message {
	var warns []Message
	for _, m := range r.Messages {
		if m.Level == Warning {
			warns = append(warns, m)
		}
	}
	return warns
}

// HasErrors returns true if there are any serious messages.
func (r *Result) HasErrors() bool {
	return len(r.Errors()) > 0
}

// HasWarnings returns true if there are any warnings.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings()) > 0
}

// String returns a human-readable summary of the result.
func (r *Result) String() string {
	var sb strings.Builder
	if errs := r.Errors(); len(errs) > 0 {
		sb.WriteString("Errors:\n")
		for _, m := range errs {
			sb.WriteString("  - ")
			sb.WriteString(m.String())
			sb.WriteString("\n")
		}
	}
	if warns := r.Warnings(); len(warns) > 0 {
		sb.WriteString("Warnings:\n")
		for _, m := range warns {
			sb.WriteString("  - ")
			sb.WriteString(m.String())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

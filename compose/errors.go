package compose

import (
	"errors"
	"fmt"
	"strings"

	"roundtrip-generator/shape"
)

var (
	ErrArityMismatch  = errors.New("records differ in member count")
	ErrTagMismatch    = errors.New("unions differ in variant tags")
	ErrMemberMismatch = errors.New("members differ in name or tags")
	ErrLengthMismatch = errors.New("fixed sequence lengths differ")
	ErrNoRelation     = errors.New("no compatibility relation")
	ErrParamMismatch  = errors.New("type parameters do not correspond")
	ErrUnsupported    = shape.ErrUnsupported
)

// Error codes reported by the generator diagnostics.
const (
	CodeArityMismatch  = "arity_mismatch"
	CodeTagMismatch    = "tag_mismatch"
	CodeMemberMismatch = "member_mismatch"
	CodeLengthMismatch = "length_mismatch"
	CodeNoRelation     = "no_relation"
	CodeParamMismatch  = "param_mismatch"
	CodeUnsupported    = "unsupported"
)

var codes = map[error]string{
	ErrArityMismatch:  CodeArityMismatch,
	ErrTagMismatch:    CodeTagMismatch,
	ErrMemberMismatch: CodeMemberMismatch,
	ErrLengthMismatch: CodeLengthMismatch,
	ErrNoRelation:     CodeNoRelation,
	ErrParamMismatch:  CodeParamMismatch,
	ErrUnsupported:    CodeUnsupported,
}

// Error is a definition-time composition failure.
type Error struct {
	Code string
	// Source and Target name the root shapes being composed.
	Source string
	Target string
	// Path locates the failing pair below the roots, e.g. ".Items[]".
	Path   string
	Reason string
	// Want and Got hold the member names or variant tags of a mismatch.
	Want []string
	Got  []string

	err error
}

func (e *Error) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "compose %s -> %s", e.Source, e.Target)
	if e.Path != "" {
		sb.WriteString(" at " + e.Path)
	}

	sb.WriteString(": " + e.err.Error())
	if e.Reason != "" {
		sb.WriteString(": " + e.Reason)
	}

	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.err
}

// CodeOf returns the diagnostic code of err, or an empty string when err is
// not a composition error.
func CodeOf(err error) string {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code
	}

	for sentinel, code := range codes {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return ""
}

func (c *composer) fail(sentinel error, path, format string, args ...any) *Error {
	return &Error{
		Code:   codes[sentinel],
		Source: c.root[0],
		Target: c.root[1],
		Path:   path,
		Reason: fmt.Sprintf(format, args...),
		err:    sentinel,
	}
}

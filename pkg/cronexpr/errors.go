package cronexpr

import (
	"errors"
	"fmt"
)

var (
	ErrUntranslatable = errors.New("untranslatable expression")
	ErrInvalidSyntax  = errors.New("invalid cron syntax")
)

// Kind classifies an ExpressionError.
type Kind int

const (
	KindUntranslatable Kind = iota + 1
	KindInvalidSyntax
)

func (k Kind) String() string {
	switch k {
	case KindUntranslatable:
		return "untranslatable"
	case KindInvalidSyntax:
		return "invalid syntax"
	default:
		return "unknown"
	}
}

// ExpressionError is returned when a schedule expression cannot be turned
// into a recurrence rule. It is only ever produced at construction time.
//
// errors.Is(err, ErrUntranslatable) and errors.Is(err, ErrInvalidSyntax)
// match on Kind.
type ExpressionError struct {
	Kind  Kind
	Expr  string
	Field string // offending cron field name, if known
	Err   error  // underlying cause (parser error), may be nil
}

func (e *ExpressionError) Error() string {
	msg := fmt.Sprintf("%s: %q", e.Kind, e.Expr)
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExpressionError) Unwrap() error { return e.Err }

func (e *ExpressionError) Is(target error) bool {
	switch target {
	case ErrUntranslatable:
		return e.Kind == KindUntranslatable
	case ErrInvalidSyntax:
		return e.Kind == KindInvalidSyntax
	}
	return false
}

// Untranslatable builds a KindUntranslatable error for phrase.
func Untranslatable(phrase string) error {
	return &ExpressionError{Kind: KindUntranslatable, Expr: phrase}
}

// InvalidSyntax builds a KindInvalidSyntax error. field may be empty.
func InvalidSyntax(expr, field string, cause error) error {
	return &ExpressionError{Kind: KindInvalidSyntax, Expr: expr, Field: field, Err: cause}
}

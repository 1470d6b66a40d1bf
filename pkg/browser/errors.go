package browser

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a session failure.
type Kind string

const (
	KindNotActive       Kind = "not_active"
	KindBlocked         Kind = "blocked"
	KindRedirectBlocked Kind = "redirect_blocked"
	KindInvalidRef      Kind = "invalid_ref"
	KindInvalidArgument Kind = "invalid_argument"
	KindDriver          Kind = "driver"
	KindUnavailable     Kind = "unavailable"
)

var (
	ErrNotActive       = errors.New("browser not active")
	ErrBlocked         = errors.New("domain not allowed")
	ErrRedirectBlocked = errors.New("redirect target not allowed")
	ErrInvalidRef      = errors.New("invalid element ref")
	ErrElementNotFound = errors.New("element not found on page")
	ErrUnavailable     = errors.New("browser driver unavailable")
)

// Error is returned by every Session operation that fails.
type Error struct {
	Kind Kind
	Op   string
	URL  string
	Ref  int
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	switch e.Kind {
	case KindNotActive:
		b.WriteString("browser not active, navigate to a page first")
	case KindBlocked:
		fmt.Fprintf(&b, "navigation to %s blocked by domain policy", e.URL)
	case KindRedirectBlocked:
		fmt.Fprintf(&b, "redirected to %s which is blocked by domain policy", e.URL)
	case KindInvalidRef:
		fmt.Fprintf(&b, "invalid ref [%d], take a new snapshot to get current refs", e.Ref)
	default:
		if e.Err != nil {
			b.WriteString(e.Err.Error())
		} else {
			b.WriteString(string(e.Kind))
		}
		return b.String()
	}

	if e.Err != nil && !isSentinel(e.Err) {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind, so callers can write
// errors.Is(err, browser.ErrInvalidRef) without knowing the wrapped cause.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindNotActive:
		return ErrNotActive
	case KindBlocked:
		return ErrBlocked
	case KindRedirectBlocked:
		return ErrRedirectBlocked
	case KindInvalidRef:
		return ErrInvalidRef
	case KindUnavailable:
		return ErrUnavailable
	}
	return nil
}

func isSentinel(err error) bool {
	switch err {
	case ErrNotActive, ErrBlocked, ErrRedirectBlocked, ErrInvalidRef, ErrUnavailable:
		return true
	}
	return false
}

// KindOf returns the kind of a session error, or "" for other errors.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// IsPolicyError reports whether err is a domain policy rejection.
func IsPolicyError(err error) bool {
	switch KindOf(err) {
	case KindBlocked, KindRedirectBlocked:
		return true
	}
	return false
}

// IsRetryable reports whether the caller may try the same action again
// after refreshing state (a new snapshot or launching the browser).
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindInvalidRef, KindNotActive, KindDriver:
		return true
	}
	return false
}

func notActive(op string) *Error {
	return &Error{Kind: KindNotActive, Op: op, Err: ErrNotActive}
}

func invalidArgument(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Err: fmt.Errorf(format, args...)}
}

func driverError(op string, err error) *Error {
	return &Error{Kind: KindDriver, Op: op, Err: fmt.Errorf("%s failed: %w", op, err)}
}

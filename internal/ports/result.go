package ports

import "fmt"

// FailureKind names why a remote or file step degraded.
type FailureKind int

const (
	KindNone FailureKind = iota
	KindNotFound
	KindUnsupportedMedia
	KindUnreachable
	KindAuth
	KindRateLimited
	KindRemote
	KindEmpty
	KindCanceled
	KindUnsupportedPlatform
)

func (k FailureKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindUnsupportedMedia:
		return "unsupported_media"
	case KindUnreachable:
		return "unreachable"
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindRemote:
		return "remote"
	case KindEmpty:
		return "empty"
	case KindCanceled:
		return "canceled"
	case KindUnsupportedPlatform:
		return "unsupported_platform"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Result is either a payload or a named failure. Clients return it instead of
// raising so the pipeline can keep going.
type Result[T any] struct {
	Value T
	Kind  FailureKind
	Err   error
}

func Success[T any](v T) Result[T] {
	return Result[T]{Value: v, Kind: KindNone}
}

func Failure[T any](kind FailureKind, err error) Result[T] {
	if kind == KindNone {
		kind = KindRemote
	}
	return Result[T]{Kind: kind, Err: err}
}

func (r Result[T]) OK() bool {
	return r.Kind == KindNone
}

// ValueOr returns the payload on success and fallback otherwise.
func (r Result[T]) ValueOr(fallback T) T {
	if r.OK() {
		return r.Value
	}
	return fallback
}

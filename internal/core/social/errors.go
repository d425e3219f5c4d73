package social

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed invocation for the scheduler's retry loop.
type ErrorKind int

const (
	// KindOther covers every failure that is neither an authorization
	// refusal nor a quota rejection.
	KindOther ErrorKind = iota

	// KindNotAuthorized means the target resource is private. The refusal
	// holds for every credential, so retrying with another one is pointless.
	KindNotAuthorized

	// KindRateLimited means this credential's quota window is exhausted.
	KindRateLimited
)

// Error is a classified failure from the remote service.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Code       int
	Message    string
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("api error %d (http %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (http %d): %s", e.StatusCode, e.Message)
}

// IsNotAuthorized reports whether err is a private-resource refusal.
func IsNotAuthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotAuthorized
}

// IsRateLimited reports whether err is a quota rejection.
func IsRateLimited(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindRateLimited
}

// rate limiting service codes alongside HTTP 429/420
const (
	codeRateLimitExceeded = 88
	codeEnhanceYourCalm   = 420
	codeTooManyRequests   = 429
)

func classify(statusCode int, code int, message string) ErrorKind {
	if statusCode == 429 || statusCode == 420 {
		return KindRateLimited
	}
	switch code {
	case codeRateLimitExceeded, codeEnhanceYourCalm, codeTooManyRequests:
		return KindRateLimited
	}
	if message == "Not authorized." {
		return KindNotAuthorized
	}
	return KindOther
}

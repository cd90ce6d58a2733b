package ai

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"

	"github.com/Vovarama1992/ai_doctor/internal/ports"
	openai "github.com/sashabaranov/go-openai"
)

// ClassifyError maps a go-openai error onto a failure kind.
func ClassifyError(err error) ports.FailureKind {
	if err == nil {
		return ports.KindNone
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ports.KindCanceled
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ports.KindNotFound
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ports.KindAuth
	case http.StatusTooManyRequests:
		return ports.KindRateLimited
	case http.StatusUnsupportedMediaType:
		return ports.KindUnsupportedMedia
	}
	if status != 0 {
		return ports.KindRemote
	}

	var netErr net.Error
	var opErr *net.OpError
	if errors.As(err, &opErr) || errors.As(err, &netErr) {
		return ports.KindUnreachable
	}
	return ports.KindRemote
}

// Describe gives a short human reason for a failure kind.
func Describe(kind ports.FailureKind) string {
	switch kind {
	case ports.KindAuth:
		return "invalid API key"
	case ports.KindRateLimited:
		return "rate limit exceeded"
	case ports.KindUnreachable:
		return "service unreachable"
	case ports.KindCanceled:
		return "request canceled or timed out"
	case ports.KindEmpty:
		return "empty response"
	case ports.KindUnsupportedMedia:
		return "unsupported media"
	case ports.KindNotFound:
		return "file not found"
	}
	return "remote service error"
}

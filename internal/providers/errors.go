package providers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// MapFailure converts a backend failure into the common adapter taxonomy.
// Context expiry maps to Timeout, HTTP status codes map by class, and
// anything unrecognized defaults to Unreachable so the router falls back
// instead of surfacing an opaque error.
func MapFailure(provider string, status int, err error) *types.AdapterError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return types.NewAdapterError(provider, types.ErrKindTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return types.NewAdapterError(provider, types.ErrKindTimeout, err)
	}

	switch {
	case status == http.StatusTooManyRequests:
		return types.NewAdapterError(provider, types.ErrKindQuotaExceeded, err)
	case status == http.StatusRequestTimeout:
		return types.NewAdapterError(provider, types.ErrKindTimeout, err)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return types.NewAdapterError(provider, types.ErrKindInvalidResponse, err)
	case status == http.StatusNotFound || status == http.StatusNotImplemented:
		return types.NewAdapterError(provider, types.ErrKindUnsupported, err)
	}

	return types.NewAdapterError(provider, types.ErrKindUnreachable, err)
}

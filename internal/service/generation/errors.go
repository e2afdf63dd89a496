package generation

import (
	"context"
	"errors"
	"net"
	"os/exec"

	"redspec/internal/domain"
)

// Classify converts err into a *domain.GenerationError. Errors already
// classified keep their kind unless the deadline passed, which always
// reports a timeout.
func Classify(ctx context.Context, provider string, err error) *domain.GenerationError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewGenerationError(domain.GenerationTimeout, provider, "generation took too long", err)
	}

	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	if errors.Is(err, context.Canceled) {
		return domain.NewGenerationError(domain.GenerationFailed, provider, "generation cancelled", err)
	}

	if isUnavailable(err) {
		return domain.NewGenerationError(domain.GenerationUnavailable, provider, "generation service unavailable", err)
	}

	return domain.NewGenerationError(domain.GenerationFailed, provider, "generation failed", err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, domain.ErrUnavailable) || errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// statusUnavailable reports whether an HTTP status from a provider means
// the dependency is down or throttling rather than rejecting the request.
func statusUnavailable(code int) bool {
	return code == 429 || code >= 500
}

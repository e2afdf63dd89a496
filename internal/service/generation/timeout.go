package generation

import (
	"context"
	"time"

	"redspec/internal/domain"
)

// timeoutGenerator enforces a hard deadline on every call
type timeoutGenerator struct {
	inner   Generator
	timeout time.Duration
}

// WithTimeout wraps g so that each call is abandoned after timeout and every
// error comes back as a *domain.GenerationError.
func WithTimeout(g Generator, timeout time.Duration) Generator {
	return &timeoutGenerator{inner: g, timeout: timeout}
}

func (t *timeoutGenerator) Name() string {
	return t.inner.Name()
}

func (t *timeoutGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		resp *Response
		err  error
	}
	// Buffered so an abandoned call can still deliver and exit
	done := make(chan result, 1)
	start := time.Now()

	go func() {
		resp, err := t.inner.Generate(ctx, req)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, Classify(ctx, t.inner.Name(), r.err)
		}
		if r.resp == nil {
			return nil, domain.NewGenerationError(domain.GenerationFailed, t.inner.Name(), "generator returned no response", nil)
		}
		if r.resp.Duration == 0 {
			r.resp.Duration = time.Since(start)
		}
		if r.resp.Provider == "" {
			r.resp.Provider = t.inner.Name()
		}
		return r.resp, nil
	case <-ctx.Done():
		return nil, Classify(ctx, t.inner.Name(), ctx.Err())
	}
}

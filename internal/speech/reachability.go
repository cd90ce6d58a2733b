package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultProbeTimeout = 5 * time.Second

var ErrUnreachable = errors.New("speech backend is unreachable")

// HTTPProber treats any HTTP response from url as proof of connectivity.
type HTTPProber struct {
	url     string
	httpCli *http.Client
}

func NewHTTPProber(url string, timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &HTTPProber{
		url:     url,
		httpCli: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProber) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	resp, err := p.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnreachable, p.url, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	return nil
}

package gateway

import (
	"context"
	"net/http"

	"github.com/joao-fontenele/mercosys/internal/httpx"
)

// forwardedHeaders are copied from the inbound request. Authorization is
// not: the API trusts the gateway and never sees the token.
var forwardedHeaders = []string{"Accept", "Content-Type", httpx.RequestIDHeader}

type ServiceProxy struct {
	baseURL string
	client  *http.Client
}

func NewServiceProxy(baseURL string, client *http.Client) *ServiceProxy {
	return &ServiceProxy{
		baseURL: baseURL,
		client:  client,
	}
}

func (p *ServiceProxy) ForwardRequest(ctx context.Context, r *http.Request, path string) (*http.Response, error) {
	target := p.baseURL + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, r.Body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = r.ContentLength

	for _, h := range forwardedHeaders {
		if v := r.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}
	if id := httpx.RequestIDFromContext(r.Context()); id != "" {
		req.Header.Set(httpx.RequestIDHeader, id)
	}

	return p.client.Do(req)
}

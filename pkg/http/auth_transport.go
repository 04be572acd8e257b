package http

import "net/http"

type authTransport struct {
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set("Authorization", "Bearer "+t.token)
	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken attaches a bearer token to every request. A no-op when the
// token is empty (local providers without auth).
func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		if token == "" {
			return rt
		}
		return &authTransport{
			token:     token,
			transport: rt,
		}
	})
}

package client

import (
	"context"
	"encoding/json"
)

// Client is the backend contract the auth service and the CLI depend on.
type Client interface {
	Do(ctx context.Context, method, path string, body any) (*Response, error)
	Refresh(ctx context.Context) bool
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	HasRefreshCookie() bool
	ForgetCookies() error
	Ping(ctx context.Context) error
	CheckConnectivity(ctx context.Context) error
	Describe(ctx context.Context, err error) (string, error)
}

// Response is a backend answer after envelope parsing.
type Response struct {
	StatusCode int
	// Message is the envelope's "message", if any.
	Message string
	// Data is the envelope's "data" member, or the whole body when the
	// response is not enveloped.
	Data json.RawMessage
	Body []byte
}

// Decode unmarshals Data into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

package payment

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
)

// SandboxGateway stands in for the provider in development: it accepts every
// session and redirects straight to the success URL.
type SandboxGateway struct{}

func (SandboxGateway) CreateSession(_ context.Context, req SessionRequest) (Session, error) {
	if len(req.LineItems) == 0 {
		return Session{}, errors.New("sandbox: no line items")
	}
	u, err := url.Parse(req.SuccessURL)
	if err != nil {
		return Session{}, err
	}
	id := "sbx_" + uuid.NewString()
	q := u.Query()
	q.Set("session_id", id)
	u.RawQuery = q.Encode()
	return Session{ID: id, URL: u.String()}, nil
}

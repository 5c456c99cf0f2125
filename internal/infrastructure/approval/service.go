// Package approval notifies the human-interactive approval surface that a
// consent dialog must be shown. The surface is an external collaborator: it
// receives the origin and session to render context, and reports the
// decision back through the broker's permission-response endpoint.
package approval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cardanoconnect/connectd/internal/core/ports"
)

var (
	// ErrInvalidEndpoint ...
	ErrInvalidEndpoint = errors.New("approval endpoint must be a valid URI")
	// ErrNoEndpoint is returned by Prompt when the notifier was built without
	// an endpoint: without a reachable surface no approval can be collected.
	ErrNoEndpoint = errors.New("no approval endpoint configured")
)

const defaultRequestTimeout = 10 * time.Second

type promptPayload struct {
	Origin  string `json:"origin"`
	Session string `json:"session"`
}

type service struct {
	endpoint string
	client   *http.Client
}

// NewService returns a prompter POSTing approval requests to the given
// endpoint. An empty endpoint yields a prompter that fails every Prompt,
// which makes the broker reject handshakes instead of hanging them.
func NewService(endpoint string) (ports.ApprovalPrompter, error) {
	if len(endpoint) > 0 {
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return nil, ErrInvalidEndpoint
		}
	}
	return &service{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultRequestTimeout},
	}, nil
}

func (s *service) Prompt(ctx context.Context, origin, session string) error {
	if len(s.endpoint) <= 0 {
		return ErrNoEndpoint
	}

	body, _ := json.Marshal(promptPayload{Origin: origin, Session: session})
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.endpoint, bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("approval surface replied with status %d", res.StatusCode)
	}
	return nil
}

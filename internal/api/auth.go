package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/devbyilmir/incidents-manager/internal/incident"
)

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the account-creation payload.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

// Register creates an account. It does not sign in; call Login after.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/register", reg)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Login authenticates against the service and stores the issued session
// token so subsequent calls (and sibling CLI commands sharing the session
// file) are credentialed.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", creds)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// The token is issued both as a cookie and in the response body; take
	// whichever is present, preferring the cookie.
	token := ""
	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookie {
			token = ck.Value
		}
	}
	if token == "" {
		var body struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			token = body.AccessToken
		}
	}
	if token == "" {
		return fmt.Errorf("login succeeded but no session token was issued")
	}

	if c.session != nil {
		if err := c.session.Save(token); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	return nil
}

// Logout invalidates the session server-side and clears the local token.
// The local token is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/logout", nil)
	if resp != nil {
		resp.Body.Close()
	}
	if c.session != nil {
		if clearErr := c.session.Clear(); clearErr != nil && err == nil {
			err = clearErr
		}
	}
	return err
}

// Me returns the authenticated user, or an *Error with status 401 when the
// session is missing or expired.
func (c *Client) Me(ctx context.Context) (*incident.UserSummary, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var user incident.UserSummary
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// IsUnauthorized reports whether err is a 401 from the service.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type authAction struct {
	Action string `json:"action"`
	Registration
}

// Login exchanges credentials for a session token.
func (c *Caller) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, call{
		endpoint: EndpointAuth,
		method:   http.MethodPost,
		body:     authAction{Action: "login", Registration: Registration{Email: email, Password: password}},
	}, &out)
	return out, err
}

// Register creates an account; the answer carries a token but usually no user.
func (c *Caller) Register(ctx context.Context, in Registration) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, call{
		endpoint: EndpointAuth,
		method:   http.MethodPost,
		body:     authAction{Action: "register", Registration: in},
	}, &out)
	return out, err
}

// Logout invalidates the current token on the server.
func (c *Caller) Logout(ctx context.Context) error {
	var out Result
	return c.do(ctx, call{
		endpoint: EndpointAuth,
		method:   http.MethodPost,
		body:     map[string]string{"action": "logout"},
	}, &out)
}

// CurrentUser resolves the token into an identity.
func (c *Caller) CurrentUser(ctx context.Context) (Identity, error) {
	var raw struct {
		User  json.RawMessage `json:"user"`
		Error string          `json:"error"`
	}
	if err := c.do(ctx, call{endpoint: EndpointAuth, method: http.MethodGet, requiresAuth: true}, &raw); err != nil {
		return Identity{}, err
	}
	if len(raw.User) == 0 || string(raw.User) == "null" {
		return Identity{Message: raw.Error}, nil
	}
	var user User
	if err := json.Unmarshal(raw.User, &user); err != nil {
		return Identity{}, fmt.Errorf("%w: current user: %w", ErrDecode, err)
	}
	return Identity{User: &user}, nil
}

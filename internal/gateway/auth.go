package gateway

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type AuthResult struct {
	User    domain.User
	Token   string
	Message string
}

type authResponse struct {
	Token   string      `json:"token"`
	UserID  domain.ID   `json:"userId"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Role    domain.Role `json:"role"`
	Message string      `json:"message"`
}

func (r authResponse) result() *AuthResult {
	return &AuthResult{
		User: domain.User{
			ID:    r.UserID,
			Name:  r.Name,
			Email: r.Email,
			Role:  r.Role,
		},
		Token:   r.Token,
		Message: r.Message,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res authResponse
	err := c.do(ctx, call{
		op:     "Login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginRequest{Email: email, Password: password},
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.result(), nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var res authResponse
	err := c.do(ctx, call{
		op:     "Register",
		method: http.MethodPost,
		path:   "/auth/register",
		body:   registerRequest{Name: name, Email: email, Password: password},
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.result(), nil
}

// Me resolves the identity behind the current token.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var res authResponse
	err := c.do(ctx, call{op: "Me", method: http.MethodGet, path: "/auth/me", auth: true}, &res)
	if err != nil {
		return nil, err
	}
	u := res.result().User
	return &u, nil
}

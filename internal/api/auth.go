package api

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/httpclient"
	"storefront/internal/models"
)

// AuthResult is the body of every login/register/refresh response.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token,omitempty"`
}

var errNoUser = errors.New("auth response carried no user")

type Auth struct {
	c *httpclient.Client
}

// loginBody maps the identifier onto the field the backend reads, whether it holds an
// email or a username.
type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Verify is a session probe. A 401 reaches the caller without a login redirect.
func (a *Auth) Verify(ctx context.Context) (*models.User, error) {
	return a.user(ctx, "POST", "/api/auth/verify", nil)
}

func (a *Auth) Register(ctx context.Context, reg models.Registration) (AuthResult, error) {
	if err := models.Validate(reg); err != nil {
		return AuthResult{}, err
	}
	return a.authenticate(ctx, "/api/auth/user/register", reg)
}

func (a *Auth) Login(ctx context.Context, creds models.Credentials) (AuthResult, error) {
	if err := models.Validate(creds); err != nil {
		return AuthResult{}, err
	}
	return a.authenticate(ctx, "/api/auth/user/login", loginBody{Email: creds.Identifier, Password: creds.Password})
}

func (a *Auth) Logout(ctx context.Context) error {
	return a.c.Get(ctx, "/api/auth/user/logout", nil, nil)
}

func (a *Auth) AdminLogin(ctx context.Context, creds models.Credentials) (AuthResult, error) {
	if err := models.Validate(creds); err != nil {
		return AuthResult{}, err
	}
	return a.authenticate(ctx, "/api/auth/admin/login", loginBody{Email: creds.Identifier, Password: creds.Password})
}

func (a *Auth) AdminRegister(ctx context.Context, reg models.Registration) (AuthResult, error) {
	if err := models.Validate(reg); err != nil {
		return AuthResult{}, err
	}
	return a.authenticate(ctx, "/api/auth/admin/register", reg)
}

func (a *Auth) AdminLogout(ctx context.Context) error {
	return a.c.Get(ctx, "/api/auth/admin/logout", nil, nil)
}

// Profile is the session probe used by LoadUser.
func (a *Auth) Profile(ctx context.Context) (*models.User, error) {
	return a.user(ctx, "GET", "/api/auth/profile", nil)
}

func (a *Auth) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	if err := models.Validate(update); err != nil {
		return nil, err
	}
	return a.user(ctx, "PUT", "/api/auth/profile", update)
}

func (a *Auth) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	if err := models.Validate(change); err != nil {
		return err
	}
	return a.c.Put(ctx, "/api/auth/password", change, nil)
}

// Refresh exchanges the current credential for a fresh token.
func (a *Auth) Refresh(ctx context.Context) (AuthResult, error) {
	return a.authenticate(ctx, "/api/auth/refresh", nil)
}

func (a *Auth) authenticate(ctx context.Context, path string, body any) (AuthResult, error) {
	var raw []byte
	if err := a.c.Post(ctx, path, body, &raw); err != nil {
		return AuthResult{}, err
	}
	return decodeAuthResult(raw)
}

func (a *Auth) user(ctx context.Context, method, path string, body any) (*models.User, error) {
	var raw []byte
	if err := a.c.Do(ctx, method, path, nil, body, &raw); err != nil {
		return nil, err
	}
	user, err := unwrapOne[models.User](raw, "user", "data")
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("%s %s: %w", method, path, errNoUser)
	}
	return user, nil
}

// decodeAuthResult accepts {user, token}, the same wrapped in {data}, or a bare user.
func decodeAuthResult(raw []byte) (AuthResult, error) {
	result, err := unwrapOne[AuthResult](raw, "data")
	if err != nil {
		return AuthResult{}, err
	}
	if result == nil {
		return AuthResult{}, errNoUser
	}
	if result.User == nil {
		user, err := unwrapOne[models.User](raw, "data")
		if err != nil || user == nil || user.ID == "" {
			return AuthResult{}, errNoUser
		}
		result.User = user
	}
	return *result, nil
}

package client

import (
	"context"
	"net/http"

	"github.com/joseph-ayodele/jobboard/internal/entity"
)

// AuthAPI wraps the JWT token endpoints. A 401 here means bad credentials,
// so these requests never go through the refresh path.
type AuthAPI struct {
	c *Client
}

func (c *Client) Auth() *AuthAPI { return &AuthAPI{c: c} }

// Login exchanges credentials for a token pair and stores it.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (*entity.TokenPair, error) {
	req, err := JSON(http.MethodPost, "/api/token/", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	req.NoRefresh = true

	resp, err := a.c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	pair, err := decodeOne[entity.TokenPair](tokenPairSchema, resp.Body)
	if err != nil {
		return nil, err
	}
	if a.c.store != nil {
		if err := a.c.store.Set(ctx, pair.Access, pair.Refresh); err != nil {
			return nil, err
		}
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token without storing it.
func (a *AuthAPI) Refresh(ctx context.Context, refresh string) (string, error) {
	req, err := JSON(http.MethodPost, refreshPath, map[string]string{"refresh": refresh})
	if err != nil {
		return "", err
	}
	req.NoRefresh = true

	resp, err := a.c.Do(ctx, req)
	if err != nil {
		return "", err
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", ErrUnexpectedPayload
	}
	return out.Access, nil
}

// Logout clears the stored tokens. The API keeps no server-side session.
func (a *AuthAPI) Logout(ctx context.Context) error {
	if a.c.store == nil {
		return nil
	}
	return a.c.store.Clear(ctx)
}

package command

import (
	"context"
	"errors"
	"time"

	"playlog/cmd/cli/authentication"
	"playlog/cmd/cli/command/client"
)

// authedClient returns a client carrying the stored access token, refreshing
// it first when it has expired.
func authedClient(ctx context.Context) (*client.HTTPClient, *authentication.StoredCredentials, error) {
	creds, err := authentication.GetTokens()
	if err != nil {
		return nil, nil, err
	}

	httpClient := client.NewHTTPClient(apiURL)
	if creds.Expired(time.Now()) {
		if err := refresh(ctx, httpClient, creds); err != nil {
			return nil, nil, err
		}
	}
	httpClient.SetToken(creds.AccessToken)
	return httpClient, creds, nil
}

func refresh(ctx context.Context, httpClient *client.HTTPClient, creds *authentication.StoredCredentials) error {
	resp, err := httpClient.RefreshToken(ctx, creds.RefreshToken)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return authentication.ErrNotLoggedIn
		}
		return err
	}

	creds.AccessToken = resp.AccessToken
	creds.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix()
	return authentication.StoreTokens(creds)
}

package paypal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type tokenResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// tokens are refreshed this long before PayPal expires them
const tokenSkew = 60 * time.Second

func (c *Client) accessToken(ctx context.Context) (string, error) {
	key := c.cache.GenerateKey("paypal_token", c.cfg.ClientID)
	if tok, err := c.cache.Get(ctx, key); err != nil {
		slog.WarnContext(ctx, "paypal token cache read failed", "error", err)
	} else if tok != "" {
		return tok, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tr tokenResp
	if err := c.send(req, &tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", errors.New("paypal: empty access token")
	}

	ttl := time.Duration(tr.ExpiresIn)*time.Second - tokenSkew
	if ttl > 0 {
		if err := c.cache.Set(ctx, key, tr.AccessToken, ttl); err != nil {
			slog.WarnContext(ctx, "paypal token cache write failed", "error", err)
		}
	}
	return tr.AccessToken, nil
}

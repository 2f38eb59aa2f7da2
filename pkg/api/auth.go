package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const loginEndpoint = "auth/request-token"

// Authenticate exchanges credentials for an access token and stores it on the
// client. A success:false envelope is returned as a *RemoteError carrying the
// whole response, the same as an HTTP-level rejection.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*Envelope[AuthData], error) {
	if strings.TrimSpace(email) == "" {
		return nil, &MissingParameterError{Operation: "authenticate", Parameter: "email"}
	}
	if password == "" {
		return nil, &MissingParameterError{Operation: "authenticate", Parameter: "password"}
	}

	body := map[string]string{"email": email, "password": password}
	status, raw, err := c.doRaw(ctx, http.MethodPost, c.resolve(loginEndpoint, RootVersioned), body)
	if err != nil {
		return nil, err
	}

	var env Envelope[AuthData]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &RemoteError{StatusCode: status, Payload: string(raw), Body: raw}
	}
	if env.Success == nil || !*env.Success || env.Data.Token == "" {
		var payload any
		_ = json.Unmarshal(raw, &payload)
		return nil, &RemoteError{StatusCode: status, Payload: payload, Body: raw}
	}

	c.SetAccessToken(env.Data.Token)
	return &env, nil
}

package adminsdk

import (
	"context"
	"net/http"
)

// Bootstrap performs the one-time first-run setup, creating the initial
// super_admin account. The pre-shared token authorizes the call; once a
// principal exists the endpoint refuses every further attempt.
func (c *SDKClient) Bootstrap(
	ctx context.Context,
	token string,
	req BootstrapRequest,
) (*BootstrapResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/bootstrap", body, map[string]string{
		"X-Bootstrap-Token": token,
	})
	if err != nil {
		return nil, err
	}

	var bootstrapResp BootstrapResponse
	if err := decodeJSON(resp, &bootstrapResp, http.StatusCreated); err != nil {
		return nil, err
	}

	return &bootstrapResp, nil
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gitmaxhq/gitmax/internal/client"
)

// apiGet fetches a JSON resource from the API into out
func apiGet(ctx context.Context, cliCtx *CliContext, path string, query url.Values, out any) error {
	u := cliCtx.Client.BaseURL() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return doAPI(cliCtx, req, out)
}

// apiPut sends a JSON body to the API and decodes the response into out
func apiPut(ctx context.Context, cliCtx *CliContext, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		cliCtx.Client.BaseURL()+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return doAPI(cliCtx, req, out)
}

// doAPI executes the request through the authenticated client and decodes
// the response.
func doAPI(cliCtx *CliContext, req *http.Request, out any) error {
	resp, err := cliCtx.Client.HTTP().Do(req)
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return fmt.Errorf("session expired. Please run 'gitmax auth login' again")
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("authentication required. Please run 'gitmax auth login' first")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed: %s", apiErrorDetail(resp))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// apiErrorDetail extracts the detail field from an API error body
func apiErrorDetail(resp *http.Response) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}

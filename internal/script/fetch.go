package script

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const fetchTimeout = 10 * time.Second

// maxFetchBody bounds how much of a response a script can pull in.
const maxFetchBody = 4 << 20

// HTTPFetch performs a GET request and returns the body. Other methods are
// rejected, and non-2xx statuses are errors.
func HTTPFetch(ctx context.Context, method, url string) (string, error) {
	if !strings.EqualFold(method, http.MethodGet) {
		return "", fmt.Errorf("method incorrect: %q", method)
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return string(body), nil
}

package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/draftsync/draftsync/pkg/errors"
)

// maxErrorBody limits how much of an error response body is carried
// into error messages.
const maxErrorBody = 512

// CheckStatus normalizes an HTTP response status into the error
// taxonomy, or returns nil for success. The operation name decides the
// 403 mapping: a forbidden delete is a permission problem (contributor
// rights on a shared publication), anything else is an auth problem.
func CheckStatus(resp *http.Response, platform, operation, resourceID string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.NewAuthError(platform, snippet(resp), nil)

	case resp.StatusCode == http.StatusForbidden:
		if operation == "delete" {
			return errors.NewPermissionError(platform, operation, resourceID)
		}
		return errors.NewAuthError(platform, snippet(resp), nil)

	case resp.StatusCode == http.StatusNotFound:
		return errors.NewNotFoundError(platform, "article", resourceID)

	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.NewRateLimitError(platform, retryAfter(resp))

	case resp.StatusCode >= 500:
		return errors.NewTransientError(platform,
			errors.NewAPIError(platform, resp.StatusCode, snippet(resp)))

	default:
		apiErr := errors.NewAPIError(platform, resp.StatusCode, snippet(resp))
		apiErr.Endpoint = resp.Request.URL.Path
		return apiErr
	}
}

// DecodeResponse checks the response status and decodes the JSON body
// into v. The body is always drained and closed.
func DecodeResponse(resp *http.Response, platform, operation, resourceID string, v any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if err := CheckStatus(resp, platform, operation, resourceID); err != nil {
		return err
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.WrapParse("json", platform+" response", err)
	}
	return nil
}

// retryAfter parses the Retry-After header, seconds form only.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// snippet reads a bounded prefix of the response body for error
// messages.
func snippet(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return resp.Status
	}
	return string(data)
}

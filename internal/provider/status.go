package provider

import (
	"fmt"
	"net/http"
)

// StatusError reports an upstream that answered with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.StatusCode)
}

func checkStatus(res *http.Response) error {
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return StatusError{URL: res.Request.URL.Redacted(), StatusCode: res.StatusCode}
	}
	return nil
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}

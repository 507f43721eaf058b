package collector

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"MarketBrief/internal/model"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// newClient builds the resty client every provider shares the shape of.
func newClient(baseURL, proxyURL string) *resty.Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", "application/json")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return client
}

// checkResponse turns transport errors and non-2xx answers into ErrFetch.
func checkResponse(provider string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrFetch, provider, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: %s: status %d, body: %s", model.ErrFetch, provider, resp.StatusCode(), truncate(resp.String(), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

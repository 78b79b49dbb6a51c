package util

import (
	"strings"
	"time"

	"github.com/imroc/req/v3"
)

func GetHttpClient() *req.Client {
	return req.C().SetTimeout(10 * time.Second).SetUserAgent("Golang")
}

// VerifyUrlExists performs an HTTP HEAD request against the url and reports
// whether it answered with a non-error status. Redirects (3xx) count as
// valid; unreachable hosts and timeouts do not.
func VerifyUrlExists(client *req.Client, url string) bool {
	if strings.TrimSpace(url) == "" {
		return false
	}

	resp, err := client.R().Head(url)
	if err != nil {
		return false
	}
	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

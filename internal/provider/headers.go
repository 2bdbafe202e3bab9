package provider

import (
	"net/http"
	"net/url"
	"strings"
)

// defaultUserAgents is the rotation pool used when none is configured
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:132.0) Gecko/20100101 Firefox/132.0",
}

// browserHeaders are sent on every event request
var browserHeaders = map[string]string{
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Sec-Fetch-Dest":     "empty",
	"Sec-Fetch-Mode":     "cors",
	"Sec-Fetch-Site":     "same-origin",
	"sec-ch-ua":          `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"Windows"`,
	"Cache-Control":      "no-cache",
	"Pragma":             "no-cache",
	"DNT":                "1",
}

// providerOrigin returns scheme://host of the provider base URL
func providerOrigin(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.TrimRight(baseURL, "/")
	}
	return u.Scheme + "://" + u.Host
}

// setBrowserHeaders applies the rotated user agent and fixed provider referer/origin
func setBrowserHeaders(req *http.Request, userAgent, origin string) {
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", origin+"/")
	req.Header.Set("Origin", origin)
}

package script

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// DefaultHTTPTimeout applies when a script passes no timeout.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPSession keeps cookies across the requests of one script run, so a
// pre-action can log in to a device and then call it.
type HTTPSession struct {
	client *http.Client
}

// NewHTTPSession creates a session with a public-suffix aware cookie jar.
func NewHTTPSession(skipVerify bool) (*HTTPSession, error) {
	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport
	if skipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &HTTPSession{client: &http.Client{Jar: jar, Transport: transport}}, nil
}

// Get performs a GET request and returns the body and status code.
func (s *HTTPSession) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (string, int, error) {
	return s.do(ctx, http.MethodGet, url, "", headers, timeout)
}

// Post performs a POST request. The content type defaults to JSON.
func (s *HTTPSession) Post(ctx context.Context, url, body string, headers map[string]string, timeout time.Duration) (string, int, error) {
	return s.do(ctx, http.MethodPost, url, body, headers, timeout)
}

func (s *HTTPSession) do(ctx context.Context, method, url, body string, headers map[string]string, timeout time.Duration) (string, int, error) {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rd io.Reader
	if method != http.MethodGet {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return "", 0, err
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return string(respBody), resp.StatusCode, nil
}

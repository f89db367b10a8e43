/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package dl

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"time"
)

const (
	downloadTimeout = 150 * time.Second
	defaultFilePerm = 0644
)

var errMissingCDNURL = errors.New("missing cdn url")

// httpClient is shared by all backends for plain HTTP calls.
var httpClient = &http.Client{
	Timeout: downloadTimeout,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return errors.New("too many redirects")
		}
		return nil
	},
}

// sendRequest performs a rate-limited HTTP request with optional headers.
func sendRequest(ctx context.Context, method, fullURL string, body io.Reader, headers map[string]string) (*http.Response, error) {
	if err := acquireRequestSlot(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return httpClient.Do(req)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var filenameRegex = regexp.MustCompile(`filename\*?=(?:UTF-8'')?"?([^";]+)"?`)

// extractFilename parses the Content-Disposition header to extract the original filename.
func extractFilename(contentDisp string) string {
	if contentDisp == "" {
		return ""
	}
	matches := filenameRegex.FindStringSubmatch(contentDisp)
	if len(matches) > 1 {
		decoded, err := url.QueryUnescape(matches[1])
		if err == nil {
			return decoded
		}
	}
	return ""
}

// sleepWithJitter pauses for base plus a random jitter of up to base,
// honoring ctx. Used between linear retry attempts.
func sleepWithJitter(ctx context.Context, base time.Duration) error {
	if base <= 0 {
		return nil
	}

	t := time.NewTimer(base + rand.N(base))
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package transport

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/richard-senior/pronosticos/internal/logger"
)

// EnvCABundle names an optional PEM bundle appended to the system roots,
// for networks that intercept TLS
const EnvCABundle = "PRONOSTICOS_CA_BUNDLE"

// DefaultUserAgent makes requests look like a desktop browser
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

var (
	httpClient     *http.Client
	httpClientOnce sync.Once
)

// getExtraCABundle returns the extra CA bundle if one is configured
func getExtraCABundle() ([]byte, error) {
	bundlePath := os.Getenv(EnvCABundle)
	if bundlePath == "" {
		return nil, nil
	}
	caCert, err := os.ReadFile(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA bundle %s: %w", bundlePath, err)
	}
	return caCert, nil
}

// GetCustomHTTPClient returns the shared HTTP client with custom TLS configuration
func GetCustomHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		httpClient = newHTTPClient()
	})
	return httpClient
}

func newHTTPClient() *http.Client {
	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		logger.Warn("Failed to get system cert pool", err)
		rootCAs = x509.NewCertPool()
	}

	extraCert, err := getExtraCABundle()
	if err != nil {
		logger.Warn("Proceeding without extra CA bundle", err)
	} else if extraCert != nil {
		if ok := rootCAs.AppendCertsFromPEM(extraCert); !ok {
			logger.Warn("Failed to append extra CA bundle")
		} else {
			logger.Info("Added extra CA bundle to root CAs")
		}
	}

	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs: rootCAs,
			},
			Proxy: http.ProxyFromEnvironment,
		},
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// GetHtml fetches a page with the shared client
func GetHtml(htmlUrl string) ([]byte, error) {
	return GetHtmlContext(context.Background(), GetCustomHTTPClient(), htmlUrl, DefaultUserAgent)
}

// GetHtmlContext fetches a page with browser-like headers and decodes any
// gzip, deflate or brotli content encoding
func GetHtmlContext(ctx context.Context, client *http.Client, htmlUrl, userAgent string) ([]byte, error) {
	if client == nil {
		client = GetCustomHTTPClient()
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, htmlUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Referer", "http://www.google.com/")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch html: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request returned error status %d", resp.StatusCode)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return data, nil
}

// decodeBody wraps the response body according to its Content-Encoding
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	contentEncoding := resp.Header.Get("Content-Encoding")
	switch contentEncoding {
	case "gzip":
		logger.Debug("Handling gzip compressed content")
		reader, err := NewGzipReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return reader, nil
	case "deflate":
		logger.Debug("Handling deflate compressed content")
		return NewDeflateReader(resp.Body)
	case "br":
		logger.Debug("Handling brotli compressed content")
		return NewBrotliReader(resp.Body)
	case "", "identity":
	default:
		logger.Warn("Unknown content encoding:", contentEncoding)
	}
	return io.NopCloser(resp.Body), nil
}

// NewGzipReader creates a gzip reader from the provided io.ReadCloser
func NewGzipReader(r io.ReadCloser) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// NewDeflateReader creates a deflate reader from the provided io.ReadCloser
func NewDeflateReader(r io.ReadCloser) (io.ReadCloser, error) {
	return flate.NewReader(r), nil
}

// NewBrotliReader creates a brotli reader from the provided io.ReadCloser
func NewBrotliReader(r io.ReadCloser) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}

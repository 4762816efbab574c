package renderer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client talks to the external HTML-to-PDF conversion service. The service
// itself (Gotenberg or compatible) is a black box; we only post HTML and
// read the PDF bytes back.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New builds a renderer client against baseURL.
func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{http: http, logger: logger}
}

// RenderPDF converts the given HTML document to PDF.
func (c *Client) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("files", "index.html", strings.NewReader(html)).
		Post("/forms/chromium/convert/html")
	if err != nil {
		c.logger.Error("renderer request failed", zap.Error(err))
		return nil, err
	}

	if resp.IsError() {
		c.logger.Error("renderer returned error status",
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()))
		return nil, fmt.Errorf("renderer returned status %d", resp.StatusCode())
	}

	return resp.Body(), nil
}

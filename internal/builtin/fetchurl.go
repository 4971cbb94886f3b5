package builtin

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"

	"github.com/kestrel-mcp/corekit/pkg/mcplog"
	"github.com/kestrel-mcp/corekit/pkg/protocol"
	"github.com/kestrel-mcp/corekit/pkg/registry"
)

const maxMarkdownLength = 10000

var fetchClient = &http.Client{
	Timeout: 30 * time.Second,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return fmt.Errorf("stopped after 10 redirects")
		}
		return nil
	},
}

// FetchURLTool is the wire definition for the fetch_url handler.
func FetchURLTool() protocol.Tool {
	return protocol.Tool{
		Name: "fetch_url",
		Description: "Fetches a URL expected to return HTML and converts its content to Markdown, for " +
			"consumption by an LLM client that asked for a page's content or a summary of it.",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"url": {
					Type:        "string",
					Description: "The URL to fetch, e.g. https://example.com/",
				},
			},
			Required: []string{"url"},
		},
	}
}

// NewFetchURLHandler returns a fetch_url handler that logs through log.
func NewFetchURLHandler(log mcplog.Logger) registry.ToolHandler {
	if log == nil {
		log = mcplog.Noop{}
	}
	return func(args map[string]any) (registry.HandlerReturn, error) {
		rawURL, ok := args["url"].(string)
		if !ok || rawURL == "" {
			return registry.HandlerReturn{}, fmt.Errorf("url parameter is required and must be a string")
		}

		body, err := fetchDecoded(rawURL, log)
		if err != nil {
			return registry.HandlerReturn{}, err
		}

		domain, err := extractDomain(rawURL)
		if err != nil {
			log.Warn("fetch_url: failed to extract domain from %s: %v", rawURL, err)
			domain = "unknown"
		}

		markdown, err := htmltomarkdown.ConvertString(string(body), converter.WithDomain(domain))
		if err != nil {
			return registry.HandlerReturn{}, fmt.Errorf("converting html to markdown: %w", err)
		}
		if len(markdown) > maxMarkdownLength {
			markdown = markdown[:maxMarkdownLength] + "\n\n... (content truncated due to size)"
		}

		title := extractTitle(body)
		text := fmt.Sprintf("# %s\n\nsource: %s\n\n%s", title, rawURL, markdown)
		return registry.HandlerReturn{Text: text}, nil
	}
}

func fetchDecoded(rawURL string, log mcplog.Logger) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; corekit-fetch/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	reader, err := decodedReader(resp.Header.Get("Content-Encoding"), resp.Body, log)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return data, nil
}

func decodedReader(encoding string, body io.ReadCloser, log mcplog.Logger) (io.ReadCloser, error) {
	switch encoding {
	case "gzip":
		return gzip.NewReader(body)
	case "deflate":
		return flate.NewReader(body), nil
	case "br":
		return io.NopCloser(brotli.NewReader(body)), nil
	case "":
		return body, nil
	default:
		log.Warn("fetch_url: unknown content-encoding %q, reading raw", encoding)
		return body, nil
	}
}

// extractTitle reads the page <title> via goquery rather than manual
// string scanning, so malformed or nested markup doesn't throw it off.
func extractTitle(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return "untitled"
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return "untitled"
	}
	return title
}

func extractDomain(rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	scheme := "https://"
	if strings.HasPrefix(rawURL, "http://") {
		scheme = "http://"
	}
	return scheme + parsed.Hostname(), nil
}

package tools

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/protocol"
	"github.com/richard-senior/pronosticos/pkg/transport"
)

// maxMarkdownLength caps the markdown returned to the client
const maxMarkdownLength = 10000

func FixturePageMarkdownTool() protocol.Tool {
	return protocol.Tool{
		Name: "fixture_page_markdown",
		Description: `
		Downloads a league's fixtures page and returns it as Markdown, limited to the fixtures section when one is found.
		This tool should be used when:
		- The fixtures of a league look wrong and the page needs inspecting
		- A new league url is being checked before add_league
		Give either a league id or a url.
		`,
		InputSchema: schema(nil, map[string]protocol.ToolProperty{
			"league": leagueProperty,
			"url":    {Type: "string", Description: "The url of the fixtures page ie. https://www.livefutbol.com/todos_partidos/esp-primera-division-2024-2025/"},
		}),
	}
}

func HandleFixturePageMarkdown(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	pageURL := stringParam(params, "url")
	if pageURL == "" {
		id, err := requireString(params, "league")
		if err != nil {
			return nil, fmt.Errorf("no league or url was passed")
		}
		league, err := a.Leagues().Get(id)
		if err != nil {
			return nil, err
		}
		pageURL = league.URL
	}

	ctx, cancel := context.WithTimeout(ctx, a.Config().Datasource.Timeout)
	defer cancel()

	logger.Info("Getting HTML from:", pageURL)
	body, err := transport.GetHtmlContext(ctx, transport.GetCustomHTTPClient(), pageURL, a.Config().Datasource.UserAgent)
	if err != nil {
		return nil, err
	}

	domain, err := extractDomain(pageURL)
	if err != nil {
		logger.Warn("Failed to extract domain from URL:", err)
		domain = "unknown"
	}

	markdown, title, err := PageToMarkdown(body, domain)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"markdown": markdown,
		"url":      pageURL,
		"title":    title,
		"domain":   domain,
	}, nil
}

// PageToMarkdown converts the fixtures section of a page, or the whole page
// when it has none, to markdown. It also returns the page title.
func PageToMarkdown(body []byte, domain string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "No title found"
	}

	html := string(body)
	if section := doc.Find("div.module-gameplan").First(); section.Length() > 0 {
		if outer, err := goquery.OuterHtml(section); err == nil {
			html = outer
		}
	}

	markdown, err := htmltomarkdown.ConvertString(html, converter.WithDomain(domain))
	if err != nil {
		logger.Error("Failed to convert HTML to Markdown:", err)
		return "", "", err
	}

	if len(markdown) > maxMarkdownLength {
		markdown = markdown[:maxMarkdownLength] + "\n\n... (content truncated due to size)"
	}
	return markdown, title, nil
}

// extractDomain extracts the scheme and host of a URL string
func extractDomain(urlString string) (string, error) {
	if !strings.HasPrefix(urlString, "http://") && !strings.HasPrefix(urlString, "https://") {
		urlString = "https://" + urlString
	}

	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %v", err)
	}
	if parsedURL.Hostname() == "" {
		return "", fmt.Errorf("no host in URL: %s", urlString)
	}
	return parsedURL.Scheme + "://" + parsedURL.Hostname(), nil
}

package documents

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedContent is returned for documents no extractor understands
var ErrUnsupportedContent = errors.New("unsupported document content type")

var whitespace = regexp.MustCompile(`[ \t\r\f\v]+`)

// ExtractText converts a document body into plain text based on its content type
func ExtractText(contentType string, body []byte, pageURL string) (string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))

	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return extractHTML(body, pageURL)
	case mediaType == "text/plain" || mediaType == "application/xml" || mediaType == "text/xml":
		return normalize(string(body)), nil
	case mediaType == "application/pdf":
		return extractPDF(body)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType)
	}
}

// extractHTML prefers the readability article text and falls back to the
// visible body text when readability finds no article
func extractHTML(body []byte, pageURL string) (string, error) {
	parsedURL, _ := url.Parse(pageURL)

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err == nil {
		if text := normalize(article.TextContent); text != "" {
			return text, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, nav, aside, footer, header, iframe, noscript").Remove()

	// Prefer the opinion body when the page carries one
	selection := doc.Find("#opinion-content, article, main").First()
	if selection.Length() == 0 {
		selection = doc.Find("body")
	}

	return normalize(selection.Text()), nil
}

func extractPDF(body []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return normalize(string(text)), nil
}

// normalize collapses runs of spaces and blank lines
func normalize(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(whitespace.ReplaceAllString(line, " "))
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

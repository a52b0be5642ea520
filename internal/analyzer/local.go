package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

const (
	localSummaryMaxChars = 2000
	localMatchWindow     = 240
)

// LocalClient is an offline fallback pipeline: it extracts the PDF text and
// produces a keyword/query-focused digest. It exists so the full job
// lifecycle can run without the crew service, not to replicate its answers.
type LocalClient struct{}

// Analyze extracts text from the stored PDF and digests it.
func (LocalClient) Analyze(ctx context.Context, input Input) (Output, error) {
	var log strings.Builder
	step := func(format string, args ...any) {
		fmt.Fprintf(&log, "[%s] %s\n", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
	}

	step("local analyzer: opening %s", input.DocumentPath)
	if err := ctx.Err(); err != nil {
		return Output{Log: log.String()}, err
	}

	f, reader, err := pdf.Open(input.DocumentPath)
	if err != nil {
		step("open failed: %v", err)
		return Output{Log: log.String()}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		step("text extraction failed: %v", err)
		return Output{Log: log.String()}, fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		step("text read failed: %v", err)
		return Output{Log: log.String()}, fmt.Errorf("read pdf text: %w", err)
	}
	text := normalizeWhitespace(buf.String())
	step("extracted %d characters from %d page(s)", len(text), reader.NumPage())

	if strings.TrimSpace(text) == "" {
		step("no extractable text")
		return Output{Log: log.String()}, fmt.Errorf("document has no extractable text")
	}

	summary := digest(text, input.Keyword, input.Query, step)
	step("digest complete: %d characters", len(summary))

	return Output{Summary: summary, Log: log.String()}, nil
}

// digest assembles a focused excerpt: passages around keyword matches when a
// keyword is given, otherwise the leading text, prefixed with the query so the
// caller can tell what the excerpt was selected for.
func digest(text, keyword, query string, step func(string, ...any)) string {
	var parts []string
	if strings.TrimSpace(query) != "" {
		parts = append(parts, "Query: "+strings.TrimSpace(query))
	}

	keyword = strings.TrimSpace(keyword)
	if keyword != "" {
		matches := findMatches(text, keyword, 5)
		step("keyword %q matched %d passage(s)", keyword, len(matches))
		if len(matches) > 0 {
			parts = append(parts, "Passages matching \""+keyword+"\":")
			parts = append(parts, matches...)
			return clamp(strings.Join(parts, "\n\n"), localSummaryMaxChars)
		}
		parts = append(parts, "No passages matched \""+keyword+"\"; leading excerpt follows.")
	}

	parts = append(parts, clamp(text, localSummaryMaxChars/2))
	return clamp(strings.Join(parts, "\n\n"), localSummaryMaxChars)
}

func findMatches(text, keyword string, max int) []string {
	lowerText := strings.ToLower(text)
	lowerKeyword := strings.ToLower(keyword)

	var matches []string
	offset := 0
	for len(matches) < max {
		idx := strings.Index(lowerText[offset:], lowerKeyword)
		if idx < 0 {
			break
		}
		abs := offset + idx
		start := abs - localMatchWindow/2
		if start < 0 {
			start = 0
		}
		end := abs + len(keyword) + localMatchWindow/2
		if end > len(text) {
			end = len(text)
		}
		matches = append(matches, "… "+strings.TrimSpace(text[start:end])+" …")
		offset = abs + len(keyword)
	}
	return matches
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clamp(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

var _ Client = LocalClient{}

// SPDX-License-Identifier: GPL-3.0-only

package sources

import (
	"bytes"
	"encoding/base64"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	tjOperatorRe      = regexp.MustCompile(`\(([^)]*)\)\s*Tj`)
	tjArrayOperatorRe = regexp.MustCompile(`\[(.*?)\]\s*TJ`)
	parenStringRe     = regexp.MustCompile(`\(([^)]*)\)`)
)

// ExtractTextFromPDFBase64 extracts plain text from a base64-encoded PDF
// (with or without a data:-URI prefix). Parsing falls back to scanning
// the raw text-show operators when the document is malformed; when both
// fail the result is an empty string, never binary garbage.
func ExtractTextFromPDFBase64(content string) string {
	raw := content
	if strings.HasPrefix(raw, "data:") {
		if _, after, ok := strings.Cut(raw, ","); ok {
			raw = after
		}
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return ""
	}

	if text := extractWithPDFReader(data); text != "" {
		return text
	}
	return scanTextOperators(data)
}

// EstimateTextFromBinary is the safe fallback for binary formats without
// a parser (EPUB, MOBI): no text rather than guessed text.
func EstimateTextFromBinary(_ string) string {
	return ""
}

// extractWithPDFReader parses the document properly. The pdf package can
// panic on malformed cross-reference tables, so the panic is contained here.
func extractWithPDFReader(data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

// scanTextOperators pulls literal strings out of uncompressed content
// streams: `(...) Tj` and `[...] TJ` show operators.
func scanTextOperators(data []byte) string {
	raw := string(data)
	var chunks []string

	for _, match := range tjOperatorRe.FindAllStringSubmatch(raw, -1) {
		if match[1] != "" {
			chunks = append(chunks, match[1])
		}
	}
	for _, match := range tjArrayOperatorRe.FindAllStringSubmatch(raw, -1) {
		for _, part := range parenStringRe.FindAllStringSubmatch(match[1], -1) {
			if part[1] != "" {
				chunks = append(chunks, part[1])
			}
		}
	}

	return strings.TrimSpace(strings.Join(chunks, " "))
}

// GetSourceText returns the usable text of a source for cost estimation:
// pre-extracted text if present, otherwise extraction appropriate to the
// declared kind.
func GetSourceText(source StudySource) string {
	if source.TextContent != "" {
		return source.TextContent
	}
	switch strings.ToUpper(source.Type) {
	case "PDF":
		return ExtractTextFromPDFBase64(source.Content)
	case "EPUB", "MOBI":
		return EstimateTextFromBinary(source.Content)
	}
	return source.Content
}

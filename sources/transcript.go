// SPDX-License-Identifier: GPL-3.0-only

package sources

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Transcript downloads are capped at 500 KiB.
const maxTranscriptBytes = 500 * 1024

const transcriptUserAgent = "NeuroStudy-Architect/1.0"

// The client timeout covers the whole fetch including body read, so a
// stalled host cannot hold the request beyond 10s.
var transcriptClient = &http.Client{Timeout: 10 * time.Second}

// FetchResult is the soft-failure shape of a transcript fetch. Err is a
// short diagnostic for the user-facing message; Text is empty on failure.
type FetchResult struct {
	Text string
	Err  string
}

// FetchTranscript downloads a public subtitle/transcript file and
// returns its cleaned text. All failure modes surface through FetchResult,
// never as an error across this boundary.
func FetchTranscript(url string) FetchResult {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{Err: err.Error()}
	}
	req.Header.Set("User-Agent", transcriptUserAgent)
	req.Header.Set("Accept", "text/plain, text/vtt, application/x-subrip, */*")

	resp, err := transcriptClient.Do(req)
	if err != nil {
		return FetchResult{Err: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return FetchResult{Err: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextContentType(contentType) && !IsTranscriptURL(url) {
		return FetchResult{Err: "Not a text/transcript file"}
	}

	if lengthHeader := resp.Header.Get("Content-Length"); lengthHeader != "" {
		if length, err := strconv.Atoi(lengthHeader); err == nil && length > maxTranscriptBytes {
			return FetchResult{Err: "File too large"}
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptBytes+1))
	if err != nil {
		return FetchResult{Err: err.Error()}
	}
	if len(body) > maxTranscriptBytes {
		return FetchResult{Err: "File too large"}
	}

	return FetchResult{Text: ParseSubtitleToText(string(body))}
}

func isTextContentType(contentType string) bool {
	for _, ct := range transcriptContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return strings.Contains(contentType, "text/")
}

var (
	webvttHeaderRe  = regexp.MustCompile(`(?s)^WEBVTT.*?\n\n`)
	cueTimingRe     = regexp.MustCompile(`\d{2}:\d{2}:\d{2}[.,]\d{3}\s*-->\s*\d{2}:\d{2}:\d{2}[.,]\d{3}`)
	cueIndexLineRe  = regexp.MustCompile(`(?m)^\d+\s*$`)
	markupTagRe     = regexp.MustCompile(`<[^>]+>`)
	blankLineRunsRe = regexp.MustCompile(`\n{3,}`)
)

// ParseSubtitleToText strips VTT/SRT structure (header, cue timings,
// cue indexes, inline tags) and collapses blank-line runs, leaving only
// the spoken text.
func ParseSubtitleToText(content string) string {
	text := webvttHeaderRe.ReplaceAllString(content, "")
	text = cueTimingRe.ReplaceAllString(text, "")
	text = cueIndexLineRe.ReplaceAllString(text, "")
	text = markupTagRe.ReplaceAllString(text, "")
	text = blankLineRunsRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// SPDX-License-Identifier: GPL-3.0-only

// Package sources normalizes heterogeneous study inputs (YouTube links,
// uploads, transcript links, pasted text, PDFs) into uniform text-bearing
// records, applying plan limits before any model call is attempted.
package sources

// SourceType is the resolved semantic kind of one input source.
type SourceType string

const (
	SourceYouTube         SourceType = "youtube"
	SourceVideoUpload     SourceType = "video_upload"
	SourceLinkTranscript  SourceType = "link_transcript"
	SourceText            SourceType = "text"
	SourcePDF             SourceType = "pdf"
	SourceUnsupportedLink SourceType = "unsupported_link"
)

// SourceErrorCode is a stable code the client maps to remediation UI.
type SourceErrorCode string

const (
	ErrUnsupportedLink SourceErrorCode = "UNSUPPORTED_LINK_REQUIRES_TRANSCRIPT"
	ErrVideoTooLong    SourceErrorCode = "VIDEO_TOO_LONG"
	ErrRoadmapTooLarge SourceErrorCode = "ROADMAP_TOO_LARGE"
	ErrTooManySources  SourceErrorCode = "TOO_MANY_SOURCES"
	ErrMonthlyLimit    SourceErrorCode = "MONTHLY_LIMIT"
	ErrFetchFailed     SourceErrorCode = "FETCH_FAILED"
)

// ActionSuggestion is a machine-actionable remediation token.
type ActionSuggestion string

const (
	SuggestSplitRoadmap    ActionSuggestion = "split_roadmap"
	SuggestRemoveSources   ActionSuggestion = "remove_sources"
	SuggestViewPlans       ActionSuggestion = "view_plans"
	SuggestUploadFile      ActionSuggestion = "upload_file"
	SuggestPasteTranscript ActionSuggestion = "paste_transcript"
)

// StudySource is one raw input source as submitted by the client.
// Type carries the client's declared kind (VIDEO, YOUTUBE, URL, LINK,
// PDF, TEXT, EPUB, MOBI); Content holds a URL, raw text or base64 data
// depending on the kind.
type StudySource struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Name            string `json:"name"`
	Content         string `json:"content"`
	TextContent     string `json:"textContent"`
	DurationMinutes int    `json:"durationMinutes"`
}

// NormalizedSource is the pipeline output for one source. It either
// carries usable ExtractedText or the whole batch was aborted.
type NormalizedSource struct {
	ID              string     `json:"id"`
	OriginalType    string     `json:"originalType"`
	ResolvedType    SourceType `json:"resolvedType"`
	Name            string     `json:"name"`
	ExtractedText   string     `json:"extractedText"`
	CharCount       int        `json:"charCount"`
	DurationMinutes int        `json:"durationMinutes,omitempty"`
}

// PrepareSourcesResult is the all-or-nothing batch outcome.
type PrepareSourcesResult struct {
	Success              bool               `json:"success"`
	Sources              []NormalizedSource `json:"sources,omitempty"`
	TotalCharCount       int                `json:"totalCharCount,omitempty"`
	TotalDurationMinutes int                `json:"totalDurationMinutes,omitempty"`
	EstimatedTokens      int                `json:"estimatedTokens,omitempty"`
	Error                SourceErrorCode    `json:"error,omitempty"`
	ErrorMessage         string             `json:"errorMessage,omitempty"`
	ActionSuggestion     ActionSuggestion   `json:"actionSuggestion,omitempty"`
}

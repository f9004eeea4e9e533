// SPDX-License-Identifier: GPL-3.0-only

package sources

import (
	"regexp"
	"strings"
)

var transcriptExtensions = []string{".vtt", ".srt", ".txt", ".sub", ".sbv"}

var transcriptContentTypes = []string{"text/vtt", "text/plain", "application/x-subrip", "text/srt"}

var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/embed/[\w-]+`),
	regexp.MustCompile(`(?i)(?:https?://)?youtu\.be/[\w-]+`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/shorts/[\w-]+`),
}

// IsYouTubeURL reports whether url matches a known YouTube link form
// (watch, embed, youtu.be, shorts), with or without scheme and www.
func IsYouTubeURL(url string) bool {
	for _, pattern := range youtubePatterns {
		if pattern.MatchString(url) {
			return true
		}
	}
	return false
}

// IsTranscriptURL reports whether url points at a public subtitle or
// transcript file by extension.
func IsTranscriptURL(url string) bool {
	lower := strings.ToLower(url)
	for _, ext := range transcriptExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// DetectSourceType maps a raw source descriptor to its semantic kind.
func DetectSourceType(source StudySource) SourceType {
	declared := strings.ToUpper(source.Type)
	content := source.Content
	if content == "" {
		content = source.TextContent
	}

	switch declared {
	case "VIDEO", "YOUTUBE":
		if IsYouTubeURL(content) {
			return SourceYouTube
		}
		return SourceVideoUpload
	case "URL", "LINK":
		if IsYouTubeURL(content) {
			return SourceYouTube
		}
		if IsTranscriptURL(content) {
			return SourceLinkTranscript
		}
		return SourceUnsupportedLink
	case "PDF":
		return SourcePDF
	}

	return SourceText
}

package sources

import "testing"

func TestIsYouTubeURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"http://youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"youtu.be/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/abc-123_XY", true},
		{"https://vimeo.com/12345", false},
		{"https://example.com/watch?v=abc", false},
		{"just some text", false},
	}

	for _, tc := range cases {
		if got := IsYouTubeURL(tc.url); got != tc.want {
			t.Errorf("IsYouTubeURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestIsTranscriptURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://example.com/lecture.vtt", true},
		{"https://example.com/lecture.SRT", true},
		{"https://example.com/notes.txt", true},
		{"https://example.com/subs.sub", true},
		{"https://example.com/subs.sbv", true},
		{"https://example.com/lecture", false},
		{"https://example.com/video.mp4", false},
	}

	for _, tc := range cases {
		if got := IsTranscriptURL(tc.url); got != tc.want {
			t.Errorf("IsTranscriptURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestDetectSourceType(t *testing.T) {
	cases := []struct {
		name   string
		source StudySource
		want   SourceType
	}{
		{
			name:   "declared video with youtube url",
			source: StudySource{Type: "VIDEO", Content: "https://youtu.be/dQw4w9WgXcQ"},
			want:   SourceYouTube,
		},
		{
			name:   "declared youtube lowercase",
			source: StudySource{Type: "youtube", Content: "https://www.youtube.com/watch?v=abc"},
			want:   SourceYouTube,
		},
		{
			name:   "declared video without youtube url",
			source: StudySource{Type: "VIDEO", Content: "lecture.mp4"},
			want:   SourceVideoUpload,
		},
		{
			name:   "url pointing at youtube",
			source: StudySource{Type: "URL", Content: "https://www.youtube.com/shorts/abc"},
			want:   SourceYouTube,
		},
		{
			name:   "url pointing at transcript file",
			source: StudySource{Type: "URL", Content: "https://example.com/lecture.vtt"},
			want:   SourceLinkTranscript,
		},
		{
			name:   "link without youtube or transcript extension",
			source: StudySource{Type: "URL", Content: "https://randomsite.example/lesson"},
			want:   SourceUnsupportedLink,
		},
		{
			name:   "declared pdf",
			source: StudySource{Type: "PDF", Content: "JVBERi0="},
			want:   SourcePDF,
		},
		{
			name:   "plain text default",
			source: StudySource{Type: "TEXT", Content: "some notes"},
			want:   SourceText,
		},
		{
			name:   "empty type defaults to text",
			source: StudySource{Content: "some notes"},
			want:   SourceText,
		},
		{
			name:   "classification uses textContent when content is empty",
			source: StudySource{Type: "LINK", TextContent: "https://example.com/a.srt"},
			want:   SourceLinkTranscript,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectSourceType(tc.source); got != tc.want {
				t.Errorf("DetectSourceType() = %v, want %v", got, tc.want)
			}
		})
	}
}

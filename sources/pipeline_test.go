package sources

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"neurostudy-server/models"
)

func textSource(name, content string) StudySource {
	return StudySource{Type: "TEXT", Name: name, Content: content}
}

func TestPrepareSourcesTooManySources(t *testing.T) {
	// free plan allows 2 sources; classification must not be reached,
	// so the third source being unsupported must not change the error.
	list := []StudySource{
		textSource("a", "aaa"),
		textSource("b", "bbb"),
		{Type: "URL", Content: "https://randomsite.example/lesson"},
	}

	result := PrepareSourcesForRoadmap(list, models.FreePlan, models.UsageSnapshot{})
	if result.Success {
		t.Fatal("Expected failure")
	}
	if result.Error != ErrTooManySources {
		t.Errorf("Expected TOO_MANY_SOURCES, got %s", result.Error)
	}
	if result.ActionSuggestion != SuggestRemoveSources {
		t.Errorf("Expected remove_sources suggestion, got %s", result.ActionSuggestion)
	}
}

func TestPrepareSourcesMonthlyRoadmapLimit(t *testing.T) {
	usage := models.UsageSnapshot{RoadmapsCreated: 3}

	result := PrepareSourcesForRoadmap([]StudySource{textSource("a", "aaa")}, models.FreePlan, usage)
	if result.Error != ErrMonthlyLimit {
		t.Errorf("Expected MONTHLY_LIMIT, got %s", result.Error)
	}
	if result.ActionSuggestion != SuggestViewPlans {
		t.Errorf("Expected view_plans suggestion, got %s", result.ActionSuggestion)
	}
}

func TestPrepareSourcesUnsupportedLinkAbortsBatch(t *testing.T) {
	list := []StudySource{
		textSource("ok", "some text"),
		{Type: "URL", Content: "https://randomsite.example/lesson"},
	}

	result := PrepareSourcesForRoadmap(list, models.FreePlan, models.UsageSnapshot{})
	if result.Success {
		t.Fatal("Expected batch abort on unsupported link")
	}
	if result.Error != ErrUnsupportedLink {
		t.Errorf("Expected UNSUPPORTED_LINK_REQUIRES_TRANSCRIPT, got %s", result.Error)
	}
	if result.ActionSuggestion != SuggestUploadFile {
		t.Errorf("Expected upload_file suggestion, got %s", result.ActionSuggestion)
	}
	if len(result.Sources) != 0 {
		t.Error("Partial success is not a supported state")
	}
}

func TestPrepareSourcesVideoTooLongRegardlessOfPosition(t *testing.T) {
	list := []StudySource{
		textSource("notes", "text first"),
		{Type: "VIDEO", Content: "https://youtu.be/abc123", DurationMinutes: 45},
	}

	result := PrepareSourcesForRoadmap(list, models.FreePlan, models.UsageSnapshot{})
	if result.Error != ErrVideoTooLong {
		t.Errorf("Expected VIDEO_TOO_LONG, got %s", result.Error)
	}
	if result.ActionSuggestion != SuggestSplitRoadmap {
		t.Errorf("Expected split_roadmap suggestion, got %s", result.ActionSuggestion)
	}
}

func TestPrepareSourcesCumulativeYouTubeMinutes(t *testing.T) {
	// Each video fits the per-video cap (30) but the monthly cap (30)
	// is exceeded by prior usage plus the running batch total.
	usage := models.UsageSnapshot{YouTubeMinutesUsed: 20}
	list := []StudySource{
		{Type: "VIDEO", Content: "https://youtu.be/abc123", DurationMinutes: 15},
	}

	result := PrepareSourcesForRoadmap(list, models.FreePlan, usage)
	if result.Error != ErrMonthlyLimit {
		t.Errorf("Expected MONTHLY_LIMIT for cumulative minutes, got %s", result.Error)
	}
}

func TestPrepareSourcesVideoUploadNotCountedAgainstMonthlyMinutes(t *testing.T) {
	// Uploaded videos respect the per-video cap only.
	usage := models.UsageSnapshot{YouTubeMinutesUsed: 29}
	list := []StudySource{
		{Type: "VIDEO", Name: "upload", Content: "lecture.mp4", TextContent: "transcribed text", DurationMinutes: 20},
	}

	result := PrepareSourcesForRoadmap(list, models.FreePlan, usage)
	if !result.Success {
		t.Fatalf("Expected success, got %s (%s)", result.Error, result.ErrorMessage)
	}
	if result.TotalDurationMinutes != 20 {
		t.Errorf("Expected duration 20, got %d", result.TotalDurationMinutes)
	}
}

func TestPrepareSourcesTranscriptFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	list := []StudySource{
		{Type: "URL", Content: server.URL + "/lecture.vtt"},
	}

	result := PrepareSourcesForRoadmap(list, models.FreePlan, models.UsageSnapshot{})
	if result.Error != ErrFetchFailed {
		t.Errorf("Expected FETCH_FAILED, got %s", result.Error)
	}
	if result.ActionSuggestion != SuggestPasteTranscript {
		t.Errorf("Expected paste_transcript suggestion, got %s", result.ActionSuggestion)
	}
}

func TestPrepareSourcesTranscriptFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/vtt")
		w.Write([]byte("WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nHello\n\n00:00:03.000 --> 00:00:04.000\nWorld"))
	}))
	defer server.Close()

	list := []StudySource{
		{Type: "URL", Content: server.URL + "/lecture.vtt"},
	}

	result := PrepareSourcesForRoadmap(list, models.FreePlan, models.UsageSnapshot{})
	if !result.Success {
		t.Fatalf("Expected success, got %s (%s)", result.Error, result.ErrorMessage)
	}
	if len(result.Sources) != 1 {
		t.Fatalf("Expected 1 normalized source, got %d", len(result.Sources))
	}
	normalized := result.Sources[0]
	if normalized.ResolvedType != SourceLinkTranscript {
		t.Errorf("Expected link_transcript, got %s", normalized.ResolvedType)
	}
	if !strings.Contains(normalized.ExtractedText, "Hello") {
		t.Errorf("Expected cleaned transcript text, got %q", normalized.ExtractedText)
	}
	if normalized.CharCount != len(normalized.ExtractedText) {
		t.Error("CharCount should match extracted text length")
	}
}

func TestPrepareSourcesRoadmapTooLarge(t *testing.T) {
	// free: max_tokens_per_roadmap=100_000, roadmap output budget=30_000.
	// 300_000 chars -> 75_000 input tokens + 30_000 output > 100_000.
	big := strings.Repeat("a", 300_000)

	result := PrepareSourcesForRoadmap([]StudySource{textSource("big", big)}, models.FreePlan, models.UsageSnapshot{})
	if result.Error != ErrRoadmapTooLarge {
		t.Errorf("Expected ROADMAP_TOO_LARGE, got %s", result.Error)
	}
	if result.ActionSuggestion != SuggestSplitRoadmap {
		t.Errorf("Expected split_roadmap suggestion, got %s", result.ActionSuggestion)
	}
	if result.EstimatedTokens != 105_000 {
		t.Errorf("Expected estimate 105000 even on denial, got %d", result.EstimatedTokens)
	}
}

func TestPrepareSourcesMonthlyTokenBudget(t *testing.T) {
	// free: monthly_tokens=500_000. 49k chars estimate ~ 12250+30000
	// tokens; with 490_000 already used the budget is exhausted.
	usage := models.UsageSnapshot{MonthlyTokensUsed: 490_000}
	text := strings.Repeat("b", 49_000)

	result := PrepareSourcesForRoadmap([]StudySource{textSource("notes", text)}, models.FreePlan, usage)
	if result.Error != ErrMonthlyLimit {
		t.Errorf("Expected MONTHLY_LIMIT, got %s", result.Error)
	}
	if result.ActionSuggestion != SuggestViewPlans {
		t.Errorf("Expected view_plans suggestion, got %s", result.ActionSuggestion)
	}
	if result.EstimatedTokens == 0 {
		t.Error("Estimate should be reported even on denial")
	}
}

func TestPrepareSourcesSuccessAggregates(t *testing.T) {
	list := []StudySource{
		textSource("a", strings.Repeat("x", 100)),
		{Type: "VIDEO", Name: "clip", Content: "https://youtu.be/abc123", TextContent: strings.Repeat("y", 60), DurationMinutes: 10},
	}

	result := PrepareSourcesForRoadmap(list, models.FreePlan, models.UsageSnapshot{})
	if !result.Success {
		t.Fatalf("Expected success, got %s (%s)", result.Error, result.ErrorMessage)
	}
	if result.TotalCharCount != 160 {
		t.Errorf("Expected total char count 160, got %d", result.TotalCharCount)
	}
	if result.TotalDurationMinutes != 10 {
		t.Errorf("Expected total duration 10, got %d", result.TotalDurationMinutes)
	}
	// ceil(160/4) + 30_000 roadmap output budget
	if result.EstimatedTokens != 40+30_000 {
		t.Errorf("Expected estimated tokens 30040, got %d", result.EstimatedTokens)
	}
	if len(result.Sources) != 2 {
		t.Errorf("Expected 2 normalized sources, got %d", len(result.Sources))
	}
	for _, src := range result.Sources {
		if src.ID == "" {
			t.Error("Normalized sources must carry an id")
		}
	}
}

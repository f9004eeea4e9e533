package usage

import (
	"reflect"
	"strings"
	"testing"

	"neurostudy-server/models"
	"neurostudy-server/sources"
)

func TestCanPerformActionIsPure(t *testing.T) {
	snapshot := models.UsageSnapshot{MonthlyTokensUsed: 1000, ChatMessages: 5}
	opts := ActionOptions{TextInput: "what is mitosis?"}

	first := CanPerformAction(models.FreePlan, snapshot, nil, ActionChat, opts, UserAccess{})
	second := CanPerformAction(models.FreePlan, snapshot, nil, ActionChat, opts, UserAccess{})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Identical inputs produced different decisions: %+v vs %+v", first, second)
	}
}

func TestCanPerformActionWebSearchLimit(t *testing.T) {
	snapshot := models.UsageSnapshot{WebResearchUsed: 10}

	check := CanPerformAction(models.FreePlan, snapshot, nil, ActionWebSearch, ActionOptions{}, UserAccess{})
	if check.Allowed {
		t.Fatal("Expected denial at the web search limit")
	}
	if check.Reason != ReasonWebSearchLimit {
		t.Errorf("Expected web_search_limit, got %s", check.Reason)
	}

	under := models.UsageSnapshot{WebResearchUsed: 9}
	if check := CanPerformAction(models.FreePlan, under, nil, ActionWebSearch, ActionOptions{}, UserAccess{}); !check.Allowed {
		t.Error("Expected one remaining web search to be allowed")
	}
}

func TestCanPerformActionYouTube(t *testing.T) {
	check := CanPerformAction(models.FreePlan, models.UsageSnapshot{}, nil, ActionYouTube,
		ActionOptions{YouTubeMinutes: 45}, UserAccess{})
	if check.Allowed || check.Reason != ReasonYouTubeTooLong {
		t.Errorf("Expected youtube_too_long for 45min on free, got %+v", check)
	}

	snapshot := models.UsageSnapshot{YouTubeMinutesUsed: 20}
	check = CanPerformAction(models.FreePlan, snapshot, nil, ActionYouTube,
		ActionOptions{YouTubeMinutes: 15}, UserAccess{})
	if check.Allowed || check.Reason != ReasonMonthlyLimit {
		t.Errorf("Expected monthly_limit for cumulative minutes, got %+v", check)
	}

	check = CanPerformAction(models.FreePlan, snapshot, nil, ActionYouTube,
		ActionOptions{YouTubeMinutes: 10}, UserAccess{})
	if !check.Allowed {
		t.Errorf("Expected 10 more minutes to fit, got %+v", check)
	}
}

func TestCanPerformActionRoadmapTokenBudgetScenario(t *testing.T) {
	// free plan tweaked scenario: 49_000 of 50_000-token budget used,
	// a ~2_000 token request must be denied without exceeding budget.
	// Expressed against the real free plan: 499_000 of 500_000 used,
	// smallest possible roadmap estimate is the 30_000 output budget.
	snapshot := models.UsageSnapshot{MonthlyTokensUsed: 499_000}
	list := []sources.StudySource{{Type: "TEXT", Content: "short"}}

	check := CanPerformAction(models.FreePlan, snapshot, list, ActionRoadmap, ActionOptions{}, UserAccess{})
	if check.Allowed {
		t.Fatal("Expected denial when the estimate would blow the monthly budget")
	}
	if check.Reason != ReasonMonthlyTokensExhausted {
		t.Errorf("Expected monthly_tokens_exhausted, got %s", check.Reason)
	}
	if check.ActionSuggestion != sources.SuggestViewPlans {
		t.Errorf("Expected view_plans suggestion, got %s", check.ActionSuggestion)
	}
	if check.EstimatedTokens == 0 {
		t.Error("Estimate must be reported even on denial")
	}
	if snapshot.MonthlyTokensUsed+check.EstimatedTokens <= 500_000 {
		t.Error("Scenario should actually exceed the budget")
	}
}

func TestCanPerformActionRoadmapCountLimitBeforeSourceCount(t *testing.T) {
	snapshot := models.UsageSnapshot{RoadmapsCreated: 3}
	list := []sources.StudySource{
		{Type: "TEXT", Content: "a"}, {Type: "TEXT", Content: "b"}, {Type: "TEXT", Content: "c"},
	}

	check := CanPerformAction(models.FreePlan, snapshot, list, ActionRoadmap, ActionOptions{}, UserAccess{})
	if check.Reason != ReasonMonthlyLimit {
		t.Errorf("Roadmap count check precedes source count, got %s", check.Reason)
	}

	check = CanPerformAction(models.FreePlan, models.UsageSnapshot{}, list, ActionRoadmap, ActionOptions{}, UserAccess{})
	if check.Reason != ReasonTooManySources {
		t.Errorf("Expected too_many_sources for 3 sources on free, got %s", check.Reason)
	}
}

func TestCanPerformActionChatMessageTooLarge(t *testing.T) {
	// free: max_tokens_per_chat_message = 5_000, chat output budget 1_000.
	// 17_000 chars -> 4_250 + 1_000 = 5_250 > 5_000.
	message := strings.Repeat("x", 17_000)

	check := CanPerformAction(models.FreePlan, models.UsageSnapshot{}, nil, ActionChat,
		ActionOptions{TextInput: message}, UserAccess{})
	if check.Allowed || check.Reason != ReasonChatMessageTooLarge {
		t.Errorf("Expected chat_message_too_large, got %+v", check)
	}
	if check.EstimatedTokens != 5_250 {
		t.Errorf("Expected estimate 5250, got %d", check.EstimatedTokens)
	}
}

func TestCanPerformActionChatHistoryWindow(t *testing.T) {
	history := make([]ChatMessage, 10)
	for i := range history {
		history[i] = ChatMessage{Role: "user", Text: strings.Repeat("h", 100)}
	}

	// Only the trailing 5 history messages are priced: 5*100 chars plus
	// 5 joining newlines plus the 20-char message = 525 chars.
	check := CanPerformAction(models.FreePlan, models.UsageSnapshot{}, nil, ActionChat,
		ActionOptions{TextInput: strings.Repeat("m", 20), ChatHistory: history}, UserAccess{})
	if !check.Allowed {
		t.Fatalf("Expected allowed, got %+v", check)
	}
	want := (525+3)/4 + 1_000
	if check.EstimatedTokens != want {
		t.Errorf("Expected estimate %d, got %d", want, check.EstimatedTokens)
	}
}

func TestCanPerformActionChatMonthlyBudget(t *testing.T) {
	// free chat monthly budget = 50 messages * 5_000 tokens = 250_000.
	snapshot := models.UsageSnapshot{ChatTokensUsed: 249_500}

	check := CanPerformAction(models.FreePlan, snapshot, nil, ActionChat,
		ActionOptions{TextInput: strings.Repeat("x", 4_000)}, UserAccess{})
	if check.Allowed || check.Reason != ReasonMonthlyTokensExhausted {
		t.Errorf("Expected chat monthly budget denial, got %+v", check)
	}
}

func TestCanPerformActionQuizAndFlashcards(t *testing.T) {
	snapshot := models.UsageSnapshot{MonthlyTokensUsed: 499_900}

	check := CanPerformAction(models.FreePlan, snapshot, nil, ActionQuiz,
		ActionOptions{TextInput: strings.Repeat("q", 4_000)}, UserAccess{})
	if check.Allowed || check.Reason != ReasonMonthlyTokensExhausted {
		t.Errorf("Expected quiz denial near token budget, got %+v", check)
	}

	check = CanPerformAction(models.FreePlan, models.UsageSnapshot{}, nil, ActionFlashcards,
		ActionOptions{TextInput: "photosynthesis notes"}, UserAccess{})
	if !check.Allowed {
		t.Fatalf("Expected flashcards allowed, got %+v", check)
	}
	// flashcards output budget on free is 5_000
	if check.EstimatedTokens != (len("photosynthesis notes")+3)/4+5_000 {
		t.Errorf("Unexpected flashcards estimate %d", check.EstimatedTokens)
	}
}

func TestCanPerformActionAdminBypassesQuotaChecks(t *testing.T) {
	admin := UserAccess{PlanName: models.FreePlan, IsAdmin: true}
	exhausted := models.UsageSnapshot{
		RoadmapsCreated:    1000,
		WebResearchUsed:    1000,
		YouTubeMinutesUsed: 100_000,
		ChatTokensUsed:     10_000_000,
		MonthlyTokensUsed:  100_000_000,
	}

	tasks := []ActionTaskType{ActionRoadmap, ActionQuiz, ActionFlashcards, ActionChat, ActionWebSearch, ActionYouTube}
	for _, task := range tasks {
		check := CanPerformAction(models.FreePlan, exhausted, nil, task,
			ActionOptions{TextInput: "x", YouTubeMinutes: 10_000}, admin)
		if !check.Allowed {
			t.Errorf("Admin should bypass quota checks for %s, got %+v", task, check)
		}
	}
}

func TestBuildLimitResponseShape(t *testing.T) {
	resp := BuildLimitResponse(ReasonMonthlyLimit, sources.SuggestViewPlans)
	if resp.Reason != ReasonMonthlyLimit {
		t.Errorf("Expected reason monthly_limit, got %s", resp.Reason)
	}
	if resp.Message == "" {
		t.Error("Expected a human message")
	}
	if len(resp.Actions) != 1 || resp.Actions[0] != "view_plans" {
		t.Errorf("Expected actions [view_plans], got %v", resp.Actions)
	}

	resp = BuildLimitResponse(ReasonRateLimited, "")
	if len(resp.Actions) != 0 {
		t.Errorf("Expected no actions without a suggestion, got %v", resp.Actions)
	}

	resp = BuildLimitResponse(LimitReason("something_else"), sources.SuggestUploadFile)
	if resp.Message != "Limit reached." {
		t.Errorf("Unknown reasons fall back to a generic message, got %q", resp.Message)
	}
	if len(resp.Actions) != 0 {
		t.Errorf("upload_file is not a limit action token, got %v", resp.Actions)
	}
}

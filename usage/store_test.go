package usage

// These tests exercise the in-memory fallback path (no database
// configured), which shares ensure/increment semantics with the durable
// path.

import (
	"sync"
	"testing"

	"neurostudy-server/models"
)

func TestEnsureRowIsIdempotent(t *testing.T) {
	ResetMemoryStore()

	first := EnsureRow("user-1", "2026-08", models.StarterPlan)
	second := EnsureRow("user-1", "2026-08", models.StarterPlan)

	if first.UserID != "user-1" || first.Month != "2026-08" {
		t.Errorf("Unexpected row identity: %+v", first)
	}
	if first.RoadmapsCreated != 0 || second.RoadmapsCreated != 0 {
		t.Error("Fresh rows must carry zeroed counters")
	}
	if first.Plan != second.Plan || first.CreatedAt != second.CreatedAt {
		t.Error("Repeated ensure must return the same row, not recreate it")
	}
}

func TestEnsureRowDoesNotZeroExistingData(t *testing.T) {
	ResetMemoryStore()

	EnsureRow("user-1", "2026-08", models.FreePlan)
	Increment("user-1", "2026-08", models.FreePlan, models.UsageDeltas{RoadmapsCreated: 2})

	row := EnsureRow("user-1", "2026-08", models.FreePlan)
	if row.RoadmapsCreated != 2 {
		t.Errorf("Ensure zeroed existing data: got %d roadmaps", row.RoadmapsCreated)
	}
}

func TestIncrementIsMonotonic(t *testing.T) {
	ResetMemoryStore()

	Increment("user-1", "2026-08", models.FreePlan, models.UsageDeltas{RoadmapsCreated: 1})
	row := Increment("user-1", "2026-08", models.FreePlan, models.UsageDeltas{RoadmapsCreated: 1})

	if row.RoadmapsCreated != 2 {
		t.Errorf("Expected 2 after two +1 increments, got %d", row.RoadmapsCreated)
	}
}

func TestIncrementLeavesUnspecifiedCountersUntouched(t *testing.T) {
	ResetMemoryStore()

	Increment("user-1", "2026-08", models.FreePlan, models.UsageDeltas{
		TokensEstimated: 1000,
		TokensUsed:      900,
	})
	row := Increment("user-1", "2026-08", models.FreePlan, models.UsageDeltas{ChatMessages: 1})

	if row.TokensEstimated != 1000 || row.TokensUsed != 900 {
		t.Errorf("Token counters were disturbed: %+v", row)
	}
	if row.ChatMessages != 1 {
		t.Errorf("Expected 1 chat message, got %d", row.ChatMessages)
	}
	if row.RoadmapsCreated != 0 {
		t.Errorf("Expected untouched roadmap counter, got %d", row.RoadmapsCreated)
	}
}

func TestIncrementPreservesRecordedPlan(t *testing.T) {
	ResetMemoryStore()

	EnsureRow("user-1", "2026-08", models.ProPlan)
	row := Increment("user-1", "2026-08", models.FreePlan, models.UsageDeltas{RoadmapsCreated: 1})

	if row.Plan != models.ProPlan {
		t.Errorf("A stale caller plan must not overwrite the recorded plan, got %s", row.Plan)
	}
}

func TestIncrementConcurrentSameKey(t *testing.T) {
	ResetMemoryStore()

	var wg sync.WaitGroup
	const workers = 50
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Increment("user-1", "2026-08", models.FreePlan, models.UsageDeltas{ChatMessages: 1, TokensUsed: 10})
		}()
	}
	wg.Wait()

	row := GetUsage("user-1", "2026-08")
	if row == nil {
		t.Fatal("Expected a row after increments")
	}
	if row.ChatMessages != workers {
		t.Errorf("Lost updates: expected %d chat messages, got %d", workers, row.ChatMessages)
	}
	if row.TokensUsed != workers*10 {
		t.Errorf("Lost updates: expected %d tokens, got %d", workers*10, row.TokensUsed)
	}
}

func TestGetUsageMissingRow(t *testing.T) {
	ResetMemoryStore()

	if row := GetUsage("nobody", "2026-08"); row != nil {
		t.Errorf("Expected nil for a missing row, got %+v", row)
	}
}

func TestMonthsAreIndependentRows(t *testing.T) {
	ResetMemoryStore()

	Increment("user-1", "2026-07", models.FreePlan, models.UsageDeltas{RoadmapsCreated: 3})
	row := EnsureRow("user-1", "2026-08", models.FreePlan)

	if row.RoadmapsCreated != 0 {
		t.Errorf("A new month starts from zero, got %d", row.RoadmapsCreated)
	}
}

func TestSnapshotProjection(t *testing.T) {
	row := models.MonthlyUsage{
		RoadmapsCreated:     2,
		WebSearchesUsed:     3,
		YouTubeMinutesUsed:  12,
		ChatMessages:        7,
		TokensEstimated:     5000,
		TokensUsed:          4200,
		ChatTokensEstimated: 800,
		ChatTokensUsed:      750,
	}

	snap := row.Snapshot()
	if snap.RoadmapsCreated != 2 || snap.WebResearchUsed != 3 || snap.YouTubeMinutesUsed != 12 || snap.ChatMessages != 7 {
		t.Errorf("Counter projection mismatch: %+v", snap)
	}
	if snap.MonthlyTokensUsed != 5000 {
		t.Errorf("Monthly tokens should prefer the estimated counter, got %d", snap.MonthlyTokensUsed)
	}
	if snap.ChatTokensUsed != 800 {
		t.Errorf("Chat tokens should prefer the estimated counter, got %d", snap.ChatTokensUsed)
	}

	// Provider-reported counters are the fallback when no estimates
	// were recorded.
	row.TokensEstimated = 0
	row.ChatTokensEstimated = 0
	snap = row.Snapshot()
	if snap.MonthlyTokensUsed != 4200 || snap.ChatTokensUsed != 750 {
		t.Errorf("Expected fallback to used counters, got %+v", snap)
	}

	var nilRow *models.MonthlyUsage
	if snap := nilRow.Snapshot(); snap != (models.UsageSnapshot{}) {
		t.Errorf("Nil row snapshots to zeros, got %+v", snap)
	}
}

// SPDX-License-Identifier: GPL-3.0-only

package usage

import (
	"sync"
	"time"

	"neurostudy-server/commons"
	"neurostudy-server/db"
	"neurostudy-server/events"
	"neurostudy-server/models"

	"gorm.io/gorm"
)

// In-memory fallback ledger, used when no database is configured or the
// database errors. Rows held here are lost on process restart; that is
// an accepted degradation, not a bug.
var (
	memMu    sync.Mutex
	memStore = make(map[string]models.MonthlyUsage)
)

func storeKey(userID, month string) string {
	return userID + ":" + month
}

// ResetMemoryStore clears the fallback ledger. Test hook.
func ResetMemoryStore() {
	memMu.Lock()
	defer memMu.Unlock()
	memStore = make(map[string]models.MonthlyUsage)
}

// GetUserPlan resolves the user's current plan from the account store.
// An unavailable store or unknown user resolves to the most conservative
// plan rather than failing the request.
func GetUserPlan(userID string) models.PlanName {
	if db.Conn == nil {
		return models.FreePlan
	}
	var user models.User
	if err := db.Conn.Where("external_id = ?", userID).First(&user).Error; err != nil {
		return models.FreePlan
	}
	return models.MapPlanName(user.SubscriptionStatus)
}

// GetUserAccess resolves plan and admin flag together.
func GetUserAccess(userID string) UserAccess {
	if db.Conn == nil {
		return UserAccess{PlanName: models.FreePlan}
	}
	var user models.User
	if err := db.Conn.Where("external_id = ?", userID).First(&user).Error; err != nil {
		return UserAccess{PlanName: models.FreePlan}
	}
	return UserAccess{
		PlanName: models.MapPlanName(user.SubscriptionStatus),
		IsAdmin:  user.IsAdmin,
	}
}

func memEnsure(userID, month string, plan models.PlanName) models.MonthlyUsage {
	memMu.Lock()
	defer memMu.Unlock()
	key := storeKey(userID, month)
	if existing, ok := memStore[key]; ok {
		return existing
	}
	created := models.NewEmptyUsage(userID, month, plan)
	memStore[key] = created
	return created
}

// EnsureRow returns the (user, month) usage row, creating it with zeroed
// counters on first access. On creation the plan is resolved from the
// user's account record, not the caller-supplied value, which may be
// stale.
func EnsureRow(userID, month string, plan models.PlanName) models.MonthlyUsage {
	if db.Conn == nil {
		return memEnsure(userID, month, plan)
	}

	var row models.MonthlyUsage
	err := db.Conn.Where("user_id = ? AND month = ?", userID, month).First(&row).Error
	if err == nil {
		return row
	}
	if err != gorm.ErrRecordNotFound {
		commons.Logger.Warnf("Usage row read failed, using in-memory fallback: %v", err)
		return memEnsure(userID, month, plan)
	}

	actualPlan := GetUserPlan(userID)
	fresh := models.NewEmptyUsage(userID, month, actualPlan)
	if err := db.Conn.Create(&fresh).Error; err != nil {
		// A concurrent request may have inserted the row first.
		if readErr := db.Conn.Where("user_id = ? AND month = ?", userID, month).First(&row).Error; readErr == nil {
			return row
		}
		commons.Logger.Warnf("Usage row insert failed, using in-memory fallback: %v", err)
		memMu.Lock()
		memStore[storeKey(userID, month)] = fresh
		memMu.Unlock()
		return fresh
	}
	return fresh
}

// GetUsage reads the (user, month) row without creating it.
func GetUsage(userID, month string) *models.MonthlyUsage {
	if db.Conn == nil {
		memMu.Lock()
		defer memMu.Unlock()
		if row, ok := memStore[storeKey(userID, month)]; ok {
			return &row
		}
		return nil
	}

	var row models.MonthlyUsage
	if err := db.Conn.Where("user_id = ? AND month = ?", userID, month).First(&row).Error; err != nil {
		memMu.Lock()
		defer memMu.Unlock()
		if fallback, ok := memStore[storeKey(userID, month)]; ok {
			return &fallback
		}
		return nil
	}
	return &row
}

func applyDeltas(row *models.MonthlyUsage, deltas models.UsageDeltas) {
	row.RoadmapsCreated += deltas.RoadmapsCreated
	row.WebSearchesUsed += deltas.WebSearchesUsed
	row.YouTubeMinutesUsed += deltas.YouTubeMinutesUsed
	row.ChatMessages += deltas.ChatMessages
	row.TokensEstimated += deltas.TokensEstimated
	row.TokensUsed += deltas.TokensUsed
	row.ChatTokensEstimated += deltas.ChatTokensEstimated
	row.ChatTokensUsed += deltas.ChatTokensUsed
	row.UpdatedAt = time.Now().UTC()
}

func memIncrement(userID, month string, plan models.PlanName, deltas models.UsageDeltas) models.MonthlyUsage {
	memMu.Lock()
	defer memMu.Unlock()
	key := storeKey(userID, month)
	row, ok := memStore[key]
	if !ok {
		row = models.NewEmptyUsage(userID, month, plan)
	}
	applyDeltas(&row, deltas)
	memStore[key] = row
	return row
}

func addColumn(updates map[string]any, column string, delta int) {
	if delta != 0 {
		updates[column] = gorm.Expr(column+" + ?", delta)
	}
}

// Increment applies named deltas additively to the (user, month) row and
// returns the post-update row. The addition happens in the storage layer
// as a single UPDATE with column expressions, so concurrent increments
// for the same key cannot lose updates. The persisted plan value wins
// over the caller's argument; the argument is only used when no plan was
// recorded yet.
func Increment(userID, month string, plan models.PlanName, deltas models.UsageDeltas) models.MonthlyUsage {
	current := EnsureRow(userID, month, plan)

	effectivePlan := current.Plan
	if effectivePlan == "" {
		effectivePlan = plan
	}

	var result models.MonthlyUsage
	if db.Conn == nil {
		result = memIncrement(userID, month, effectivePlan, deltas)
	} else {
		result = dbIncrement(userID, month, effectivePlan, current, deltas)
	}

	events.Default().PublishUsage(events.UsageEvent{
		UserID: userID,
		Month:  month,
		Plan:   effectivePlan,
		Deltas: deltas,
	})

	return result
}

func dbIncrement(userID, month string, plan models.PlanName, current models.MonthlyUsage, deltas models.UsageDeltas) models.MonthlyUsage {
	updates := map[string]any{
		"plan":       plan,
		"updated_at": time.Now().UTC(),
	}
	addColumn(updates, "roadmaps_created", deltas.RoadmapsCreated)
	addColumn(updates, "web_searches_used", deltas.WebSearchesUsed)
	addColumn(updates, "youtube_minutes_used", deltas.YouTubeMinutesUsed)
	addColumn(updates, "chat_messages", deltas.ChatMessages)
	addColumn(updates, "tokens_estimated", deltas.TokensEstimated)
	addColumn(updates, "tokens_used", deltas.TokensUsed)
	addColumn(updates, "chat_tokens_estimated", deltas.ChatTokensEstimated)
	addColumn(updates, "chat_tokens_used", deltas.ChatTokensUsed)

	err := db.Conn.Model(&models.MonthlyUsage{}).
		Where("user_id = ? AND month = ?", userID, month).
		Updates(updates).Error
	if err != nil {
		commons.Logger.Warnf("Usage increment failed, using in-memory fallback: %v", err)
		return memIncrement(userID, month, plan, deltas)
	}

	var row models.MonthlyUsage
	if err := db.Conn.Where("user_id = ? AND month = ?", userID, month).First(&row).Error; err != nil {
		// The update committed; reconstruct the row rather than lose
		// the caller's view of it.
		applyDeltas(&current, deltas)
		current.Plan = plan
		return current
	}
	return row
}

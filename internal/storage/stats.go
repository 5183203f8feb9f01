package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kaioguedesm/chronofit/internal/session"
)

// Compile-time check: DB satisfies the engine's aggregation collaborator.
var _ session.Aggregator = (*DB)(nil)

// WorkoutCompleted returns updated weekly rollup statistics after a workout
// finished. The finalized session is already persisted when this runs, so the
// rollup includes it. Failures here degrade a displayed number only; the
// engine treats this call as best-effort.
func (db *DB) WorkoutCompleted(ctx context.Context, userID int, _, _ uuid.UUID, _ int) (*session.WeeklyStats, error) {
	return db.WeeklyStats(ctx, userID, time.Now())
}

// WeeklyStats returns the workout count and total minutes for the ISO week
// containing ref.
func (db *DB) WeeklyStats(ctx context.Context, userID int, ref time.Time) (*session.WeeklyStats, error) {
	start := startOfWeek(ref)
	end := start.AddDate(0, 0, 7)

	var stats session.WeeklyStats
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration_min), 0)
		 FROM sessions
		 WHERE user_id = $1 AND started_at >= $2 AND started_at < $3`,
		userID, start, end).Scan(&stats.WorkoutsThisWeek, &stats.MinutesThisWeek)
	if err != nil {
		return nil, fmt.Errorf("querying weekly stats: %w", err)
	}
	return &stats, nil
}

// startOfWeek returns midnight of the Monday of t's week, in t's location.
func startOfWeek(t time.Time) time.Time {
	year, month, d := t.Date()
	day := time.Date(year, month, d, 0, 0, 0, 0, t.Location())

	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the preceding Monday-started week
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

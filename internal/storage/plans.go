package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kaioguedesm/chronofit/internal/models"
)

// ListPlans retrieves a user's workout plans, newest first.
func (db *DB) ListPlans(ctx context.Context, userID int) ([]models.PlanRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, created_at
		 FROM plans
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var result []models.PlanRow
	for rows.Next() {
		var p models.PlanRow
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// GetPlan retrieves a single plan header.
func (db *DB) GetPlan(ctx context.Context, planID uuid.UUID, userID int) (*models.PlanRow, error) {
	var p models.PlanRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at
		 FROM plans
		 WHERE id = $1 AND user_id = $2`,
		planID, userID).Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}
	return &p, nil
}

// PlanExercises retrieves the ordered exercise list of a plan. Every row is
// validated before it is returned; the engine never sees unvalidated data.
func (db *DB) PlanExercises(ctx context.Context, planID uuid.UUID) ([]models.PlanExerciseRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, plan_id, position, name, target_sets, target_reps,
		 target_weight, rest_seconds, notes, muscle_group
		 FROM plan_exercises
		 WHERE plan_id = $1
		 ORDER BY position ASC`,
		planID)
	if err != nil {
		return nil, fmt.Errorf("querying plan exercises: %w", err)
	}
	defer rows.Close()

	var result []models.PlanExerciseRow
	for rows.Next() {
		var r models.PlanExerciseRow
		if err := rows.Scan(&r.ID, &r.PlanID, &r.Position, &r.Name, &r.TargetSets,
			&r.TargetReps, &r.TargetWeight, &r.RestSeconds, &r.Notes, &r.MuscleGroup); err != nil {
			return nil, fmt.Errorf("scanning plan exercise: %w", err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid plan exercise: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// InsertPlan inserts a plan header. Returns true if inserted, false if
// duplicate.
func (db *DB) InsertPlan(ctx context.Context, p models.PlanRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO plans (id, user_id, name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		p.ID, p.UserID, p.Name)
	if err != nil {
		return false, fmt.Errorf("inserting plan: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertPlanExercise inserts one exercise row of a plan.
func (db *DB) InsertPlanExercise(ctx context.Context, r models.PlanExerciseRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO plan_exercises (id, plan_id, position, name, target_sets,
		 target_reps, target_weight, rest_seconds, notes, muscle_group)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT DO NOTHING`,
		r.ID, r.PlanID, r.Position, r.Name, r.TargetSets,
		r.TargetReps, r.TargetWeight, r.RestSeconds, r.Notes, r.MuscleGroup)
	if err != nil {
		return fmt.Errorf("inserting plan exercise: %w", err)
	}
	return nil
}

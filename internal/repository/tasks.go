package repository

import (
	"context"
	"time"

	"rental-readiness-workers/internal/models"

	"github.com/google/uuid"
)

// Improvement score scopes.
const (
	ScopeAssessment = "assessment"
	ScopeUser       = "user"
)

// TaskStore records completed action plan tasks.
type TaskStore struct {
	db  Querier
	now func() time.Time
}

func NewTaskStore(db Querier) *TaskStore {
	return &TaskStore{db: db, now: time.Now}
}

// Complete creates the completion record if absent. awarded is false when the
// task was already completed for the assessment.
func (s *TaskStore) Complete(ctx context.Context, userID, assessmentID, taskKey string, points int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO completed_tasks (id, user_id, assessment_id, task_key, points_awarded, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (assessment_id, task_key) DO NOTHING`,
		uuid.New().String(), userID, assessmentID, taskKey, points, s.now().UTC())
	if err != nil {
		return false, insertError("complete_task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, queryError("complete_task", err)
	}
	return n == 1, nil
}

// CompletedKeys returns the task keys already completed for the assessment.
func (s *TaskStore) CompletedKeys(ctx context.Context, userID, assessmentID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task_key FROM completed_tasks WHERE user_id = $1 AND assessment_id = $2`, userID, assessmentID)
	if err != nil {
		return nil, queryError("completed_task_keys", err)
	}
	defer rows.Close()

	keys := map[string]bool{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, queryError("completed_task_keys", err)
		}
		keys[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("completed_task_keys", err)
	}
	return keys, nil
}

// List returns the completion records of an assessment, oldest first.
func (s *TaskStore) List(ctx context.Context, userID, assessmentID string) ([]models.CompletedTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_key, points_awarded, completed_at FROM completed_tasks
		WHERE user_id = $1 AND assessment_id = $2 ORDER BY completed_at ASC`, userID, assessmentID)
	if err != nil {
		return nil, queryError("list_completed_tasks", err)
	}
	defer rows.Close()

	out := []models.CompletedTask{}
	for rows.Next() {
		t := models.CompletedTask{UserID: userID, AssessmentID: assessmentID}
		if err := rows.Scan(&t.ID, &t.TaskKey, &t.PointsAwarded, &t.CompletedAt); err != nil {
			return nil, queryError("list_completed_tasks", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_completed_tasks", err)
	}
	return out, nil
}

func (s *TaskStore) SumPoints(ctx context.Context, userID, assessmentID string) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points_awarded), 0) FROM completed_tasks WHERE user_id = $1 AND assessment_id = $2`,
		userID, assessmentID).Scan(&total)
	if err != nil {
		return 0, queryError("sum_task_points", err)
	}
	return total, nil
}

// SumPointsForUser totals every task the user completed across assessments.
func (s *TaskStore) SumPointsForUser(ctx context.Context, userID string) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points_awarded), 0) FROM completed_tasks WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return 0, queryError("sum_user_task_points", err)
	}
	return total, nil
}

// Improvement sums points for the assessment, or for the user when scope is ScopeUser.
func (s *TaskStore) Improvement(ctx context.Context, scope, userID, assessmentID string) (int, error) {
	if scope == ScopeUser {
		return s.SumPointsForUser(ctx, userID)
	}
	return s.SumPoints(ctx, userID, assessmentID)
}

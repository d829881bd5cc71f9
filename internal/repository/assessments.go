package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const assessmentColumns = `id, user_id, session_key, full_name, postcode, suburb, city, lat, lon,
	monthly_rent_budget, household_income, household_income_period, individual_income, individual_income_period,
	employment_status, time_in_role, rental_history, documents, proof_of_income,
	moving_with_adults, moving_with_children, moving_with_pets, context_issues,
	readiness_score, risk_level, strengths, weaknesses, gap_analysis, recommendations, created_at`

// AssessmentStore persists assessments. Every submission is a new row.
type AssessmentStore struct {
	db  Querier
	now func() time.Time
}

func NewAssessmentStore(db Querier) *AssessmentStore {
	return &AssessmentStore{db: db, now: time.Now}
}

// Create inserts a, assigning an id and creation time when unset.
func (s *AssessmentStore) Create(ctx context.Context, a *models.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}

	gaps, err := jsonColumn(a.GapAnalysis, len(a.GapAnalysis) == 0)
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("gap analysis: %v", err))
	}
	recs, err := jsonColumn(a.Recommendations, len(a.Recommendations) == 0)
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("recommendations: %v", err))
	}

	query := `INSERT INTO assessments (` + assessmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)`

	_, err = s.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.SessionKey, a.FullName, a.Postcode, a.Suburb, a.City, a.Lat, a.Lon,
		a.MonthlyRentBudget, a.HouseholdIncome, a.HouseholdIncomePeriod, a.IndividualIncome, a.IndividualIncomePeriod,
		a.EmploymentStatus, a.TimeInRole, a.RentalHistory, pq.Array(a.Documents), a.ProofOfIncome,
		a.MovingWithAdults, a.MovingWithChildren, a.MovingWithPets, a.ContextIssues,
		a.ReadinessScore, a.RiskLevel, pq.Array(a.Strengths), pq.Array(a.Weaknesses), gaps, recs, a.CreatedAt,
	)
	if err != nil {
		return insertError("create_assessment", err)
	}
	return nil
}

// GetByID returns ASSESSMENT_NOT_FOUND when no row matches.
func (s *AssessmentStore) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`, id)
	a, err := scanAssessment(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewAssessmentNotFoundError(id)
	}
	if err != nil {
		return nil, queryError("get_assessment", err)
	}
	return a, nil
}

// Latest returns the user's newest assessment, or nil when there is none.
func (s *AssessmentStore) Latest(ctx context.Context, userID string) (*models.Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)
	a, err := scanAssessment(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError("latest_assessment", err)
	}
	return a, nil
}

// ListByUser returns the user's assessments newest first. limit <= 0 means all.
func (s *AssessmentStore) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE user_id = $1 ORDER BY created_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return s.list(ctx, "list_user_assessments", query, args...)
}

// ListBySession returns the assessments submitted under a session key, newest first.
func (s *AssessmentStore) ListBySession(ctx context.Context, sessionKey string) ([]*models.Assessment, error) {
	return s.list(ctx, "list_session_assessments",
		`SELECT `+assessmentColumns+` FROM assessments WHERE session_key = $1 ORDER BY created_at DESC`, sessionKey)
}

// Claim assigns userID to the newest assessment of the session and returns its
// id. It returns "" when the session has no assessment or its newest one
// already has an owner; owned assessments are never reassigned.
func (s *AssessmentStore) Claim(ctx context.Context, sessionKey, userID string) (string, error) {
	query := `UPDATE assessments SET user_id = $1
		WHERE id = (
			SELECT id FROM assessments
			WHERE session_key = $2
			ORDER BY created_at DESC
			LIMIT 1
		) AND user_id IS NULL
		RETURNING id`

	var id string
	err := s.db.QueryRowContext(ctx, query, userID, sessionKey).Scan(&id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", queryError("claim_assessment", err)
	}
	return id, nil
}

// SaveGapAnalysis overwrites the stored gaps and recommendations.
func (s *AssessmentStore) SaveGapAnalysis(ctx context.Context, id string, gaps map[string]string, recs []models.Recommendation) error {
	gapsJSON, err := json.Marshal(gaps)
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("gap analysis: %v", err))
	}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("recommendations: %v", err))
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE assessments SET gap_analysis = $2, recommendations = $3 WHERE id = $1`, id, gapsJSON, recsJSON)
	if err != nil {
		return queryError("save_gap_analysis", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewAssessmentNotFoundError(id)
	}
	return nil
}

func (s *AssessmentStore) list(ctx context.Context, op, query string, args ...interface{}) ([]*models.Assessment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError(op, err)
	}
	defer rows.Close()

	out := []*models.Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, queryError(op, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAssessment(row scanner) (*models.Assessment, error) {
	var (
		a          models.Assessment
		userID     sql.NullString
		lat, lon   sql.NullFloat64
		score      sql.NullInt64
		riskLevel  sql.NullString
		documents  pq.StringArray
		strengths  pq.StringArray
		weaknesses pq.StringArray
		gaps, recs []byte
	)

	err := row.Scan(
		&a.ID, &userID, &a.SessionKey, &a.FullName, &a.Postcode, &a.Suburb, &a.City, &lat, &lon,
		&a.MonthlyRentBudget, &a.HouseholdIncome, &a.HouseholdIncomePeriod, &a.IndividualIncome, &a.IndividualIncomePeriod,
		&a.EmploymentStatus, &a.TimeInRole, &a.RentalHistory, &documents, &a.ProofOfIncome,
		&a.MovingWithAdults, &a.MovingWithChildren, &a.MovingWithPets, &a.ContextIssues,
		&score, &riskLevel, &strengths, &weaknesses, &gaps, &recs, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		a.UserID = &userID.String
	}
	if lat.Valid {
		a.Lat = &lat.Float64
	}
	if lon.Valid {
		a.Lon = &lon.Float64
	}
	if score.Valid {
		v := int(score.Int64)
		a.ReadinessScore = &v
	}
	a.RiskLevel = riskLevel.String
	a.Documents = []string(documents)
	a.Strengths = []string(strengths)
	a.Weaknesses = []string(weaknesses)

	if len(gaps) > 0 {
		if err := json.Unmarshal(gaps, &a.GapAnalysis); err != nil {
			return nil, fmt.Errorf("decode gap_analysis: %w", err)
		}
	}
	if len(recs) > 0 {
		if err := json.Unmarshal(recs, &a.Recommendations); err != nil {
			return nil, fmt.Errorf("decode recommendations: %w", err)
		}
	}
	return &a, nil
}

package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/models"

	"github.com/google/uuid"
)

// ArtifactStore covers user_documents, reference_letters and cover_letters.
type ArtifactStore struct {
	db  Querier
	now func() time.Time
}

func NewArtifactStore(db Querier) *ArtifactStore {
	return &ArtifactStore{db: db, now: time.Now}
}

func artifactTable(kind string) (string, error) {
	switch {
	case models.IsDocumentType(kind):
		return "user_documents", nil
	case kind == models.ArtifactReferenceLetter:
		return "reference_letters", nil
	case kind == models.ArtifactCoverLetter:
		return "cover_letters", nil
	default:
		return "", errors.NewUnknownArtifactTypeError(kind)
	}
}

// HasArtifact reports whether a qualifying artifact of kind exists for the
// assessment. Documents qualify on existence; reference and cover letters only
// with a file attached.
func (s *ArtifactStore) HasArtifact(ctx context.Context, userID, assessmentID, kind string) (bool, error) {
	var query string
	args := []interface{}{userID, assessmentID}

	switch {
	case models.IsDocumentType(kind):
		query = `SELECT EXISTS (SELECT 1 FROM user_documents WHERE user_id = $1 AND assessment_id = $2 AND type = $3)`
		args = append(args, kind)
	case kind == models.ArtifactReferenceLetter:
		query = `SELECT EXISTS (SELECT 1 FROM reference_letters WHERE user_id = $1 AND assessment_id = $2 AND file_ref <> '')`
	case kind == models.ArtifactCoverLetter:
		query = `SELECT EXISTS (SELECT 1 FROM cover_letters WHERE user_id = $1 AND assessment_id = $2 AND file_ref <> '')`
	default:
		return false, errors.NewUnknownArtifactTypeError(kind)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, queryError("has_artifact", err)
	}
	return exists, nil
}

// Present evaluates HasArtifact for each kind.
func (s *ArtifactStore) Present(ctx context.Context, userID, assessmentID string, kinds ...string) (map[string]bool, error) {
	out := make(map[string]bool, len(kinds))
	for _, kind := range kinds {
		ok, err := s.HasArtifact(ctx, userID, assessmentID, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = ok
	}
	return out, nil
}

// First returns the oldest artifact of kind, or nil when there is none.
func (s *ArtifactStore) First(ctx context.Context, userID, assessmentID, kind string) (*models.Artifact, error) {
	var query string
	args := []interface{}{userID, assessmentID}

	switch {
	case models.IsDocumentType(kind):
		query = `SELECT id, file_ref, '' AS text_content, created_at FROM user_documents
			WHERE user_id = $1 AND assessment_id = $2 AND type = $3 ORDER BY created_at ASC LIMIT 1`
		args = append(args, kind)
	case kind == models.ArtifactReferenceLetter:
		query = `SELECT id, file_ref, text_content, created_at FROM reference_letters
			WHERE user_id = $1 AND assessment_id = $2 ORDER BY created_at ASC LIMIT 1`
	case kind == models.ArtifactCoverLetter:
		query = `SELECT id, file_ref, '' AS text_content, created_at FROM cover_letters
			WHERE user_id = $1 AND assessment_id = $2 ORDER BY created_at ASC LIMIT 1`
	default:
		return nil, errors.NewUnknownArtifactTypeError(kind)
	}

	a := models.Artifact{UserID: userID, AssessmentID: assessmentID, Type: kind}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.FileRef, &a.TextContent, &a.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError("first_artifact", err)
	}
	return &a, nil
}

// FirstOfEach returns First for every kind that has an artifact.
func (s *ArtifactStore) FirstOfEach(ctx context.Context, userID, assessmentID string, kinds ...string) (map[string]*models.Artifact, error) {
	out := make(map[string]*models.Artifact, len(kinds))
	for _, kind := range kinds {
		a, err := s.First(ctx, userID, assessmentID, kind)
		if err != nil {
			return nil, err
		}
		if a != nil {
			out[kind] = a
		}
	}
	return out, nil
}

// Create stores a according to its type.
func (s *ArtifactStore) Create(ctx context.Context, a *models.Artifact) error {
	switch {
	case models.IsDocumentType(a.Type):
		return s.CreateDocument(ctx, a)
	case a.Type == models.ArtifactReferenceLetter:
		return s.CreateReferenceLetter(ctx, a)
	case a.Type == models.ArtifactCoverLetter:
		return s.UpsertCoverLetter(ctx, a)
	default:
		return errors.NewUnknownArtifactTypeError(a.Type)
	}
}

func (s *ArtifactStore) CreateDocument(ctx context.Context, a *models.Artifact) error {
	if !models.IsDocumentType(a.Type) {
		return errors.NewUnknownArtifactTypeError(a.Type)
	}
	if a.FileRef == "" {
		return errors.NewFileRequiredError(a.Type)
	}
	s.stamp(a)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_documents (id, user_id, assessment_id, type, file_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.UserID, a.AssessmentID, a.Type, a.FileRef, a.CreatedAt)
	if err != nil {
		return insertError("create_document", err)
	}
	return nil
}

// CreateReferenceLetter needs text content, a file, or both.
func (s *ArtifactStore) CreateReferenceLetter(ctx context.Context, a *models.Artifact) error {
	a.Type = models.ArtifactReferenceLetter
	if strings.TrimSpace(a.TextContent) == "" && a.FileRef == "" {
		return errors.NewInvalidInputError("reference letter needs text content or a file")
	}
	s.stamp(a)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reference_letters (id, user_id, assessment_id, text_content, file_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.UserID, a.AssessmentID, a.TextContent, a.FileRef, a.CreatedAt)
	if err != nil {
		return insertError("create_reference_letter", err)
	}
	return nil
}

// UpsertCoverLetter keeps one cover letter per (user, assessment); a resubmission
// replaces the file and a.ID is set to the surviving row.
func (s *ArtifactStore) UpsertCoverLetter(ctx context.Context, a *models.Artifact) error {
	a.Type = models.ArtifactCoverLetter
	if a.FileRef == "" {
		return errors.NewFileRequiredError(a.Type)
	}
	s.stamp(a)

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO cover_letters (id, user_id, assessment_id, file_ref, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, assessment_id) DO UPDATE SET file_ref = EXCLUDED.file_ref, created_at = EXCLUDED.created_at
		RETURNING id`,
		a.ID, a.UserID, a.AssessmentID, a.FileRef, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		return insertError("upsert_cover_letter", err)
	}
	return nil
}

// Delete removes the user's artifact and returns its file ref so the blob can
// be cleaned up by the caller.
func (s *ArtifactStore) Delete(ctx context.Context, userID, kind, id string) (string, error) {
	table, err := artifactTable(kind)
	if err != nil {
		return "", err
	}

	query := `DELETE FROM ` + table + ` WHERE id = $1 AND user_id = $2`
	args := []interface{}{id, userID}
	if models.IsDocumentType(kind) {
		query += ` AND type = $3`
		args = append(args, kind)
	}

	var fileRef string
	err = s.db.QueryRowContext(ctx, query+` RETURNING file_ref`, args...).Scan(&fileRef)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", errors.NewArtifactNotFoundError(kind, id)
	}
	if err != nil {
		return "", queryError("delete_artifact", err)
	}
	return fileRef, nil
}

func (s *ArtifactStore) stamp(a *models.Artifact) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
}

// Package memory holds in-process implementations of the repository stores,
// used by handler tests and local runs without Postgres.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/models"

	"github.com/google/uuid"
)

// Clock is shared by the stores so tests can pin creation times.
type Clock func() time.Time

// Assessments mirrors repository.AssessmentStore.
type Assessments struct {
	mu   sync.Mutex
	rows []*models.Assessment
	Now  Clock
	// Err, when set, is returned by every call.
	Err error
}

func NewAssessments(rows ...*models.Assessment) *Assessments {
	s := &Assessments{Now: time.Now}
	for _, a := range rows {
		s.rows = append(s.rows, clone(a))
	}
	return s
}

func clone(a *models.Assessment) *models.Assessment {
	c := *a
	if a.UserID != nil {
		id := *a.UserID
		c.UserID = &id
	}
	if a.ReadinessScore != nil {
		score := *a.ReadinessScore
		c.ReadinessScore = &score
	}
	c.Documents = append([]string(nil), a.Documents...)
	c.Strengths = append([]string(nil), a.Strengths...)
	c.Weaknesses = append([]string(nil), a.Weaknesses...)
	c.Recommendations = append([]models.Recommendation(nil), a.Recommendations...)
	if a.GapAnalysis != nil {
		c.GapAnalysis = make(map[string]string, len(a.GapAnalysis))
		for k, v := range a.GapAnalysis {
			c.GapAnalysis[k] = v
		}
	}
	return &c
}

func (s *Assessments) Create(_ context.Context, a *models.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.Now().UTC()
	}
	s.rows = append(s.rows, clone(a))
	return nil
}

func (s *Assessments) GetByID(_ context.Context, id string) (*models.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, a := range s.rows {
		if a.ID == id {
			return clone(a), nil
		}
	}
	return nil, errors.NewAssessmentNotFoundError(id)
}

func (s *Assessments) Latest(ctx context.Context, userID string) (*models.Assessment, error) {
	list, err := s.ListByUser(ctx, userID, 1)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (s *Assessments) ListByUser(_ context.Context, userID string, limit int) ([]*models.Assessment, error) {
	return s.filter(limit, func(a *models.Assessment) bool { return a.OwnedBy(userID) })
}

func (s *Assessments) ListBySession(_ context.Context, sessionKey string) ([]*models.Assessment, error) {
	return s.filter(0, func(a *models.Assessment) bool { return a.SessionKey == sessionKey })
}

func (s *Assessments) Claim(_ context.Context, sessionKey, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	var newest *models.Assessment
	for _, a := range s.rows {
		if a.SessionKey != sessionKey {
			continue
		}
		if newest == nil || a.CreatedAt.After(newest.CreatedAt) {
			newest = a
		}
	}
	if newest == nil || newest.UserID != nil {
		return "", nil
	}
	owner := userID
	newest.UserID = &owner
	return newest.ID, nil
}

func (s *Assessments) SaveGapAnalysis(_ context.Context, id string, gaps map[string]string, recs []models.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, a := range s.rows {
		if a.ID == id {
			a.GapAnalysis = gaps
			a.Recommendations = append([]models.Recommendation(nil), recs...)
			return nil
		}
	}
	return errors.NewAssessmentNotFoundError(id)
}

func (s *Assessments) filter(limit int, keep func(*models.Assessment) bool) ([]*models.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []*models.Assessment{}
	for _, a := range s.rows {
		if keep(a) {
			out = append(out, clone(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Artifacts mirrors repository.ArtifactStore.
type Artifacts struct {
	mu    sync.Mutex
	items []models.Artifact
	Now   Clock
	Err   error
}

func NewArtifacts(items ...models.Artifact) *Artifacts {
	return &Artifacts{items: items, Now: time.Now}
}

func qualifies(a models.Artifact) bool {
	if models.IsDocumentType(a.Type) {
		return true
	}
	return a.FileRef != ""
}

func (s *Artifacts) HasArtifact(_ context.Context, userID, assessmentID, kind string) (bool, error) {
	if !models.IsArtifactType(kind) {
		return false, errors.NewUnknownArtifactTypeError(kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, a := range s.items {
		if a.UserID == userID && a.AssessmentID == assessmentID && a.Type == kind && qualifies(a) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Artifacts) Present(ctx context.Context, userID, assessmentID string, kinds ...string) (map[string]bool, error) {
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

func (s *Artifacts) First(_ context.Context, userID, assessmentID, kind string) (*models.Artifact, error) {
	if !models.IsArtifactType(kind) {
		return nil, errors.NewUnknownArtifactTypeError(kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var first *models.Artifact
	for i := range s.items {
		a := s.items[i]
		if a.UserID != userID || a.AssessmentID != assessmentID || a.Type != kind {
			continue
		}
		if first == nil || a.CreatedAt.Before(first.CreatedAt) {
			first = &a
		}
	}
	return first, nil
}

func (s *Artifacts) FirstOfEach(ctx context.Context, userID, assessmentID string, kinds ...string) (map[string]*models.Artifact, error) {
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

func (s *Artifacts) Create(_ context.Context, a *models.Artifact) error {
	switch {
	case !models.IsArtifactType(a.Type):
		return errors.NewUnknownArtifactTypeError(a.Type)
	case a.Type == models.ArtifactReferenceLetter:
		if strings.TrimSpace(a.TextContent) == "" && a.FileRef == "" {
			return errors.NewInvalidInputError("reference letter needs text content or a file")
		}
	case a.FileRef == "":
		return errors.NewFileRequiredError(a.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.Now().UTC()
	}
	if a.Type == models.ArtifactCoverLetter {
		for i, existing := range s.items {
			if existing.Type == a.Type && existing.UserID == a.UserID && existing.AssessmentID == a.AssessmentID {
				a.ID = existing.ID
				s.items[i] = *a
				return nil
			}
		}
	}
	s.items = append(s.items, *a)
	return nil
}

func (s *Artifacts) Delete(_ context.Context, userID, kind, id string) (string, error) {
	if !models.IsArtifactType(kind) {
		return "", errors.NewUnknownArtifactTypeError(kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	for i, a := range s.items {
		if a.ID == id && a.UserID == userID && a.Type == kind {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return a.FileRef, nil
		}
	}
	return "", errors.NewArtifactNotFoundError(kind, id)
}

// Tasks mirrors repository.TaskStore.
type Tasks struct {
	mu    sync.Mutex
	items []models.CompletedTask
	Now   Clock
	Err   error
}

func NewTasks(items ...models.CompletedTask) *Tasks {
	return &Tasks{items: items, Now: time.Now}
}

func (s *Tasks) Complete(_ context.Context, userID, assessmentID, taskKey string, points int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, t := range s.items {
		if t.AssessmentID == assessmentID && t.TaskKey == taskKey {
			return false, nil
		}
	}
	s.items = append(s.items, models.CompletedTask{
		ID:            uuid.New().String(),
		UserID:        userID,
		AssessmentID:  assessmentID,
		TaskKey:       taskKey,
		PointsAwarded: points,
		CompletedAt:   s.Now().UTC(),
	})
	return true, nil
}

func (s *Tasks) CompletedKeys(ctx context.Context, userID, assessmentID string) (map[string]bool, error) {
	list, err := s.List(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]bool, len(list))
	for _, t := range list {
		keys[t.TaskKey] = true
	}
	return keys, nil
}

func (s *Tasks) List(_ context.Context, userID, assessmentID string) ([]models.CompletedTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.CompletedTask{}
	for _, t := range s.items {
		if t.UserID == userID && t.AssessmentID == assessmentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Tasks) SumPoints(_ context.Context, userID, assessmentID string) (int, error) {
	return s.sum(func(t models.CompletedTask) bool { return t.UserID == userID && t.AssessmentID == assessmentID })
}

func (s *Tasks) SumPointsForUser(_ context.Context, userID string) (int, error) {
	return s.sum(func(t models.CompletedTask) bool { return t.UserID == userID })
}

func (s *Tasks) Improvement(ctx context.Context, scope, userID, assessmentID string) (int, error) {
	if scope == "user" {
		return s.SumPointsForUser(ctx, userID)
	}
	return s.SumPoints(ctx, userID, assessmentID)
}

func (s *Tasks) sum(keep func(models.CompletedTask) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	total := 0
	for _, t := range s.items {
		if keep(t) {
			total += t.PointsAwarded
		}
	}
	return total, nil
}

// Profiles mirrors repository.ProfileStore.
type Profiles struct {
	Users map[string]*models.UserProfile
	Err   error
}

func NewProfiles(users ...*models.UserProfile) *Profiles {
	p := &Profiles{Users: make(map[string]*models.UserProfile, len(users))}
	for _, u := range users {
		p.Users[u.UserID] = u
	}
	return p
}

func (p *Profiles) IsPremium(_ context.Context, userID string) (bool, error) {
	if p.Err != nil {
		return false, p.Err
	}
	u, ok := p.Users[userID]
	return ok && u.IsPremium, nil
}

func (p *Profiles) Contact(_ context.Context, userID string) (*models.UserProfile, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	u, ok := p.Users[userID]
	if !ok {
		return nil, errors.NewInvalidInputError("unknown user: " + userID)
	}
	c := *u
	return &c, nil
}

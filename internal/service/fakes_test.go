package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/infrastructure"
)

var (
	testTracer = tracenoop.NewTracerProvider().Tracer("test")
	testLogger = zap.NewNop()
)

func testMetrics(t *testing.T) *infrastructure.TelemetryMetrics {
	t.Helper()
	m, err := infrastructure.NewMetrics(metricnoop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	return m
}

// memStore backs the user and link fakes so the linked platform counter
// moves together with the links, as it does in the database.
type memStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
	links map[uuid.UUID]map[domain.Platform]domain.LinkedPlatform
	logs  []domain.SyncLogEntry

	// failUpdate is returned by UpdateLink when set
	failUpdate error
	// racer is inserted by the next CreateLink, which then reports a duplicate
	racer *domain.LinkedPlatform
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[string]*domain.User),
		links: make(map[uuid.UUID]map[domain.Platform]domain.LinkedPlatform),
	}
}

func (m *memStore) user(externalID string) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *m.users[externalID]
	return &u
}

func (m *memStore) logEntries() []domain.SyncLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SyncLogEntry(nil), m.logs...)
}

func (m *memStore) link(userID uuid.UUID, p domain.Platform) (domain.LinkedPlatform, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[userID][p]
	return l, ok
}

// seedLink stores a link directly and bumps the counter
func (m *memStore) seedLink(t *testing.T, externalID string, p domain.Platform, username string, stats *domain.PlatformStats) domain.LinkedPlatform {
	t.Helper()
	u, err := memUsers{m}.FindOrCreateByExternalID(context.Background(), domain.Identity{ExternalID: externalID})
	if err != nil {
		t.Fatal(err)
	}
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := domain.LinkedPlatform{ID: uuid.New(), UserID: u.ID, Platform: p, Username: username, LastSync: &last, IsActive: true}
	if stats != nil {
		if err := l.SetStats(stats); err != nil {
			t.Fatal(err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links[u.ID] == nil {
		m.links[u.ID] = make(map[domain.Platform]domain.LinkedPlatform)
	}
	m.links[u.ID][p] = l
	m.users[externalID].LinkedPlatformCount++
	return l
}

func (m *memStore) userByID(id uuid.UUID) *domain.User {
	for _, u := range m.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

type memUsers struct{ *memStore }

func (m memUsers) FindOrCreateByExternalID(_ context.Context, identity domain.Identity) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[identity.ExternalID]
	if !ok {
		u = &domain.User{ID: uuid.New(), ExternalID: identity.ExternalID, Email: identity.Email, Plan: domain.PlanFree}
		m.users[identity.ExternalID] = u
	}
	c := *u
	return &c, nil
}

func (m memUsers) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.userByID(id); u != nil {
		c := *u
		return &c, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m memUsers) UpdatePlan(_ context.Context, id uuid.UUID, plan domain.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.userByID(id)
	if u == nil {
		return domain.ErrUserNotFound
	}
	u.Plan = plan
	return nil
}

type memLinks struct{ *memStore }

func (m memLinks) Find(_ context.Context, userID uuid.UUID, p domain.Platform) (*domain.LinkedPlatform, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[userID][p]
	if !ok {
		return nil, domain.ErrNotLinked
	}
	return &l, nil
}

func (m memLinks) FindByUser(_ context.Context, userID uuid.UUID) ([]domain.LinkedPlatform, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LinkedPlatform
	for _, p := range domain.Platforms {
		if l, ok := m.links[userID][p]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m memLinks) CreateLink(_ context.Context, link *domain.LinkedPlatform, entry *domain.SyncLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links[link.UserID] == nil {
		m.links[link.UserID] = make(map[domain.Platform]domain.LinkedPlatform)
	}
	if m.racer != nil {
		m.links[link.UserID][m.racer.Platform] = *m.racer
		m.userByID(link.UserID).LinkedPlatformCount++
		m.racer = nil
	}
	if _, exists := m.links[link.UserID][link.Platform]; exists {
		return domain.ErrAlreadyLinked
	}
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	m.links[link.UserID][link.Platform] = *link
	m.userByID(link.UserID).LinkedPlatformCount++
	m.logs = append(m.logs, *entry)
	return nil
}

func (m memLinks) UpdateLink(_ context.Context, link *domain.LinkedPlatform, entry *domain.SyncLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return m.failUpdate
	}
	if _, ok := m.links[link.UserID][link.Platform]; !ok {
		return domain.ErrNotLinked
	}
	m.links[link.UserID][link.Platform] = *link
	m.logs = append(m.logs, *entry)
	return nil
}

func (m memLinks) Unlink(_ context.Context, link *domain.LinkedPlatform, entry *domain.SyncLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.UserID][link.Platform]; !ok {
		return domain.ErrNotLinked
	}
	delete(m.links[link.UserID], link.Platform)
	if u := m.userByID(link.UserID); u != nil && u.LinkedPlatformCount > 0 {
		u.LinkedPlatformCount--
	}
	m.logs = append(m.logs, *entry)
	return nil
}

func (m memLinks) AppendLog(_ context.Context, entry *domain.SyncLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *entry)
	return nil
}

func (m memLinks) ListLogs(_ context.Context, userID uuid.UUID, limit int) ([]domain.SyncLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SyncLogEntry
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.logs[i].UserID == userID {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

// fetcherFunc adapts a function to StatsFetcher
type fetcherFunc func(ctx context.Context, platform, username string) *domain.PlatformStats

func (f fetcherFunc) FetchUserData(ctx context.Context, platform, username string) *domain.PlatformStats {
	return f(ctx, platform, username)
}

func fixedFetcher(stats *domain.PlatformStats) fetcherFunc {
	return func(context.Context, string, string) *domain.PlatformStats {
		return stats.Clone()
	}
}

type memCourses struct {
	courses []domain.Course
}

func (m *memCourses) CreateBatch(_ context.Context, courses []domain.Course) error {
	m.courses = append(m.courses, courses...)
	return nil
}

func (m *memCourses) FindAll(context.Context) ([]domain.Course, error) {
	return m.courses, nil
}

func (m *memCourses) FindBySlug(_ context.Context, slug string) (*domain.Course, error) {
	for i := range m.courses {
		if m.courses[i].Slug == slug {
			return &m.courses[i], nil
		}
	}
	return nil, domain.ErrCourseNotFound
}

func (m *memCourses) FindQuestionByID(_ context.Context, id uuid.UUID) (*domain.Question, error) {
	for _, c := range m.courses {
		for i := range c.Questions {
			if c.Questions[i].ID == id {
				return &c.Questions[i], nil
			}
		}
	}
	return nil, domain.ErrQuestionNotFound
}

func (m *memCourses) Count(context.Context) (int64, error) {
	return int64(len(m.courses)), nil
}

type memProgress struct {
	rows    map[[2]uuid.UUID]domain.QuestionProgress
	courses *memCourses
}

func newMemProgress(courses *memCourses) *memProgress {
	return &memProgress{rows: make(map[[2]uuid.UUID]domain.QuestionProgress), courses: courses}
}

func (m *memProgress) FindByUser(_ context.Context, userID uuid.UUID) ([]domain.QuestionProgress, error) {
	var out []domain.QuestionProgress
	for k, row := range m.rows {
		if k[0] == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memProgress) Find(_ context.Context, userID, questionID uuid.UUID) (*domain.QuestionProgress, error) {
	row, ok := m.rows[[2]uuid.UUID{userID, questionID}]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *memProgress) Upsert(_ context.Context, p *domain.QuestionProgress) error {
	m.rows[[2]uuid.UUID{p.UserID, p.QuestionID}] = *p
	return nil
}

func (m *memProgress) FindBookmarked(ctx context.Context, userID uuid.UUID) ([]domain.QuestionProgress, error) {
	var out []domain.QuestionProgress
	for k, row := range m.rows {
		if k[0] != userID || !row.Bookmarked {
			continue
		}
		q, err := m.courses.FindQuestionByID(ctx, row.QuestionID)
		if err != nil {
			return nil, err
		}
		row.Question = *q
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// sampleCatalog returns one course with an easy, a medium and a hard question
func sampleCatalog() *memCourses {
	courseID := uuid.New()
	return &memCourses{courses: []domain.Course{{
		ID:    courseID,
		Slug:  "arrays",
		Title: "Arrays",
		Questions: []domain.Question{
			{ID: uuid.New(), CourseID: courseID, Title: "Two Sum", Slug: "two-sum", Difficulty: domain.DifficultyEasy, OrderIndex: 1},
			{ID: uuid.New(), CourseID: courseID, Title: "3Sum", Slug: "3sum", Difficulty: domain.DifficultyMedium, OrderIndex: 2},
			{ID: uuid.New(), CourseID: courseID, Title: "Trapping Rain Water", Slug: "trapping-rain-water", Difficulty: domain.DifficultyHard, OrderIndex: 3},
		},
	}}}
}

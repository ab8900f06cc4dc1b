package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"thumblytic-backend-go/internal/db"
	"thumblytic-backend-go/internal/gemini"
	"thumblytic-backend-go/internal/models"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

type memProfiles struct {
	mu        sync.Mutex
	rows      map[string]*models.Profile
	getErr    error
	createErr error
	refillErr error
	creates   int
	refills   int
}

func newMemProfiles(ps ...*models.Profile) *memProfiles {
	m := &memProfiles{rows: map[string]*models.Profile{}}
	for _, p := range ps {
		m.rows[p.ID] = p
	}
	return m
}

func (m *memProfiles) copyOf(id string) (*models.Profile, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *memProfiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.copyOf(id)
}

func (m *memProfiles) Create(_ context.Context, p *models.Profile) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.rows[p.ID]; !ok {
		c := *p
		c.CreatedAt = time.Now()
		m.rows[p.ID] = &c
	}
	return m.copyOf(p.ID)
}

func (m *memProfiles) RefillDaily(_ context.Context, id string, credits int, today models.Date) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refills++
	if m.refillErr != nil {
		return nil, m.refillErr
	}
	p, ok := m.rows[id]
	if !ok || p.Plan != models.PlanFree || p.LastCreditReset.Equal(today) {
		return nil, db.ErrNoRowsAffected
	}
	p.Credits = credits
	p.LastCreditReset = today
	return m.copyOf(id)
}

func (m *memProfiles) ListAll(_ context.Context) ([]*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]*models.Profile, 0, len(m.rows))
	for id := range m.rows {
		p, _ := m.copyOf(id)
		out = append(out, p)
	}
	return out, nil
}

func (m *memProfiles) SetSuspended(_ context.Context, id string, suspended bool) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	p.IsSuspended = suspended
	return m.copyOf(id)
}

func (m *memProfiles) ToggleSuspended(_ context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	p.IsSuspended = !p.IsSuspended
	return m.copyOf(id)
}

func (m *memProfiles) UpdatePlan(_ context.Context, id string, plan models.Plan, credits int) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	p.Plan = plan
	p.Credits = credits
	return m.copyOf(id)
}

func (m *memProfiles) ResetAllToFree(_ context.Context, credits int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.rows {
		if p.Plan != models.PlanFree {
			p.Plan = models.PlanFree
			p.Credits = credits
			n++
		}
	}
	return n, nil
}

type memGenerations struct {
	profiles *memProfiles
	rows     []*models.Generation
	err      error
}

func (m *memGenerations) CreateAndSpend(_ context.Context, gen *models.Generation, spend bool) (*models.Generation, error) {
	if m.err != nil {
		return nil, m.err
	}
	c := *gen
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	m.rows = append(m.rows, &c)
	if spend && m.profiles != nil {
		m.profiles.mu.Lock()
		if p, ok := m.profiles.rows[gen.UserID]; ok && p.Plan == models.PlanFree && p.Credits > 0 {
			p.Credits--
		}
		m.profiles.mu.Unlock()
	}
	return &c, nil
}

func (m *memGenerations) ListByUser(_ context.Context, userID string, limit int) ([]*models.Generation, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Generation
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memGenerations) Count(_ context.Context) (int64, error) {
	return int64(len(m.rows)), m.err
}

type memAppeals struct {
	rows   map[string]*models.Appeal
	grants map[string]db.AppealDecision
}

func newMemAppeals() *memAppeals {
	return &memAppeals{rows: map[string]*models.Appeal{}, grants: map[string]db.AppealDecision{}}
}

func (m *memAppeals) Create(_ context.Context, a *models.Appeal) (*models.Appeal, error) {
	c := *a
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	m.rows[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memAppeals) GetByID(_ context.Context, id string) (*models.Appeal, error) {
	a, ok := m.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (m *memAppeals) ListAll(_ context.Context) ([]*models.Appeal, error) {
	out := make([]*models.Appeal, 0, len(m.rows))
	for _, a := range m.rows {
		c := *a
		out = append(out, &c)
	}
	return out, nil
}

func (m *memAppeals) ListByUser(ctx context.Context, userID string) ([]*models.Appeal, error) {
	all, _ := m.ListAll(ctx)
	var out []*models.Appeal
	for _, a := range all {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAppeals) Decide(_ context.Context, id string, d db.AppealDecision) (*models.Appeal, error) {
	a, ok := m.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if a.Status != models.AppealPending {
		c := *a
		return &c, db.ErrAlreadyDecided
	}
	a.Status = d.Status
	if d.GrantPlan != "" {
		m.grants[id] = d
	}
	c := *a
	return &c, nil
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) CreateAuditLog(_ context.Context, e models.AuditLog) error {
	f.actions = append(f.actions, e.Action)
	return nil
}

func (f *fakeAudit) Record(_ context.Context, _, action, _, _ string, _ map[string]interface{}) {
	f.actions = append(f.actions, action)
}

func (f *fakeAudit) ListRecent(_ context.Context, _ int) ([]*models.AuditLog, error) {
	out := make([]*models.AuditLog, 0, len(f.actions))
	for _, a := range f.actions {
		out = append(out, &models.AuditLog{Action: a})
	}
	return out, nil
}

type fakePublisher struct {
	events []models.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, e models.Event) error {
	f.events = append(f.events, e)
	return f.err
}

type fakeProvider struct {
	img         gemini.Image
	err         error
	suggestion  *models.Suggestion
	audit       *models.AuditResult
	renders     int
	edits       int
	suggests    int
	audits      int
	gotSources  int
	gotInstruct string
}

func (f *fakeProvider) GenerateThumbnail(_ context.Context, _ models.ThumbnailConfig) (gemini.Image, error) {
	f.renders++
	return f.img, f.err
}

func (f *fakeProvider) EditImage(_ context.Context, sources []gemini.Image, instructions string) (gemini.Image, error) {
	f.edits++
	f.gotSources = len(sources)
	f.gotInstruct = instructions
	return f.img, f.err
}

func (f *fakeProvider) Suggest(_ context.Context, _ string) (*models.Suggestion, error) {
	f.suggests++
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestion, nil
}

func (f *fakeProvider) Audit(_ context.Context, _ models.ThumbnailConfig) (*models.AuditResult, error) {
	f.audits++
	if f.err != nil {
		return nil, f.err
	}
	return f.audit, nil
}

type failingStore struct{}

func (failingStore) Store(context.Context, string, gemini.Image) (string, error) {
	return "", errors.New("bucket unavailable")
}

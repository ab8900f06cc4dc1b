package core

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/models"
)

type adminFixture struct {
	profiles *memProfiles
	appeals  *memAppeals
	audit    *fakeAudit
	svc      AdminService
}

func newAdminFixture(migrate Migrator) *adminFixture {
	f := &adminFixture{
		profiles: newMemProfiles(
			&models.Profile{ID: "u1", Plan: models.PlanFree, Credits: 3},
			&models.Profile{ID: "u2", Plan: models.PlanPro, Credits: 10},
			&models.Profile{ID: "u3", Plan: models.PlanElite, Credits: 99999},
		),
		appeals: newMemAppeals(),
		audit:   &fakeAudit{},
	}
	f.svc = NewAdminService(AdminDeps{
		Profiles:    f.profiles,
		Generations: &memGenerations{rows: []*models.Generation{{ID: "g1"}, {ID: "g2"}}},
		Appeals:     f.appeals,
		Audit:       f.audit,
		Encryption:  NewEncryptionService(),
		Migrate:     migrate,
	}, zap.NewNop())
	return f
}

func TestOverviewCounts(t *testing.T) {
	f := newAdminFixture(nil)
	ctx := context.Background()
	f.appeals.Create(ctx, &models.Appeal{UserID: "u1", Status: models.AppealPending, Message: "a"})
	f.appeals.Create(ctx, &models.Appeal{UserID: "u1", Status: models.AppealRejected, Message: "b"})

	o, err := f.svc.Overview(ctx)
	require.NoError(t, err)
	assert.Len(t, o.Profiles, 3)
	assert.Len(t, o.Appeals, 2)
	assert.EqualValues(t, 2, o.GenerationCount)
	assert.Equal(t, 1, o.PendingAppeals)
	assert.Equal(t, 2, o.PaidProfiles)
}

func TestOverviewSchemaMissing(t *testing.T) {
	f := newAdminFixture(nil)
	f.profiles.getErr = &pq.Error{Code: "42P01"}

	_, err := f.svc.Overview(context.Background())
	assert.True(t, errors.Is(err, ErrSchemaMissing))
}

func TestSuspensionControls(t *testing.T) {
	f := newAdminFixture(nil)
	ctx := context.Background()

	p, err := f.svc.SetSuspended(ctx, admin, "u1", true)
	require.NoError(t, err)
	assert.True(t, p.IsSuspended)

	p, err = f.svc.ToggleSuspension(ctx, admin, "u1")
	require.NoError(t, err)
	assert.False(t, p.IsSuspended)

	_, err = f.svc.ToggleSuspension(ctx, admin, "ghost")
	assert.True(t, errors.Is(err, ErrProfileNotFound))
	assert.Equal(t, []string{models.AuditUserSuspend, models.AuditUserSuspend}, f.audit.actions)
}

func TestOverridePlanSetsCredits(t *testing.T) {
	f := newAdminFixture(nil)
	ctx := context.Background()

	p, err := f.svc.OverridePlan(ctx, admin, "u1", models.PlanElite)
	require.NoError(t, err)
	assert.Equal(t, models.EliteCredits, p.Credits)

	p, err = f.svc.OverridePlan(ctx, admin, "u1", models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, models.FreeDailyCredits, p.Credits)

	_, err = f.svc.OverridePlan(ctx, admin, "u1", "gold")
	assert.True(t, errors.Is(err, ErrInvalidPlan))
}

func TestResetAllPlansRequiresPhrase(t *testing.T) {
	f := newAdminFixture(nil)
	ctx := context.Background()

	_, err := f.svc.ResetAllPlans(ctx, admin, "reset all plans")
	assert.True(t, errors.Is(err, ErrConfirmationRequired))
	p, _ := f.profiles.GetByID(ctx, "u2")
	assert.Equal(t, models.PlanPro, p.Plan)

	n, err := f.svc.ResetAllPlans(ctx, admin, ResetConfirmationPhrase)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	p, _ = f.profiles.GetByID(ctx, "u3")
	assert.Equal(t, models.PlanFree, p.Plan)
	assert.Equal(t, 3, p.Credits)
	assert.Contains(t, f.audit.actions, models.AuditPlansReset)
}

func TestApplySchema(t *testing.T) {
	f := newAdminFixture(nil)
	_, err := f.svc.ApplySchema(context.Background(), admin)
	assert.True(t, errors.Is(err, ErrMigrationUnavailable))

	f = newAdminFixture(func(context.Context) (uint, bool, error) { return 1, true, nil })
	res, err := f.svc.ApplySchema(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, uint(1), res.Version)
	assert.True(t, res.Applied)

	f = newAdminFixture(func(context.Context) (uint, bool, error) { return 0, false, errors.New("dirty") })
	_, err = f.svc.ApplySchema(context.Background(), admin)
	assert.Error(t, err)
}

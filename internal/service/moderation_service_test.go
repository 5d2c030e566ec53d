package service

import (
	"context"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationService_CreateReport(t *testing.T) {
	t.Parallel()

	viewer := Viewer{ID: 1, Authenticated: true}

	t.Run("unknown content type", func(t *testing.T) {
		t.Parallel()
		svc := NewModerationService(noopReportRepo(), testRenderer())
		_, err := svc.CreateReport(context.Background(), CreateReportInput{
			Viewer: viewer, ContentType: "circle", ObjectID: 1,
		})
		assertValidationError(t, err)
	})

	t.Run("missing object id", func(t *testing.T) {
		t.Parallel()
		svc := NewModerationService(noopReportRepo(), testRenderer())
		_, err := svc.CreateReport(context.Background(), CreateReportInput{
			Viewer: viewer, ContentType: models.ReportTargetPost,
		})
		assertValidationError(t, err)
	})

	t.Run("missing target is not found", func(t *testing.T) {
		t.Parallel()
		rr := noopReportRepo()
		rr.targetExistsFn = func(_ context.Context, _ models.ReportTargetType, _ uint) (bool, error) {
			return false, nil
		}
		svc := NewModerationService(rr, testRenderer())
		_, err := svc.CreateReport(context.Background(), CreateReportInput{
			Viewer: viewer, ContentType: models.ReportTargetPost, ObjectID: 42,
		})
		assertNotFoundError(t, err)
	})

	t.Run("blank reason gets placeholder", func(t *testing.T) {
		t.Parallel()
		rr := noopReportRepo()
		var created *models.Report
		rr.createFn = func(_ context.Context, r *models.Report) error {
			r.ID = 8
			created = r
			return nil
		}
		svc := NewModerationService(rr, testRenderer())
		report, err := svc.CreateReport(context.Background(), CreateReportInput{
			Viewer: viewer, ContentType: models.ReportTargetComment, ObjectID: 42, Reason: "   ",
		})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultReportReason, created.Reason)
		assert.Equal(t, models.ReportStatusPending, report.Status)
		assert.Equal(t, uint(1), report.ReporterID)
	})
}

func TestModerationService_ListReports_FilterValidation(t *testing.T) {
	t.Parallel()

	svc := NewModerationService(noopReportRepo(), testRenderer())

	_, err := svc.ListReports(context.Background(), ListReportsInput{Status: "weird"})
	assertValidationError(t, err)

	_, err = svc.ListReports(context.Background(), ListReportsInput{ContentType: "circle"})
	assertValidationError(t, err)
}

func TestModerationService_ListReports_PassesFilter(t *testing.T) {
	t.Parallel()

	rr := noopReportRepo()
	var gotFilter repository.ReportFilter
	rr.listFn = func(_ context.Context, filter repository.ReportFilter, _, _ int) ([]*models.Report, error) {
		gotFilter = filter
		return []*models.Report{
			{ID: 1, TargetType: models.ReportTargetPost, TargetID: 5, Status: models.ReportStatusPending,
				Reporter: &models.User{ID: 2, Username: "watcher"}},
		}, nil
	}
	svc := NewModerationService(rr, testRenderer())

	rows, err := svc.ListReports(context.Background(), ListReportsInput{
		Status: models.ReportStatusPending, ContentType: models.ReportTargetPost, Limit: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, gotFilter.Status)
	assert.Equal(t, models.ReportTargetPost, gotFilter.TargetType)
	require.Len(t, rows, 1)
	assert.Equal(t, "watcher", rows[0].ReporterUsername)
}

func TestModerationService_ApplyAction(t *testing.T) {
	t.Parallel()

	staff := Viewer{ID: 3, Authenticated: true, IsStaff: true}

	t.Run("unknown action", func(t *testing.T) {
		t.Parallel()
		svc := NewModerationService(noopReportRepo(), testRenderer())
		_, err := svc.ApplyAction(context.Background(), staff, 1, "escalate")
		assertValidationError(t, err)
	})

	t.Run("resolve stamps moderator and time", func(t *testing.T) {
		t.Parallel()
		rr := noopReportRepo()
		rr.getByIDFn = func(_ context.Context, id uint) (*models.Report, error) {
			return &models.Report{ID: id, Status: models.ReportStatusPending}, nil
		}
		var updated *models.Report
		rr.updateFn = func(_ context.Context, r *models.Report) error {
			updated = r
			return nil
		}
		svc := NewModerationService(rr, testRenderer())

		report, err := svc.ApplyAction(context.Background(), staff, 1, "resolve")
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusResolved, report.Status)
		require.NotNil(t, updated)
		require.NotNil(t, updated.ResolvedByUserID)
		assert.Equal(t, uint(3), *updated.ResolvedByUserID)
		assert.NotNil(t, updated.ResolvedAt)
	})

	t.Run("re-applying the same action is a no-op", func(t *testing.T) {
		t.Parallel()
		rr := noopReportRepo()
		rr.getByIDFn = func(_ context.Context, id uint) (*models.Report, error) {
			return &models.Report{ID: id, Status: models.ReportStatusDismissed}, nil
		}
		updateCalled := false
		rr.updateFn = func(_ context.Context, _ *models.Report) error {
			updateCalled = true
			return nil
		}
		svc := NewModerationService(rr, testRenderer())

		report, err := svc.ApplyAction(context.Background(), staff, 1, "dismiss")
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusDismissed, report.Status)
		assert.False(t, updateCalled)
	})

	t.Run("dismiss overwrites resolved", func(t *testing.T) {
		t.Parallel()
		rr := noopReportRepo()
		rr.getByIDFn = func(_ context.Context, id uint) (*models.Report, error) {
			return &models.Report{ID: id, Status: models.ReportStatusResolved}, nil
		}
		svc := NewModerationService(rr, testRenderer())

		report, err := svc.ApplyAction(context.Background(), staff, 1, "dismiss")
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusDismissed, report.Status)
	})
}

package repository

import (
	"context"
	"regexp"
	"testing"

	"agora/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircleRepository_CreateMembership_Duplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCircleRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "circle_memberships"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_circle_user"})
	mock.ExpectRollback()

	err := repo.CreateMembership(ctx, &models.CircleMembership{
		CircleID: 1,
		UserID:   2,
		Role:     models.CircleRoleMember,
	})
	require.Error(t, err)

	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "DUPLICATE", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCircleRepository_MemberCircleIDs_ExcludesPending(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCircleRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "circle_id" FROM "circle_memberships" WHERE user_id = $1 AND role <> $2`)).
		WithArgs(7, string(models.CircleRolePending)).
		WillReturnRows(sqlmock.NewRows([]string{"circle_id"}).AddRow(3).AddRow(5))

	ids, err := repo.MemberCircleIDs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 5}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil))
	assert.True(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueConstraintError(errSQLite))
}

var errSQLite = sqliteUniqueErr{}

type sqliteUniqueErr struct{}

func (sqliteUniqueErr) Error() string { return "UNIQUE constraint failed: circle_memberships.user_id" }

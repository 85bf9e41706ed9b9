package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestMarkSoldIsConditionalOnUnsold(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPeerOfferRepository(db)
	stmt := `UPDATE "peer_offers" SET .* WHERE id = \$\d+ AND buyer_id IS NULL`

	mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.MarkSold(context.Background(), 7, 3, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.MarkSold(context.Background(), 7, 4, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustRefusesNegativeBalance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresAccountRepository(db)
	stmt := `UPDATE "accounts" SET "balance"=balance \+ \$1.* WHERE user_id = \$\d+ AND balance \+ \$\d+ >= 0`

	mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Adjust(context.Background(), 1, -100))

	mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Adjust(context.Background(), 1, -100), ErrBalanceNotAdjusted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferOwnershipChecksCurrentOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresItemRepository(db)

	mock.ExpectExec(`UPDATE "item_instances" SET .* WHERE id = \$\d+ AND owner_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	moved, err := repo.TransferOwnership(context.Background(), 10, 1, 2)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRespondOnlyMovesPendingRequests(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRelationshipRepository(db)

	mock.ExpectExec(`UPDATE "relationship_requests" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WithArgs(sqlmock.AnyArg(), "accepted", 5, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Respond(context.Background(), 5, models.RelationshipAccepted, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupsReturnNilWhenMissing(t *testing.T) {
	db, mock := newMockDB(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "peer_offers"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	offer, err := NewPostgresPeerOfferRepository(db).GetOfferByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, offer)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	user, err := NewPostgresUserRepository(db).GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFriendsProjectsCounterpart(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRelationshipRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM relationship_requests AS r JOIN users AS u ON u.id = CASE WHEN r.requester_id = \$1 THEN r.receiver_id ELSE r.requester_id END`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT r.id AS request_id, u.id AS user_id.* ORDER BY u.username ASC, r.id ASC LIMIT \$\d+`).
		WillReturnRows(sqlmock.NewRows([]string{"request_id", "user_id", "username", "avatar_url", "status", "created_at", "responded_at"}).
			AddRow(3, 2, "bob", "", "accepted", now, now))

	views, total, err := repo.ListFriends(context.Background(), 1, query.Params{Sort: "username", Order: "asc"}.Normalize())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, uint(2), views[0].UserID)
	assert.Equal(t, "bob", views[0].Username)
	assert.Equal(t, models.RelationshipAccepted, views[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/gamehub/backend/internal/apperrors"
	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/query"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database. A single connection makes
// concurrent transactions queue up the way row locks would serialize them.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repositories.Migrate(db))
	return db
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

func createUser(t *testing.T, db *gorm.DB, username string, balance int64) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Account{UserID: user.ID, Balance: balance}).Error)
	return user
}

func createItem(t *testing.T, db *gorm.DB, name, kind string) *models.Item {
	t.Helper()
	item := &models.Item{Name: name, Type: kind}
	require.NoError(t, db.Create(item).Error)
	return item
}

func giveInstance(t *testing.T, db *gorm.DB, owner *models.User, item *models.Item) *models.ItemInstance {
	t.Helper()
	instance := &models.ItemInstance{ItemID: item.ID, OwnerID: owner.ID, AcquiredAt: time.Now()}
	require.NoError(t, db.Omit("Item").Create(instance).Error)
	return instance
}

func balanceOf(t *testing.T, db *gorm.DB, user *models.User) int64 {
	t.Helper()
	var account models.Account
	require.NoError(t, db.First(&account, "user_id = ?", user.ID).Error)
	return account.Balance
}

func ownerOf(t *testing.T, db *gorm.DB, instance *models.ItemInstance) uint {
	t.Helper()
	var fresh models.ItemInstance
	require.NoError(t, db.First(&fresh, instance.ID).Error)
	return fresh.OwnerID
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperrors.KindOf(err), "unexpected error: %v", err)
}

// recordingEvents is an in-memory exchange log.
type recordingEvents struct {
	mu     sync.Mutex
	events []models.ExchangeEvent
	err    error
}

func (r *recordingEvents) Record(_ context.Context, event *models.ExchangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *recordingEvents) ListByUser(_ context.Context, userID uint, _ query.Params) ([]models.ExchangeEvent, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ExchangeEvent
	for _, e := range r.events {
		if e.BuyerID == userID || e.SellerID == userID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *recordingEvents) kinds() []models.ExchangeEventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]models.ExchangeEventKind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/query"
	"gorm.io/gorm"
)

// RelationshipRepository defines the interface for friend request and
// friendship data operations.
type RelationshipRepository interface {
	WithTx(tx *gorm.DB) RelationshipRepository
	CreateRequest(ctx context.Context, req *models.RelationshipRequest) error
	GetRequestByID(ctx context.Context, id uint) (*models.RelationshipRequest, error)
	FindBetween(ctx context.Context, userA, userB uint, statuses ...models.RelationshipStatus) (*models.RelationshipRequest, error)
	CountSentPending(ctx context.Context, userID uint) (int64, error)
	CountFriends(ctx context.Context, userID uint) (int64, error)
	Respond(ctx context.Context, id uint, status models.RelationshipStatus, at time.Time) (bool, error)
	DeleteRequest(ctx context.Context, id uint, expected models.RelationshipStatus) (bool, error)
	ListReceived(ctx context.Context, userID uint, p query.Params) ([]models.RelationshipView, int64, error)
	ListSent(ctx context.Context, userID uint, p query.Params) ([]models.RelationshipView, int64, error)
	ListFriends(ctx context.Context, userID uint, p query.Params) ([]models.RelationshipView, int64, error)
}

// PostgresRelationshipRepository implements RelationshipRepository for PostgreSQL
type PostgresRelationshipRepository struct {
	db *gorm.DB
}

// NewPostgresRelationshipRepository creates a new PostgresRelationshipRepository
func NewPostgresRelationshipRepository(db *gorm.DB) *PostgresRelationshipRepository {
	return &PostgresRelationshipRepository{db: db}
}

func (r *PostgresRelationshipRepository) WithTx(tx *gorm.DB) RelationshipRepository {
	return &PostgresRelationshipRepository{db: tx}
}

// CreateRequest inserts a new pending request
func (r *PostgresRelationshipRepository) CreateRequest(ctx context.Context, req *models.RelationshipRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetRequestByID retrieves a request by ID
func (r *PostgresRelationshipRepository) GetRequestByID(ctx context.Context, id uint) (*models.RelationshipRequest, error) {
	var req models.RelationshipRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindBetween returns the record between the two users in either direction
// whose status is one of statuses.
func (r *PostgresRelationshipRepository) FindBetween(ctx context.Context, userA, userB uint, statuses ...models.RelationshipStatus) (*models.RelationshipRequest, error) {
	var req models.RelationshipRequest
	err := r.db.WithContext(ctx).
		Where("((requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?))", userA, userB, userB, userA).
		Where("status IN ?", statuses).
		Order("created_at ASC").
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CountSentPending counts pending requests sent by userID
func (r *PostgresRelationshipRepository) CountSentPending(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RelationshipRequest{}).
		Where("requester_id = ? AND status = ?", userID, models.RelationshipPending).
		Count(&count).Error
	return count, err
}

// CountFriends counts accepted relationships on either side
func (r *PostgresRelationshipRepository) CountFriends(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RelationshipRequest{}).
		Where("(requester_id = ? OR receiver_id = ?) AND status = ?", userID, userID, models.RelationshipAccepted).
		Count(&count).Error
	return count, err
}

// Respond moves a pending request to status. It reports false when the
// request was no longer pending.
func (r *PostgresRelationshipRepository) Respond(ctx context.Context, id uint, status models.RelationshipStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.RelationshipRequest{}).
		Where("id = ? AND status = ?", id, models.RelationshipPending).
		Updates(map[string]interface{}{"status": status, "responded_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteRequest hard-deletes a request if it is still in the expected status
func (r *PostgresRelationshipRepository) DeleteRequest(ctx context.Context, id uint, expected models.RelationshipStatus) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND status = ?", id, expected).Delete(&models.RelationshipRequest{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListReceived lists pending requests addressed to userID
func (r *PostgresRelationshipRepository) ListReceived(ctx context.Context, userID uint, p query.Params) ([]models.RelationshipView, int64, error) {
	return r.listViews(ctx, userID, p, "r.receiver_id = ? AND r.status = ?", userID, models.RelationshipPending)
}

// ListSent lists pending requests sent by userID
func (r *PostgresRelationshipRepository) ListSent(ctx context.Context, userID uint, p query.Params) ([]models.RelationshipView, int64, error) {
	return r.listViews(ctx, userID, p, "r.requester_id = ? AND r.status = ?", userID, models.RelationshipPending)
}

// ListFriends lists accepted relationships where userID is on either side
func (r *PostgresRelationshipRepository) ListFriends(ctx context.Context, userID uint, p query.Params) ([]models.RelationshipView, int64, error) {
	return r.listViews(ctx, userID, p, "(r.requester_id = ? OR r.receiver_id = ?) AND r.status = ?", userID, userID, models.RelationshipAccepted)
}

// listViews joins each row to the counterpart of userID, whichever side of
// the directed record they are on.
func (r *PostgresRelationshipRepository) listViews(ctx context.Context, userID uint, p query.Params, cond string, args ...interface{}) ([]models.RelationshipView, int64, error) {
	base := func() *gorm.DB {
		db := r.db.WithContext(ctx).Table("relationship_requests AS r").
			Joins("JOIN users AS u ON u.id = CASE WHEN r.requester_id = ? THEN r.receiver_id ELSE r.requester_id END", userID).
			Where(cond, args...)
		if p.HasSearch() {
			db = db.Where(`LOWER(u.username) LIKE ? ESCAPE '\'`, p.LikePattern())
		}
		return db
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var views []models.RelationshipView
	err := base().
		Select("r.id AS request_id, u.id AS user_id, u.username AS username, u.avatar_url AS avatar_url, r.status AS status, r.created_at AS created_at, r.responded_at AS responded_at").
		Order(p.OrderBy(relationshipSortColumns, "created_at", "r.id")).
		Scopes(p.Paginate).
		Scan(&views).Error
	return views, total, err
}

var relationshipSortColumns = query.Sortable{
	"username":     "u.username",
	"created_at":   "r.created_at",
	"responded_at": "r.responded_at",
}

package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/query"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
// Lookups return (nil, nil) when the user does not exist.
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SearchUsers(ctx context.Context, p query.Params) ([]models.User, int64, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) WithTx(tx *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: tx}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetUserByFirebaseUID retrieves a user by Firebase UID from PostgreSQL
func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	return r.first(ctx, "firebase_uid = ?", firebaseUID)
}

func (r *PostgresUserRepository) first(ctx context.Context, cond string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(cond, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an existing user in PostgreSQL
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// SearchUsers searches for users by username or email (case-insensitive)
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, p query.Params) ([]models.User, int64, error) {
	base := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&models.User{})
		if p.HasSearch() {
			pattern := p.LikePattern()
			db = db.Where(`(LOWER(username) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		return db
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := base().Order(p.OrderBy(userSortColumns, "username", "id")).Scopes(p.Paginate).Find(&users).Error
	return users, total, err
}

var userSortColumns = query.Sortable{
	"username":   "username",
	"created_at": "created_at",
}

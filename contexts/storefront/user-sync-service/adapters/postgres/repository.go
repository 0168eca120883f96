package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainerrors "quickcart/contexts/storefront/user-sync-service/domain/errors"
	"quickcart/contexts/storefront/user-sync-service/ports"
	"quickcart/internal/platform/db"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository persists users through the shared connection cache. Every
// operation acquires the memoized handle, so the first store call in the
// process pays for establishment and the rest reuse it.
type Repository struct {
	cache  *db.Cache
	logger *slog.Logger
}

func NewRepository(cache *db.Cache, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		cache:  cache,
		logger: logger,
	}
}

func (r *Repository) InsertUser(ctx context.Context, user ports.User) error {
	pg, err := r.cache.Acquire(ctx)
	if err != nil {
		return err
	}
	row, err := userModelFromEntity(user)
	if err != nil {
		return err
	}
	if err := pg.DB.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateUser(ctx context.Context, user ports.User) (int64, error) {
	pg, err := r.cache.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	result := pg.DB.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", user.UserID).
		Updates(map[string]any{
			"name":       user.Name,
			"email":      user.Email,
			"image_url":  user.ImageURL,
			"updated_at": user.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *Repository) DeleteUser(ctx context.Context, userID string) (int64, error) {
	pg, err := r.cache.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	result := pg.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&userModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *Repository) GetUser(ctx context.Context, userID string) (ports.User, error) {
	pg, err := r.cache.Acquire(ctx)
	if err != nil {
		return ports.User{}, err
	}
	var row userModel
	err = pg.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, domainerrors.ErrUserNotFound
		}
		return ports.User{}, err
	}
	return row.toEntity()
}

type userModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email;uniqueIndex"`
	ImageURL  string    `gorm:"column:image_url"`
	CartItems []byte    `gorm:"column:cart_items;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string {
	return "users"
}

func userModelFromEntity(user ports.User) (userModel, error) {
	cart := user.CartItems
	if cart == nil {
		cart = map[string]int{}
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return userModel{}, fmt.Errorf("encode cart items: %w", err)
	}
	return userModel{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		ImageURL:  user.ImageURL,
		CartItems: payload,
		CreatedAt: user.CreatedAt.UTC(),
		UpdatedAt: user.UpdatedAt.UTC(),
	}, nil
}

func (m userModel) toEntity() (ports.User, error) {
	cart := map[string]int{}
	if len(m.CartItems) > 0 {
		if err := json.Unmarshal(m.CartItems, &cart); err != nil {
			return ports.User{}, fmt.Errorf("decode cart items: %w", err)
		}
	}
	return ports.User{
		UserID:    m.UserID,
		Name:      m.Name,
		Email:     m.Email,
		ImageURL:  m.ImageURL,
		CartItems: cart,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

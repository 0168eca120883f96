package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quickcart/contexts/storefront/order-service/ports"
	"quickcart/internal/platform/db"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm/clause"
)

// Repository persists orders and addresses through the shared connection
// cache.
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

// BulkInsertOrders attempts every record in the batch: duplicate keys are
// skipped and counted so a redelivered batch can land its remainder, while
// any other store error aborts and surfaces for external retry.
func (r *Repository) BulkInsertOrders(ctx context.Context, orders []ports.Order) (ports.BulkInsertResult, error) {
	pg, err := r.cache.Acquire(ctx)
	if err != nil {
		return ports.BulkInsertResult{}, err
	}

	var result ports.BulkInsertResult
	for _, order := range orders {
		row, err := orderModelFromEntity(order)
		if err != nil {
			return result, err
		}
		if err := pg.DB.WithContext(ctx).Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				result.Duplicates++
				r.logger.Warn("skipping duplicate order",
					"event", "order_insert_duplicate",
					"module", "storefront/order-service",
					"layer", "adapter",
					"order_id", order.OrderID,
				)
				continue
			}
			return result, err
		}
		result.Inserted++
	}
	return result, nil
}

func (r *Repository) ListOrdersByUser(ctx context.Context, userID string) ([]ports.Order, error) {
	pg, err := r.cache.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var rows []orderModel
	if err := pg.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("placed_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, order)
	}
	return items, nil
}

func (r *Repository) UpsertAddress(ctx context.Context, address ports.Address) error {
	pg, err := r.cache.Acquire(ctx)
	if err != nil {
		return err
	}
	row := addressModel{
		AddressID:   address.AddressID,
		UserID:      address.UserID,
		FullName:    address.FullName,
		PhoneNumber: address.PhoneNumber,
		PinCode:     address.PinCode,
		Area:        address.Area,
		City:        address.City,
		State:       address.State,
	}
	return pg.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).
		Error
}

func (r *Repository) ListAddressesByUser(ctx context.Context, userID string) ([]ports.Address, error) {
	pg, err := r.cache.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var rows []addressModel
	if err := pg.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.Address, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.Address{
			AddressID:   row.AddressID,
			UserID:      row.UserID,
			FullName:    row.FullName,
			PhoneNumber: row.PhoneNumber,
			PinCode:     row.PinCode,
			Area:        row.Area,
			City:        row.City,
			State:       row.State,
		})
	}
	return items, nil
}

type orderModel struct {
	OrderID     string    `gorm:"column:order_id;primaryKey"`
	UserID      string    `gorm:"column:user_id;index"`
	Items       []byte    `gorm:"column:items;type:jsonb"`
	Amount      float64   `gorm:"column:amount"`
	FullName    string    `gorm:"column:full_name"`
	PhoneNumber string    `gorm:"column:phone_number"`
	PinCode     int       `gorm:"column:pin_code"`
	Area        string    `gorm:"column:area"`
	City        string    `gorm:"column:city"`
	State       string    `gorm:"column:state"`
	PlacedAt    time.Time `gorm:"column:placed_at"`
}

func (orderModel) TableName() string {
	return "orders"
}

type addressModel struct {
	AddressID   string `gorm:"column:address_id;primaryKey"`
	UserID      string `gorm:"column:user_id;uniqueIndex:idx_addresses_identity"`
	FullName    string `gorm:"column:full_name;uniqueIndex:idx_addresses_identity"`
	PhoneNumber string `gorm:"column:phone_number;uniqueIndex:idx_addresses_identity"`
	PinCode     int    `gorm:"column:pin_code;uniqueIndex:idx_addresses_identity"`
	Area        string `gorm:"column:area;uniqueIndex:idx_addresses_identity"`
	City        string `gorm:"column:city;uniqueIndex:idx_addresses_identity"`
	State       string `gorm:"column:state;uniqueIndex:idx_addresses_identity"`
}

func (addressModel) TableName() string {
	return "addresses"
}

func orderModelFromEntity(order ports.Order) (orderModel, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return orderModel{}, fmt.Errorf("encode order items: %w", err)
	}
	return orderModel{
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		Items:       items,
		Amount:      order.Amount,
		FullName:    order.Address.FullName,
		PhoneNumber: order.Address.PhoneNumber,
		PinCode:     order.Address.PinCode,
		Area:        order.Address.Area,
		City:        order.Address.City,
		State:       order.Address.State,
		PlacedAt:    order.PlacedAt.UTC(),
	}, nil
}

func (m orderModel) toEntity() (ports.Order, error) {
	var items []ports.LineItem
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &items); err != nil {
			return ports.Order{}, fmt.Errorf("decode order items: %w", err)
		}
	}
	return ports.Order{
		OrderID: m.OrderID,
		UserID:  m.UserID,
		Items:   items,
		Amount:  m.Amount,
		Address: ports.ShippingAddress{
			FullName:    m.FullName,
			PhoneNumber: m.PhoneNumber,
			PinCode:     m.PinCode,
			Area:        m.Area,
			City:        m.City,
			State:       m.State,
		},
		PlacedAt: m.PlacedAt.UTC(),
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

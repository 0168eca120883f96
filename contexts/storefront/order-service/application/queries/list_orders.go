package queries

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "quickcart/contexts/storefront/order-service/domain/errors"
	"quickcart/contexts/storefront/order-service/ports"
)

type ListUserOrdersUseCase struct {
	Orders ports.OrderRepository
	Logger *slog.Logger
}

func (uc ListUserOrdersUseCase) List(ctx context.Context, userID string) ([]ports.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	return uc.Orders.ListOrdersByUser(ctx, strings.TrimSpace(userID))
}

package queries

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "quickcart/contexts/storefront/order-service/domain/errors"
	"quickcart/contexts/storefront/order-service/ports"
)

type ListUserAddressesUseCase struct {
	Addresses ports.AddressRepository
	Logger    *slog.Logger
}

func (uc ListUserAddressesUseCase) List(ctx context.Context, userID string) ([]ports.Address, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	return uc.Addresses.ListAddressesByUser(ctx, strings.TrimSpace(userID))
}

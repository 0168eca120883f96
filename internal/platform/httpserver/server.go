package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	orderservice "quickcart/contexts/storefront/order-service"
	orderdomainerrors "quickcart/contexts/storefront/order-service/domain/errors"
	orderhttp "quickcart/contexts/storefront/order-service/transport/http"
	usersyncservice "quickcart/contexts/storefront/user-sync-service"
	userdomainerrors "quickcart/contexts/storefront/user-sync-service/domain/errors"
	userhttp "quickcart/contexts/storefront/user-sync-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "quickcart/internal/platform/httpserver/docs"
)

// Server exposes the read API over the synchronized collections. All writes
// happen through the event consumers; nothing here mutates state.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	users  usersyncservice.Module
	orders orderservice.Module
}

func New(
	users usersyncservice.Module,
	orders orderservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		users:  users,
		orders: orders,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/users/{user_id}", s.handleGetUser)
	s.mux.HandleFunc("GET /api/users/{user_id}/orders", s.handleListUserOrders)
	s.mux.HandleFunc("GET /api/users/{user_id}/addresses", s.handleListUserAddresses)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	user, err := s.users.Service.GetUser(r.Context(), userID)
	if err != nil {
		s.writeUserDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userhttp.UserResponse{
		Success: true,
		User: userhttp.UserData{
			ID:        user.UserID,
			Name:      user.Name,
			Email:     user.Email,
			ImageURL:  user.ImageURL,
			CartItems: user.CartItems,
		},
	})
}

func (s *Server) handleListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	orders, err := s.orders.ListOrders.List(r.Context(), userID)
	if err != nil {
		s.writeOrderDomainError(w, err)
		return
	}

	items := make([]orderhttp.OrderData, 0, len(orders))
	for _, order := range orders {
		lineItems := make([]orderhttp.OrderItemData, 0, len(order.Items))
		for _, item := range order.Items {
			lineItems = append(lineItems, orderhttp.OrderItemData{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
		items = append(items, orderhttp.OrderData{
			OrderID: order.OrderID,
			UserID:  order.UserID,
			Items:   lineItems,
			Amount:  order.Amount,
			Address: orderhttp.AddressData{
				FullName:    order.Address.FullName,
				PhoneNumber: order.Address.PhoneNumber,
				PinCode:     order.Address.PinCode,
				Area:        order.Address.Area,
				City:        order.Address.City,
				State:       order.Address.State,
			},
			PlacedAt: order.PlacedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, orderhttp.OrdersResponse{Success: true, Orders: items})
}

func (s *Server) handleListUserAddresses(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	addresses, err := s.orders.ListAddresses.List(r.Context(), userID)
	if err != nil {
		s.writeOrderDomainError(w, err)
		return
	}

	items := make([]orderhttp.AddressData, 0, len(addresses))
	for _, address := range addresses {
		items = append(items, orderhttp.AddressData{
			FullName:    address.FullName,
			PhoneNumber: address.PhoneNumber,
			PinCode:     address.PinCode,
			Area:        address.Area,
			City:        address.City,
			State:       address.State,
		})
	}
	writeJSON(w, http.StatusOK, orderhttp.AddressesResponse{Success: true, Addresses: items})
}

func (s *Server) writeUserDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userdomainerrors.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, userdomainerrors.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, "invalid request")
	default:
		s.logger.Error("user read failed",
			"event", "http_user_read_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeOrderDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orderdomainerrors.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid request")
	default:
		s.logger.Error("order read failed",
			"event", "http_order_read_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, userhttp.ErrorResponse{Success: false, Message: message})
}

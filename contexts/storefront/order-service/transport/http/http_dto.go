package http

type OrdersResponse struct {
	Success bool        `json:"success"`
	Orders  []OrderData `json:"orders"`
}

type OrderData struct {
	OrderID  string          `json:"order_id"`
	UserID   string          `json:"user_id"`
	Items    []OrderItemData `json:"items"`
	Amount   float64         `json:"amount"`
	Address  AddressData     `json:"address"`
	PlacedAt string          `json:"placed_at"`
}

type OrderItemData struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

type AddressesResponse struct {
	Success   bool          `json:"success"`
	Addresses []AddressData `json:"addresses"`
}

type AddressData struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	PinCode     int    `json:"pinCode"`
	Area        string `json:"area"`
	City        string `json:"city"`
	State       string `json:"state"`
}

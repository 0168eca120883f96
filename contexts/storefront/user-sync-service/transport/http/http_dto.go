package http

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UserResponse struct {
	Success bool     `json:"success"`
	User    UserData `json:"user"`
}

type UserData struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	ImageURL  string         `json:"image_url"`
	CartItems map[string]int `json:"cart_items"`
}

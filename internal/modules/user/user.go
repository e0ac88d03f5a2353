package user

// User is a customer or administrator account. PasswordHash never leaves the server.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Street       string `json:"street"`
	Apartment    string `json:"apartment"`
	City         string `json:"city"`
	Zip          string `json:"zip"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	IsAdmin      bool   `json:"isAdmin"`
}

// CreateRequest is the payload for POST /users and POST /users/register.
type CreateRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"isAdmin"`
}

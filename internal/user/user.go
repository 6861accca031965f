package user

import (
	"errors"

	userDatamodel "github.com/frahmantamala/permit-service/internal/core/datamodel/user"
)

// User is the client view of a users row. The capitalised keys match what
// existing clients already send and read.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"Name"`
	Email    string `json:"Email"`
	IDNumber string `json:"Id_number"`
	Token    string `json:"token,omitempty"`
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		IDNumber: u.IDNumber,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		IDNumber: u.IDNumber,
	}
}

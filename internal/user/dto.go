package user

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/frahmantamala/permit-service/internal"
	"github.com/frahmantamala/permit-service/internal/core/common/validation"
)

type CreateUserDTO struct {
	Name     string `json:"Name"`
	Email    string `json:"Email"`
	IDNumber string `json:"Id_number"`
}

// UnmarshalJSON accepts numbers and booleans as well as strings, keeping
// their literal text. Clients send Id_number both ways.
func (d *CreateUserDTO) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     json.RawMessage `json:"Name"`
		Email    json.RawMessage `json:"Email"`
		IDNumber json.RawMessage `json:"Id_number"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	if d.Name, err = textValue("Name", raw.Name); err != nil {
		return err
	}
	if d.Email, err = textValue("Email", raw.Email); err != nil {
		return err
	}
	d.IDNumber, err = textValue("Id_number", raw.IDNumber)
	return err
}

func textValue(field string, raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return "", err
	}

	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("%s must be a string or number", field)
	}
}

func (d *CreateUserDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.IDNumber = strings.TrimSpace(d.IDNumber)
}

func (d CreateUserDTO) Validate() *appErrors.AppError {
	v := validation.NewValidator()
	v.Field("Name", d.Name).Required()
	v.Field("Email", d.Email).Required()
	v.Field("Id_number", d.IDNumber).Required()
	return v.Validate()
}

type CreateUserResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// LookupQuery filters GET /users. Both values must be set for the filter to apply.
type LookupQuery struct {
	Email    string
	IDNumber string
}

func (q LookupQuery) IsComplete() bool {
	return q.Email != "" && q.IDNumber != ""
}

package models

import (
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// User is the canonical record rendered into the site and dumped into users.json.
type User struct {
	Name  string `json:"name" validate:"required"`
	Mail  string `json:"mail"`
	Phone string `json:"phone"`
	City  string `json:"city"`
	Image string `json:"image" validate:"omitempty,url"`
	UUID  string `json:"uuid" validate:"required,uuid"`
}

// Validate checks a record before its UUID is used as a file name: the UUID
// must be exactly a canonical UUID and the struct tags must hold.
func (u User) Validate() error {
	id, err := uuid.Parse(u.UUID)
	if err != nil {
		return fmt.Errorf("uuid %q: %w", u.UUID, err)
	}
	if id.String() != u.UUID {
		return fmt.Errorf("uuid %q is not in canonical form", u.UUID)
	}

	return validate.Struct(u)
}

// APIResponse is the body returned by the random-user API.
type APIResponse struct {
	Results []APIUser `json:"results" validate:"required"`
}

type APIUser struct {
	Name struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location struct {
		City string `json:"city"`
	} `json:"location"`
	Picture struct {
		Large string `json:"large"`
	} `json:"picture"`
	Login struct {
		UUID string `json:"uuid"`
	} `json:"login"`
}

// ToUser flattens the nested API record.
func (u APIUser) ToUser() User {
	return User{
		Name:  u.Name.First + " " + u.Name.Last,
		Mail:  u.Email,
		Phone: u.Phone,
		City:  u.Location.City,
		Image: u.Picture.Large,
		UUID:  u.Login.UUID,
	}
}

const (
	SourceTypeUnknown = iota
	SourceTypeAPI
	SourceTypeFile
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

var ErrMalformedResponse = errors.New("malformed response")

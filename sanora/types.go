package sanora

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// User is a Sanora account.
type User struct {
	UUID      string     `json:"uuid"`
	AddieUser *AddieUser `json:"addieUser,omitempty"`
	Orders    []Order    `json:"orders,omitempty"`
}

func (u *User) Validate() error {
	return validateUUID(u.UUID)
}

// AddieUser is the linked payments account, when there is one.
type AddieUser struct {
	UUID string `json:"uuid"`
}

// Product describes a product listing.
type Product struct {
	UUID        string   `json:"uuid"`
	ProductID   string   `json:"productId"`
	Author      string   `json:"author,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Artifacts   []string `json:"artifacts,omitempty"`
	Image       string   `json:"image,omitempty"`
}

func (p *Product) Validate() error {
	if p.Title == "" {
		return errors.New("product has no title")
	}
	return validateUUID(p.UUID)
}

// Products maps product titles to products.
type Products map[string]Product

// Order is a purchase of a product. Address fields are optional.
type Order struct {
	ProductID string `json:"productId"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zipCode,omitempty"`
}

// Orders is the list of orders for one product.
type Orders struct {
	Orders []Order `json:"orders"`
}

func (o *Orders) Validate() error {
	if o.Orders == nil {
		return errors.New(`missing "orders" member`)
	}
	return nil
}

func validateUUID(s string) error {
	if len(s) != 36 {
		return fmt.Errorf("uuid %q is not 36 characters", s)
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	return nil
}

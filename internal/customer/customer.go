// Package customer is the customer directory: validation rules and the Postgres store.
package customer

import (
	"regexp"
	"strings"
	"time"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
)

var (
	emailRe  = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)
	numberRe = regexp.MustCompile(`^\d{11}$`)
)

// swagger:model
type Customer struct {
	ID        int64     `json:"customer_id"`
	Name      string    `json:"customer_name"`
	Address   string    `json:"customer_address"`
	Email     string    `json:"customer_email"`
	Number    string    `json:"customer_number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate trims the fields and checks them. requireNumber is set by the order form,
// which cannot create a customer without a contact number.
func (c *Customer) Validate(requireNumber bool) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Address = strings.TrimSpace(c.Address)
	c.Email = strings.TrimSpace(c.Email)
	c.Number = strings.TrimSpace(c.Number)

	switch {
	case c.Name == "":
		return apperr.Validation("customer_name is required")
	case c.Address == "":
		return apperr.Validation("customer_address is required")
	case c.Email == "":
		return apperr.Validation("customer_email is required")
	case !emailRe.MatchString(c.Email):
		return apperr.Validation("invalid email address: %s", c.Email)
	case requireNumber && c.Number == "":
		return apperr.Validation("customer_number is required")
	case c.Number != "" && !numberRe.MatchString(c.Number):
		return apperr.Validation("customer_number must be exactly 11 digits")
	}
	return nil
}

// UpdateRequest payload of partial update. Omitted fields keep their value.
// swagger:model UpdateCustomerRequest
type UpdateRequest struct {
	Name    *string `json:"customer_name"`
	Address *string `json:"customer_address"`
	Email   *string `json:"customer_email"`
	Number  *string `json:"customer_number"`
}

func (r UpdateRequest) Apply(c *Customer) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Number != nil {
		c.Number = *r.Number
	}
}

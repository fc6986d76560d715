package products

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Input carries the writable fields of a product. A price of 0 fails the
// required rule the same way a missing price does. Quantity is a pointer so
// an absent value can be told apart from an explicit 0, which is allowed.
type Input struct {
	Article  string `json:"article" validate:"required" example:"SKU-0001"`
	Name     string `json:"name" validate:"required" example:"iPhone 16"`
	Price    int    `json:"price" validate:"required,gt=0" example:"1200"`
	Quantity *int   `json:"quantity" validate:"required,gte=0" example:"5"`
}

// Validate reports ErrInvalidData wrapped with the first failing field.
func (in Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%w: %s failed %q", ErrInvalidData, fieldErrs[0].Field(), fieldErrs[0].Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidData, err)
}

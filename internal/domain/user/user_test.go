// internal/domain/user/user_test.go
package user

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

func TestAddressShippingConversion(t *testing.T) {
	saved := Address{
		UserID:  9,
		Name:    "Asha Rao",
		Line1:   "14 MG Road",
		Line2:   "Near Metro",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
		Phone:   "9876543210",
	}

	shipping := saved.Shipping()
	assert.Equal(t, saved.Name, shipping.Name)
	assert.Equal(t, saved.Line1, shipping.Line1)
	assert.Equal(t, saved.Line2, shipping.Line2)
	assert.Equal(t, saved.City, shipping.City)
	assert.Equal(t, saved.State, shipping.State)
	assert.Equal(t, saved.Pincode, shipping.Pincode)
	assert.Equal(t, saved.Phone, shipping.Phone)
	assert.NoError(t, shipping.Validate())
}

func TestAddressShippingKeepsValidationStrict(t *testing.T) {
	saved := Address{
		Line1:   "14 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "56001", // 5 digits
	}
	err := saved.Shipping().Validate()
	assert.True(t, apperr.IsValidation(err))
}

func TestFullName(t *testing.T) {
	u := User{FirstName: "Asha", LastName: "Rao"}
	assert.Equal(t, "Asha Rao", u.FullName())

	u.LastName = ""
	assert.Equal(t, "Asha", u.FullName())
}

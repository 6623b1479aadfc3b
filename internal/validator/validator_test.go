package validator

import (
	"testing"

	"dealvalue_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emailRequest struct {
	ToEmail     string `json:"toEmail" validate:"required,email"`
	Subject     string `json:"subject" validate:"required"`
	HTMLContent string `json:"htmlContent" validate:"required"`
}

type cardRequest struct {
	Expiry string `json:"expiry" validate:"required,card-expiry"`
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&emailRequest{ToEmail: "not-an-email"})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Must be a valid email address", vErr.Errors["toEmail"])
	assert.Equal(t, "This field is required", vErr.Errors["subject"])
	assert.Equal(t, "This field is required", vErr.Errors["htmlContent"])
}

func TestValidate_UserRole(t *testing.T) {
	v := New()

	ok := &models.User{Email: "a@b.com", Role: models.UserRolePartner}
	assert.NoError(t, v.Validate(ok))

	bad := &models.User{Email: "a@b.com", Role: "model"}
	err := v.Validate(bad)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "role")
}

func TestValidate_DocumentType(t *testing.T) {
	v := New()

	u := &models.User{Email: "a@b.com", Role: models.UserRoleClient, DocumentType: "RG"}
	err := v.Validate(u)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Must be one of: CPF, CNPJ", vErr.Errors["documentType"])
}

func TestValidate_CardExpiry(t *testing.T) {
	v := New()

	cases := map[string]bool{
		"01/27": true,
		"12/30": true,
		"13/27": false,
		"00/27": false,
		"1/27":  false,
		"01-27": false,
		"ab/cd": false,
	}
	for value, valid := range cases {
		err := v.Validate(&cardRequest{Expiry: value})
		if valid {
			assert.NoError(t, err, value)
		} else {
			assert.Error(t, err, value)
		}
	}
}

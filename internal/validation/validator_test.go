package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string   `json:"name" validate:"required"`
	Status  string   `json:"status" validate:"omitempty,color"`
	Owner   string   `json:"owner" validate:"omitempty,objectid"`
	Members []string `json:"members" validate:"omitempty,objectid"`
}

func TestValidator(t *testing.T) {
	v := New(Enum{Tag: "color", Values: []string{"red", "green"}})

	assert.NoError(t, v.Validate(&sample{
		Name:    "ok",
		Status:  "red",
		Owner:   "64b7f0c2a1b2c3d4e5f60718",
		Members: []string{"64b7f0c2a1b2c3d4e5f60718"},
	}))

	err := v.Validate(&sample{Status: "blue", Owner: "nope", Members: []string{"bad"}})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	msgs := v.Messages(verrs)
	assert.Equal(t, "name is required", msgs["name"])
	assert.Equal(t, "status must be one of: red, green", msgs["status"])
	assert.Equal(t, "owner must be a valid id", msgs["owner"])
	assert.Equal(t, "members must be a valid id", msgs["members"])
}

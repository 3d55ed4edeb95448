package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

type sampleItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type sampleInput struct {
	Email string       `json:"guestEmail" validate:"required,email"`
	Items []sampleItem `json:"items" validate:"required,min=1,dive"`
}

func TestStruct(t *testing.T) {
	err := Struct(sampleInput{Email: "reader@example.com", Items: []sampleItem{{ProductID: "B1", Quantity: 1}}})
	assert.NoError(t, err)

	err = Struct(sampleInput{Email: "not-an-email", Items: []sampleItem{{ProductID: "B1", Quantity: 1}}})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "guestEmail must be a valid email address", err.Error())

	err = Struct(sampleInput{Email: "reader@example.com"})
	require.Error(t, err)
	assert.Equal(t, "items is required", err.Error())

	err = Struct(sampleInput{Email: "reader@example.com", Items: []sampleItem{{ProductID: "B1", Quantity: 0}}})
	require.Error(t, err)
	assert.Equal(t, "items[0].quantity must be greater than or equal to 1", err.Error())
}

func TestVar(t *testing.T) {
	assert.True(t, Var("reader@example.com", "email"))
	assert.False(t, Var("reader", "email"))
}

package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:         http.StatusNotFound,
		KindForbidden:        http.StatusForbidden,
		KindInvalidOperation: http.StatusBadRequest,
		KindConflict:         http.StatusConflict,
		KindUnprocessable:    http.StatusUnprocessableEntity,
		Kind("SOMETHING"):    http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), string(kind))
	}
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("purchase: %w", Unprocessable("Balance", "insufficient balance"))

	assert.Equal(t, KindUnprocessable, KindOf(err))

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"Balance": "insufficient balance"}, appErr.Fields)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	_, ok := As(errors.New("boom"))
	assert.False(t, ok)
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("Offer"))

	assert.True(t, errors.Is(err, &Error{Kind: KindNotFound}))
	assert.True(t, errors.Is(err, NotFound("Offer")))
	assert.False(t, errors.Is(err, NotFound("User")))
	assert.False(t, errors.Is(err, &Error{Kind: KindConflict}))
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("Merchant")
	assert.Equal(t, "Merchant not found", err.Error())
	assert.Nil(t, err.Fields)
}

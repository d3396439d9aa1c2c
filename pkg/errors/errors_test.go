package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAndStatusCode(t *testing.T) {
	tests := []struct {
		err    error
		kind   error
		status int
	}{
		{NewValidation("api.createContact", "bad json", nil), ErrValidation, http.StatusBadRequest},
		{NewNotFound("repo.GetContact", "contact", "c1"), ErrNotFound, http.StatusNotFound},
		{NewBiz("matching.Confirm", "score below threshold", nil), ErrBiz, http.StatusUnprocessableEntity},
		{NewExternal("enrichment.Geocode", "google", "timeout", nil), ErrExternal, http.StatusBadGateway},
		{NewDB("db.SaveContact", "exec", fmt.Errorf("conn reset")), ErrDB, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		wrapped := fmt.Errorf("outer: %w", tt.err)
		assert.True(t, Is(wrapped, tt.kind), tt.err.Error())
		assert.Equal(t, tt.status, StatusCode(wrapped), tt.err.Error())
	}
	assert.False(t, Is(NewDB("x", "y", nil), ErrValidation))
	assert.Equal(t, http.StatusOK, StatusCode(nil))
}

func TestFieldErrors(t *testing.T) {
	err := fmt.Errorf("save: %w", NewFieldValidation("api.saveContact", map[string]string{"tax_id": "CPF inválido"}))
	assert.Equal(t, "CPF inválido", FieldErrors(err)["tax_id"])
	assert.Nil(t, FieldErrors(fmt.Errorf("plain")))
}

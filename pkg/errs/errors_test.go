package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	notFound := NewNotFound("product", 999)
	assert.ErrorIs(t, notFound, ErrNotFound)
	assert.Equal(t, "product with id 999 not found", notFound.Error())

	conflict := NewConflict("product", "name", "Widget")
	assert.ErrorIs(t, conflict, ErrConflict)
	assert.ErrorIs(t, conflict, ErrValidation)

	validation := NewValidation("priority", "must be between 0 and 100")
	assert.ErrorIs(t, validation, ErrValidation)
	assert.NotErrorIs(t, validation, ErrConflict)

	downstream := &DownstreamError{Service: "images", Err: errors.New("connection refused")}
	assert.ErrorIs(t, downstream, ErrDownstreamUnavailable)
}

func TestGetErrorStatusCode(t *testing.T) {
	testCases := []struct {
		Name     string
		Err      error
		Expected int
	}{
		{Name: "not found", Err: NewNotFound("image", 1), Expected: http.StatusNotFound},
		{Name: "wrapped not found", Err: fmt.Errorf("updating: %w", NewNotFound("image", 1)), Expected: http.StatusNotFound},
		{Name: "conflict wins over validation", Err: NewConflict("product", "name", "x"), Expected: http.StatusConflict},
		{Name: "validation", Err: NewValidation("url", "must not be empty"), Expected: http.StatusUnprocessableEntity},
		{Name: "downstream", Err: &DownstreamError{Service: "products", Err: errors.New("timeout")}, Expected: http.StatusBadGateway},
		{Name: "unknown", Err: errors.New("boom"), Expected: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, GetErrorStatusCode(tc.Err))
		})
	}
}

func TestRemoteErrorKeepsCode(t *testing.T) {
	remote := &RemoteError{Service: "products", Message: "product with id 7 not found", Code: CodeNotFound}
	assert.ErrorIs(t, remote, ErrNotFound)
	assert.Equal(t, CodeNotFound, Code(remote))
	assert.Equal(t, CodeNotFound, remote.Extensions()["code"])

	unknown := &RemoteError{Service: "products", Message: "boom"}
	assert.Equal(t, CodeInternal, unknown.Extensions()["code"])
}

func TestWithCode(t *testing.T) {
	assert.Nil(t, WithCode(nil))

	typed := NewNotFound("product", 1)
	assert.Same(t, typed, WithCode(typed))

	wrapped := WithCode(fmt.Errorf("creating image: %w", NewValidation("url", "empty")))
	extended, ok := wrapped.(interface{ Extensions() map[string]interface{} })
	assert.True(t, ok)
	assert.Equal(t, CodeValidation, extended.Extensions()["code"])
	assert.ErrorIs(t, wrapped, ErrValidation)
}

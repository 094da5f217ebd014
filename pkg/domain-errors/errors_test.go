package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeExternalService, "mail transport unavailable")

	assert.True(t, errors.Is(err, cause))
	assert.True(t, Is(err, CodeExternalService))
	assert.False(t, Is(err, CodeValidation))
}

func TestCodeOfUnrecognizedErrorIsInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeNotFound, CodeOf(fmt.Errorf("lookup: %w", New(CodeNotFound, "plan not found"))))
}

func TestWithDetailsDoesNotMutateOriginal(t *testing.T) {
	base := New(CodeValidation, "registration data invalid")
	detailed := base.WithDetails("email is required", "age must be between 10 and 100")

	assert.Nil(t, base.Details)
	assert.Equal(t, []string{"email is required", "age must be between 10 and 100"}, DetailsOf(detailed))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:      http.StatusBadRequest,
		CodeBusinessRule:    http.StatusUnprocessableEntity,
		CodeNotFound:        http.StatusNotFound,
		CodeConflict:        http.StatusConflict,
		CodeSecurity:        http.StatusUnauthorized,
		CodeFileOperation:   http.StatusBadRequest,
		CodeExternalService: http.StatusBadGateway,
		CodeConfiguration:   http.StatusInternalServerError,
		CodeInternal:        http.StatusInternalServerError,
		Code("bogus"):       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), "code %s", code)
	}
}

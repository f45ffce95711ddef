package apperr

import (
	"errors"
	"net/http"
	"testing"
)

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")

	err := Internal("failed to load lead", cause)

	if err.Kind != KindInternal {
		t.Fatalf("expected KindInternal, got %v", err.Kind)
	}
	if !errors.Is(err, cause) {
		t.Error("underlying cause should be reachable via errors.Is")
	}
	if err.HTTPStatus() != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", err.HTTPStatus())
	}
	if err.Error() != "failed to load lead" {
		t.Errorf("message should not leak the cause, got %q", err.Error())
	}
}

func TestKindToHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("lead not found"), http.StatusNotFound},
		{Validation("invalid status"), http.StatusBadRequest},
		{Conflict("email already exists"), http.StatusConflict},
		{Forbidden("lead is outside your scope"), http.StatusForbidden},
		{Unauthorized("token expired"), http.StatusUnauthorized},
		{BadRequest("malformed id"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("%q: expected %d, got %d", tc.err.Message, tc.want, got)
		}
	}
}

func TestGetKindOnForeignError(t *testing.T) {
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Error("non-domain errors should map to KindUnknown")
	}
	if !Is(NotFound("x"), KindNotFound) {
		t.Error("Is should match the error kind")
	}
}

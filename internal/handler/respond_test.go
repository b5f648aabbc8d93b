package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkeren/pawtrack/internal/apperr"
	"github.com/mkeren/pawtrack/internal/logging"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.ErrUnauthorized, http.StatusUnauthorized},
		{apperr.ErrForbidden, http.StatusForbidden},
		{apperr.ErrEmailTaken, http.StatusConflict},
		{apperr.ErrNotFound, http.StatusNotFound},
		{apperr.ErrInvalid, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", apperr.ErrForbidden), http.StatusForbidden},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		w := httptest.NewRecorder()
		writeError(w, logging.Discard(), tc.err)
		if w.Code != tc.want {
			t.Errorf("%v: status = %d, want %d", tc.err, w.Code, tc.want)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%v: content type = %q", tc.err, ct)
		}
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, logging.Discard(), errors.New("dial tcp 10.0.0.5: connection refused"))
	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Error("internal error detail must not reach the client")
	}
}

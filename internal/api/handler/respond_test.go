package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ocpe/internal/common"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"malformed form", invalidForm(errors.New(`invalid URL escape "%zz"`)), http.StatusBadRequest},
		{"missing record", fmt.Errorf("load account: %w", common.ErrNotFound), http.StatusNotFound},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondError(w, httptest.NewRequest(http.MethodPost, "/signup", nil), tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if body := w.Body.String(); body != http.StatusText(tt.want)+"\n" {
				t.Errorf("body = %q", body)
			}
		})
	}
}

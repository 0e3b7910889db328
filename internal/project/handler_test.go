package project

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{ErrNotFound, http.StatusNotFound, "not found"},
		{ErrUserNotFound, http.StatusNotFound, "user not found"},
		{ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("get: %w", ErrNotMember), http.StatusForbidden, "not a project member"},
		{ErrCannotRemoveOwner, http.StatusBadRequest, "cannot remove project owner"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestCreateRequiresName(t *testing.T) {
	h := NewHandler(NewService(nil))
	req := httptest.NewRequest(http.MethodPost, "/api/projects", nil)
	req.Body = http.NoBody
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package request

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TaskFlow/internal/apperr"
)

func newContext(query string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/api/users?"+query, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestListOptionsSort(t *testing.T) {
	tests := []struct {
		name  string
		query string
		sort  string
		ok    bool
	}{
		{"no sort", "", "", true},
		{"default field", "sort=-created_at", "-created_at", true},
		{"whitelisted field", "sort=name", "name", true},
		{"whitelisted descending", "sort=-email", "-email", true},
		{"private field", "sort=password_hash", "", false},
		{"operator", "sort=$where", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, err := ListOptions(newContext(tt.query), "name", "email")
			if !tt.ok {
				var appErr *apperr.Error
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, http.StatusBadRequest, appErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sort, lo.Sort)
		})
	}
}

func TestListOptionsPaging(t *testing.T) {
	lo, err := ListOptions(newContext("page=3&limit=abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, lo.Page)
	assert.Equal(t, 20, lo.Limit)
}

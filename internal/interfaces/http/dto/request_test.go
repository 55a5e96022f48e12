package dto

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestBindDateRange(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   DateRangeQuery
	}{
		{name: "both bounds", target: "/api/costs?start=2025-01-01&end=2025-01-31", want: DateRangeQuery{Start: "2025-01-01", End: "2025-01-31"}},
		{name: "start only", target: "/api/costs?start=2025-01-01", want: DateRangeQuery{Start: "2025-01-01"}},
		{name: "none", target: "/api/costs", want: DateRangeQuery{}},
		{name: "trimmed", target: "/api/costs?end=%202025-02-01%20", want: DateRangeQuery{End: "2025-02-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BindDateRange(newContext(tt.target))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBindLimit(t *testing.T) {
	assert.Equal(t, 100, BindLimit(newContext("/api/reviews"), 100))
	assert.Equal(t, 5, BindLimit(newContext("/api/reviews?limit=5"), 100))
	assert.Equal(t, 100, BindLimit(newContext("/api/reviews?limit=abc"), 100))
}

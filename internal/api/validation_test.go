package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func bindRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req signup
		if !BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, req)
	})
	return r
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		details []ValidationError
	}{
		{
			name:   "valid",
			body:   `{"email":"rider@example.com","password":"longenough"}`,
			status: http.StatusOK,
		},
		{
			name:   "field rules",
			body:   `{"email":"not-an-email","password":"short"}`,
			status: http.StatusBadRequest,
			details: []ValidationError{
				{Field: "Email", Tag: "email", Message: "Email must be a valid email address"},
				{Field: "Password", Tag: "min", Message: "Password must be at least 8 characters"},
			},
		},
		{
			name:   "missing field",
			body:   `{"email":"rider@example.com"}`,
			status: http.StatusBadRequest,
			details: []ValidationError{
				{Field: "Password", Tag: "required", Message: "Password is required"},
			},
		},
		{
			name:   "malformed json",
			body:   `{"email":`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			bindRouter().ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			if tt.details != nil {
				var resp ValidationErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "validation failed", resp.Error)
				assert.Equal(t, tt.details, resp.Details)
			}
		})
	}
}

func TestBindPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		p, ok := BindPage(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, p)
	})

	tests := []struct {
		query  string
		status int
		want   PageQuery
	}{
		{"", http.StatusOK, PageQuery{Limit: 50}},
		{"?limit=10&offset=20", http.StatusOK, PageQuery{Limit: 10, Offset: 20}},
		{"?offset=-1", http.StatusBadRequest, PageQuery{}},
		{"?limit=-5", http.StatusBadRequest, PageQuery{}},
		{"?limit=1000", http.StatusBadRequest, PageQuery{}},
		{"?limit=ten", http.StatusBadRequest, PageQuery{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))

			require.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				var got PageQuery
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

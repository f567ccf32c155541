package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/poolgame-backend/internal/config"
	"github.com/ArowuTest/poolgame-backend/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signed(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWTAuthMiddleware(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "poolgame"}
	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggerMiddleware(logging.Discard()))
	r.GET("/me", JWTAuthMiddleware(cfg), RequireRole(RoleOperator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(ContextUserID), "role": c.GetString(ContextUserRole)})
	})

	valid := jwt.MapClaims{"sub": "u1", "role": RoleOperator, "iss": "poolgame", "exp": time.Now().Add(time.Hour).Unix()}
	expired := jwt.MapClaims{"sub": "u1", "role": RoleOperator, "iss": "poolgame", "exp": time.Now().Add(-time.Hour).Unix()}
	otherIssuer := jwt.MapClaims{"sub": "u1", "role": RoleOperator, "iss": "elsewhere", "exp": time.Now().Add(time.Hour).Unix()}
	viewer := jwt.MapClaims{"sub": "u1", "role": "viewer", "iss": "poolgame", "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"valid", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("secret"), valid), http.StatusOK},
		{"wrong secret", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("other"), valid), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("secret"), expired), http.StatusUnauthorized},
		{"other issuer", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("secret"), otherIssuer), http.StatusUnauthorized},
		{"insufficient role", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("secret"), viewer), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://ops.example.com"}))
	r.OPTIONS("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ops.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

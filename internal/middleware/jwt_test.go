package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func identityApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(testSecret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":   c.Locals(LocalUserID),
			"role": c.Locals(LocalUserRole),
		})
	})
	return app
}

func TestJWTProtectedPopulatesIdentity(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "12",
		"role": "PRL",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := identityApp().Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	}
	decodeBody(t, resp, &body)
	require.Equal(t, uint(12), body.ID)
	require.Equal(t, "prl", body.Role)
}

func TestJWTProtectedAcceptsRoleLists(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 5,
		"roles":   []string{"", "Lecturer"},
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp, err := identityApp().Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	}
	decodeBody(t, resp, &body)
	require.Equal(t, uint(5), body.ID)
	require.Equal(t, "lecturer", body.Role)
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"wrong secret":   "Bearer " + signToken(t, "other", jwt.MapClaims{"sub": "1", "role": "pl"}),
		"no subject":     "Bearer " + signToken(t, testSecret, jwt.MapClaims{"role": "pl"}),
		"expired":        "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Hour).Unix()}),
	}

	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := identityApp().Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
	}
}

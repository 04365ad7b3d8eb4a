package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func identityApp(secret string) *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTProtected(secret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":         c.Locals(LocalUserID),
			"role":       c.Locals(LocalUserRole),
			"department": c.Locals(LocalUserDepartment),
		})
	})
	return app
}

func TestJWTProtectedExposesIdentity(t *testing.T) {
	app := identityApp("secret")
	token := signToken(t, "secret", jwt.MapClaims{
		"sub":        "11111111-1111-4111-8111-111111111111",
		"role":       "DeptAdmin",
		"department": "ECE",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.Equal(t, "11111111-1111-4111-8111-111111111111", body["id"])
	require.Equal(t, "deptadmin", body["role"])
	require.Equal(t, "ECE", body["department"])
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app := identityApp("secret")

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"wrong secret":   "Bearer " + signToken(t, "other", jwt.MapClaims{"sub": "u1"}),
		"expired":        "Bearer " + signToken(t, "secret", jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no subject":     "Bearer " + signToken(t, "secret", jwt.MapClaims{"role": "admin"}),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

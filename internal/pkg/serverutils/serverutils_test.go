package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"myinco-admin-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type option struct {
	Name  string `json:"option_name" validate:"required"`
	Value string `json:"option_value" validate:"required"`
}

type createRequest struct {
	Version string   `json:"version" validate:"required,max=5"`
	Options []option `json:"code_options" validate:"required,min=1,dive"`
}

func TestValidationMessage(t *testing.T) {
	err := ValidateRequest(createRequest{Version: "v123456", Options: []option{{Name: "type"}}})
	require.Error(t, err)
	assert.Equal(t, "version must be at most 5 long; code_options[0].option_value is required", ValidationMessage(err))

	assert.Equal(t, "boom", ValidationMessage(errors.New("boom")))
	assert.NoError(t, ValidateRequest(createRequest{Version: "v1", Options: []option{{Name: "a", Value: "b"}}}))
}

func call(t *testing.T, app *fiber.App, method, path, token string) (int, BaseResponse[any]) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body BaseResponse[any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAdminMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(AdminMiddleware("secret"))
	app.Get("/me", func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("me", RequestMeta(ctx).UserId))
	})

	exp := time.Now().Add(time.Hour).Unix()
	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong secret", sign(t, "other", jwt.MapClaims{"role": "admin", "exp": exp}), fiber.StatusUnauthorized},
		{"expired", sign(t, "secret", jwt.MapClaims{"role": "admin", "exp": time.Now().Add(-time.Hour).Unix()}), fiber.StatusUnauthorized},
		{"no role", sign(t, "secret", jwt.MapClaims{"exp": exp}), fiber.StatusForbidden},
		{"not admin", sign(t, "secret", jwt.MapClaims{"role": "user", "exp": exp}), fiber.StatusForbidden},
		{"admin", sign(t, "secret", jwt.MapClaims{"role": "admin", "user_id": "admin-1", "exp": exp}), fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, "GET", "/me", tt.token)
			assert.Equal(t, tt.status, status)
			if tt.status == fiber.StatusOK {
				assert.True(t, body.Success)
				assert.Equal(t, "admin-1", body.Data)
			}
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/panic", func(ctx *fiber.Ctx) error { panic("secret internals") })
	app.Get("/fail", func(ctx *fiber.Ctx) error { return errors.New("pq: relation missing") })
	app.Get("/invalid", func(ctx *fiber.Ctx) error { return ValidateRequest(createRequest{}) })
	app.Get("/teapot", func(ctx *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	status, body := call(t, app, "GET", "/panic", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body.Message)

	status, body = call(t, app, "GET", "/fail", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.NotContains(t, body.Message, "pq")

	status, body = call(t, app, "GET", "/invalid", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "version is required; code_options is required", body.Message)

	status, body = call(t, app, "GET", "/teapot", "")
	assert.Equal(t, fiber.StatusTeapot, status)
	assert.Equal(t, "short and stout", body.Message)
}

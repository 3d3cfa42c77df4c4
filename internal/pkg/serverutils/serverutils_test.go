package serverutils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"cardiac-assistant-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body io.Reader) BaseResponse[any] {
	t.Helper()
	var res BaseResponse[any]
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/bad", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "query failed on required") })
	app.Get("/gen", func(c *fiber.Ctx) error { return fmt.Errorf("%w: timeout", rag.ErrGeneration) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fmt.Errorf("db down") })

	tests := []struct {
		path string
		code int
	}{
		{"/bad", 400},
		{"/gen", 502},
		{"/boom", 500},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.code, resp.StatusCode, tt.path)
		res := decode(t, resp.Body)
		assert.False(t, res.Success)
		assert.Equal(t, tt.code, res.Code)
	}
}

type sample struct {
	Query string `validate:"required,max=10"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{Query: "ok"}))

	err := ValidateRequest(sample{})
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 400, fe.Code)
	assert.Contains(t, fe.Message, "Query failed on required")
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Use(NewJwtMiddleware("s3cret", true))
	app.Get("/me", func(c *fiber.Ctx) error { return c.SendString(ClinicianID(c)) })

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "wrong", jwt.MapClaims{"sub": "dr-lee"}))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "s3cret", jwt.MapClaims{
		"sub": "dr-lee",
		"exp": time.Now().Add(time.Hour).Unix(),
	}))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "dr-lee", string(body))
}

func TestJwtMiddleware_Disabled(t *testing.T) {
	app := fiber.New()
	app.Use(NewJwtMiddleware("", false))
	app.Get("/me", func(c *fiber.Ctx) error { return c.SendString(ClinicianID(c)) })

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, AnonymousClinician, string(body))
}

func TestJwtMiddleware_QueryToken(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Use(NewJwtMiddleware("s3cret", true))
	app.Get("/ws", func(c *fiber.Ctx) error { return c.SendString(ClinicianID(c)) })

	token := signed(t, "s3cret", jwt.MapClaims{"sub": "dr-okafor"})
	resp, err := app.Test(httptest.NewRequest("GET", "/ws?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "dr-okafor", string(body))
}

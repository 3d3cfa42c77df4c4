package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalClinicianID   = "clinician_id"
	AnonymousClinician = "anonymous"
)

// NewJwtMiddleware checks an HS256 bearer token and stores the clinician id
// from the "sub" claim. Browsers cannot set headers on a websocket handshake,
// so the "token" query parameter is accepted too. With auth disabled every
// request is anonymous.
func NewJwtMiddleware(secret string, enabled bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !enabled {
			ctx.Locals(LocalClinicianID, AnonymousClinician)
			return ctx.Next()
		}

		tokenStr := ctx.Query("token")
		if authHeader := ctx.Get("Authorization"); len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
		if tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid claims")
		}

		ctx.Locals(LocalClinicianID, sub)
		return ctx.Next()
	}
}

// ClinicianID reads the id stored by the middleware.
func ClinicianID(ctx *fiber.Ctx) string {
	if id, ok := ctx.Locals(LocalClinicianID).(string); ok && id != "" {
		return id
	}
	return AnonymousClinician
}

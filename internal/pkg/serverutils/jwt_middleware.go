package serverutils

import (
	"os"

	"knowledgebase-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	// Numeric claims decode as float64; the typed UserID is constructed here,
	// once, so nothing below the controller layer sees an untyped id.
	rawId, ok := claims["user_id"].(float64)
	if !ok || rawId <= 0 {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	ctx.Locals("user_id", entity.UserID(rawId))
	return ctx.Next()
}

// CurrentUserID reads the owner identity resolved by JwtMiddleware.
func CurrentUserID(ctx *fiber.Ctx) entity.UserID {
	if id, ok := ctx.Locals("user_id").(entity.UserID); ok {
		return id
	}
	return 0
}

package middlewares

import (
	"context"

	"bookburst/cmd/server/handlers/httperr"
	"bookburst/internal/config"
	"bookburst/internal/logger"
	"bookburst/internal/services/users"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserResolver loads the account a verified token belongs to.
type UserResolver interface {
	Get(ctx context.Context, id bson.ObjectID) (*users.User, error)
}

// Auth returns a configured Fiber middleware that:
//
//   - validates the Bearer token signature using cfg.JWTSecret
//   - makes sure the token carries a "user_id" claim
//   - resolves the account so a token for a deleted user is rejected
//   - stores the document in ctx.Locals("user") and the hex ID in
//     ctx.Locals("userID") so downstream handlers can trust them.
//
// On any problem it bubbles up a 401 via the global httperr handler.
func Auth(cfg config.Config, resolver UserResolver) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ContextKey: "jwt",
		SuccessHandler: func(c *fiber.Ctx) error {
			// Token already verified at this point.
			token := c.Locals("jwt").(*jwt.Token)
			claims, _ := token.Claims.(jwt.MapClaims)

			userIDStr, ok := claims["user_id"].(string)
			if !ok || userIDStr == "" {
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			userID, err := bson.ObjectIDFromHex(userIDStr)
			if err != nil {
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			user, err := resolver.Get(c.Context(), userID)
			if err != nil {
				logger.L().Info("token for unknown user rejected", "userID", userIDStr, "path", c.Path())
				return httperr.Fail(httperr.ErrUnauthorized)
			}

			c.Locals("user", user)
			c.Locals("userID", userIDStr)
			return c.Next()
		},

		// Override the default "unauthorized" JSON to match the project style
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return httperr.Fail(httperr.ErrUnauthorized)
		},
	})
}

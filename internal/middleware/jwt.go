package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-grader/internal/utils"
)

// JWTProtected validates HMAC-signed bearer tokens. The subject is stored in
// the user_id local and every role claim in user_roles, so that teachers,
// students and service accounts can all call the grader.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		scheme, tokenString, found := strings.Cut(authorization, " ")
		if !found || !strings.EqualFold(scheme, "bearer") {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		if subject := subjectFromClaims(claims); subject != "" {
			c.Locals("user_id", subject)
		}
		if roles := rolesFromClaims(claims); len(roles) > 0 {
			c.Locals("user_roles", roles)
			c.Locals("user_role", roles[0])
		}

		return c.Next()
	}
}

func subjectFromClaims(claims jwt.MapClaims) string {
	if subject, err := claims.GetSubject(); err == nil && strings.TrimSpace(subject) != "" {
		return strings.TrimSpace(subject)
	}
	for _, key := range []string{"user_id", "id"} {
		if value, ok := claims[key]; ok {
			if normalized := normalizeClaimValue(value); normalized != "" && normalized != "0" {
				return normalized
			}
		}
	}
	return ""
}

func rolesFromClaims(claims jwt.MapClaims) []string {
	var roles []string
	for _, key := range []string{"role", "roles"} {
		switch v := claims[key].(type) {
		case string:
			if role := strings.ToLower(strings.TrimSpace(v)); role != "" {
				roles = append(roles, role)
			}
		case []interface{}:
			for _, item := range v {
				if str, ok := item.(string); ok {
					if role := strings.ToLower(strings.TrimSpace(str)); role != "" {
						roles = append(roles, role)
					}
				}
			}
		}
	}
	return roles
}

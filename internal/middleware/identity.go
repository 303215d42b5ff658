package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated user id
// stored by JWTAuth, or "anon" when the request carries no identity.
// Rate-limit and cache keys use it so per-user responses (the
// dashboard embeds the caller's cart) never leak between users.
func currentUserID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "anon"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
		return "anon"
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return fmt.Sprint(t)
	}
}

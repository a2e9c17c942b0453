package middleware

// identity.go reads what SessionAuth stored in the Echo context.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admin/internal/utils"
)

// UserID returns the authenticated user's id, or "" for anonymous
// requests.
func UserID(c echo.Context) string {
    if s, ok := c.Get("user_id").(string); ok {
        return s
    }
    return ""
}

// Role returns the role claim of the session, or "".
func Role(c echo.Context) string {
    if s, ok := c.Get("role").(string); ok {
        return s
    }
    return ""
}

// Claims returns the verified session claims, or nil.
func Claims(c echo.Context) *utils.SessionClaims {
    cl, _ := c.Get("claims").(*utils.SessionClaims)
    return cl
}

// clientKey identifies the caller for rate limiting and is "anon" before
// authentication.
func clientKey(c echo.Context) string {
    if id := UserID(c); id != "" {
        return id
    }
    return "anon"
}

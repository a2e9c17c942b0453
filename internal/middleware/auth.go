package middleware // reusable HTTP middleware for the admin API

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admin/internal/utils"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

// SessionAuth validates the session token and stores its subject and
// role in the context under "user_id" and "role", and the parsed claims
// under "claims".  The token is taken from an "Authorization: Bearer"
// header, or from the session cookie when the header is absent.
func SessionAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := bearerToken(c.Request())
            if raw == "" {
                if ck, err := c.Cookie(SessionCookie); err == nil {
                    raw = ck.Value
                }
            }
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session token"})
            }
            claims, err := utils.ParseSessionToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            c.Set("user_id", claims.Subject)
            c.Set("role", claims.Role)
            c.Set("claims", claims)
            return next(c)
        }
    }
}

func bearerToken(r *http.Request) string {
    auth := r.Header.Get("Authorization")
    if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
        return ""
    }
    return strings.TrimSpace(auth[7:])
}

package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admin/internal/middleware"
    "github.com/iliyamo/cinema-admin/internal/model"
    "github.com/iliyamo/cinema-admin/internal/service"
    "github.com/iliyamo/cinema-admin/internal/utils"
)

// Authenticator registers users and issues sessions.
// *service.AuthService implements it.
type Authenticator interface {
    Register(ctx context.Context, name, email, password string) (*model.User, error)
    Authenticate(ctx context.Context, email, password string) (*service.Session, error)
    CurrentUser(ctx context.Context, claims *utils.SessionClaims) (*model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Auth          Authenticator
    SecureCookies bool
}

// ----- DTOs -----

type registerReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
}

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type userPart struct {
    ID    string `json:"id"`
    Email string `json:"email"`
    Name  string `json:"name"`
}

// Register handles POST /register and creates a MEMBER account.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    trimmed(&req.Name, &req.Email)
    if req.Name == "" || req.Email == "" || req.Password == "" {
        return badRequest(c, "name, email and password are required")
    }
    if !strings.Contains(req.Email, "@") {
        return badRequest(c, "invalid email")
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    u, err := h.Auth.Register(ctx, req.Name, req.Email, req.Password)
    if err != nil {
        return respondError(c, err, "registration failed")
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "message": "registration successful",
        "user":    userPart{ID: u.ID, Email: u.Email, Name: u.Name},
    })
}

// Login handles POST /auth/login.  The token is returned in the body and
// set as an HttpOnly session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    req.Email = strings.TrimSpace(req.Email)
    if req.Email == "" || req.Password == "" {
        return badRequest(c, "email/password required")
    }

    ctx, cancel := withTimeout(c)
    defer cancel()

    sess, err := h.Auth.Authenticate(ctx, req.Email, req.Password)
    if err != nil {
        return respondError(c, err, "login failed")
    }
    c.SetCookie(&http.Cookie{
        Name:     middleware.SessionCookie,
        Value:    sess.Token,
        Path:     "/",
        Expires:  sess.Expires,
        HttpOnly: true,
        Secure:   h.SecureCookies,
        SameSite: http.SameSiteLaxMode,
    })
    return c.JSON(http.StatusOK, sess)
}

// Logout handles POST /auth/logout by expiring the session cookie.
// Tokens are stateless, so a copied bearer token stays valid until it
// expires.
func (h *AuthHandler) Logout(c echo.Context) error {
    c.SetCookie(&http.Cookie{
        Name:     middleware.SessionCookie,
        Value:    "",
        Path:     "/",
        Expires:  time.Unix(0, 0),
        MaxAge:   -1,
        HttpOnly: true,
        Secure:   h.SecureCookies,
        SameSite: http.SameSiteLaxMode,
    })
    return c.NoContent(http.StatusNoContent)
}

// Me handles GET /auth/me and returns the session's user.
func (h *AuthHandler) Me(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    u, err := h.Auth.CurrentUser(ctx, middleware.Claims(c))
    if err != nil {
        return respondError(c, err, "failed to load user")
    }
    return c.JSON(http.StatusOK, u)
}

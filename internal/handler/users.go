package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admin/internal/model"
    "github.com/iliyamo/cinema-admin/internal/repository"
    "github.com/iliyamo/cinema-admin/internal/service"
)

// UserStore is the user repository as the admin handlers use it.
type UserStore interface {
    List(ctx context.Context, f repository.UserFilter) ([]model.User, error)
    GetByID(ctx context.Context, id string) (*model.User, error)
    Update(ctx context.Context, u *model.User) error
    Delete(ctx context.Context, id string) error
}

// UserCreator hashes the password and stores a new user.
type UserCreator interface {
    CreateUser(ctx context.Context, u *model.User, password string) error
}

// UserHandler serves /users for administrators.
type UserHandler struct {
    Users    UserStore
    Accounts UserCreator
}

type userReq struct {
    Name     string  `json:"name"`
    Email    string  `json:"email"`
    Phone    *string `json:"phone"`
    Role     string  `json:"role"`
    Password string  `json:"password"`
}

func (r *userReq) normalize() (model.Role, string) {
    trimmed(&r.Name, &r.Email)
    if r.Phone != nil {
        p := strings.TrimSpace(*r.Phone)
        if p == "" {
            r.Phone = nil
        } else {
            r.Phone = &p
        }
    }
    if r.Name == "" || r.Email == "" || !strings.Contains(r.Email, "@") {
        return "", "name and a valid email are required"
    }
    if r.Role == "" {
        return model.RoleMember, ""
    }
    role, ok := model.ParseRole(r.Role)
    if !ok {
        return "", "role must be ADMIN or MEMBER"
    }
    return role, ""
}

// List handles GET /users.  Without ?role= only members are listed, the
// box office's customer directory; ?phone= looks up a member by phone.
func (h *UserHandler) List(c echo.Context) error {
    f := repository.UserFilter{Role: model.RoleMember, Phone: strings.TrimSpace(c.QueryParam("phone"))}
    if raw := c.QueryParam("role"); raw != "" {
        role, ok := model.ParseRole(raw)
        if !ok {
            return badRequest(c, "role must be ADMIN or MEMBER")
        }
        f.Role = role
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    users, err := h.Users.List(ctx, f)
    if err != nil {
        return listError(c, err)
    }
    return c.JSON(http.StatusOK, users)
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    u, err := h.Users.GetByID(ctx, c.Param("id"))
    if err != nil {
        return respondError(c, err, "failed to load user")
    }
    return c.JSON(http.StatusOK, u)
}

// Create handles POST /users.
func (h *UserHandler) Create(c echo.Context) error {
    var req userReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    role, msg := req.normalize()
    if msg != "" {
        return badRequest(c, msg)
    }
    if req.Password == "" {
        return badRequest(c, "password is required")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    u := &model.User{Name: req.Name, Email: req.Email, Phone: req.Phone, Role: role}
    if err := h.Accounts.CreateUser(ctx, u, req.Password); err != nil {
        return respondError(c, err, "failed to create user")
    }
    return c.JSON(http.StatusCreated, u)
}

// Update handles PUT /users/:id.  Passwords are not changed here.
func (h *UserHandler) Update(c echo.Context) error {
    var req userReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    role, msg := req.normalize()
    if msg != "" {
        return badRequest(c, msg)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    u := &model.User{ID: c.Param("id"), Name: req.Name, Email: req.Email, Phone: req.Phone, Role: role}
    if err := h.Users.Update(ctx, u); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            err = service.ErrEmailTaken
        }
        return respondError(c, err, "failed to update user")
    }
    fresh, err := h.Users.GetByID(ctx, u.ID)
    if err != nil {
        return c.JSON(http.StatusOK, u)
    }
    return c.JSON(http.StatusOK, fresh)
}

// Delete handles DELETE /users/:id.
func (h *UserHandler) Delete(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    if err := h.Users.Delete(ctx, c.Param("id")); err != nil {
        return respondError(c, err, "failed to delete user")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admin/internal/model"
)

// MovieStore is the movie repository as the handlers use it.
type MovieStore interface {
    List(ctx context.Context) ([]model.Movie, error)
    Get(ctx context.Context, id string) (*model.Movie, error)
    Create(ctx context.Context, m *model.Movie) error
    Update(ctx context.Context, m *model.Movie) error
    Delete(ctx context.Context, id string) error
}

// MovieHandler serves /movies.
type MovieHandler struct {
    Movies MovieStore
}

type movieReq struct {
    ID          string `json:"id"`
    Title       string `json:"title"`
    Description string `json:"description"`
    Duration    string `json:"duration"`
}

func (r *movieReq) validate() string {
    trimmed(&r.Title, &r.Description, &r.Duration)
    if r.Title == "" || r.Description == "" || r.Duration == "" {
        return "title, description and duration are required"
    }
    return ""
}

// List handles GET /movies, newest first.
func (h *MovieHandler) List(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    movies, err := h.Movies.List(ctx)
    if err != nil {
        return listError(c, err)
    }
    return c.JSON(http.StatusOK, movies)
}

// Get handles GET /movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    m, err := h.Movies.Get(ctx, c.Param("id"))
    if err != nil {
        return respondError(c, err, "failed to load movie")
    }
    return c.JSON(http.StatusOK, m)
}

// Create handles POST /movies.
func (h *MovieHandler) Create(c echo.Context) error {
    var req movieReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    if msg := req.validate(); msg != "" {
        return badRequest(c, msg)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    m := &model.Movie{Title: req.Title, Description: req.Description, Duration: req.Duration}
    if err := h.Movies.Create(ctx, m); err != nil {
        return respondError(c, err, "failed to create movie")
    }
    return c.JSON(http.StatusCreated, m)
}

// Update handles PUT /movies/:id.
func (h *MovieHandler) Update(c echo.Context) error {
    var req movieReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    id := idFrom(c, req.ID)
    if id == "" {
        return badRequest(c, "id is required")
    }
    if msg := req.validate(); msg != "" {
        return badRequest(c, msg)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    m := &model.Movie{ID: id, Title: req.Title, Description: req.Description, Duration: req.Duration}
    if err := h.Movies.Update(ctx, m); err != nil {
        return respondError(c, err, "failed to update movie")
    }
    fresh, err := h.Movies.Get(ctx, id)
    if err != nil {
        return c.JSON(http.StatusOK, m)
    }
    return c.JSON(http.StatusOK, fresh)
}

// Delete handles DELETE /movies/:id and DELETE /movies?id=.  A movie
// that still has showtimes is kept.
func (h *MovieHandler) Delete(c echo.Context) error {
    id := idFrom(c, "")
    if id == "" {
        return badRequest(c, "id is required")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    if err := h.Movies.Delete(ctx, id); err != nil {
        return respondError(c, err, "failed to delete movie")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "movie deleted"})
}

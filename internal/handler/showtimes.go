package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admin/internal/booking"
    "github.com/iliyamo/cinema-admin/internal/model"
)

// ShowtimeStore lists and deletes showtimes.
type ShowtimeStore interface {
    List(ctx context.Context) ([]model.Showtime, error)
    Delete(ctx context.Context, id string) error
}

// Scheduler places showtimes.  *service.ScheduleService implements it.
type Scheduler interface {
    Create(ctx context.Context, movieID string, start time.Time) (*model.Showtime, error)
    Update(ctx context.Context, id, movieID string, start time.Time) (*model.Showtime, error)
    Slots(ctx context.Context, movieID string, date time.Time) ([]time.Time, error)
    Today(ctx context.Context) ([]model.Showtime, error)
}

// Inventories reports seat availability.  *service.BookingService
// implements it.
type Inventories interface {
    Availability(ctx context.Context, showtimeID string) (booking.Inventory, error)
}

// ShowtimeHandler serves /showtimes.
type ShowtimeHandler struct {
    Showtimes ShowtimeStore
    Schedule  Scheduler
    Inventory Inventories
    Location  *time.Location // interprets ?date= on /showtimes/slots
}

type showtimeReq struct {
    ID        string `json:"id"`
    MovieID   string `json:"movieId"`
    StartTime string `json:"startTime"`
}

func (r *showtimeReq) parse() (time.Time, string) {
    trimmed(&r.MovieID, &r.StartTime)
    if r.MovieID == "" || r.StartTime == "" {
        return time.Time{}, "movieId and startTime are required"
    }
    start, err := time.Parse(time.RFC3339, r.StartTime)
    if err != nil {
        return time.Time{}, "startTime must be an RFC 3339 timestamp"
    }
    return start, ""
}

// List handles GET /showtimes: every showtime by start time with its
// movie and capacity rows.
func (h *ShowtimeHandler) List(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    list, err := h.Showtimes.List(ctx)
    if err != nil {
        return listError(c, err)
    }
    return c.JSON(http.StatusOK, list)
}

// Create handles POST /showtimes.
func (h *ShowtimeHandler) Create(c echo.Context) error {
    var req showtimeReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    start, msg := req.parse()
    if msg != "" {
        return badRequest(c, msg)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    st, err := h.Schedule.Create(ctx, req.MovieID, start)
    if err != nil {
        return respondError(c, err, "failed to create showtime")
    }
    return c.JSON(http.StatusCreated, st)
}

// Update handles PUT /showtimes/:id, or PUT /showtimes with the id in the
// body.
func (h *ShowtimeHandler) Update(c echo.Context) error {
    var req showtimeReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    id := idFrom(c, req.ID)
    if id == "" {
        return badRequest(c, "id is required")
    }
    start, msg := req.parse()
    if msg != "" {
        return badRequest(c, msg)
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    st, err := h.Schedule.Update(ctx, id, req.MovieID, start)
    if err != nil {
        return respondError(c, err, "failed to update showtime")
    }
    return c.JSON(http.StatusOK, st)
}

// Delete handles DELETE /showtimes/:id, or DELETE /showtimes with the id
// in the body.  Showtimes with sales are kept.
func (h *ShowtimeHandler) Delete(c echo.Context) error {
    var req struct {
        ID string `json:"id"`
    }
    if c.Param("id") == "" && c.Request().ContentLength != 0 {
        if err := c.Bind(&req); err != nil {
            return badRequest(c, "invalid request body")
        }
    }
    id := idFrom(c, req.ID)
    if id == "" {
        return badRequest(c, "id is required")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    if err := h.Showtimes.Delete(ctx, id); err != nil {
        return respondError(c, err, "failed to delete showtime")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "showtime deleted"})
}

// Slots handles GET /showtimes/slots?movieId=&date=YYYY-MM-DD.  date
// defaults to today.
func (h *ShowtimeHandler) Slots(c echo.Context) error {
    movieID := strings.TrimSpace(c.QueryParam("movieId"))
    if movieID == "" {
        return badRequest(c, "movieId is required")
    }
    loc := h.Location
    if loc == nil {
        loc = time.UTC
    }
    date := time.Now().In(loc)
    if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
        d, err := time.ParseInLocation(time.DateOnly, raw, loc)
        if err != nil {
            return badRequest(c, "date must be YYYY-MM-DD")
        }
        date = d
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    slots, err := h.Schedule.Slots(ctx, movieID, date)
    if err != nil {
        return respondError(c, err, "failed to list slots")
    }
    return c.JSON(http.StatusOK, slots)
}

// Availability handles GET /showtimes/:id/availability.
func (h *ShowtimeHandler) Availability(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    inv, err := h.Inventory.Availability(ctx, c.Param("id"))
    if err != nil {
        return respondError(c, err, "failed to compute availability")
    }
    return c.JSON(http.StatusOK, inv)
}

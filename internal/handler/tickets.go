package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admin/internal/model"
)

// TicketStore reads capacity rows with their showtime and movie.
type TicketStore interface {
    List(ctx context.Context) ([]model.Ticket, error)
    Get(ctx context.Context, id string) (*model.Ticket, error)
}

// CapacityEditor writes capacity rows.  It rejects a second row for a
// showtime and any edit that would leave sold seats uncovered.
type CapacityEditor interface {
    Create(ctx context.Context, t *model.Ticket) error
    Update(ctx context.Context, t *model.Ticket) error
}

// TicketHandler serves /tickets.  A ticket is the capacity row of a
// showtime: how many seats can be sold and at what unit price.
type TicketHandler struct {
    Tickets  TicketStore
    Capacity CapacityEditor
}

type ticketReq struct {
    ID         string `json:"id"`
    ShowtimeID string `json:"showtimeId"`
    Seat       int    `json:"seat"`
    Price      int64  `json:"price"`
}

func (r *ticketReq) validate() string {
    trimmed(&r.ShowtimeID)
    if r.ShowtimeID == "" || r.Seat <= 0 || r.Price <= 0 {
        return "showtimeId, seat and price are required and must be positive"
    }
    return ""
}

// List handles GET /tickets, ordered by seat count.
func (h *TicketHandler) List(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    list, err := h.Tickets.List(ctx)
    if err != nil {
        return listError(c, err)
    }
    return c.JSON(http.StatusOK, list)
}

// save runs write and answers with the stored row.
func (h *TicketHandler) save(c echo.Context, req ticketReq, write func(ctx context.Context, t *model.Ticket) error, status int) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    t := &model.Ticket{ID: req.ID, ShowtimeID: req.ShowtimeID, Seat: req.Seat, Price: req.Price}
    if err := write(ctx, t); err != nil {
        return respondError(c, err, "failed to save ticket")
    }
    fresh, err := h.Tickets.Get(ctx, t.ID)
    if err != nil {
        return c.JSON(status, t)
    }
    return c.JSON(status, fresh)
}

// Create handles POST /tickets.
func (h *TicketHandler) Create(c echo.Context) error {
    var req ticketReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    if msg := req.validate(); msg != "" {
        return badRequest(c, msg)
    }
    req.ID = ""
    return h.save(c, req, h.Capacity.Create, http.StatusCreated)
}

// Update handles PUT /tickets/:id, or PUT /tickets with the id in the
// body.
func (h *TicketHandler) Update(c echo.Context) error {
    var req ticketReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    req.ID = idFrom(c, req.ID)
    if req.ID == "" {
        return badRequest(c, "id is required")
    }
    if msg := req.validate(); msg != "" {
        return badRequest(c, msg)
    }
    return h.save(c, req, h.Capacity.Update, http.StatusOK)
}

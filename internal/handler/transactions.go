package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admin/internal/booking"
    "github.com/iliyamo/cinema-admin/internal/model"
    "github.com/iliyamo/cinema-admin/internal/repository"
    "github.com/iliyamo/cinema-admin/internal/service"
)

// TransactionsPageSize is the fixed page size of GET /transactions.
const TransactionsPageSize = 15

// TransactionLister pages through the sales of a time range.
type TransactionLister interface {
    ListCreatedBetween(ctx context.Context, from, to time.Time, page repository.Page) ([]model.Transaction, int, error)
}

// Booker sells and cancels seats.  *service.BookingService implements it.
type Booker interface {
    Book(ctx context.Context, req service.BookRequest) (*model.Transaction, booking.Inventory, error)
    Cancel(ctx context.Context, id string) (*model.Transaction, error)
}

// TransactionHandler serves /transactions.
type TransactionHandler struct {
    Transactions TransactionLister
    Bookings     Booker
    Location     *time.Location // defines "today" for the list
    Now          func() time.Time
}

type transactionPage struct {
    Data     []model.Transaction   `json:"data"`
    Total    int                   `json:"total"`
    Page     int                   `json:"page"`
    PageSize int                   `json:"pageSize"`
    Metadata repository.Metadata   `json:"metadata"`
}

type bookReq struct {
    ShowtimeID    string `json:"showtimeId"`
    Seats         int    `json:"seats"`
    PaymentMethod string `json:"paymentMethod"`
    PaymentType   string `json:"paymentType"` // older clients
    CustomerName  string `json:"customerName"`
    CustomerPhone string `json:"customerPhone"`
}

func (h *TransactionHandler) now() time.Time {
    if h.Now != nil {
        return h.Now()
    }
    return time.Now()
}

// List handles GET /transactions?page=N: today's sales, newest first, 15
// per page.
func (h *TransactionHandler) List(c echo.Context) error {
    page := 1
    if raw := c.QueryParam("page"); raw != "" {
        n, err := strconv.Atoi(raw)
        if err != nil || n < 1 {
            return badRequest(c, "page must be a positive integer")
        }
        page = n
    }
    from, to := repository.DayBounds(h.now(), h.Location)
    ctx, cancel := withTimeout(c)
    defer cancel()
    data, total, err := h.Transactions.ListCreatedBetween(ctx, from, to, repository.Page{Number: page, Size: TransactionsPageSize})
    if err != nil {
        c.Logger().Errorf("list transactions: %v", err)
        return c.JSON(http.StatusInternalServerError, transactionPage{
            Data: []model.Transaction{}, Page: page, PageSize: TransactionsPageSize,
        })
    }
    return c.JSON(http.StatusOK, transactionPage{
        Data:     data,
        Total:    total,
        Page:     page,
        PageSize: TransactionsPageSize,
        Metadata: repository.CalculateMetadata(total, page, TransactionsPageSize),
    })
}

// Create handles POST /transactions.  The total price is computed from
// the showtime's ticket price; a client-sent total is ignored.
func (h *TransactionHandler) Create(c echo.Context) error {
    var req bookReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid request body")
    }
    trimmed(&req.ShowtimeID, &req.PaymentMethod, &req.PaymentType)
    if req.PaymentMethod == "" {
        req.PaymentMethod = req.PaymentType
    }
    if req.ShowtimeID == "" || req.PaymentMethod == "" {
        return badRequest(c, "showtimeId, seats and paymentMethod are required")
    }
    pm, ok := model.ParsePaymentMethod(req.PaymentMethod)
    if !ok {
        return respondError(c, service.ErrInvalidPayment, "")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    tr, _, err := h.Bookings.Book(ctx, service.BookRequest{
        ShowtimeID:    req.ShowtimeID,
        Seats:         req.Seats,
        PaymentMethod: pm,
        CustomerName:  req.CustomerName,
        CustomerPhone: req.CustomerPhone,
    })
    if err != nil {
        return respondError(c, err, "failed to process transaction")
    }
    return c.JSON(http.StatusCreated, tr)
}

// Cancel handles PUT /transactions/:id/cancel and PUT /transactions with
// the id in the body.  Cancelling twice is not an error.
func (h *TransactionHandler) Cancel(c echo.Context) error {
    var req struct {
        ID string `json:"id"`
    }
    if c.Param("id") == "" {
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
    tr, err := h.Bookings.Cancel(ctx, id)
    if err != nil {
        return respondError(c, err, "failed to cancel transaction")
    }
    return c.JSON(http.StatusOK, tr)
}

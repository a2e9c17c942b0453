package handler // handler defines the HTTP handlers of the admin API

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admin/internal/booking"
    "github.com/iliyamo/cinema-admin/internal/repository"
    "github.com/iliyamo/cinema-admin/internal/service"
    "github.com/iliyamo/cinema-admin/internal/utils"
)

// requestTimeout bounds every store round trip of a handler.
const requestTimeout = 5 * time.Second

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// errorStatus maps domain errors to HTTP status codes.  Conflicts are
// reported as 400 like every other rejected input.
func errorStatus(err error) int {
    switch {
    case errors.Is(err, repository.ErrNotFound),
        errors.Is(err, service.ErrMovieNotFound),
        errors.Is(err, booking.ErrNoCapacity):
        return http.StatusNotFound
    case errors.Is(err, booking.ErrSeatRange),
        errors.Is(err, booking.ErrInsufficientSeats),
        errors.Is(err, booking.ErrPastTime),
        errors.Is(err, booking.ErrConflict),
        errors.Is(err, service.ErrSalesClosed),
        errors.Is(err, service.ErrInvalidPayment),
        errors.Is(err, service.ErrEmailTaken),
        errors.Is(err, service.ErrTicketExists),
        errors.Is(err, service.ErrSeatsBelowSold),
        errors.Is(err, service.ErrTicketHasSales),
        errors.Is(err, repository.ErrDuplicate),
        errors.Is(err, repository.ErrConflict):
        return http.StatusBadRequest
    case errors.Is(err, service.ErrInvalidCredentials),
        errors.Is(err, utils.ErrInvalidToken):
        return http.StatusUnauthorized
    }
    return http.StatusInternalServerError
}

// respondError writes {"error": msg} with the status errorStatus picks.
// Unexpected errors are logged and replaced by fallback so store details
// never reach the client.
func respondError(c echo.Context, err error, fallback string) error {
    status := errorStatus(err)
    if status == http.StatusInternalServerError {
        c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
        return c.JSON(status, echo.Map{"error": fallback})
    }
    msg := err.Error()
    switch {
    case errors.Is(err, repository.ErrNotFound):
        msg = "not found"
    case errors.Is(err, repository.ErrConflict):
        msg = "record is still referenced"
    }
    return c.JSON(status, echo.Map{"error": msg})
}

// badRequest is the response for a malformed or incomplete body.
func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// idFrom returns the :id path parameter, falling back to the "id" query
// parameter and then to bodyID.
func idFrom(c echo.Context, bodyID string) string {
    if id := strings.TrimSpace(c.Param("id")); id != "" {
        return id
    }
    if id := strings.TrimSpace(c.QueryParam("id")); id != "" {
        return id
    }
    return strings.TrimSpace(bodyID)
}

// listError answers a failed list request with an empty array so clients
// can always iterate the body.
func listError(c echo.Context, err error) error {
    c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
    return c.JSON(http.StatusInternalServerError, []any{})
}

func trimmed(s ...*string) {
    for _, p := range s {
        *p = strings.TrimSpace(*p)
    }
}

package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admin/internal/model"
)

// Counter counts the rows of one table.
type Counter interface {
    Count(ctx context.Context) (int, error)
}

// DashboardHandler serves GET /dashboard.
type DashboardHandler struct {
    Movies       Counter
    Showtimes    Counter
    Tickets      Counter
    Transactions Counter
    Users        Counter
    Schedule     Scheduler
}

// Summary returns the row counts and today's showtimes with their movie.
func (h *DashboardHandler) Summary(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()

    var sum model.DashboardSummary
    for _, job := range []struct {
        from Counter
        into *int
    }{
        {h.Movies, &sum.MoviesCount},
        {h.Showtimes, &sum.ShowtimesCount},
        {h.Tickets, &sum.TicketsCount},
        {h.Transactions, &sum.TransactionsCount},
        {h.Users, &sum.UsersCount},
    } {
        n, err := job.from.Count(ctx)
        if err != nil {
            return respondError(c, err, "failed to load dashboard")
        }
        *job.into = n
    }
    today, err := h.Schedule.Today(ctx)
    if err != nil {
        return respondError(c, err, "failed to load dashboard")
    }
    sum.TodayShowtimes = today
    if sum.TodayShowtimes == nil {
        sum.TodayShowtimes = []model.Showtime{}
    }
    return c.JSON(http.StatusOK, sum)
}

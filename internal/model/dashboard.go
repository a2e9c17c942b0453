package model

// DashboardSummary aggregates row counts and the screenings of the
// current day.
type DashboardSummary struct {
    MoviesCount       int        `json:"moviesCount"`
    ShowtimesCount    int        `json:"showtimesCount"`
    TicketsCount      int        `json:"ticketsCount"`
    TransactionsCount int        `json:"transactionsCount"`
    UsersCount        int        `json:"usersCount"`
    TodayShowtimes    []Showtime `json:"todayShowtimes"`
}

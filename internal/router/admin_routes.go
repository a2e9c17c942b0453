package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-admin/internal/handler"
	"github.com/iliyamo/cinema-admin/internal/middleware"
	"github.com/iliyamo/cinema-admin/internal/model"
)

// Admin bundles the handlers behind the ADMIN role.
type Admin struct {
	Dashboard    *handler.DashboardHandler
	Movies       *handler.MovieHandler
	Showtimes    *handler.ShowtimeHandler
	Tickets      *handler.TicketHandler
	Transactions *handler.TransactionHandler
	Users        *handler.UserHandler
}

// adminGroup attaches the admin middleware to each route.  An echo
// group with an empty prefix would also answer unknown paths with 401.
type adminGroup struct {
	e  *echo.Echo
	mw []echo.MiddlewareFunc
}

func (g adminGroup) GET(path string, h echo.HandlerFunc)    { g.e.GET(path, h, g.mw...) }
func (g adminGroup) POST(path string, h echo.HandlerFunc)   { g.e.POST(path, h, g.mw...) }
func (g adminGroup) PUT(path string, h echo.HandlerFunc)    { g.e.PUT(path, h, g.mw...) }
func (g adminGroup) DELETE(path string, h echo.HandlerFunc) { g.e.DELETE(path, h, g.mw...) }

// RegisterAdmin registers the back-office endpoints.  Every route
// requires a valid session with the ADMIN role; extra middleware (the
// response cache) runs after the role check.
func RegisterAdmin(e *echo.Echo, a Admin, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mw := append([]echo.MiddlewareFunc{
		middleware.SessionAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	}, extra...)
	g := adminGroup{e: e, mw: mw}

	g.GET("/dashboard", a.Dashboard.Summary)

	// ---- Movies ----
	g.GET("/movies", a.Movies.List)
	g.GET("/movies/:id", a.Movies.Get)
	g.POST("/movies", a.Movies.Create)
	g.PUT("/movies/:id", a.Movies.Update)
	g.DELETE("/movies/:id", a.Movies.Delete)
	g.DELETE("/movies", a.Movies.Delete) // ?id=

	// ---- Showtimes ----
	g.GET("/showtimes", a.Showtimes.List)
	g.GET("/showtimes/slots", a.Showtimes.Slots)
	g.GET("/showtimes/:id/availability", a.Showtimes.Availability)
	g.POST("/showtimes", a.Showtimes.Create)
	g.PUT("/showtimes/:id", a.Showtimes.Update)
	g.PUT("/showtimes", a.Showtimes.Update) // id in body
	g.DELETE("/showtimes/:id", a.Showtimes.Delete)
	g.DELETE("/showtimes", a.Showtimes.Delete) // id in body

	// ---- Tickets (capacity rows) ----
	g.GET("/tickets", a.Tickets.List)
	g.POST("/tickets", a.Tickets.Create)
	g.PUT("/tickets/:id", a.Tickets.Update)
	g.PUT("/tickets", a.Tickets.Update) // id in body

	// ---- Transactions ----
	g.GET("/transactions", a.Transactions.List)
	g.POST("/transactions", a.Transactions.Create)
	g.PUT("/transactions/:id/cancel", a.Transactions.Cancel)
	g.PUT("/transactions", a.Transactions.Cancel) // id in body

	// ---- Users ----
	g.GET("/users", a.Users.List)
	g.GET("/users/:id", a.Users.Get)
	g.POST("/users", a.Users.Create)
	g.PUT("/users/:id", a.Users.Update)
	g.DELETE("/users/:id", a.Users.Delete)
}

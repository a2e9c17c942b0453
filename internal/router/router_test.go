package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-admin/internal/handler"
	"github.com/iliyamo/cinema-admin/internal/utils"
)

func TestAdminRoutesRequireAdminSession(t *testing.T) {
	const secret = "s"
	e := echo.New()
	RegisterRoutes(e)
	RegisterAdmin(e, Admin{
		Dashboard:    &handler.DashboardHandler{},
		Movies:       &handler.MovieHandler{},
		Showtimes:    &handler.ShowtimeHandler{},
		Tickets:      &handler.TicketHandler{},
		Transactions: &handler.TransactionHandler{},
		Users:        &handler.UserHandler{},
	}, secret)

	member, err := utils.NewSessionToken(secret, "u1", "MEMBER", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/movies", "", http.StatusUnauthorized},
		{http.MethodPost, "/transactions", "", http.StatusUnauthorized},
		{http.MethodGet, "/dashboard", member.Token, http.StatusForbidden},
		{http.MethodDelete, "/users/u2", member.Token, http.StatusForbidden},
		{http.MethodGet, "/no-such-route", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		if tt.token != "" {
			req.Header.Set("Authorization", "Bearer "+tt.token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s %s: status %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

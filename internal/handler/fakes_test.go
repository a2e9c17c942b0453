package handler

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "sort"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-admin/internal/booking"
    "github.com/iliyamo/cinema-admin/internal/model"
    "github.com/iliyamo/cinema-admin/internal/repository"
    "github.com/iliyamo/cinema-admin/internal/service"
    "github.com/iliyamo/cinema-admin/internal/utils"
)

var errStore = errors.New("connection refused")

// call runs h on a fresh echo context.  params are name/value pairs for
// path parameters.
func call(h echo.HandlerFunc, method, target, body string, params ...string) *httptest.ResponseRecorder {
    e := echo.New()
    var req *http.Request
    if body != "" {
        req = httptest.NewRequest(method, target, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    } else {
        req = httptest.NewRequest(method, target, nil)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    var names, values []string
    for i := 0; i+1 < len(params); i += 2 {
        names = append(names, params[i])
        values = append(values, params[i+1])
    }
    c.SetParamNames(names...)
    c.SetParamValues(values...)
    _ = h(c)
    return rec
}

type fakeMovies struct {
    movies map[string]*model.Movie
    err    error
    nextID int
}

func newFakeMovies() *fakeMovies { return &fakeMovies{movies: map[string]*model.Movie{}} }

func (f *fakeMovies) List(context.Context) ([]model.Movie, error) {
    if f.err != nil {
        return nil, f.err
    }
    out := make([]model.Movie, 0, len(f.movies))
    for _, m := range f.movies {
        out = append(out, *m)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (f *fakeMovies) Get(_ context.Context, id string) (*model.Movie, error) {
    m, ok := f.movies[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    cp := *m
    return &cp, nil
}

func (f *fakeMovies) Create(_ context.Context, m *model.Movie) error {
    f.nextID++
    m.ID = "m" + string(rune('0'+f.nextID))
    cp := *m
    f.movies[m.ID] = &cp
    return nil
}

func (f *fakeMovies) Update(_ context.Context, m *model.Movie) error {
    if _, ok := f.movies[m.ID]; !ok {
        return repository.ErrNotFound
    }
    cp := *m
    f.movies[m.ID] = &cp
    return nil
}

func (f *fakeMovies) Delete(_ context.Context, id string) error {
    if _, ok := f.movies[id]; !ok {
        return repository.ErrNotFound
    }
    delete(f.movies, id)
    return nil
}

// fakeScheduler returns err from every call.
type fakeScheduler struct {
    err      error
    gotMovie string
    gotStart time.Time
    gotID    string
    slots    []time.Time
    today    []model.Showtime
}

func (f *fakeScheduler) Create(_ context.Context, movieID string, start time.Time) (*model.Showtime, error) {
    f.gotMovie, f.gotStart = movieID, start
    if f.err != nil {
        return nil, f.err
    }
    return &model.Showtime{ID: "s1", MovieID: movieID, StartTime: start}, nil
}

func (f *fakeScheduler) Update(_ context.Context, id, movieID string, start time.Time) (*model.Showtime, error) {
    f.gotID, f.gotMovie, f.gotStart = id, movieID, start
    if f.err != nil {
        return nil, f.err
    }
    return &model.Showtime{ID: id, MovieID: movieID, StartTime: start}, nil
}

func (f *fakeScheduler) Slots(_ context.Context, movieID string, date time.Time) ([]time.Time, error) {
    f.gotMovie, f.gotStart = movieID, date
    return f.slots, f.err
}

func (f *fakeScheduler) Today(context.Context) ([]model.Showtime, error) {
    return f.today, f.err
}

type fakeShowtimes struct {
    list    []model.Showtime
    deleted []string
    err     error
}

func (f *fakeShowtimes) List(context.Context) ([]model.Showtime, error) { return f.list, f.err }

func (f *fakeShowtimes) Delete(_ context.Context, id string) error {
    if f.err != nil {
        return f.err
    }
    f.deleted = append(f.deleted, id)
    return nil
}

func (f *fakeShowtimes) Get(_ context.Context, id string) (*model.Showtime, error) {
    for _, st := range f.list {
        if st.ID == id {
            cp := st
            return &cp, nil
        }
    }
    return nil, repository.ErrNotFound
}

type fakeTickets struct {
    rows map[string]*model.Ticket
}

func (f *fakeTickets) List(context.Context) ([]model.Ticket, error) {
    out := make([]model.Ticket, 0, len(f.rows))
    for _, t := range f.rows {
        out = append(out, *t)
    }
    return out, nil
}

func (f *fakeTickets) Get(_ context.Context, id string) (*model.Ticket, error) {
    t, ok := f.rows[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    cp := *t
    return &cp, nil
}

// fakeCapacity applies the capacity row rules over fakeTickets.  sold
// holds the completed seats per showtime.
type fakeCapacity struct {
    tickets   *fakeTickets
    showtimes *fakeShowtimes
    sold      map[string]int
}

func (f *fakeCapacity) check(ctx context.Context, t *model.Ticket) error {
    if _, err := f.showtimes.Get(ctx, t.ShowtimeID); err != nil {
        return err
    }
    for _, row := range f.tickets.rows {
        if row.ShowtimeID == t.ShowtimeID && row.ID != t.ID {
            return service.ErrTicketExists
        }
    }
    if f.sold[t.ShowtimeID] > t.Seat {
        return service.ErrSeatsBelowSold
    }
    return nil
}

func (f *fakeCapacity) Create(ctx context.Context, t *model.Ticket) error {
    if err := f.check(ctx, t); err != nil {
        return err
    }
    t.ID = "t" + string(rune('0'+len(f.tickets.rows)+1))
    cp := *t
    f.tickets.rows[t.ID] = &cp
    return nil
}

func (f *fakeCapacity) Update(ctx context.Context, t *model.Ticket) error {
    cur, ok := f.tickets.rows[t.ID]
    if !ok {
        return repository.ErrNotFound
    }
    if cur.ShowtimeID != t.ShowtimeID && f.sold[cur.ShowtimeID] > 0 {
        return service.ErrTicketHasSales
    }
    if err := f.check(ctx, t); err != nil {
        return err
    }
    cp := *t
    f.tickets.rows[t.ID] = &cp
    return nil
}

type fakeBooker struct {
    err    error
    got    service.BookRequest
    cancel string
}

func (f *fakeBooker) Book(_ context.Context, req service.BookRequest) (*model.Transaction, booking.Inventory, error) {
    f.got = req
    if f.err != nil {
        return nil, booking.Inventory{}, f.err
    }
    return &model.Transaction{ID: "tr1", ShowtimeID: req.ShowtimeID, Seats: req.Seats, TotalPrice: int64(req.Seats) * 100,
        PaymentMethod: req.PaymentMethod, Status: model.StatusCompleted}, booking.Inventory{}, nil
}

func (f *fakeBooker) Cancel(_ context.Context, id string) (*model.Transaction, error) {
    f.cancel = id
    if f.err != nil {
        return nil, f.err
    }
    return &model.Transaction{ID: id, Status: model.StatusCancelled}, nil
}

func (f *fakeBooker) Availability(_ context.Context, showtimeID string) (booking.Inventory, error) {
    if f.err != nil {
        return booking.Inventory{}, f.err
    }
    return booking.Inventory{Capacity: 50, Booked: 45, Available: 5}, nil
}

type fakeTransactions struct {
    from, to time.Time
    page     repository.Page
    data     []model.Transaction
    total    int
    err      error
}

func (f *fakeTransactions) ListCreatedBetween(_ context.Context, from, to time.Time, page repository.Page) ([]model.Transaction, int, error) {
    f.from, f.to, f.page = from, to, page
    return f.data, f.total, f.err
}

type fakeUsers struct {
    users  map[string]*model.User
    filter repository.UserFilter
}

func (f *fakeUsers) List(_ context.Context, filter repository.UserFilter) ([]model.User, error) {
    f.filter = filter
    out := make([]model.User, 0)
    for _, u := range f.users {
        if filter.Role != "" && u.Role != filter.Role {
            continue
        }
        out = append(out, *u)
    }
    return out, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
    u, ok := f.users[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    cp := *u
    return &cp, nil
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
    if _, ok := f.users[u.ID]; !ok {
        return repository.ErrNotFound
    }
    for _, other := range f.users {
        if other.ID != u.ID && other.Email == strings.ToLower(u.Email) {
            return repository.ErrDuplicate
        }
    }
    cp := *u
    f.users[u.ID] = &cp
    return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
    if _, ok := f.users[id]; !ok {
        return repository.ErrNotFound
    }
    delete(f.users, id)
    return nil
}

func (f *fakeUsers) CreateUser(_ context.Context, u *model.User, password string) error {
    for _, other := range f.users {
        if other.Email == strings.ToLower(u.Email) {
            return service.ErrEmailTaken
        }
    }
    u.ID = "u" + string(rune('0'+len(f.users)+1))
    u.Email = strings.ToLower(u.Email)
    u.PasswordHash = "hash:" + password
    cp := *u
    f.users[u.ID] = &cp
    return nil
}

type fakeAuth struct {
    users *fakeUsers
}

func (f *fakeAuth) Register(ctx context.Context, name, email, password string) (*model.User, error) {
    u := &model.User{Name: name, Email: email, Role: model.RoleMember}
    if err := f.users.CreateUser(ctx, u, password); err != nil {
        return nil, err
    }
    return u, nil
}

func (f *fakeAuth) Authenticate(_ context.Context, email, password string) (*service.Session, error) {
    for _, u := range f.users.users {
        if u.Email == strings.ToLower(email) && u.PasswordHash == "hash:"+password {
            cp := *u
            return &service.Session{User: &cp, Token: "tok-" + u.ID, Expires: time.Now().Add(time.Hour)}, nil
        }
    }
    return nil, service.ErrInvalidCredentials
}

func (f *fakeAuth) CurrentUser(ctx context.Context, claims *utils.SessionClaims) (*model.User, error) {
    if claims == nil {
        return nil, utils.ErrInvalidToken
    }
    return f.users.GetByID(ctx, claims.Subject)
}

type fixedCount int

func (n fixedCount) Count(context.Context) (int, error) { return int(n), nil }

package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-admin/internal/model"
	"github.com/iliyamo/cinema-admin/internal/queue"
	"github.com/iliyamo/cinema-admin/internal/repository"
)

// memStore keeps every table in memory.  WithTx holds a mutex for the
// whole callback, which is what the capacity row lock gives a real
// database.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	movies       map[string]*model.Movie
	showtimes    map[string]*model.Showtime
	capacity     map[string]*model.Ticket // by showtime id
	transactions map[string]*model.Transaction
	users        map[string]*model.User

	failCreate error
}

func newMemStore() *memStore {
	return &memStore{
		movies:       map[string]*model.Movie{},
		showtimes:    map[string]*model.Showtime{},
		capacity:     map[string]*model.Ticket{},
		transactions: map[string]*model.Transaction{},
		users:        map[string]*model.User{},
	}
}

func (m *memStore) addMovie(title string) *model.Movie {
	mv := &model.Movie{ID: uuid.NewString(), Title: title, Description: "d", Duration: "120"}
	m.movies[mv.ID] = mv
	return mv
}

func (m *memStore) addShowtime(movieID string, start time.Time, seats int, price int64) *model.Showtime {
	st := &model.Showtime{ID: uuid.NewString(), MovieID: movieID, StartTime: start}
	m.showtimes[st.ID] = st
	if seats > 0 {
		m.capacity[st.ID] = &model.Ticket{ID: uuid.NewString(), ShowtimeID: st.ID, Seat: seats, Price: price}
	}
	return st
}

func (m *memStore) transactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transactions)
}

// transactions

type memTransactions struct{ *memStore }

func (m memTransactions) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx)
}

func (m memTransactions) Create(_ context.Context, tr *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	tr.ID = uuid.NewString()
	tr.CreatedAt = time.Now().UTC()
	cp := *tr
	m.transactions[tr.ID] = &cp
	return nil
}

func (m memTransactions) Get(_ context.Context, id string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *tr
	return &cp, nil
}

func (m memTransactions) SumCompletedSeats(_ context.Context, showtimeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := 0
	for _, tr := range m.transactions {
		if tr.ShowtimeID == showtimeID && tr.Status.CountsAgainstCapacity() {
			sum += tr.Seats
		}
	}
	return sum, nil
}

func (m memTransactions) SetStatus(_ context.Context, id string, status model.TransactionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tr, ok := m.transactions[id]
	if !ok {
		return repository.ErrNotFound
	}
	tr.Status = status
	return nil
}

// capacity rows

type memCapacity struct{ *memStore }

func (m memCapacity) CapacityForUpdate(_ context.Context, showtimeID string) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.capacity[showtimeID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m memCapacity) GetForUpdate(_ context.Context, id string) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.capacity {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memCapacity) ExistsForShowtime(_ context.Context, showtimeID, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.capacity[showtimeID]
	return ok && t.ID != excludeID, nil
}

func (m memCapacity) Create(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.capacity[t.ShowtimeID]; ok {
		return repository.ErrDuplicate
	}
	t.ID = uuid.NewString()
	cp := *t
	m.capacity[t.ShowtimeID] = &cp
	return nil
}

func (m memCapacity) Update(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cur *model.Ticket
	for _, row := range m.capacity {
		if row.ID == t.ID {
			cur = row
		}
	}
	if cur == nil {
		return repository.ErrNotFound
	}
	if other, ok := m.capacity[t.ShowtimeID]; ok && other.ID != t.ID {
		return repository.ErrDuplicate
	}
	delete(m.capacity, cur.ShowtimeID)
	cp := *t
	m.capacity[t.ShowtimeID] = &cp
	return nil
}

// showtimes

type memShowtimes struct{ *memStore }

func (m memShowtimes) Get(_ context.Context, id string) (*model.Showtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.showtimes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *st
	if mv, ok := m.movies[st.MovieID]; ok {
		mvc := *mv
		cp.Movie = &mvc
	}
	return &cp, nil
}

func (m memShowtimes) ListByMovie(_ context.Context, movieID string) ([]model.Showtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Showtime, 0)
	for _, st := range m.showtimes {
		if st.MovieID == movieID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (m memShowtimes) ListBetween(_ context.Context, from, to time.Time) ([]model.Showtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Showtime, 0)
	for _, st := range m.showtimes {
		if !st.StartTime.Before(from) && st.StartTime.Before(to) {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (m memShowtimes) Create(_ context.Context, st *model.Showtime) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st.ID = uuid.NewString()
	cp := *st
	m.showtimes[st.ID] = &cp
	return nil
}

func (m memShowtimes) Update(_ context.Context, st *model.Showtime) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.showtimes[st.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.MovieID = st.MovieID
	cur.StartTime = st.StartTime
	return nil
}

// movies

type memMovies struct{ *memStore }

func (m memMovies) Get(_ context.Context, id string) (*model.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *mv
	return &cp, nil
}

// users

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, other := range m.users {
		if other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.TransactionEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(recipient, templateFile string, _ any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, recipient+" "+templateFile)
	return nil
}

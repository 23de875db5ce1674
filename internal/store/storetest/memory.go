// Package storetest provides an in-memory store.Store used by service tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fantasyarena/backend/internal/models"
	"github.com/fantasyarena/backend/internal/store"
)

type data struct {
	users         map[int]models.User
	tournaments   map[int]models.Tournament
	registrations []models.Registration
	teams         []models.TeamRegistration
	transactions  []models.WalletTransaction
	payouts       map[int]models.PayoutRequest
	nextUserID       int
	nextTournamentID int
	nextRegID        int
	nextTeamID       int
	nextTxnID        int
	nextPayoutID     int
}

// MemStore is a map-backed store.Store. WithinTx serializes callers on one
// mutex and rolls the whole state back when fn fails, mirroring the
// commit-or-abort behavior of the SQL store.
type MemStore struct {
	mu   *sync.Mutex
	d    *data
	inTx bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		mu: &sync.Mutex{},
		d: &data{
			users:       make(map[int]models.User),
			tournaments: make(map[int]models.Tournament),
			payouts:     make(map[int]models.PayoutRequest),
		},
	}
}

func (m *MemStore) Users() store.UserStore                 { return &userStore{m} }
func (m *MemStore) Tournaments() store.TournamentStore     { return &tournamentStore{m} }
func (m *MemStore) Registrations() store.RegistrationStore { return &registrationStore{m} }
func (m *MemStore) Transactions() store.TransactionLog     { return &transactionLog{m} }
func (m *MemStore) Payouts() store.PayoutStore             { return &payoutStore{m} }

func (m *MemStore) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.d.clone()
	if err := fn(&MemStore{mu: m.mu, d: m.d, inTx: true}); err != nil {
		*m.d = *snap
		return err
	}
	return nil
}

func (m *MemStore) lock() {
	if !m.inTx {
		m.mu.Lock()
	}
}

func (m *MemStore) unlock() {
	if !m.inTx {
		m.mu.Unlock()
	}
}

// AddUser seeds a user and returns its id.
func (m *MemStore) AddUser(u models.User) int {
	m.lock()
	defer m.unlock()
	m.d.nextUserID++
	u.ID = m.d.nextUserID
	if u.BanStatus == "" {
		u.BanStatus = models.BanStatusActive
	}
	m.d.users[u.ID] = u
	return u.ID
}

// AddTournament seeds a tournament and returns its id.
func (m *MemStore) AddTournament(t models.Tournament) int {
	m.lock()
	defer m.unlock()
	m.d.nextTournamentID++
	t.ID = m.d.nextTournamentID
	if t.Status == "" {
		t.Status = models.TournamentUpcoming
	}
	m.d.tournaments[t.ID] = t
	return t.ID
}

// User returns a seeded user's current state.
func (m *MemStore) User(id int) models.User {
	m.lock()
	defer m.unlock()
	return m.d.users[id]
}

// Tournament returns a seeded tournament's current state.
func (m *MemStore) Tournament(id int) models.Tournament {
	m.lock()
	defer m.unlock()
	return m.d.tournaments[id]
}

// UserTransactions returns the logged wallet transactions for a user, oldest first.
func (m *MemStore) UserTransactions(userID int) []models.WalletTransaction {
	m.lock()
	defer m.unlock()
	var out []models.WalletTransaction
	for _, txn := range m.d.transactions {
		if txn.UserID == userID {
			out = append(out, txn)
		}
	}
	return out
}

// Payout returns a payout request's current state.
func (m *MemStore) Payout(id int) models.PayoutRequest {
	m.lock()
	defer m.unlock()
	return m.d.payouts[id]
}

// Teams returns all team registration rows.
func (m *MemStore) Teams() []models.TeamRegistration {
	m.lock()
	defer m.unlock()
	return append([]models.TeamRegistration(nil), m.d.teams...)
}

// Registrations returns all per-seat registration rows for a tournament.
func (m *MemStore) TournamentRegistrations(tournamentID int) []models.Registration {
	m.lock()
	defer m.unlock()
	var out []models.Registration
	for _, reg := range m.d.registrations {
		if reg.TournamentID == tournamentID {
			out = append(out, reg)
		}
	}
	return out
}

func (d *data) clone() *data {
	c := &data{
		users:         make(map[int]models.User, len(d.users)),
		tournaments:   make(map[int]models.Tournament, len(d.tournaments)),
		registrations: append([]models.Registration(nil), d.registrations...),
		teams:         append([]models.TeamRegistration(nil), d.teams...),
		transactions:  append([]models.WalletTransaction(nil), d.transactions...),
		payouts:       make(map[int]models.PayoutRequest, len(d.payouts)),
		nextUserID:       d.nextUserID,
		nextTournamentID: d.nextTournamentID,
		nextRegID:        d.nextRegID,
		nextTeamID:       d.nextTeamID,
		nextTxnID:        d.nextTxnID,
		nextPayoutID:     d.nextPayoutID,
	}
	for id, u := range d.users {
		c.users[id] = u
	}
	for id, t := range d.tournaments {
		c.tournaments[id] = t
	}
	for id, p := range d.payouts {
		c.payouts[id] = p
	}
	return c
}

type userStore struct{ m *MemStore }

func (s *userStore) GetByID(ctx context.Context, id int) (*models.User, error) {
	s.m.lock()
	defer s.m.unlock()
	u, ok := s.m.d.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *userStore) GetByIDForUpdate(ctx context.Context, id int) (*models.User, error) {
	return s.GetByID(ctx, id)
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.m.lock()
	defer s.m.unlock()
	for _, u := range s.m.d.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *userStore) ListByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	s.m.lock()
	defer s.m.unlock()
	var out []models.User
	for _, name := range usernames {
		for _, u := range s.m.d.users {
			if u.Username == name {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (s *userStore) UpdateBalances(ctx context.Context, id int, deposit, winnings float64) error {
	s.m.lock()
	defer s.m.unlock()
	u, ok := s.m.d.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.DepositBalance = deposit
	u.WinningsBalance = winnings
	s.m.d.users[id] = u
	return nil
}

type tournamentStore struct{ m *MemStore }

func (s *tournamentStore) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	s.m.lock()
	defer s.m.unlock()
	t, ok := s.m.d.tournaments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *tournamentStore) GetByIDForUpdate(ctx context.Context, id int) (*models.Tournament, error) {
	return s.GetByID(ctx, id)
}

func (s *tournamentStore) IncrementParticipants(ctx context.Context, id, delta int) error {
	s.m.lock()
	defer s.m.unlock()
	t, ok := s.m.d.tournaments[id]
	if !ok {
		return store.ErrNotFound
	}
	if t.CurrentParticipants+delta > t.MaxParticipants {
		return store.ErrCapacityExceeded
	}
	t.CurrentParticipants += delta
	s.m.d.tournaments[id] = t
	return nil
}

type registrationStore struct{ m *MemStore }

func (s *registrationStore) Exists(ctx context.Context, userID, tournamentID int) (bool, error) {
	s.m.lock()
	defer s.m.unlock()
	return s.exists(userID, tournamentID), nil
}

func (s *registrationStore) exists(userID, tournamentID int) bool {
	for _, reg := range s.m.d.registrations {
		if reg.UserID == userID && reg.TournamentID == tournamentID {
			return true
		}
	}
	return false
}

func (s *registrationStore) ListRegistered(ctx context.Context, userIDs []int, tournamentID int) ([]int, error) {
	s.m.lock()
	defer s.m.unlock()
	var out []int
	for _, id := range userIDs {
		if s.exists(id, tournamentID) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *registrationStore) Insert(ctx context.Context, reg *models.Registration) error {
	s.m.lock()
	defer s.m.unlock()
	if s.exists(reg.UserID, reg.TournamentID) {
		return store.ErrDuplicateRegistration
	}
	s.m.d.nextRegID++
	row := *reg
	row.ID = s.m.d.nextRegID
	row.RegisteredAt = time.Now()
	s.m.d.registrations = append(s.m.d.registrations, row)
	return nil
}

func (s *registrationStore) InsertTeam(ctx context.Context, team *models.TeamRegistration) (int, error) {
	s.m.lock()
	defer s.m.unlock()
	s.m.d.nextTeamID++
	row := *team
	row.ID = s.m.d.nextTeamID
	row.CreatedAt = time.Now()
	s.m.d.teams = append(s.m.d.teams, row)
	return row.ID, nil
}

type transactionLog struct{ m *MemStore }

func (s *transactionLog) Append(ctx context.Context, entry *models.WalletTransaction) error {
	s.m.lock()
	defer s.m.unlock()
	s.m.d.nextTxnID++
	row := *entry
	row.ID = s.m.d.nextTxnID
	row.CreatedAt = time.Now()
	s.m.d.transactions = append(s.m.d.transactions, row)
	return nil
}

func (s *transactionLog) ListByUser(ctx context.Context, userID int) ([]models.WalletTransaction, error) {
	s.m.lock()
	defer s.m.unlock()
	var out []models.WalletTransaction
	for _, txn := range s.m.d.transactions {
		if txn.UserID == userID {
			out = append(out, txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type payoutStore struct{ m *MemStore }

func (s *payoutStore) Insert(ctx context.Context, req *models.PayoutRequest) (int, error) {
	s.m.lock()
	defer s.m.unlock()
	s.m.d.nextPayoutID++
	row := *req
	row.ID = s.m.d.nextPayoutID
	row.RequestedAt = time.Now()
	s.m.d.payouts[row.ID] = row
	return row.ID, nil
}

func (s *payoutStore) GetByIDForUpdate(ctx context.Context, id int) (*models.PayoutRequest, error) {
	s.m.lock()
	defer s.m.unlock()
	p, ok := s.m.d.payouts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *payoutStore) Resolve(ctx context.Context, id int, status string, processedBy int, notes string) error {
	s.m.lock()
	defer s.m.unlock()
	p, ok := s.m.d.payouts[id]
	if !ok || p.Status != models.PayoutPending {
		return store.ErrNotFound
	}
	p.Status = status
	p.ProcessedAt.Time = time.Now()
	p.ProcessedAt.Valid = true
	p.ProcessedBy.Int64 = int64(processedBy)
	p.ProcessedBy.Valid = true
	p.AdminNotes.String = notes
	p.AdminNotes.Valid = notes != ""
	s.m.d.payouts[id] = p
	return nil
}

func (s *payoutStore) ListPending(ctx context.Context) ([]models.PayoutRequest, error) {
	s.m.lock()
	defer s.m.unlock()
	var out []models.PayoutRequest
	for _, p := range s.m.d.payouts {
		if p.Status == models.PayoutPending {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

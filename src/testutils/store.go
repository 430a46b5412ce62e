package testutils

import (
	"context"
	"sort"
	"sync"
	"time"

	"investgame/src/models"
	"investgame/src/repositories"
	"investgame/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Store is an in-memory stand-in for the PostgreSQL repositories. Its
// WithTransaction runs one transaction at a time and restores the previous
// state when fn fails, which is enough to exercise commit and rollback paths
// and the lock-protected balance check. Repository calls receive a nil tx.
// Written amounts are scaled like the NUMERIC columns they stand in for.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users     map[int]models.User
	stocks    map[int]models.Stock
	holdings  []models.Holding
	snapshots []models.PriceSnapshot
	control   models.RefreshControl

	nextUserID     int
	nextStockID    int
	nextHoldingID  int
	nextSnapshotID int

	failures map[string]error
}

func NewStore() *Store {
	return &Store{
		users:    map[int]models.User{},
		stocks:   map[int]models.Stock{},
		failures: map[string]error{},
	}
}

type storeState struct {
	users     map[int]models.User
	stocks    map[int]models.Stock
	holdings  []models.Holding
	snapshots []models.PriceSnapshot
	control   models.RefreshControl
}

func (s *Store) save() storeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := storeState{
		users:     make(map[int]models.User, len(s.users)),
		stocks:    make(map[int]models.Stock, len(s.stocks)),
		holdings:  append([]models.Holding(nil), s.holdings...),
		snapshots: append([]models.PriceSnapshot(nil), s.snapshots...),
		control:   s.control,
	}
	for k, v := range s.users {
		st.users[k] = v
	}
	for k, v := range s.stocks {
		st.stocks[k] = v
	}
	return st
}

func (s *Store) restore(st storeState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = st.users
	s.stocks = st.stocks
	s.holdings = st.holdings
	s.snapshots = st.snapshots
	s.control = st.control
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	saved := s.save()
	if err := fn(ctx, nil); err != nil {
		s.restore(saved)
		return err
	}
	return nil
}

// FailOn makes the named operation (for example "snapshots.Create") return err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	return s.failures[op]
}

// Seeding and inspection helpers.

func (s *Store) AddUser(name string, balance string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	u := models.User{
		ID:          s.nextUserID,
		Name:        name,
		CashBalance: utils.RoundCurrency(decimal.RequireFromString(balance)),
		CreatedAt:   time.Now(),
	}
	s.users[u.ID] = u
	return u
}

// AddStock adds a stock; an empty price leaves it unpriced.
func (s *Store) AddStock(ticker string, price string) models.Stock {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextStockID++
	st := models.Stock{ID: s.nextStockID, Name: ticker, Ticker: ticker}
	if price != "" {
		st.CurrentPrice = decimal.NewNullDecimal(utils.RoundPrice(decimal.RequireFromString(price)))
	}
	s.stocks[st.ID] = st
	return st
}

func (s *Store) AddHolding(userID, stockID, quantity int, price string) models.Holding {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHoldingID++
	h := models.Holding{
		ID:            s.nextHoldingID,
		UserID:        userID,
		StockID:       stockID,
		Quantity:      quantity,
		PurchasePrice: utils.RoundPrice(decimal.RequireFromString(price)),
		PurchasedAt:   time.Now(),
	}
	s.holdings = append(s.holdings, h)
	return h
}

func (s *Store) User(id int) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *Store) Stock(id int) models.Stock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stocks[id]
}

func (s *Store) HoldingsOf(userID int) []models.Holding {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Holding
	for _, h := range s.holdings {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out
}

func (s *Store) AllSnapshots() []models.PriceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PriceSnapshot(nil), s.snapshots...)
}

func (s *Store) LastRefreshedAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.control.LastRefreshedAt
}

func (s *Store) SetLastRefreshedAt(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.control.LastRefreshedAt = &at
}

// Repository views.

func (s *Store) Users() repositories.UserRepository { return userStore{s} }
func (s *Store) Stocks() repositories.StockRepository { return stockStore{s} }
func (s *Store) Holdings() repositories.HoldingRepository { return holdingStore{s} }
func (s *Store) Snapshots() repositories.PriceSnapshotRepository { return snapshotStore{s} }
func (s *Store) RefreshControl() repositories.RefreshControlRepository { return controlStore{s} }
func (s *Store) Leaderboard() repositories.LeaderboardRepository { return leaderboardStore{s} }

type userStore struct{ s *Store }

func (r userStore) Create(_ context.Context, u *models.User, _ pgx.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.Create"); err != nil {
		return err
	}
	r.s.nextUserID++
	u.ID = r.s.nextUserID
	u.CreatedAt = time.Now()
	stored := *u
	stored.CashBalance = utils.RoundCurrency(stored.CashBalance)
	r.s.users[u.ID] = stored
	return nil
}

func (r userStore) GetByID(_ context.Context, userID int, _ pgx.Tx) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r userStore) LockBalance(_ context.Context, userID int, _ pgx.Tx) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return decimal.Zero, repositories.ErrNotFound
	}
	return u.CashBalance, nil
}

func (r userStore) DebitBalance(_ context.Context, userID int, amount decimal.Decimal, _ pgx.Tx) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.DebitBalance"); err != nil {
		return decimal.Zero, err
	}
	u, ok := r.s.users[userID]
	if !ok {
		return decimal.Zero, repositories.ErrNotFound
	}
	u.CashBalance = utils.RoundCurrency(u.CashBalance.Sub(amount))
	r.s.users[userID] = u
	return u.CashBalance, nil
}

type stockStore struct{ s *Store }

func (r stockStore) GetAll(_ context.Context, _ pgx.Tx) ([]models.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stocks := make([]models.Stock, 0, len(r.s.stocks))
	for _, st := range r.s.stocks {
		stocks = append(stocks, st)
	}
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].ID < stocks[j].ID })
	return stocks, nil
}

func (r stockStore) GetByID(_ context.Context, stockID int) (*models.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stocks[stockID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &st, nil
}

func (r stockStore) UpdatePrice(_ context.Context, stockID int, price decimal.Decimal, at time.Time, _ pgx.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("stocks.UpdatePrice"); err != nil {
		return err
	}
	st, ok := r.s.stocks[stockID]
	if !ok {
		return repositories.ErrNotFound
	}
	st.CurrentPrice = decimal.NewNullDecimal(utils.RoundPrice(price))
	st.PriceUpdatedAt = &at
	r.s.stocks[stockID] = st
	return nil
}

func (r stockStore) SetPriceIfNull(_ context.Context, stockID int, price decimal.Decimal, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stocks[stockID]
	if !ok || st.CurrentPrice.Valid {
		return false, nil
	}
	st.CurrentPrice = decimal.NewNullDecimal(utils.RoundPrice(price))
	st.PriceUpdatedAt = &at
	r.s.stocks[stockID] = st
	return true, nil
}

type holdingStore struct{ s *Store }

func (r holdingStore) Create(_ context.Context, h *models.Holding, _ pgx.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("holdings.Create"); err != nil {
		return err
	}
	r.s.nextHoldingID++
	h.ID = r.s.nextHoldingID
	h.PurchasedAt = time.Now()
	stored := *h
	stored.PurchasePrice = utils.RoundPrice(stored.PurchasePrice)
	r.s.holdings = append(r.s.holdings, stored)
	return nil
}

func (r holdingStore) GetByUserID(_ context.Context, userID int) ([]models.HoldingDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.HoldingDetail
	for i := len(r.s.holdings) - 1; i >= 0; i-- {
		h := r.s.holdings[i]
		if h.UserID != userID {
			continue
		}
		st := r.s.stocks[h.StockID]
		out = append(out, models.HoldingDetail{
			Holding:      h,
			StockName:    st.Name,
			Ticker:       st.Ticker,
			CurrentPrice: st.CurrentPrice,
		})
	}
	return out, nil
}

type snapshotStore struct{ s *Store }

func (r snapshotStore) Create(_ context.Context, snap *models.PriceSnapshot, _ pgx.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("snapshots.Create"); err != nil {
		return err
	}
	r.s.nextSnapshotID++
	snap.ID = r.s.nextSnapshotID
	stored := *snap
	stored.Price = utils.RoundPrice(stored.Price)
	r.s.snapshots = append(r.s.snapshots, stored)
	return nil
}

func (r snapshotStore) GetByStockID(_ context.Context, stockID int) ([]models.PriceSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.PriceSnapshot
	for _, snap := range r.s.snapshots {
		if snap.StockID == stockID {
			out = append(out, snap)
		}
	}
	return out, nil
}

type controlStore struct{ s *Store }

func (r controlStore) Lock(_ context.Context, _ pgx.Tx) (*models.RefreshControl, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("control.Lock"); err != nil {
		return nil, err
	}
	rc := r.s.control
	return &rc, nil
}

func (r controlStore) SetLastRefreshedAt(_ context.Context, at time.Time, _ pgx.Tx) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.control.LastRefreshedAt = &at
	return nil
}

type leaderboardStore struct{ s *Store }

func (r leaderboardStore) GetStandings(_ context.Context) ([]models.LeaderboardEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entries := make([]models.LeaderboardEntry, 0, len(r.s.users))
	for _, u := range r.s.users {
		value := decimal.Zero
		for _, h := range r.s.holdings {
			if h.UserID != u.ID {
				continue
			}
			if st := r.s.stocks[h.StockID]; st.CurrentPrice.Valid {
				value = value.Add(st.CurrentPrice.Decimal.Mul(decimal.NewFromInt(int64(h.Quantity))))
			}
		}
		entries = append(entries, models.LeaderboardEntry{
			UserID:      u.ID,
			Name:        u.Name,
			CashBalance: u.CashBalance,
			StockValue:  value,
			Total:       u.CashBalance.Add(value),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Total.Equal(entries[j].Total) {
			return entries[i].Total.GreaterThan(entries[j].Total)
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries, nil
}

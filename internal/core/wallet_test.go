package core

import (
	"context"
	"errors"
	"testing"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/shopspring/decimal"
)

// mapUsers is a minimal UserRepository that can be told to lose races.
type mapUsers struct {
	users     map[domain.UserID]*domain.User
	conflicts int
	calls     int
}

func (m *mapUsers) Create(_ context.Context, u *domain.User) error {
	m.users[u.ID] = u.Clone()
	return nil
}

func (m *mapUsers) Get(_ context.Context, id domain.UserID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (m *mapUsers) List(context.Context) ([]*domain.User, error) { return nil, nil }

func (m *mapUsers) Delete(_ context.Context, id domain.UserID) error {
	delete(m.users, id)
	return nil
}

func (m *mapUsers) Update(_ context.Context, ids []domain.UserID, fn func(map[domain.UserID]*domain.User) error) (map[domain.UserID]*domain.User, error) {
	m.calls++
	if m.conflicts > 0 {
		m.conflicts--
		return nil, domain.ErrConcurrencyConflict
	}
	work := map[domain.UserID]*domain.User{}
	for _, id := range ids {
		u, ok := m.users[id]
		if !ok {
			return nil, domain.ErrUserNotFound
		}
		work[id] = u.Clone()
	}
	if err := fn(work); err != nil {
		return nil, err
	}
	for id, u := range work {
		m.users[id] = u
	}
	return work, nil
}

type sliceJournal struct {
	recs []domain.PurchaseRecord
}

func (j *sliceJournal) Append(_ context.Context, recs ...domain.PurchaseRecord) error {
	j.recs = append(j.recs, recs...)
	return nil
}

func (j *sliceJournal) ListByUser(context.Context, domain.UserID, int) ([]domain.PurchaseRecord, error) {
	return j.recs, nil
}

func newWallet(users ...*domain.User) (*Wallet, *mapUsers, *sliceJournal) {
	repo := &mapUsers{users: map[domain.UserID]*domain.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	j := &sliceJournal{}
	return &Wallet{Users: repo, Journal: j, Levels: DefaultLevels(), CashPerEarning: decimal.RequireFromString("0.015")}, repo, j
}

func TestDebitNeverGoesNegative(t *testing.T) {
	u := &domain.User{ID: "u", Diamonds: 5}
	if err := Debit(u, 6); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("got %v", err)
	}
	if u.Diamonds != 5 || u.TotalSent != 0 {
		t.Fatalf("mutated on failure: %+v", u)
	}
	if err := Debit(u, 5); err != nil {
		t.Fatal(err)
	}
	if u.Diamonds != 0 || u.TotalSent != 5 {
		t.Fatalf("unexpected %+v", u)
	}
	if err := Debit(u, -1); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("negative debit: %v", err)
	}
}

func TestWalletGrantXPLevelsUp(t *testing.T) {
	w, _, _ := newWallet(&domain.User{ID: "u", Level: 1})
	u, err := w.GrantXP(context.Background(), "u", 300)
	if err != nil {
		t.Fatal(err)
	}
	if u.Level != 3 || u.XP != 0 {
		t.Fatalf("level=%d xp=%d", u.Level, u.XP)
	}
}

func TestWalletWithdrawRoundsCash(t *testing.T) {
	w, _, j := newWallet(&domain.User{ID: "u", Earnings: 10})
	u, cash, err := w.Withdraw(context.Background(), "u", 7)
	if err != nil {
		t.Fatal(err)
	}
	if u.Earnings != 3 {
		t.Fatalf("earnings %d", u.Earnings)
	}
	if !cash.Equal(decimal.RequireFromString("0.11")) {
		t.Fatalf("cash %s", cash)
	}
	if len(j.recs) != 1 || j.recs[0].Earnings != -7 || j.recs[0].ID == "" {
		t.Fatalf("journal %+v", j.recs)
	}
	if _, _, err := w.Withdraw(context.Background(), "u", 4); !errors.Is(err, domain.ErrInsufficientEarnings) {
		t.Fatalf("got %v", err)
	}
}

func TestUpdateWithRetryRetriesOnce(t *testing.T) {
	w, repo, _ := newWallet(&domain.User{ID: "u"})
	repo.conflicts = 1
	if _, err := w.Recharge(context.Background(), "u", 10); err != nil {
		t.Fatalf("single conflict not retried: %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("calls %d", repo.calls)
	}

	repo.conflicts = 2
	repo.calls = 0
	_, err := w.Recharge(context.Background(), "u", 10)
	if !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("got %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("calls %d", repo.calls)
	}
}

package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Debit takes amount diamonds from u. It never leaves a negative balance.
func Debit(u *domain.User, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	if u.Diamonds < amount {
		return domain.ErrInsufficientFunds
	}
	u.Diamonds -= amount
	u.TotalSent += amount
	return nil
}

// Credit adds amount to u's earnings.
func Credit(u *domain.User, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	u.Earnings += amount
	u.TotalReceived += amount
	return nil
}

// GrantXP adds xp to u and applies level-ups from t.
func GrantXP(u *domain.User, t LevelTable, amount int64) int {
	level, xp, gained := t.Apply(u.Level, u.XP, amount)
	u.Level, u.XP = level, xp
	return gained
}

// Wallet runs single-user economic operations on top of the user store.
// Multi-user transactions compose Debit/Credit/GrantXP inside one Update.
type Wallet struct {
	Users   UserRepository
	Journal Journal
	Levels  LevelTable
	// CashPerEarning converts one unit of earnings to real currency.
	CashPerEarning decimal.Decimal
}

func (w *Wallet) Debit(ctx context.Context, id domain.UserID, amount int64) (*domain.User, error) {
	return w.updateOne(ctx, id, func(u *domain.User) error { return Debit(u, amount) })
}

func (w *Wallet) Credit(ctx context.Context, id domain.UserID, amount int64) (*domain.User, error) {
	return w.updateOne(ctx, id, func(u *domain.User) error { return Credit(u, amount) })
}

func (w *Wallet) GrantXP(ctx context.Context, id domain.UserID, amount int64) (*domain.User, error) {
	if amount < 0 {
		return nil, domain.ErrInvalidAmount
	}
	return w.updateOne(ctx, id, func(u *domain.User) error {
		GrantXP(u, w.Levels, amount)
		return nil
	})
}

// Recharge adds purchased diamonds.
func (w *Wallet) Recharge(ctx context.Context, id domain.UserID, amount int64) (*domain.User, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	u, err := w.updateOne(ctx, id, func(u *domain.User) error {
		u.Diamonds += amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.record(ctx, domain.PurchaseRecord{UserID: id, Kind: domain.RecordRecharge, Diamonds: amount})
	return u, nil
}

// Withdraw converts amount earnings to cash and returns the cash value.
func (w *Wallet) Withdraw(ctx context.Context, id domain.UserID, amount int64) (*domain.User, decimal.Decimal, error) {
	if amount <= 0 {
		return nil, decimal.Zero, domain.ErrInvalidAmount
	}
	u, err := w.updateOne(ctx, id, func(u *domain.User) error {
		if u.Earnings < amount {
			return domain.ErrInsufficientEarnings
		}
		u.Earnings -= amount
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	cash := w.CashPerEarning.Mul(decimal.NewFromInt(amount)).Round(2)
	w.record(ctx, domain.PurchaseRecord{UserID: id, Kind: domain.RecordWithdraw, Earnings: -amount, Cash: cash})
	return u, cash, nil
}

// Record appends audit rows. Failures are logged, never returned: the
// economic mutation they describe has already been committed.
func (w *Wallet) Record(ctx context.Context, recs ...domain.PurchaseRecord) {
	w.record(ctx, recs...)
}

func (w *Wallet) record(ctx context.Context, recs ...domain.PurchaseRecord) {
	if w.Journal == nil || len(recs) == 0 {
		return
	}
	now := time.Now().UTC()
	for i := range recs {
		if recs[i].ID == "" {
			recs[i].ID = uuid.NewString()
		}
		if recs[i].CreatedAt.IsZero() {
			recs[i].CreatedAt = now
		}
	}
	if err := w.Journal.Append(ctx, recs...); err != nil {
		log.Error().Err(err).Str("module", "core.wallet").Str("user", string(recs[0].UserID)).Str("kind", string(recs[0].Kind)).Msg("journal append failed")
	}
}

func (w *Wallet) updateOne(ctx context.Context, id domain.UserID, fn func(*domain.User) error) (*domain.User, error) {
	out, err := UpdateWithRetry(ctx, w.Users, []domain.UserID{id}, func(m map[domain.UserID]*domain.User) error {
		return fn(m[id])
	})
	if err != nil {
		return nil, err
	}
	return out[id], nil
}

// UpdateWithRetry retries a conflicting Update once before giving up.
func UpdateWithRetry(ctx context.Context, users UserRepository, ids []domain.UserID, fn func(map[domain.UserID]*domain.User) error) (map[domain.UserID]*domain.User, error) {
	out, err := users.Update(ctx, ids, fn)
	if err == nil || !isConflict(err) {
		return out, err
	}
	log.Warn().Str("module", "core.wallet").Int("users", len(ids)).Msg("update conflict, retrying once")
	out, err = users.Update(ctx, ids, fn)
	if err != nil && isConflict(err) {
		return nil, fmt.Errorf("retry update: %w", err)
	}
	return out, err
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConcurrencyConflict)
}

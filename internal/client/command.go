package client

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrCommandState = errors.New("command used out of order")

// Wallet is the client-side copy of the signed-in user's balances that the
// UI renders. Optimistic commands mutate it before the server answers.
type Wallet struct {
	mu   sync.Mutex
	user domain.User
}

func NewWallet(u domain.User) *Wallet {
	return &Wallet{user: u}
}

func (w *Wallet) Snapshot() domain.User {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.user
}

// Set replaces the local copy with the server's view.
func (w *Wallet) Set(u domain.User) {
	w.mu.Lock()
	w.user = u
	w.mu.Unlock()
}

func (w *Wallet) spend(total int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.user.Diamonds < total {
		return domain.ErrInsufficientFunds
	}
	w.user.Diamonds -= total
	w.user.TotalSent += total
	return nil
}

func (w *Wallet) refund(total int64) {
	w.mu.Lock()
	w.user.Diamonds += total
	w.user.TotalSent -= total
	w.mu.Unlock()
}

type commandState int

const (
	stateNew commandState = iota
	stateApplied
	stateExecuted
	stateDone
)

// GiftCommand sends a gift optimistically: Apply debits the local wallet
// and, when Board is set, credits the sender's contribution and the room's
// battle score right away. Execute calls the server, and then exactly one
// of Commit or Revert settles the local state.
type GiftCommand struct {
	Client   *Client
	Wallet   *Wallet
	Board    *Board
	Room     domain.RoomID
	Gift     domain.Gift
	Quantity int64

	state  commandState
	total  int64
	sender domain.UserID
	scored bool
	result *GiftResult
}

func (g *GiftCommand) Apply() error {
	if g.state != stateNew {
		return ErrCommandState
	}
	if g.Quantity <= 0 || (g.Gift.Price > 0 && g.Quantity > math.MaxInt64/g.Gift.Price) {
		return domain.ErrInvalidQuantity
	}
	total := g.Gift.Price * g.Quantity
	if err := g.Wallet.spend(total); err != nil {
		return err
	}
	g.total = total
	g.sender = g.Wallet.Snapshot().ID
	if g.Board != nil {
		g.scored = g.Board.add(g.sender, total)
	}
	g.state = stateApplied
	return nil
}

func (g *GiftCommand) Execute(ctx context.Context) (*GiftResult, error) {
	if g.state != stateApplied {
		return nil, ErrCommandState
	}
	res, err := g.Client.SendGift(ctx, g.Room, g.sender, g.Gift.Name, g.Quantity)
	if err != nil {
		return nil, err
	}
	g.result = res
	g.state = stateExecuted
	return res, nil
}

// Commit adopts the sender as the server returned it.
func (g *GiftCommand) Commit() error {
	if g.state != stateExecuted {
		return ErrCommandState
	}
	if g.result.Sender != nil {
		g.Wallet.Set(*g.result.Sender)
	}
	g.state = stateDone
	return nil
}

// Revert undoes exactly what Apply did.
func (g *GiftCommand) Revert() error {
	if g.state != stateApplied {
		return ErrCommandState
	}
	g.Wallet.refund(g.total)
	if g.Board != nil {
		g.Board.remove(g.sender, g.total, g.scored)
	}
	g.state = stateDone
	return nil
}

// Run drives the whole cycle. On failure the local wallet is reverted and
// then re-synced from the server, which may have moved on meanwhile.
func (g *GiftCommand) Run(ctx context.Context) (*GiftResult, error) {
	if err := g.Apply(); err != nil {
		return nil, err
	}
	res, err := g.Execute(ctx)
	if err != nil {
		_ = g.Revert()
		g.resync(ctx)
		return nil, err
	}
	return res, g.Commit()
}

func (g *GiftCommand) resync(ctx context.Context) {
	id := g.Wallet.Snapshot().ID
	u, err := g.Client.User(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("module", "client").Str("user", string(id)).Msg("wallet resync failed")
		return
	}
	g.Wallet.Set(*u)
}

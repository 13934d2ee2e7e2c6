package orch

import (
	"context"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/shopspring/decimal"
)

func (o *Orchestrator) Recharge(ctx context.Context, actor, id domain.UserID, amount int64) (*domain.User, error) {
	if actor != id {
		return nil, domain.ErrUnauthorized
	}
	u, err := o.Wallet.Recharge(ctx, id, amount)
	if err != nil {
		return nil, err
	}
	o.Fanout.SendToUser(id, domain.UserUpdated{User: *u})
	return u, nil
}

func (o *Orchestrator) Withdraw(ctx context.Context, actor, id domain.UserID, amount int64) (*domain.User, decimal.Decimal, error) {
	if actor != id {
		return nil, decimal.Zero, domain.ErrUnauthorized
	}
	u, cash, err := o.Wallet.Withdraw(ctx, id, amount)
	if err != nil {
		return nil, decimal.Zero, err
	}
	o.Fanout.SendToUser(id, domain.UserUpdated{User: *u})
	return u, cash, nil
}

func (o *Orchestrator) Transactions(ctx context.Context, actor, id domain.UserID, limit int) ([]domain.PurchaseRecord, error) {
	if actor != id {
		return nil, domain.ErrUnauthorized
	}
	if o.Wallet.Journal == nil {
		return nil, nil
	}
	return o.Wallet.Journal.ListByUser(ctx, id, limit)
}

package registry

import (
	"context"
	"errors"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
)

type balanceLedger struct {
	accounts table[domain.AccountBalance]
}

// NewBalanceLedger creates the balance ledger over the "accounts" table, one scope per owner.
func NewBalanceLedger(store portsrepo.RecordStore) portsrepo.BalanceLedger {
	return &balanceLedger{accounts: newTable[domain.AccountBalance](store, domain.TableAccounts)}
}

var _ portsrepo.BalanceLedger = (*balanceLedger)(nil)

func (l *balanceLedger) FindBalance(ctx context.Context, owner domain.AccountID, code domain.SymbolCode) (*domain.AccountBalance, error) {
	bal, _, err := l.accounts.get(ctx, string(owner), string(code))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "no %s balance for %s", code, owner)
		}
		return nil, err
	}
	return bal, nil
}

func (l *balanceLedger) ListBalances(ctx context.Context, owner domain.AccountID, after domain.SymbolCode, limit int) ([]domain.AccountBalance, error) {
	return l.accounts.list(ctx, string(owner), string(after), limit)
}

func (l *balanceLedger) Credit(ctx context.Context, owner domain.AccountID, quantity domain.Amount, payer domain.AccountID) (*domain.AccountBalance, error) {
	bal, rec, err := l.accounts.get(ctx, string(owner), string(quantity.Code()))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		created := domain.AccountBalance{Owner: owner, Balance: quantity}
		if err := l.accounts.put(ctx, string(owner), string(quantity.Code()), created, payer); err != nil {
			return nil, err
		}
		return &created, nil
	}

	sum, err := bal.Balance.Add(quantity)
	if err != nil {
		return nil, err
	}
	bal.Balance = sum
	if err := l.accounts.put(ctx, string(owner), string(quantity.Code()), *bal, rec.Payer); err != nil {
		return nil, err
	}
	return bal, nil
}

func (l *balanceLedger) Debit(ctx context.Context, owner domain.AccountID, quantity domain.Amount) (*domain.AccountBalance, error) {
	bal, rec, err := l.accounts.get(ctx, string(owner), string(quantity.Code()))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrInsufficientBalance, "no %s balance object found for %s", quantity.Code(), owner)
		}
		return nil, err
	}
	less, err := bal.Balance.LessThan(quantity)
	if err != nil {
		return nil, err
	}
	if less {
		return nil, apperrors.Wrap(apperrors.ErrInsufficientBalance, "%s holds %s, %s requested", owner, bal.Balance, quantity)
	}
	diff, err := bal.Balance.Sub(quantity)
	if err != nil {
		return nil, err
	}
	bal.Balance = diff
	if err := l.accounts.put(ctx, string(owner), string(quantity.Code()), *bal, rec.Payer); err != nil {
		return nil, err
	}
	return bal, nil
}

func (l *balanceLedger) Open(ctx context.Context, owner domain.AccountID, symbol domain.Symbol, payer domain.AccountID) (bool, error) {
	exists, err := l.accounts.exists(ctx, string(owner), string(symbol.Code))
	if err != nil || exists {
		return false, err
	}
	zero := domain.AccountBalance{Owner: owner, Balance: domain.ZeroAmount(symbol)}
	if err := l.accounts.put(ctx, string(owner), string(symbol.Code), zero, payer); err != nil {
		return false, err
	}
	return true, nil
}

func (l *balanceLedger) Close(ctx context.Context, owner domain.AccountID, code domain.SymbolCode) (bool, error) {
	bal, _, err := l.accounts.get(ctx, string(owner), string(code))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !bal.Balance.IsZero() {
		return false, apperrors.Wrap(apperrors.ErrNonZeroBalance, "%s still holds %s", owner, bal.Balance)
	}
	if err := l.accounts.erase(ctx, string(owner), string(code)); err != nil {
		return false, err
	}
	return true, nil
}

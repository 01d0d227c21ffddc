package registry

import (
	"context"
	"errors"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
)

type currencyRegistry struct {
	stats table[domain.CurrencyStats]
}

// NewCurrencyRegistry creates the currency registry over the global "stat" table.
func NewCurrencyRegistry(store portsrepo.RecordStore) portsrepo.CurrencyRegistry {
	return &currencyRegistry{stats: newTable[domain.CurrencyStats](store, domain.TableStat)}
}

var _ portsrepo.CurrencyRegistry = (*currencyRegistry)(nil)

func (r *currencyRegistry) FindStats(ctx context.Context, code domain.SymbolCode) (*domain.CurrencyStats, error) {
	stats, _, err := r.find(ctx, code)
	return stats, err
}

func (r *currencyRegistry) find(ctx context.Context, code domain.SymbolCode) (*domain.CurrencyStats, *portsrepo.Record, error) {
	stats, rec, err := r.stats.get(ctx, domain.GlobalScope, string(code))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Wrap(apperrors.ErrNotFound, "token with symbol %s does not exist", code)
		}
		return nil, nil, err
	}
	return stats, rec, nil
}

func (r *currencyRegistry) ListStats(ctx context.Context, after domain.SymbolCode, limit int) ([]domain.CurrencyStats, error) {
	return r.stats.list(ctx, domain.GlobalScope, string(after), limit)
}

func (r *currencyRegistry) Register(ctx context.Context, stats domain.CurrencyStats, payer domain.AccountID) error {
	code := string(stats.MaxSupply.Code())
	exists, err := r.stats.exists(ctx, domain.GlobalScope, code)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Wrap(apperrors.ErrDuplicate, "token with symbol %s already exists", code)
	}
	return r.stats.put(ctx, domain.GlobalScope, code, stats, payer)
}

func (r *currencyRegistry) AddSupply(ctx context.Context, quantity domain.Amount) (*domain.CurrencyStats, error) {
	stats, rec, err := r.find(ctx, quantity.Code())
	if err != nil {
		return nil, err
	}
	if quantity.Symbol != stats.Symbol() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidAmount, "symbol precision mismatch")
	}
	if quantity.Value > stats.Available().Value {
		return nil, apperrors.Wrap(apperrors.ErrSupplyExceeded, "%s requested, %s available", quantity, stats.Available())
	}
	supply, err := stats.Supply.Add(quantity)
	if err != nil {
		return nil, err
	}
	stats.Supply = supply
	if err := r.stats.put(ctx, domain.GlobalScope, string(quantity.Code()), *stats, rec.Payer); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *currencyRegistry) SubSupply(ctx context.Context, quantity domain.Amount) (*domain.CurrencyStats, error) {
	stats, rec, err := r.find(ctx, quantity.Code())
	if err != nil {
		return nil, err
	}
	if quantity.Symbol != stats.Symbol() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidAmount, "symbol precision mismatch")
	}
	supply, err := stats.Supply.Sub(quantity)
	if err != nil {
		return nil, err
	}
	if supply.Value < 0 {
		return nil, apperrors.Wrap(apperrors.ErrInsufficientBalance, "retiring %s would make supply negative", quantity)
	}
	stats.Supply = supply
	if err := r.stats.put(ctx, domain.GlobalScope, string(quantity.Code()), *stats, rec.Payer); err != nil {
		return nil, err
	}
	return stats, nil
}

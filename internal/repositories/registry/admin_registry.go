package registry

import (
	"context"
	"errors"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
)

type adminRegistry struct {
	admins table[domain.AdminInfo]
}

// NewAdminRegistry creates the admin registry over the global "admin" table keyed by currency code.
func NewAdminRegistry(store portsrepo.RecordStore) portsrepo.AdminRegistry {
	return &adminRegistry{admins: newTable[domain.AdminInfo](store, domain.TableAdmin)}
}

var _ portsrepo.AdminRegistry = (*adminRegistry)(nil)

func (r *adminRegistry) FindAdmin(ctx context.Context, code domain.SymbolCode) (*domain.AdminInfo, error) {
	info, _, err := r.find(ctx, code)
	return info, err
}

func (r *adminRegistry) find(ctx context.Context, code domain.SymbolCode) (*domain.AdminInfo, *portsrepo.Record, error) {
	info, rec, err := r.admins.get(ctx, domain.GlobalScope, string(code))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Wrap(apperrors.ErrNotFound, "no admin designated for %s", code)
		}
		return nil, nil, err
	}
	return info, rec, nil
}

func (r *adminRegistry) Designate(ctx context.Context, info domain.AdminInfo, payer domain.AccountID) error {
	code := string(info.Balance.Code())
	exists, err := r.admins.exists(ctx, domain.GlobalScope, code)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Wrap(apperrors.ErrDuplicate, "admin for %s already designated", code)
	}
	return r.admins.put(ctx, domain.GlobalScope, code, info, payer)
}

func (r *adminRegistry) Rotate(ctx context.Context, oldAdmin domain.AccountID, next domain.AdminInfo) error {
	current, rec, err := r.find(ctx, next.Balance.Code())
	if err != nil {
		return err
	}
	if current.Admin != oldAdmin {
		return apperrors.Wrap(apperrors.ErrUnauthorized, "%s is not the admin of %s", oldAdmin, next.Balance.Code())
	}
	return r.admins.put(ctx, domain.GlobalScope, string(next.Balance.Code()), next, rec.Payer)
}

func (r *adminRegistry) Spend(ctx context.Context, quantity domain.Amount) (*domain.AdminInfo, error) {
	info, rec, err := r.find(ctx, quantity.Code())
	if err != nil {
		return nil, err
	}
	less, err := info.Balance.LessThan(quantity)
	if err != nil {
		return nil, err
	}
	if less {
		return nil, apperrors.Wrap(apperrors.ErrInsufficientBalance, "admin allowance %s is below %s", info.Balance, quantity)
	}
	rest, err := info.Balance.Sub(quantity)
	if err != nil {
		return nil, err
	}
	info.Balance = rest
	if err := r.admins.put(ctx, domain.GlobalScope, string(quantity.Code()), *info, rec.Payer); err != nil {
		return nil, err
	}
	return info, nil
}

package services

import (
	"context"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
)

// AdminCreate designates the first admin of a currency. Only the issuer may do so.
func (s *ledgerService) AdminCreate(ctx context.Context, caller, adminUser domain.AccountID, quantity domain.Amount) (*domain.LedgerEvent, error) {
	if err := adminUser.Validate(); err != nil {
		return nil, err
	}
	if err := validateAllowance(quantity); err != nil {
		return nil, err
	}

	event := &domain.LedgerEvent{
		Action:   domain.ActionAdminCreate,
		Code:     quantity.Code(),
		Actor:    caller,
		To:       adminUser,
		Quantity: &quantity,
	}
	return s.commit(ctx, event, func(ctx context.Context, stores portsrepo.LedgerStores) error {
		stats, err := s.allowanceStats(ctx, stores, quantity)
		if err != nil {
			return err
		}
		if err := s.AuthorizeCaller(ctx, caller, stats.Issuer, domain.ActionAdminCreate); err != nil {
			return err
		}
		if err := s.requireAccount(ctx, stores, adminUser); err != nil {
			return err
		}

		info := domain.AdminInfo{Admin: adminUser, Balance: quantity}
		if err := stores.Admins.Designate(ctx, info, stats.Issuer); err != nil {
			return err
		}
		event.Recipients = recipients(stats.Issuer, adminUser)
		return nil
	})
}

// AdminUpdate hands the admin role and a new allowance to newAdmin in one write.
func (s *ledgerService) AdminUpdate(ctx context.Context, caller, oldAdmin, newAdmin domain.AccountID, quantity domain.Amount) (*domain.LedgerEvent, error) {
	if err := s.AuthorizeCaller(ctx, caller, oldAdmin, domain.ActionAdminUpdate); err != nil {
		return nil, err
	}
	if oldAdmin == newAdmin {
		return nil, apperrors.Wrap(apperrors.ErrSameAccount, "new admin must differ from the current one")
	}
	if err := newAdmin.Validate(); err != nil {
		return nil, err
	}
	if err := validateAllowance(quantity); err != nil {
		return nil, err
	}

	event := &domain.LedgerEvent{
		Action:     domain.ActionAdminUpdate,
		Code:       quantity.Code(),
		Actor:      caller,
		From:       oldAdmin,
		To:         newAdmin,
		Quantity:   &quantity,
		Recipients: recipients(oldAdmin, newAdmin),
	}
	return s.commit(ctx, event, func(ctx context.Context, stores portsrepo.LedgerStores) error {
		if _, err := s.allowanceStats(ctx, stores, quantity); err != nil {
			return err
		}
		current, err := stores.Admins.FindAdmin(ctx, quantity.Code())
		if err != nil {
			return err
		}
		if current.Admin != oldAdmin {
			return apperrors.Wrap(apperrors.ErrUnauthorized, "%s is not the admin of %s", oldAdmin, quantity.Code())
		}
		if err := s.requireAccount(ctx, stores, newAdmin); err != nil {
			return err
		}

		return stores.Admins.Rotate(ctx, oldAdmin, domain.AdminInfo{Admin: newAdmin, Balance: quantity})
	})
}

// TransferAdmin moves tokens out of the admin's balance, drawing the admin allowance by the same amount.
func (s *ledgerService) TransferAdmin(ctx context.Context, caller, from, to domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error) {
	if err := s.AuthorizeCaller(ctx, caller, from, domain.ActionTransferAdmin); err != nil {
		return nil, err
	}
	if from == to {
		return nil, apperrors.Wrap(apperrors.ErrSameAccount, "cannot transfer to self")
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}
	if err := validateQuantity(quantity, "transfer"); err != nil {
		return nil, err
	}
	if err := s.validateMemo(memo); err != nil {
		return nil, err
	}

	event := &domain.LedgerEvent{
		Action:     domain.ActionTransferAdmin,
		Code:       quantity.Code(),
		Actor:      caller,
		From:       from,
		To:         to,
		Quantity:   &quantity,
		Memo:       memo,
		Recipients: recipients(from, to),
	}
	return s.commit(ctx, event, func(ctx context.Context, stores portsrepo.LedgerStores) error {
		stats, err := stores.Currencies.FindStats(ctx, quantity.Code())
		if err != nil {
			return err
		}
		if err := matchPrecision(stats, quantity); err != nil {
			return err
		}
		admin, err := stores.Admins.FindAdmin(ctx, quantity.Code())
		if err != nil {
			return err
		}
		if admin.Admin != from {
			return apperrors.Wrap(apperrors.ErrUnauthorized, "%s is not the admin of %s", from, quantity.Code())
		}
		if admin.Balance.Value < quantity.Value {
			return apperrors.Wrap(apperrors.ErrInsufficientBalance, "admin allowance %s is below %s", admin.Balance, quantity)
		}
		if err := s.requireAccount(ctx, stores, to); err != nil {
			return err
		}
		if err := requireBalance(ctx, stores, from, quantity); err != nil {
			return err
		}

		if _, err := stores.Admins.Spend(ctx, quantity); err != nil {
			return err
		}
		if _, err := stores.Balances.Debit(ctx, from, quantity); err != nil {
			return err
		}
		_, err = stores.Balances.Credit(ctx, to, quantity, from)
		return err
	})
}

// allowanceStats loads the currency of an admin allowance and checks it fits under max supply.
func (s *ledgerService) allowanceStats(ctx context.Context, stores portsrepo.LedgerStores, quantity domain.Amount) (*domain.CurrencyStats, error) {
	stats, err := stores.Currencies.FindStats(ctx, quantity.Code())
	if err != nil {
		return nil, err
	}
	if err := matchPrecision(stats, quantity); err != nil {
		return nil, err
	}
	if quantity.Value > stats.MaxSupply.Value {
		return nil, apperrors.Wrap(apperrors.ErrInvalidAmount, "allowance %s exceeds max supply %s", quantity, stats.MaxSupply)
	}
	return stats, nil
}

func validateAllowance(quantity domain.Amount) error {
	if err := quantity.Validate(); err != nil {
		return err
	}
	if quantity.Value < 0 {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "allowance must not be negative")
	}
	return nil
}

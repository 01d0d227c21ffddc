package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/utils/pagination"
	"go.jetify.com/typeid/v2"
)

// DefaultMemoMaxBytes is the memo limit applied when none is configured.
const DefaultMemoMaxBytes = 256

const eventIDPrefix = "evt"

// ledgerService implements portssvc.LedgerSvcFacade. Every mutating operation
// runs in one unit of work of the record store: all preconditions are checked
// through the transactional registries before the first write.
type ledgerService struct {
	BaseService
	store             portsrepo.RecordStoreWithTx
	openStores        func(store portsrepo.RecordStore) portsrepo.LedgerStores
	sinks             []portssvc.EventSink
	memoMaxBytes      int
	requireRegistered bool
	now               func() time.Time
}

// LedgerServiceOption configures the ledger service.
type LedgerServiceOption func(*ledgerService)

// WithEventSinks adds sinks that receive an event per committed operation.
func WithEventSinks(sinks ...portssvc.EventSink) LedgerServiceOption {
	return func(s *ledgerService) {
		s.sinks = append(s.sinks, sinks...)
	}
}

// WithMemoLimit sets the maximum memo length in bytes.
func WithMemoLimit(maxBytes int) LedgerServiceOption {
	return func(s *ledgerService) {
		if maxBytes > 0 {
			s.memoMaxBytes = maxBytes
		}
	}
}

// WithRegisteredAccounts makes recipients and owners resolve through the account directory.
func WithRegisteredAccounts(required bool) LedgerServiceOption {
	return func(s *ledgerService) {
		s.requireRegistered = required
	}
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates the ledger service over the given repositories.
func NewLedgerService(repos portsrepo.RepositoryProvider, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		store:        repos.Store,
		openStores:   repos.OpenStores,
		memoMaxBytes: DefaultMemoMaxBytes,
		now:          time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// --- Mutating operations ---

func (s *ledgerService) Create(ctx context.Context, caller, issuer domain.AccountID, maxSupply domain.Amount) (*domain.LedgerEvent, error) {
	if err := s.AuthorizeCaller(ctx, caller, issuer, domain.ActionCreate); err != nil {
		return nil, err
	}
	if err := issuer.Validate(); err != nil {
		return nil, err
	}
	if err := validateQuantity(maxSupply, "max-supply"); err != nil {
		return nil, err
	}

	event := &domain.LedgerEvent{
		Action:     domain.ActionCreate,
		Code:       maxSupply.Code(),
		Actor:      caller,
		To:         issuer,
		Quantity:   &maxSupply,
		Recipients: recipients(issuer),
	}
	return s.commit(ctx, event, func(ctx context.Context, stores portsrepo.LedgerStores) error {
		stats := domain.CurrencyStats{
			Supply:    domain.ZeroAmount(maxSupply.Symbol),
			MaxSupply: maxSupply,
			Issuer:    issuer,
		}
		return stores.Currencies.Register(ctx, stats, issuer)
	})
}

func (s *ledgerService) Issue(ctx context.Context, caller, to domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error) {
	if err := to.Validate(); err != nil {
		return nil, err
	}
	if err := validateQuantity(quantity, "issue"); err != nil {
		return nil, err
	}
	if err := s.validateMemo(memo); err != nil {
		return nil, err
	}

	event := &domain.LedgerEvent{
		Action:   domain.ActionIssue,
		Code:     quantity.Code(),
		Actor:    caller,
		To:       to,
		Quantity: &quantity,
		Memo:     memo,
	}
	return s.commit(ctx, event, func(ctx context.Context, stores portsrepo.LedgerStores) error {
		stats, err := stores.Currencies.FindStats(ctx, quantity.Code())
		if err != nil {
			return err
		}
		if err := s.AuthorizeCaller(ctx, caller, stats.Issuer, domain.ActionIssue); err != nil {
			return err
		}
		if err := matchPrecision(stats, quantity); err != nil {
			return err
		}
		if quantity.Value > stats.Available().Value {
			return apperrors.Wrap(apperrors.ErrSupplyExceeded, "%s requested, %s available", quantity, stats.Available())
		}
		if err := s.requireAccount(ctx, stores, to); err != nil {
			return err
		}

		if _, err := stores.Currencies.AddSupply(ctx, quantity); err != nil {
			return err
		}
		if _, err := stores.Balances.Credit(ctx, to, quantity, stats.Issuer); err != nil {
			return err
		}
		event.From = stats.Issuer
		event.Recipients = recipients(stats.Issuer, to)
		return nil
	})
}

func (s *ledgerService) Retire(ctx context.Context, caller domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error) {
	if err := validateQuantity(quantity, "retire"); err != nil {
		return nil, err
	}
	if err := s.validateMemo(memo); err != nil {
		return nil, err
	}

	event := &domain.LedgerEvent{
		Action:   domain.ActionRetire,
		Code:     quantity.Code(),
		Actor:    caller,
		Quantity: &quantity,
		Memo:     memo,
	}
	return s.commit(ctx, event, func(ctx context.Context, stores portsrepo.LedgerStores) error {
		stats, err := stores.Currencies.FindStats(ctx, quantity.Code())
		if err != nil {
			return err
		}
		if err := s.AuthorizeCaller(ctx, caller, stats.Issuer, domain.ActionRetire); err != nil {
			return err
		}
		if err := matchPrecision(stats, quantity); err != nil {
			return err
		}
		if err := requireBalance(ctx, stores, stats.Issuer, quantity); err != nil {
			return err
		}

		if _, err := stores.Currencies.SubSupply(ctx, quantity); err != nil {
			return err
		}
		if _, err := stores.Balances.Debit(ctx, stats.Issuer, quantity); err != nil {
			return err
		}
		event.From = stats.Issuer
		event.Recipients = recipients(stats.Issuer)
		return nil
	})
}

func (s *ledgerService) Transfer(ctx context.Context, caller, from, to domain.AccountID, quantity domain.Amount, memo string) (*domain.LedgerEvent, error) {
	if err := s.AuthorizeCaller(ctx, caller, from, domain.ActionTransfer); err != nil {
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
		Action:     domain.ActionTransfer,
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
		if err := s.requireAccount(ctx, stores, to); err != nil {
			return err
		}
		if err := requireBalance(ctx, stores, from, quantity); err != nil {
			return err
		}

		if _, err := stores.Balances.Debit(ctx, from, quantity); err != nil {
			return err
		}
		_, err = stores.Balances.Credit(ctx, to, quantity, from)
		return err
	})
}

func (s *ledgerService) Open(ctx context.Context, caller, owner domain.AccountID, symbol domain.Symbol, ramPayer domain.AccountID) (*domain.LedgerEvent, error) {
	if err := s.AuthorizeCaller(ctx, caller, ramPayer, domain.ActionOpen); err != nil {
		return nil, err
	}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if err := symbol.Validate(); err != nil {
		return nil, err
	}

	event := &domain.LedgerEvent{
		Action:     domain.ActionOpen,
		Code:       symbol.Code,
		Actor:      caller,
		To:         owner,
		Recipients: recipients(owner, ramPayer),
	}
	return s.commit(ctx, event, func(ctx context.Context, stores portsrepo.LedgerStores) error {
		stats, err := stores.Currencies.FindStats(ctx, symbol.Code)
		if err != nil {
			return err
		}
		if stats.Symbol() != symbol {
			return apperrors.Wrap(apperrors.ErrInvalidAmount, "symbol precision mismatch: %s registered, %s given", stats.Symbol(), symbol)
		}
		if err := s.requireAccount(ctx, stores, owner); err != nil {
			return err
		}

		created, err := stores.Balances.Open(ctx, owner, symbol, ramPayer)
		if err != nil {
			return err
		}
		if !created {
			s.LogDebug(ctx, "Balance already open", slog.String("owner", string(owner)), slog.String("code", string(symbol.Code)))
		}
		return nil
	})
}

func (s *ledgerService) Close(ctx context.Context, caller, owner domain.AccountID, code domain.SymbolCode) (*domain.LedgerEvent, error) {
	if err := s.AuthorizeCaller(ctx, caller, owner, domain.ActionClose); err != nil {
		return nil, err
	}
	if err := code.Validate(); err != nil {
		return nil, err
	}

	event := &domain.LedgerEvent{
		Action:     domain.ActionClose,
		Code:       code,
		Actor:      caller,
		From:       owner,
		Recipients: recipients(owner),
	}
	return s.commit(ctx, event, func(ctx context.Context, stores portsrepo.LedgerStores) error {
		removed, err := stores.Balances.Close(ctx, owner, code)
		if err != nil {
			return err
		}
		if !removed {
			s.LogDebug(ctx, "No balance to close", slog.String("owner", string(owner)), slog.String("code", string(code)))
		}
		return nil
	})
}

// --- Queries ---

func (s *ledgerService) readStores() portsrepo.LedgerStores {
	return s.openStores(s.store)
}

func (s *ledgerService) GetSupply(ctx context.Context, code domain.SymbolCode) (*domain.Amount, error) {
	stats, err := s.GetStats(ctx, code)
	if err != nil {
		return nil, err
	}
	return &stats.Supply, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, owner domain.AccountID, code domain.SymbolCode) (*domain.Amount, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if err := code.Validate(); err != nil {
		return nil, err
	}
	balance, err := s.readStores().Balances.FindBalance(ctx, owner, code)
	if err != nil {
		return nil, err
	}
	return &balance.Balance, nil
}

func (s *ledgerService) GetStats(ctx context.Context, code domain.SymbolCode) (*domain.CurrencyStats, error) {
	if err := code.Validate(); err != nil {
		return nil, err
	}
	return s.readStores().Currencies.FindStats(ctx, code)
}

func (s *ledgerService) ListCurrencies(ctx context.Context, pageToken string, limit int) ([]domain.CurrencyStats, string, error) {
	after, err := decodeCursor(pageToken)
	if err != nil {
		return nil, "", err
	}
	limit = pagination.NormalizeLimit(limit)

	list, err := s.readStores().Currencies.ListStats(ctx, domain.SymbolCode(after), limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list currencies")
		return nil, "", err
	}
	next := pagination.NextToken(list, limit, func(stats domain.CurrencyStats) string {
		return string(stats.Symbol().Code)
	})
	return list, next, nil
}

func (s *ledgerService) ListBalances(ctx context.Context, owner domain.AccountID, pageToken string, limit int) ([]domain.AccountBalance, string, error) {
	if err := owner.Validate(); err != nil {
		return nil, "", err
	}
	after, err := decodeCursor(pageToken)
	if err != nil {
		return nil, "", err
	}
	limit = pagination.NormalizeLimit(limit)

	list, err := s.readStores().Balances.ListBalances(ctx, owner, domain.SymbolCode(after), limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list balances", slog.String("owner", string(owner)))
		return nil, "", err
	}
	next := pagination.NextToken(list, limit, func(b domain.AccountBalance) string {
		return string(b.Balance.Code())
	})
	return list, next, nil
}

func (s *ledgerService) GetAdmin(ctx context.Context, code domain.SymbolCode) (*domain.AdminInfo, error) {
	if err := code.Validate(); err != nil {
		return nil, err
	}
	return s.readStores().Admins.FindAdmin(ctx, code)
}

// --- Helpers ---

// commit runs fn in one unit of work and publishes the event once it has committed.
func (s *ledgerService) commit(ctx context.Context, event *domain.LedgerEvent, fn func(ctx context.Context, stores portsrepo.LedgerStores) error) (*domain.LedgerEvent, error) {
	id, err := typeid.Generate(eventIDPrefix)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to generate event id", err)
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.RecordStore) error {
		return fn(ctx, s.openStores(tx))
	})
	if err != nil {
		kind := apperrors.Kind(err)
		attrs := []any{
			slog.String("action", string(event.Action)),
			slog.String("code", string(event.Code)),
			slog.String("caller", string(event.Actor)),
			slog.String("kind", kind),
		}
		if kind == "Internal" {
			s.LogError(ctx, err, "Ledger operation failed", attrs...)
		} else {
			s.LogDebug(ctx, "Ledger operation rejected", append(attrs, slog.String("reason", err.Error()))...)
		}
		return nil, err
	}

	event.ID = id.String()
	event.OccurredAt = s.now().UTC()
	if event.Recipients == nil {
		event.Recipients = recipients(event.Actor)
	}
	s.LogInfo(ctx, "Ledger operation committed",
		slog.String("event_id", event.ID),
		slog.String("action", string(event.Action)),
		slog.String("code", string(event.Code)),
		slog.String("caller", string(event.Actor)))

	s.publish(ctx, *event)
	return event, nil
}

func (s *ledgerService) publish(ctx context.Context, event domain.LedgerEvent) {
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			s.LogError(ctx, err, "Failed to publish ledger event",
				slog.String("event_id", event.ID),
				slog.String("action", string(event.Action)))
		}
	}
}

func (s *ledgerService) validateMemo(memo string) error {
	if len(memo) > s.memoMaxBytes {
		return apperrors.Wrap(apperrors.ErrValidation, "memo has more than %d bytes", s.memoMaxBytes)
	}
	return nil
}

// requireAccount resolves account in the directory when registration is enforced.
func (s *ledgerService) requireAccount(ctx context.Context, stores portsrepo.LedgerStores, account domain.AccountID) error {
	if !s.requireRegistered || stores.Directory == nil {
		return nil
	}
	_, err := stores.Directory.FindAccount(ctx, account)
	return err
}

func validateQuantity(quantity domain.Amount, what string) error {
	if err := quantity.Validate(); err != nil {
		return err
	}
	if !quantity.IsPositive() {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "must %s positive quantity", what)
	}
	return nil
}

func matchPrecision(stats *domain.CurrencyStats, quantity domain.Amount) error {
	if quantity.Symbol != stats.Symbol() {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, "symbol precision mismatch: %s registered, %s given", stats.Symbol(), quantity.Symbol)
	}
	return nil
}

// requireBalance fails with ErrInsufficientBalance when owner holds less than quantity.
func requireBalance(ctx context.Context, stores portsrepo.LedgerStores, owner domain.AccountID, quantity domain.Amount) error {
	balance, err := stores.Balances.FindBalance(ctx, owner, quantity.Code())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Wrap(apperrors.ErrInsufficientBalance, "%s holds no %s", owner, quantity.Code())
		}
		return err
	}
	less, err := balance.Balance.LessThan(quantity)
	if err != nil {
		return err
	}
	if less {
		return apperrors.Wrap(apperrors.ErrInsufficientBalance, "%s holds %s, needs %s", owner, balance.Balance, quantity)
	}
	return nil
}

func decodeCursor(pageToken string) (string, error) {
	after, err := pagination.DecodeKeyToken(pageToken)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrValidation, "%v", err)
	}
	return after, nil
}

// recipients lists the accounts notified of an event, without duplicates.
func recipients(accounts ...domain.AccountID) []domain.AccountID {
	out := make([]domain.AccountID, 0, len(accounts))
	for _, account := range accounts {
		if account == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == account {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, account)
		}
	}
	return out
}

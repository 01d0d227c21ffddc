package services

import (
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, sinks ...portssvc.EventSink) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Ledger = NewLedgerService(
		repos,
		WithEventSinks(sinks...),
		WithMemoLimit(cfg.MemoMaxBytes),
		WithRegisteredAccounts(cfg.RequireRegisteredAccounts),
	)

	container.Accounts = NewAccountService(
		repos,
		WithTokenSigning(cfg.JWTSecret, cfg.JWTExpiryDuration, cfg.JWTIssuer),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.LedgerSvcFacade  = (*ledgerService)(nil)
	_ portssvc.AccountSvcFacade = (*accountService)(nil)
)

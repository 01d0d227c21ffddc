package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/token_ledger/internal/apperrors"
	"github.com/SscSPs/token_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/token_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/utils"
	"github.com/google/uuid"
)

const (
	// keySecretBytes is the entropy of an API key secret.
	keySecretBytes = 32
	// keySeparator joins the key ID and the secret in the plaintext key.
	keySeparator = "."
	// defaultKeyName labels the key handed out at registration.
	defaultKeyName = "default"
	// keyUsageResolution is the granularity of a key's last-used timestamp.
	keyUsageResolution = time.Minute
)

// accountService implements portssvc.AccountSvcFacade over the account directory.
type accountService struct {
	BaseService
	store         portsrepo.RecordStoreWithTx
	openDirectory func(store portsrepo.RecordStore) portsrepo.DirectoryRepositoryFacade
	jwtSecret     string
	jwtExpiry     time.Duration
	jwtIssuer     string
	now           func() time.Time
}

// AccountServiceOption configures the account service.
type AccountServiceOption func(*accountService)

// WithTokenSigning sets the HS256 secret, lifetime and issuer of bearer tokens.
func WithTokenSigning(secret string, expiry time.Duration, issuer string) AccountServiceOption {
	return func(s *accountService) {
		s.jwtSecret = secret
		s.jwtExpiry = expiry
		s.jwtIssuer = issuer
	}
}

// WithAccountClock overrides the time source used for key timestamps.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.now = now
	}
}

// NewAccountService creates a new instance of accountService
func NewAccountService(repos portsrepo.RepositoryProvider, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		store:         repos.Store,
		openDirectory: repos.OpenDirectory,
		jwtExpiry:     time.Hour,
		now:           time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// Register adds the account to the directory together with its first API key.
func (s *accountService) Register(ctx context.Context, account domain.AccountID) (string, *domain.AccountKey, error) {
	if err := account.Validate(); err != nil {
		return "", nil, err
	}

	var (
		plaintext string
		key       *domain.AccountKey
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.RecordStore) error {
		dir := s.openDirectory(tx)
		now := s.now().UTC()
		entry := domain.DirectoryEntry{
			Account: account,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     account,
				LastUpdatedAt: now,
				LastUpdatedBy: account,
			},
		}
		if err := dir.SaveAccount(ctx, entry); err != nil {
			return err
		}
		var err error
		plaintext, key, err = s.newKey(ctx, dir, account, defaultKeyName, nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to register account", slog.String("account", string(account)))
		}
		return "", nil, err
	}

	s.LogInfo(ctx, "Account registered", slog.String("account", string(account)), slog.String("key_id", key.ID))
	return plaintext, key, nil
}

// GetAccount returns the directory entry of account.
func (s *accountService) GetAccount(ctx context.Context, account domain.AccountID) (*domain.DirectoryEntry, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}
	return s.openDirectory(s.store).FindAccount(ctx, account)
}

// CreateKey generates a new API key for the caller
func (s *accountService) CreateKey(ctx context.Context, caller domain.AccountID, name string, expiresIn *time.Duration) (string, *domain.AccountKey, error) {
	if name == "" {
		return "", nil, apperrors.Wrap(apperrors.ErrValidation, "key name is required")
	}
	if expiresIn != nil && *expiresIn <= 0 {
		return "", nil, apperrors.Wrap(apperrors.ErrValidation, "key expiry must be positive")
	}

	var (
		plaintext string
		key       *domain.AccountKey
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.RecordStore) error {
		dir := s.openDirectory(tx)
		if _, err := dir.FindAccount(ctx, caller); err != nil {
			return err
		}
		var err error
		plaintext, key, err = s.newKey(ctx, dir, caller, name, expiresIn)
		return err
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to create key: %w", err)
	}

	s.LogInfo(ctx, "API key created", slog.String("account", string(caller)), slog.String("key_id", key.ID))
	return plaintext, key, nil
}

// ListKeys returns all API keys of the caller
func (s *accountService) ListKeys(ctx context.Context, caller domain.AccountID) ([]domain.AccountKey, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	keys, err := s.openDirectory(s.store).ListKeys(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// RevokeKey deletes a specific API key of the caller
func (s *accountService) RevokeKey(ctx context.Context, caller domain.AccountID, keyID string) error {
	if caller == "" || keyID == "" {
		return apperrors.Wrap(apperrors.ErrValidation, "account and key ID are required")
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.RecordStore) error {
		dir := s.openDirectory(tx)
		key, err := dir.FindKey(ctx, keyID)
		if err != nil {
			return err
		}
		// keys of other accounts are reported as missing
		if key.Account != caller {
			return apperrors.Wrap(apperrors.ErrNotFound, "key %s does not exist", keyID)
		}
		return dir.DeleteKey(ctx, caller, keyID)
	})
	if err != nil {
		return fmt.Errorf("failed to revoke key: %w", err)
	}

	s.LogInfo(ctx, "API key revoked", slog.String("account", string(caller)), slog.String("key_id", keyID))
	return nil
}

// ValidateKey checks if a key is valid and returns the account it belongs to
func (s *accountService) ValidateKey(ctx context.Context, apiKey string) (domain.AccountID, error) {
	keyID, secret, ok := strings.Cut(apiKey, keySeparator)
	if !ok || keyID == "" || secret == "" {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "malformed api key")
	}

	dir := s.openDirectory(s.store)
	key, err := dir.FindKey(ctx, keyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.Wrap(apperrors.ErrUnauthorized, "unknown api key")
		}
		return "", err
	}

	now := s.now().UTC()
	if key.IsExpired(now) {
		// Auto-revoke expired keys
		if err := dir.DeleteKey(ctx, key.Account, key.ID); err != nil {
			s.LogError(ctx, err, "Failed to delete expired key", slog.String("key_id", key.ID))
		}
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "api key has expired")
	}

	if !utils.CheckSecretHash(secret, key.KeyHash) {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "invalid api key")
	}

	// Update last used timestamp; a failure here does not fail the validation
	if !key.UsedWithin(now, keyUsageResolution) {
		key.MarkUsed(now)
		if err := dir.SaveKey(ctx, *key); err != nil {
			s.LogError(ctx, err, "Failed to update key last-used timestamp", slog.String("key_id", key.ID))
		}
	}

	return key.Account, nil
}

// IssueToken exchanges a valid API key for a signed bearer token.
func (s *accountService) IssueToken(ctx context.Context, apiKey string) (string, time.Time, error) {
	if s.jwtSecret == "" {
		return "", time.Time{}, apperrors.NewAppError(500, "token signing is not configured", nil)
	}
	account, err := s.ValidateKey(ctx, apiKey)
	if err != nil {
		return "", time.Time{}, err
	}

	token, expiresAt, err := utils.GenerateJWT(string(account), s.jwtSecret, s.jwtExpiry, s.jwtIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign access token", slog.String("account", string(account)))
		return "", time.Time{}, apperrors.NewAppError(500, "failed to sign access token", err)
	}
	return token, expiresAt, nil
}

// newKey stores a fresh key for account and returns the plaintext form "<id>.<secret>".
// The plaintext is only available here; the directory keeps the bcrypt hash.
func (s *accountService) newKey(ctx context.Context, dir portsrepo.AccountKeyWriter, account domain.AccountID, name string, expiresIn *time.Duration) (string, *domain.AccountKey, error) {
	secret, err := utils.GenerateSecureRandomString(keySecretBytes)
	if err != nil {
		return "", nil, apperrors.NewAppError(500, "failed to generate key secret", err)
	}
	hash, err := utils.HashSecret(secret)
	if err != nil {
		return "", nil, apperrors.NewAppError(500, "failed to hash key secret", err)
	}

	now := s.now().UTC()
	key := &domain.AccountKey{
		ID:        uuid.NewString(),
		Account:   account,
		Name:      name,
		KeyHash:   hash,
		CreatedAt: now,
	}
	if expiresIn != nil {
		expiry := now.Add(*expiresIn)
		key.ExpiresAt = &expiry
	}

	if err := dir.SaveKey(ctx, *key); err != nil {
		return "", nil, err
	}
	return key.ID + keySeparator + secret, key, nil
}

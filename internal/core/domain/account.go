package domain

import (
	"regexp"
	"strings"

	"github.com/SscSPs/token_ledger/internal/apperrors"
)

var accountNamePattern = regexp.MustCompile(`^[a-z1-5.]{1,12}$`)

// AccountID names a ledger account, e.g. "alice" or "token.issuer".
type AccountID string

// Validate checks the account name alphabet and length.
func (a AccountID) Validate() error {
	s := string(a)
	if !accountNamePattern.MatchString(s) || strings.HasSuffix(s, ".") {
		return apperrors.Wrap(apperrors.ErrValidation, "invalid account name %q", s)
	}
	return nil
}

func (a AccountID) String() string { return string(a) }

// DirectoryEntry marks an account as known to the ledger.
type DirectoryEntry struct {
	Account AccountID `json:"account"`
	AuditFields
}

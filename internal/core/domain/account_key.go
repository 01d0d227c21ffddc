package domain

import "time"

// AccountKey is an API key that proves control of an account.
type AccountKey struct {
	ID         string     `json:"id"`
	Account    AccountID  `json:"account"`
	Name       string     `json:"name"`
	KeyHash    string     `json:"keyHash"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// IsExpired checks if the key has expired at the given instant.
func (k *AccountKey) IsExpired(now time.Time) bool {
	if k.ExpiresAt == nil {
		return false
	}
	return k.ExpiresAt.Before(now)
}

// UsedWithin reports whether the key was last used less than window before now.
func (k *AccountKey) UsedWithin(now time.Time, window time.Duration) bool {
	return k.LastUsedAt != nil && now.Sub(*k.LastUsedAt) < window
}

// MarkUsed records the last successful use of the key.
func (k *AccountKey) MarkUsed(now time.Time) {
	k.LastUsedAt = &now
}

package dto

import (
	"time"

	"github.com/SscSPs/token_ledger/internal/core/domain"
)

// RegisterRequest adds an account to the directory.
type RegisterRequest struct {
	Account string `json:"account" binding:"required,accountname"`
}

// TokenRequest exchanges an API key for a bearer token.
type TokenRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// TokenResponse carries a signed bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AccountResponse describes a registered account.
type AccountResponse struct {
	Account   string    `json:"account"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateKeyRequest represents the request body for creating a new API key
type CreateKeyRequest struct {
	Name             string `json:"name" binding:"required,min=3,max=100"`
	ExpiresInSeconds *int64 `json:"expiresInSeconds,omitempty" binding:"omitempty,min=1"`
}

// ExpiresIn converts the requested lifetime to a duration, nil meaning no expiry.
func (r CreateKeyRequest) ExpiresIn() *time.Duration {
	if r.ExpiresInSeconds == nil {
		return nil
	}
	d := time.Duration(*r.ExpiresInSeconds) * time.Second
	return &d
}

// KeyResponse represents an API key in the API responses
type KeyResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CreateKeyResponse represents the response when creating a new API key
type CreateKeyResponse struct {
	Key     string      `json:"key"` // Only shown once when created
	Details KeyResponse `json:"details"`
}

// RegisterResponse returns the new account with its first API key.
type RegisterResponse struct {
	Account string            `json:"account"`
	Key     CreateKeyResponse `json:"key"`
}

// ListKeysResponse represents a list of API keys
type ListKeysResponse []KeyResponse

// ToKeyResponse converts a domain.AccountKey to a KeyResponse
func ToKeyResponse(key domain.AccountKey) KeyResponse {
	return KeyResponse{
		ID:         key.ID,
		Name:       key.Name,
		LastUsedAt: key.LastUsedAt,
		ExpiresAt:  key.ExpiresAt,
		CreatedAt:  key.CreatedAt,
	}
}

// ToListKeysResponse converts a slice of domain.AccountKey to ListKeysResponse
func ToListKeysResponse(keys []domain.AccountKey) ListKeysResponse {
	result := make(ListKeysResponse, len(keys))
	for i, key := range keys {
		result[i] = ToKeyResponse(key)
	}
	return result
}

// ToCreateKeyResponse pairs the plaintext key with its stored details
func ToCreateKeyResponse(plaintext string, key domain.AccountKey) CreateKeyResponse {
	return CreateKeyResponse{
		Key:     plaintext,
		Details: ToKeyResponse(key),
	}
}

// ToAccountResponse converts a domain.DirectoryEntry to AccountResponse
func ToAccountResponse(entry *domain.DirectoryEntry) AccountResponse {
	return AccountResponse{
		Account:   string(entry.Account),
		CreatedAt: entry.CreatedAt,
	}
}

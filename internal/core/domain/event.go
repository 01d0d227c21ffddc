package domain

import "time"

// Action names a mutating ledger operation.
type Action string

const (
	ActionCreate        Action = "create"
	ActionIssue         Action = "issue"
	ActionRetire        Action = "retire"
	ActionTransfer      Action = "transfer"
	ActionOpen          Action = "open"
	ActionClose         Action = "close"
	ActionAdminCreate   Action = "admin_create"
	ActionAdminUpdate   Action = "admin_update"
	ActionTransferAdmin Action = "transfer_admin"
)

// LedgerEvent describes a committed operation. Recipients are the accounts
// notified about it.
type LedgerEvent struct {
	ID         string      `json:"id"`
	Action     Action      `json:"action"`
	Code       SymbolCode  `json:"code"`
	Actor      AccountID   `json:"actor"`
	From       AccountID   `json:"from,omitempty"`
	To         AccountID   `json:"to,omitempty"`
	Quantity   *Amount     `json:"quantity,omitempty"`
	Memo       string      `json:"memo,omitempty"`
	Recipients []AccountID `json:"recipients"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// Properties flattens the event for analytics sinks.
func (e LedgerEvent) Properties() map[string]any {
	props := map[string]any{
		"event_id": e.ID,
		"code":     string(e.Code),
		"actor":    string(e.Actor),
	}
	if e.From != "" {
		props["from"] = string(e.From)
	}
	if e.To != "" {
		props["to"] = string(e.To)
	}
	if e.Quantity != nil {
		props["quantity"] = e.Quantity.String()
	}
	if e.Memo != "" {
		props["memo"] = e.Memo
	}
	return props
}

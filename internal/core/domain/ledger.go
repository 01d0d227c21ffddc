package domain

// CurrencyStats is the registry record of one currency. Supply never
// exceeds MaxSupply and never goes below zero.
type CurrencyStats struct {
	Supply    Amount    `json:"supply"`
	MaxSupply Amount    `json:"maxSupply"`
	Issuer    AccountID `json:"issuer"`
}

// Symbol returns the currency symbol registered by these stats.
func (s CurrencyStats) Symbol() Symbol { return s.MaxSupply.Symbol }

// Available is the amount that can still be issued.
func (s CurrencyStats) Available() Amount {
	return Amount{Value: s.MaxSupply.Value - s.Supply.Value, Symbol: s.MaxSupply.Symbol}
}

// AccountBalance is the holding of one account in one currency.
type AccountBalance struct {
	Owner   AccountID `json:"owner"`
	Balance Amount    `json:"balance"`
}

// AdminInfo designates the administrative account of a currency. Balance is
// the allowance the admin may still move through transfer_admin.
type AdminInfo struct {
	Admin   AccountID `json:"admin"`
	Balance Amount    `json:"balance"`
}

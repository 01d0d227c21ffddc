package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     AccountID `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy AccountID `json:"lastUpdatedBy"`
}

// Table names a keyed table in the record store.
type Table string

const (
	TableStat      Table = "stat"
	TableAccounts  Table = "accounts"
	TableAdmin     Table = "admin"
	TableDirectory Table = "directory"
	TableKeys      Table = "keys"
	TableKeyIndex  Table = "keyindex"
)

// GlobalScope partitions records that are not owned by a single account.
const GlobalScope = "global"

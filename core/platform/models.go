package platform

import "time"

// TransactionRow is one observation of a signed transaction.
type TransactionRow struct {
	ID            string    `gorm:"column:id;primaryKey;size:36"`
	TransactionID string    `gorm:"column:transaction_id;size:191;index"`
	ProductID     string    `gorm:"column:product_id;size:191"`
	ProductKind   string    `gorm:"column:product_kind;size:32;index"`
	Revoked       bool      `gorm:"column:revoked"`
	Finished      bool      `gorm:"column:finished;index"`
	JWS           string    `gorm:"column:jws;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at;index"`
}

// TableName overrides the table name.
func (TransactionRow) TableName() string {
	return "journal_transactions"
}

// StatusRow is one observation of a subscription status.
type StatusRow struct {
	ID            string    `gorm:"column:id;primaryKey;size:36"`
	GroupID       string    `gorm:"column:group_id;size:191;index"`
	OwnershipType string    `gorm:"column:ownership_type;size:32"`
	State         string    `gorm:"column:state;size:32"`
	JWS           string    `gorm:"column:jws;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at;index"`
}

// TableName overrides the table name.
func (StatusRow) TableName() string {
	return "journal_statuses"
}

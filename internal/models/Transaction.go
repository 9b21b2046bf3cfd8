package models

import "time"

const (
	TxCredit = "credit"
	TxDebit  = "debit"

	MethodWallet = "wallet"
	MethodAdmin  = "admin"
	MethodUPI    = "upi"
	MethodKiosk  = "kiosk"

	TxSuccess = "success"
	TxPending = "pending"
	TxFailed  = "failed"
)

// Transaction is an append-only wallet ledger row. Amount is always positive;
// Type carries the direction.
type Transaction struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"index;not null"`
	Amount        int64     `json:"amount" gorm:"not null"`
	Type          string    `json:"type" gorm:"not null"`
	PaymentMethod string    `json:"payment_method" gorm:"not null"`
	Description   string    `json:"description"`
	Status        string    `json:"status" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
}

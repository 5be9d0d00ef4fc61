package models

const DefaultCurrency = "USD"

const (
	TxTopUp          = "topup"
	TxCoursePurchase = "course_purchase"
	TxCourseSale     = "course_sale"
	TxSessionPayment = "session_payment"
	TxSessionEarning = "session_earning"
	TxRefund         = "refund"
)

const (
	TxPending   = "pending"
	TxCompleted = "completed"
	TxFailed    = "failed"
)

type Wallet struct {
	Model
	UserID   uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance  int64  `gorm:"not null;default:0;check:balance>=0" json:"balance"` // cents
	Currency string `gorm:"not null;default:USD" json:"currency"`
}

// Transaction amounts are signed: credits positive, debits negative.
type Transaction struct {
	Model
	WalletID    uint   `gorm:"index;not null" json:"wallet_id"`
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	Type        string `gorm:"index;not null" json:"type"`
	Amount      int64  `gorm:"not null" json:"amount"`
	Fee         int64  `json:"fee"`
	Status      string `gorm:"not null" json:"status"`
	Reference   string `gorm:"uniqueIndex;not null" json:"reference"`
	Method      string `json:"method,omitempty"`
	ExternalRef string `json:"external_ref,omitempty"` // payment provider charge id
	Description string `json:"description"`
	RelatedType string `json:"related_type,omitempty"`
	RelatedID   uint   `json:"related_id,omitempty"`
}

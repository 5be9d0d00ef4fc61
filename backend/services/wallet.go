package services

import (
	"context"
	"errors"
	"fmt"

	"learnity/backend/models"
	"learnity/backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinTopUp int64 = 100
	MaxTopUp int64 = 1_000_000
)

type WalletService struct {
	DB      *gorm.DB
	Gateway PaymentGateway
}

type TopUpInput struct {
	Amount int64
	Method string
	Token  string
}

// ledgerEntry is one wallet movement written inside a transaction.
type ledgerEntry struct {
	UserID      uint
	Type        string
	Amount      int64 // signed
	Fee         int64
	Description string
	RelatedType string
	RelatedID   uint
}

func ensureWallet(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	wallet := models.Wallet{}
	err := tx.Where(models.Wallet{UserID: userID}).
		Attrs(models.Wallet{Currency: models.DefaultCurrency}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func newReference() string {
	return uuid.NewString()
}

// debit takes amount from the user's wallet only when the balance covers it.
func debit(tx *gorm.DB, userID uint, amount int64) (*models.Wallet, error) {
	wallet, err := ensureWallet(tx, userID)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return wallet, nil
	}
	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", wallet.ID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.InsufficientFundsErr()
	}
	wallet.Balance -= amount
	return wallet, nil
}

func credit(tx *gorm.DB, userID uint, amount int64) (*models.Wallet, error) {
	wallet, err := ensureWallet(tx, userID)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return wallet, nil
	}
	if err := tx.Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		return nil, err
	}
	wallet.Balance += amount
	return wallet, nil
}

// post applies a ledger entry: the wallet moves and a completed transaction is recorded.
func post(tx *gorm.DB, e ledgerEntry) (*models.Transaction, error) {
	var (
		wallet *models.Wallet
		err    error
	)
	if e.Amount < 0 {
		wallet, err = debit(tx, e.UserID, -e.Amount)
	} else {
		wallet, err = credit(tx, e.UserID, e.Amount)
	}
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		WalletID:    wallet.ID,
		UserID:      e.UserID,
		Type:        e.Type,
		Amount:      e.Amount,
		Fee:         e.Fee,
		Status:      models.TxCompleted,
		Reference:   newReference(),
		Description: e.Description,
		RelatedType: e.RelatedType,
		RelatedID:   e.RelatedID,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// platformFee is the share of amount the platform keeps.
func platformFee(amount int64, feePercent int) int64 {
	if amount <= 0 || feePercent <= 0 {
		return 0
	}
	return amount * int64(feePercent) / 100
}

func (s *WalletService) Get(ctx context.Context, userID uint) (*models.Wallet, error) {
	return ensureWallet(s.DB.WithContext(ctx), userID)
}

func (s *WalletService) Transactions(ctx context.Context, userID uint, page utils.Page) ([]models.Transaction, int64, error) {
	var (
		txns  []models.Transaction
		total int64
	)
	q := s.DB.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC, id DESC").Scopes(page.Scope).Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// TopUp records a pending top-up, charges the gateway and settles the result.
func (s *WalletService) TopUp(ctx context.Context, userID uint, in TopUpInput) (*models.Transaction, error) {
	if in.Amount < MinTopUp || in.Amount > MaxTopUp {
		return nil, utils.ValidationErr(fmt.Sprintf("amount must be between %d and %d", MinTopUp, MaxTopUp))
	}

	db := s.DB.WithContext(ctx)
	wallet, err := ensureWallet(db, userID)
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		WalletID:    wallet.ID,
		UserID:      userID,
		Type:        models.TxTopUp,
		Amount:      in.Amount,
		Status:      models.TxPending,
		Reference:   newReference(),
		Method:      in.Method,
		Description: "Wallet top-up",
	}
	if err := db.Create(txn).Error; err != nil {
		return nil, err
	}

	charge, chargeErr := s.Gateway.Charge(ctx, ChargeRequest{
		Reference: txn.Reference,
		Amount:    in.Amount,
		Currency:  wallet.Currency,
		Method:    in.Method,
		Token:     in.Token,
	})
	if chargeErr != nil {
		if err := db.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", txn.ID, models.TxPending).
			Updates(map[string]interface{}{"status": models.TxFailed, "description": "Top-up failed: " + chargeErr.Error()}).Error; err != nil {
			return nil, err
		}
		if errors.Is(chargeErr, ErrPaymentDeclined) {
			return nil, utils.PaymentFailedErr(chargeErr.Error())
		}
		return nil, utils.PaymentFailedErr("payment could not be processed")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", txn.ID, models.TxPending).
			Updates(map[string]interface{}{"status": models.TxCompleted, "external_ref": charge.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ConflictErr("top-up was already settled")
		}
		_, err := credit(tx, userID, in.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := db.First(txn, txn.ID).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

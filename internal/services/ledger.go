package services

import (
	"context"
	"errors"
	"time"

	"campus_shuttle/internal/models"
	"campus_shuttle/internal/store"
)

// applyWalletChange moves a wallet by delta and appends the matching ledger
// row. Callers run it inside a store transaction so both land or neither does.
func applyWalletChange(ctx context.Context, tx store.Store, userID uint, delta int64, method, description string, at time.Time) (*models.Transaction, error) {
	if err := tx.AdjustBalance(ctx, userID, delta); err != nil {
		switch {
		case errors.Is(err, store.ErrInsufficientBalance):
			return nil, RuleError{Msg: "Insufficient wallet balance", Err: err}
		case errors.Is(err, store.ErrNotFound):
			return nil, NotFoundError{Resource: "User"}
		}
		return nil, err
	}

	kind, amount := models.TxCredit, delta
	if delta < 0 {
		kind, amount = models.TxDebit, -delta
	}
	t := &models.Transaction{
		UserID:        userID,
		Amount:        amount,
		Type:          kind,
		PaymentMethod: method,
		Description:   description,
		Status:        models.TxSuccess,
		CreatedAt:     at,
	}
	if err := tx.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

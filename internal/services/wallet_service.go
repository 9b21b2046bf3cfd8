package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"campus_shuttle/internal/models"
	"campus_shuttle/internal/store"
)

type WalletView struct {
	Balance      int64                `json:"wallet_balance"`
	Transactions []models.Transaction `json:"transactions"`
}

type RechargeResult struct {
	Balance     int64              `json:"wallet_balance"`
	Transaction models.Transaction `json:"transaction"`
}

// BulkResult reports how a university-wide adjustment went per student.
type BulkResult struct {
	Updated int    `json:"updated"`
	Skipped []uint `json:"skipped"` // balance would have gone negative
	Failed  []uint `json:"failed"`
}

type WalletSummary struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	WalletBalance int64  `json:"wallet_balance"`
}

type WalletService struct {
	store store.Store
	Now   func() time.Time
}

func NewWalletService(s store.Store) *WalletService {
	return &WalletService{store: s, Now: time.Now}
}

func (s *WalletService) Wallet(ctx context.Context, userID uint) (*WalletView, error) {
	return s.Statement(ctx, userID, "")
}

// Statement returns the balance and the ledger; period "month" keeps only
// rows since the first day of the current month.
func (s *WalletService) Statement(ctx context.Context, userID uint, period string) (*WalletView, error) {
	var since time.Time
	switch strings.ToLower(period) {
	case "", "all":
	case "month":
		now := s.Now()
		since = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return nil, ValidationError{Msg: "Unsupported statement period"}
	}

	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFoundError{Resource: "User"}
	}
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return &WalletView{Balance: user.WalletBalance, Transactions: txs}, nil
}

// Recharge credits the user's own wallet through upi (default) or kiosk.
func (s *WalletService) Recharge(ctx context.Context, userID uint, amount int64, method string) (*RechargeResult, error) {
	if amount <= 0 {
		return nil, ValidationError{Msg: "Invalid amount"}
	}
	switch method = strings.ToLower(strings.TrimSpace(method)); method {
	case "":
		method = models.MethodUPI
	case models.MethodUPI, models.MethodKiosk:
	default:
		return nil, ValidationError{Msg: "Unsupported payment method"}
	}

	var result RechargeResult
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		t, err := applyWalletChange(ctx, tx, userID, amount, method, "Wallet recharge", s.Now())
		if err != nil {
			return err
		}
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		result = RechargeResult{Balance: user.WalletBalance, Transaction: *t}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AdminAdjust credits (positive) or debits (negative) a user of the admin's
// university.
func (s *WalletService) AdminAdjust(ctx context.Context, universityID, userID uint, amount int64, description string) (*RechargeResult, error) {
	if userID == 0 || amount == 0 {
		return nil, ValidationError{Msg: "User ID and a non-zero amount are required"}
	}
	var result RechargeResult
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetUserInUniversity(ctx, universityID, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return NotFoundError{Resource: "User"}
			}
			return err
		}
		t, err := applyWalletChange(ctx, tx, userID, amount, models.MethodAdmin, adminDescription(amount, description), s.Now())
		if err != nil {
			return err
		}
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		result = RechargeResult{Balance: user.WalletBalance, Transaction: *t}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AdminAdjustAll applies the same adjustment to every student of the
// university, one transaction per student. A student whose balance would go
// negative is skipped; other failures are logged and reported.
func (s *WalletService) AdminAdjustAll(ctx context.Context, universityID uint, amount int64, description string) (*BulkResult, error) {
	if amount == 0 {
		return nil, ValidationError{Msg: "A non-zero amount is required"}
	}
	students, err := s.store.ListUsers(ctx, universityID, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, NotFoundError{Msg: "No students found in this university"}
	}

	desc := adminDescription(amount, description)
	result := &BulkResult{Skipped: []uint{}, Failed: []uint{}}
	for _, u := range students {
		err := s.store.Transaction(ctx, func(tx store.Store) error {
			_, err := applyWalletChange(ctx, tx, u.ID, amount, models.MethodAdmin, desc, s.Now())
			return err
		})
		switch {
		case err == nil:
			result.Updated++
		case IsRule(err):
			result.Skipped = append(result.Skipped, u.ID)
		default:
			logrus.WithError(err).WithFields(logrus.Fields{
				"university_id": universityID,
				"user_id":       u.ID,
			}).Error("AdminAdjustAll: wallet update failed")
			result.Failed = append(result.Failed, u.ID)
		}
	}
	return result, nil
}

func (s *WalletService) ListWallets(ctx context.Context, universityID uint) ([]WalletSummary, error) {
	users, err := s.store.ListUsers(ctx, universityID, "")
	if err != nil {
		return nil, err
	}
	out := make([]WalletSummary, 0, len(users))
	for _, u := range users {
		out = append(out, WalletSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, WalletBalance: u.WalletBalance})
	}
	return out, nil
}

func adminDescription(amount int64, description string) string {
	prefix := "Admin credit"
	if amount < 0 {
		prefix = "Admin debit"
	}
	if d := strings.TrimSpace(description); d != "" {
		return prefix + ": " + d
	}
	return prefix
}

package services

import (
	"testing"
	"time"

	"campus_shuttle/internal/models"
)

func newWalletService(f *fixture) *WalletService {
	svc := NewWalletService(f.store)
	svc.Now = func() time.Time { return monday7am }
	return svc
}

func TestRecharge(t *testing.T) {
	f := newFixture(t)
	svc := newWalletService(f)

	res, err := svc.Recharge(f.ctx, f.student.ID, 250, "")
	if err != nil {
		t.Fatalf("Recharge: %v", err)
	}
	if res.Balance != 350 {
		t.Fatalf("balance = %d, want 350", res.Balance)
	}
	if tx := res.Transaction; tx.Type != models.TxCredit || tx.PaymentMethod != models.MethodUPI || tx.Amount != 250 {
		t.Fatalf("unexpected transaction %+v", tx)
	}

	if _, err := svc.Recharge(f.ctx, f.student.ID, 50, "Kiosk"); err != nil {
		t.Fatalf("kiosk recharge: %v", err)
	}
	for _, amount := range []int64{0, -10} {
		if _, err := svc.Recharge(f.ctx, f.student.ID, amount, ""); !IsValidation(err) {
			t.Fatalf("amount %d: %v", amount, err)
		}
	}
	if _, err := svc.Recharge(f.ctx, f.student.ID, 10, "cheque"); !IsValidation(err) {
		t.Fatalf("unsupported method: %v", err)
	}

	view, err := svc.Wallet(f.ctx, f.student.ID)
	if err != nil {
		t.Fatalf("Wallet: %v", err)
	}
	if view.Balance != 400 || len(view.Transactions) != 2 {
		t.Fatalf("wallet = %+v", view)
	}
	if view.Transactions[0].PaymentMethod != models.MethodKiosk {
		t.Fatalf("statement must be newest first: %+v", view.Transactions)
	}
}

func TestAdminAdjust(t *testing.T) {
	f := newFixture(t)
	svc := newWalletService(f)

	res, err := svc.AdminAdjust(f.ctx, f.univ.ID, f.student.ID, -40, "lost card")
	if err != nil {
		t.Fatalf("AdminAdjust: %v", err)
	}
	if res.Balance != 60 || res.Transaction.Type != models.TxDebit || res.Transaction.Description != "Admin debit: lost card" {
		t.Fatalf("unexpected result %+v", res)
	}

	_, err = svc.AdminAdjust(f.ctx, f.univ.ID, f.student.ID, -61, "")
	if !IsRule(err) || err.Error() != "Insufficient wallet balance" {
		t.Fatalf("overdraft: %v", err)
	}
	if got := f.balance(t, f.student.ID); got != 60 {
		t.Fatalf("balance = %d after rejected debit", got)
	}

	other, _ := f.otherUniversity(t)
	if _, err := svc.AdminAdjust(f.ctx, other.ID, f.student.ID, 10, ""); !IsNotFound(err) {
		t.Fatalf("cross-university adjust: %v", err)
	}
	if _, err := svc.AdminAdjust(f.ctx, f.univ.ID, f.student.ID, 0, ""); !IsValidation(err) {
		t.Fatalf("zero amount: %v", err)
	}
}

func TestAdminAdjustAllSkipsOverdrafts(t *testing.T) {
	f := newFixture(t)
	svc := newWalletService(f)
	poor := f.addStudent(t, "poor@example.edu", 5)
	admin := models.User{UniversityID: f.univ.ID, Name: "Admin", Email: "admin@example.edu", Role: models.RoleAdmin}
	must(t, f.store.CreateUser(f.ctx, &admin))

	res, err := svc.AdminAdjustAll(f.ctx, f.univ.ID, -20, "")
	if err != nil {
		t.Fatalf("AdminAdjustAll: %v", err)
	}
	if res.Updated != 1 || len(res.Skipped) != 1 || res.Skipped[0] != poor.ID || len(res.Failed) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := f.balance(t, f.student.ID); got != 80 {
		t.Fatalf("student balance = %d, want 80", got)
	}
	if got := f.balance(t, poor.ID); got != 5 {
		t.Fatalf("skipped balance = %d, want 5", got)
	}
	if got := f.balance(t, admin.ID); got != 0 {
		t.Fatalf("admin wallet touched: %d", got)
	}

	other, _ := f.otherUniversity(t)
	if _, err := svc.AdminAdjustAll(f.ctx, other.ID, 10, ""); !IsNotFound(err) {
		t.Fatalf("empty university: %v", err)
	}
}

func TestMonthlyStatement(t *testing.T) {
	f := newFixture(t)
	svc := newWalletService(f)

	svc.Now = func() time.Time { return time.Date(2023, 12, 28, 9, 0, 0, 0, time.UTC) }
	if _, err := svc.Recharge(f.ctx, f.student.ID, 30, ""); err != nil {
		t.Fatalf("Recharge: %v", err)
	}
	svc.Now = func() time.Time { return monday7am }
	if _, err := svc.Recharge(f.ctx, f.student.ID, 70, ""); err != nil {
		t.Fatalf("Recharge: %v", err)
	}

	month, err := svc.Statement(f.ctx, f.student.ID, "month")
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	if len(month.Transactions) != 1 || month.Transactions[0].Amount != 70 {
		t.Fatalf("month statement = %+v", month.Transactions)
	}
	all, err := svc.Statement(f.ctx, f.student.ID, "all")
	if err != nil || len(all.Transactions) != 2 || all.Balance != 200 {
		t.Fatalf("full statement = %+v, %v", all, err)
	}
	if _, err := svc.Statement(f.ctx, f.student.ID, "decade"); !IsValidation(err) {
		t.Fatalf("bad period: %v", err)
	}
}

func TestListWallets(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "second@example.edu", 7)

	wallets, err := newWalletService(f).ListWallets(f.ctx, f.univ.ID)
	if err != nil {
		t.Fatalf("ListWallets: %v", err)
	}
	if len(wallets) != 2 {
		t.Fatalf("expected two wallets, got %d", len(wallets))
	}
}

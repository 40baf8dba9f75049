package services

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

// The ledger and workflow tests below need a real Postgres because the
// invariants under test live in transactions and unique indexes. They run
// against TEST_DATABASE_URL and skip when it is not set.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Ping(); err != nil {
		t.Fatalf("ping test database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

type seedParams struct {
	installments int
	startDue     time.Time
	graceDays    int
	lateFeePct   *decimal.Decimal
	itemAmount   string
}

type seededAccount struct {
	studentID    string
	assignment   *models.StudentFeeAssignment
	installments []*models.FeeInstallment
}

// seedAccount builds a fresh student with an assigned fee structure. Every
// run uses unique names so tests never collide with earlier data.
func seedAccount(t *testing.T, db *sql.DB, p seedParams) *seededAccount {
	t.Helper()
	sfx := uuid.NewString()

	var yearID string
	if err := db.QueryRow(
		`INSERT INTO academic_years (name, start_date, end_date) VALUES ($1, $2, $3) RETURNING id`,
		"AY "+sfx, p.startDue.AddDate(0, -3, 0), p.startDue.AddDate(1, 0, 0),
	).Scan(&yearID); err != nil {
		t.Fatalf("seed academic year: %v", err)
	}

	var classID string
	if err := db.QueryRow(
		`INSERT INTO classes (name, code) VALUES ($1, $2) RETURNING id`,
		"Class "+sfx, "C-"+sfx,
	).Scan(&classID); err != nil {
		t.Fatalf("seed class: %v", err)
	}

	var studentID string
	if err := db.QueryRow(
		`INSERT INTO students (student_id, first_name, last_name, class_id)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		"STU-"+sfx, "Test", "Student", classID,
	).Scan(&studentID); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	cat := &models.FeeCategory{Name: "Tuition " + sfx}
	if err := database.CreateFeeCategory(db, cat); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	s := &models.FeeStructure{
		AcademicYearID:     yearID,
		ClassID:            classID,
		StudentCategory:    models.CategoryGeneral,
		InstallmentCount:   p.installments,
		GracePeriodDays:    p.graceDays,
		LateFeePercentage:  p.lateFeePct,
		StartDueDate:       models.CustomTime{Time: p.startDue},
		InstallmentGapDays: 30,
		Items: []*models.FeeItem{
			{CategoryID: cat.ID, Amount: dec(p.itemAmount), Cadence: models.CadenceAnnual},
		},
	}
	if err := database.CreateFeeStructure(db, s); err != nil {
		t.Fatalf("seed structure: %v", err)
	}

	a, err := AssignStructure(context.Background(), db, studentID, s.ID, models.DiscountOverrides{})
	if err != nil {
		t.Fatalf("assign structure: %v", err)
	}
	return &seededAccount{studentID: studentID, assignment: a, installments: a.Installments}
}

func strPtr(s string) *string { return &s }

func TestRecordPaymentIdempotentOnExternalID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	acct := seedAccount(t, db, seedParams{
		installments: 1,
		startDue:     time.Now().AddDate(0, 0, 30),
		itemAmount:   "5000.00",
	})

	extID := "TXN-" + uuid.NewString()
	req := PaymentRequest{
		StudentID:             acct.studentID,
		InstallmentID:         &acct.installments[0].ID,
		Amount:                dec("2000.00"),
		Method:                models.MethodBankTransfer,
		ExternalTransactionID: strPtr(extID),
	}

	first, err := RecordPayment(ctx, db, req)
	if err != nil {
		t.Fatalf("first RecordPayment: %v", err)
	}
	if first.Status != models.PaymentSuccess {
		t.Fatalf("first payment status = %s, want success", first.Status)
	}

	second, err := RecordPayment(ctx, db, req)
	if err != nil {
		t.Fatalf("second RecordPayment: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("duplicate external id created a new payment %s, want existing %s", second.ID, first.ID)
	}

	payments, err := database.GetPaymentsByStudent(db, acct.studentID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("payments for student = %d, want 1", len(payments))
	}

	inst, err := database.GetInstallmentByID(db, acct.installments[0].ID)
	if err != nil {
		t.Fatalf("reload installment: %v", err)
	}
	if !inst.PaidAmount.Equal(dec("2000.00")) {
		t.Errorf("installment paid = %s, want 2000.00 (credited once)", inst.PaidAmount)
	}
	if !inst.BalanceAmount.Equal(dec("3000.00")) {
		t.Errorf("installment balance = %s, want 3000.00", inst.BalanceAmount)
	}
}

func TestWebhookExcessCreditIsApplicable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	acct := seedAccount(t, db, seedParams{
		installments: 2,
		startDue:     time.Now().AddDate(0, 0, 30),
		itemAmount:   "10000.00",
	})
	inst1, inst2 := acct.installments[0], acct.installments[1]

	// Gateway payment initiated for the full first installment.
	extID := "TXN-" + uuid.NewString()
	pending, err := RecordPayment(ctx, db, PaymentRequest{
		StudentID:             acct.studentID,
		InstallmentID:         &inst1.ID,
		Amount:                dec("5000.00"),
		Method:                models.MethodGateway,
		ExternalTransactionID: strPtr(extID),
	})
	if err != nil {
		t.Fatalf("gateway RecordPayment: %v", err)
	}
	if pending.Status != models.PaymentPending {
		t.Fatalf("gateway payment status = %s, want pending", pending.Status)
	}

	// Part of the balance is collected in cash before the webhook lands.
	if _, err := RecordPayment(ctx, db, PaymentRequest{
		StudentID:     acct.studentID,
		InstallmentID: &inst1.ID,
		Amount:        dec("2000.00"),
		Method:        models.MethodCash,
	}); err != nil {
		t.Fatalf("cash RecordPayment: %v", err)
	}

	settled, err := ReconcileWebhook(ctx, db, GatewayWebhook{
		ExternalTransactionID: extID,
		Status:                "SUCCESS",
		Amount:                dec("5000.00"),
		GatewayReference:      "GW-" + uuid.NewString(),
	}, []byte(`{}`))
	if err != nil {
		t.Fatalf("ReconcileWebhook: %v", err)
	}
	if !settled.AdvanceRemaining.Equal(dec("2000.00")) {
		t.Fatalf("advance remaining = %s, want 2000.00", settled.AdvanceRemaining)
	}

	// The excess must be drainable into the next installment.
	allocations, err := ApplyAdvance(ctx, db, acct.studentID)
	if err != nil {
		t.Fatalf("ApplyAdvance: %v", err)
	}
	if len(allocations) != 1 {
		t.Fatalf("allocations = %d, want 1", len(allocations))
	}
	if allocations[0].PaymentID != settled.ID {
		t.Errorf("allocation drew from payment %s, want the reconciled gateway payment %s",
			allocations[0].PaymentID, settled.ID)
	}
	if !allocations[0].Amount.Equal(dec("2000.00")) {
		t.Errorf("allocation amount = %s, want 2000.00", allocations[0].Amount)
	}

	reloaded, err := database.GetPaymentByID(db, settled.ID)
	if err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if !reloaded.AdvanceRemaining.IsZero() {
		t.Errorf("advance remaining after application = %s, want 0", reloaded.AdvanceRemaining)
	}

	next, err := database.GetInstallmentByID(db, inst2.ID)
	if err != nil {
		t.Fatalf("reload second installment: %v", err)
	}
	if !next.PaidAmount.Equal(dec("2000.00")) {
		t.Errorf("second installment paid = %s, want 2000.00", next.PaidAmount)
	}
}

func TestApplyAdvanceAccruesLateFeeFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	acct := seedAccount(t, db, seedParams{
		installments: 1,
		startDue:     time.Now().AddDate(0, 0, -60),
		graceDays:    7,
		lateFeePct:   decPtr("2"),
		itemAmount:   "5000.00",
	})
	inst := acct.installments[0]

	// Unallocated advance covering principal plus the late fee the sweep
	// has not yet applied.
	if _, err := RecordPayment(ctx, db, PaymentRequest{
		StudentID: acct.studentID,
		Amount:    dec("5100.00"),
		Method:    models.MethodCash,
	}); err != nil {
		t.Fatalf("advance RecordPayment: %v", err)
	}

	allocations, err := ApplyAdvance(ctx, db, acct.studentID)
	if err != nil {
		t.Fatalf("ApplyAdvance: %v", err)
	}
	if len(allocations) != 1 {
		t.Fatalf("allocations = %d, want 1", len(allocations))
	}
	if !allocations[0].Amount.Equal(dec("5100.00")) {
		t.Errorf("allocation amount = %s, want 5100.00 (principal plus late fee)", allocations[0].Amount)
	}

	reloaded, err := database.GetInstallmentByID(db, inst.ID)
	if err != nil {
		t.Fatalf("reload installment: %v", err)
	}
	if !reloaded.LateFeeAmount.Equal(dec("100.00")) {
		t.Errorf("late fee = %s, want 100.00 accrued before crediting", reloaded.LateFeeAmount)
	}
	if !reloaded.IsPaid {
		t.Error("installment not settled after advance application")
	}
	if !reloaded.BalanceAmount.IsZero() {
		t.Errorf("balance = %s, want 0", reloaded.BalanceAmount)
	}
}

func TestPaymentResolvesOpenDefaulter(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	acct := seedAccount(t, db, seedParams{
		installments: 1,
		startDue:     time.Now().AddDate(0, 0, -60),
		itemAmount:   "5000.00",
	})
	inst := acct.installments[0]

	pol := config.FeePolicy{
		DefaulterThresholdDays: 30,
		MaxEscalationLevel:     4,
		TCHoldLevel:            2,
		ExamDebarLevel:         3,
	}
	if _, err := SweepStudentDefaulters(ctx, db, pol, LogNotifier{}, time.Now(), acct.studentID); err != nil {
		t.Fatalf("defaulter sweep: %v", err)
	}
	open, err := database.ListOpenDefaulters(db, acct.studentID)
	if err != nil {
		t.Fatalf("list defaulters: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("open defaulters after sweep = %d, want 1", len(open))
	}

	if _, err := RecordPayment(ctx, db, PaymentRequest{
		StudentID:     acct.studentID,
		InstallmentID: &inst.ID,
		Amount:        dec("5000.00"),
		Method:        models.MethodCash,
	}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	reloaded, err := database.GetInstallmentByID(db, inst.ID)
	if err != nil {
		t.Fatalf("reload installment: %v", err)
	}
	if !reloaded.IsPaid {
		t.Fatal("installment not settled by full payment")
	}

	open, err = database.ListOpenDefaulters(db, acct.studentID)
	if err != nil {
		t.Fatalf("list defaulters: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("open defaulters after settling = %d, want 0", len(open))
	}
}

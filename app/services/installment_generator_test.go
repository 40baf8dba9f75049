package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestApportion(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		n      int
		want   []string
	}{
		{"even split", "9000.00", 3, []string{"3000.00", "3000.00", "3000.00"}},
		{"remainder cent to first", "10000.00", 3, []string{"3333.34", "3333.33", "3333.33"}},
		{"two remainder cents", "100.00", 3, []string{"33.34", "33.33", "33.33"}},
		{"single installment", "4500.50", 1, []string{"4500.50"}},
		{"more parts than cents", "0.03", 4, []string{"0.01", "0.01", "0.01", "0.00"}},
		{"zero amount", "0.00", 2, []string{"0.00", "0.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apportion(dec(tt.amount), tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("Apportion returned %d parts, want %d", len(got), len(tt.want))
			}
			sum := decimal.Zero
			for i, part := range got {
				if !part.Equal(dec(tt.want[i])) {
					t.Errorf("part %d = %s, want %s", i, part, tt.want[i])
				}
				sum = sum.Add(part)
			}
			if !sum.Equal(dec(tt.amount)) {
				t.Errorf("parts sum to %s, want %s", sum, tt.amount)
			}
		})
	}
}

func TestApportionSumsExactly(t *testing.T) {
	amounts := []string{"10000.00", "9999.99", "0.01", "123456.78", "7.77"}
	for _, a := range amounts {
		for n := 1; n <= 12; n++ {
			parts := Apportion(dec(a), n)
			sum := decimal.Zero
			for _, p := range parts {
				sum = sum.Add(p)
			}
			if !sum.Equal(dec(a)) {
				t.Errorf("Apportion(%s, %d) sums to %s", a, n, sum)
			}
			// parts are non-increasing: remainder cents go to the front
			for i := 1; i < len(parts); i++ {
				if parts[i].GreaterThan(parts[i-1]) {
					t.Errorf("Apportion(%s, %d): part %d > part %d", a, n, i, i-1)
				}
			}
		}
	}
}

func TestApportionInvalidN(t *testing.T) {
	if got := Apportion(dec("100.00"), 0); got != nil {
		t.Errorf("Apportion with n=0 = %v, want nil", got)
	}
	if got := Apportion(dec("100.00"), -3); got != nil {
		t.Errorf("Apportion with n=-3 = %v, want nil", got)
	}
}

func TestBuildSchedule(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	a := &models.StudentFeeAssignment{
		ID:          "a1",
		GrossAmount: dec("10000.00"),
		NetPayable:  dec("9000.00"),
	}
	s := &models.FeeStructure{
		ID:                 "s1",
		InstallmentCount:   3,
		StartDueDate:       models.CustomTime{Time: start},
		InstallmentGapDays: 90,
	}

	installments, err := BuildSchedule(a, s, yearEnd)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	if len(installments) != 3 {
		t.Fatalf("got %d installments, want 3", len(installments))
	}

	sumNet := decimal.Zero
	sumGross := decimal.Zero
	for i, inst := range installments {
		if inst.InstallmentNumber != i+1 {
			t.Errorf("installment %d has number %d", i, inst.InstallmentNumber)
		}
		wantDue := start.AddDate(0, 0, i*90)
		if !inst.DueDate.Time.Equal(wantDue) {
			t.Errorf("installment %d due %s, want %s", i+1, inst.DueDate.Time, wantDue)
		}
		if !inst.BalanceAmount.Equal(inst.NetAmount) {
			t.Errorf("installment %d balance %s != net %s", i+1, inst.BalanceAmount, inst.NetAmount)
		}
		if !inst.DiscountShare.Equal(inst.GrossAmount.Sub(inst.NetAmount)) {
			t.Errorf("installment %d discount share %s inconsistent", i+1, inst.DiscountShare)
		}
		sumNet = sumNet.Add(inst.NetAmount)
		sumGross = sumGross.Add(inst.GrossAmount)
	}
	if !sumNet.Equal(a.NetPayable) {
		t.Errorf("net sum %s != net payable %s", sumNet, a.NetPayable)
	}
	if !sumGross.Equal(a.GrossAmount) {
		t.Errorf("gross sum %s != gross %s", sumGross, a.GrossAmount)
	}
}

func TestBuildScheduleClampsToYearEnd(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	a := &models.StudentFeeAssignment{ID: "a1", GrossAmount: dec("1200.00"), NetPayable: dec("1200.00")}
	s := &models.FeeStructure{
		ID:                 "s1",
		InstallmentCount:   4,
		StartDueDate:       models.CustomTime{Time: start},
		InstallmentGapDays: 60,
	}

	installments, err := BuildSchedule(a, s, yearEnd)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	for _, inst := range installments {
		if inst.DueDate.Time.After(yearEnd) {
			t.Errorf("installment %d due %s past year end %s",
				inst.InstallmentNumber, inst.DueDate.Time, yearEnd)
		}
	}
}

func TestBuildScheduleRejectsZeroCount(t *testing.T) {
	a := &models.StudentFeeAssignment{ID: "a1", NetPayable: dec("100.00")}
	s := &models.FeeStructure{ID: "s1", InstallmentCount: 0}

	if _, err := BuildSchedule(a, s, time.Time{}); err == nil {
		t.Fatal("expected error for installment_count=0")
	}
}

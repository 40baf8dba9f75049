package services

import (
	"errors"
	"testing"

	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

func TestComputeNetPayable(t *testing.T) {
	tests := []struct {
		name    string
		gross   string
		o       models.DiscountOverrides
		want    string
		wantErr error
	}{
		{
			name:  "no discounts",
			gross: "10000.00",
			want:  "10000.00",
		},
		{
			name:  "percentage discount on gross",
			gross: "10000.00",
			o:     models.DiscountOverrides{DiscountPercentage: dec("10")},
			want:  "9000.00",
		},
		{
			name:  "flat discount",
			gross: "10000.00",
			o:     models.DiscountOverrides{DiscountAmount: dec("1500.00")},
			want:  "8500.00",
		},
		{
			name:  "full stack",
			gross: "10000.00",
			o: models.DiscountOverrides{
				DiscountPercentage:    dec("10"),  // -1000 on gross
				DiscountAmount:        dec("500"), // -500
				ScholarshipPercentage: dec("25"),  // -2500 on gross
				ScholarshipAmount:     dec("1000"),
				GovernmentWaiver:      dec("2000"),
			},
			want: "3000.00",
		},
		{
			name:  "percentages computed on gross, not running",
			gross: "1000.00",
			o: models.DiscountOverrides{
				DiscountPercentage:    dec("50"), // -500 of gross
				ScholarshipPercentage: dec("50"), // -500 of gross, not of 500
			},
			want: "0.00",
		},
		{
			name:    "stack drives net negative",
			gross:   "1000.00",
			o:       models.DiscountOverrides{DiscountAmount: dec("600"), ScholarshipAmount: dec("600")},
			wantErr: models.ErrInvalidDiscount,
		},
		{
			name:    "negative overrides rejected",
			gross:   "1000.00",
			o:       models.DiscountOverrides{DiscountAmount: dec("-5")},
			wantErr: &models.FeeError{},
		},
		{
			name:  "exact zero is legal",
			gross: "1000.00",
			o:     models.DiscountOverrides{GovernmentWaiver: dec("1000.00")},
			want:  "0.00",
		},
		{
			name:  "rounding to cents",
			gross: "999.99",
			o:     models.DiscountOverrides{DiscountPercentage: dec("33.33")},
			want:  "666.69", // 999.99 - 333.30 (999.99*33.33% rounded half-up)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeNetPayable(dec(tt.gross), tt.o)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error, got net %s", got)
				}
				if errors.Is(tt.wantErr, models.ErrInvalidDiscount) && err != models.ErrInvalidDiscount {
					t.Fatalf("got error %v, want ErrInvalidDiscount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeNetPayable: %v", err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Errorf("net = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeNetPayableNeverClamps(t *testing.T) {
	// one overshooting stage must reject even if a later stage would not
	// matter; the engine never silently floors to zero
	_, err := ComputeNetPayable(dec("100.00"), models.DiscountOverrides{
		DiscountAmount: dec("150.00"),
	})
	if err != models.ErrInvalidDiscount {
		t.Fatalf("got %v, want ErrInvalidDiscount", err)
	}
}

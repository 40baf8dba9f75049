package fees

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

func validStructureRequest(category string) StructureRequest {
	return StructureRequest{
		AcademicYearID:     "0a0f4c1a-4f3e-4f69-9f68-2f9d3a6d9b01",
		ClassID:            "1b1e5d2b-5a4f-4c7a-8d79-3e0e4b7eac12",
		StudentCategory:    category,
		InstallmentCount:   3,
		GracePeriodDays:    7,
		StartDueDate:       models.CustomTime{Time: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		InstallmentGapDays: 90,
		Items: []StructureItemRequest{
			{
				CategoryID: "2c2f6e3c-6b50-4d8b-9e8a-4f1f5c8fbd23",
				Amount:     decimal.RequireFromString("5000.00"),
				Cadence:    "annual",
			},
		},
	}
}

func TestStructureRequestAcceptsEveryStudentCategory(t *testing.T) {
	for _, cat := range []models.StudentCategory{
		models.CategoryGeneral,
		models.CategoryScholarship,
		models.CategoryStaffWard,
		models.CategoryGovtScheme,
	} {
		t.Run(string(cat), func(t *testing.T) {
			if err := models.Validate(validStructureRequest(string(cat))); err != nil {
				t.Errorf("declared category %q rejected: %v", cat, err)
			}
		})
	}
}

func TestStructureRequestRejectsUnknownCategory(t *testing.T) {
	for _, cat := range []string{"sibling", "day_scholar", ""} {
		if err := models.Validate(validStructureRequest(cat)); err == nil {
			t.Errorf("category %q accepted, want validation error", cat)
		}
	}
}

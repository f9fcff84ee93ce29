package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hoteldesk-backend/apperrors"
)

func TestCalculateTaxes(t *testing.T) {
	cfg := TaxConfig{
		GSTPercentage:        decimal.NewFromInt(18),
		ServiceTaxPercentage: decimal.NewFromInt(5),
		OtherTaxes: []OtherTax{
			{Name: "Luxury Tax", Percentage: decimal.NewFromInt(2)},
		},
		TaxEnabled: true,
	}

	out, err := CalculateTaxes(decimal.NewFromInt(1000), cfg)
	require.NoError(t, err)
	decEq(t, "180", out.GSTAmount)
	decEq(t, "50", out.ServiceTaxAmount)
	decEq(t, "20", out.OtherTaxAmount)
	decEq(t, "250", out.TotalTaxAmount)
	decEq(t, "1250", out.TotalAmount)
}

func TestCalculateTaxesRounding(t *testing.T) {
	cfg := TaxConfig{
		GSTPercentage: decimal.NewFromInt(18),
		TaxEnabled:    true,
	}

	// 333.33 * 18% = 59.9994, rounds to 60.00
	out, err := CalculateTaxes(decimal.RequireFromString("333.33"), cfg)
	require.NoError(t, err)
	decEq(t, "60.00", out.GSTAmount)
	decEq(t, "393.33", out.TotalAmount)
}

func TestCalculateTaxesDisabled(t *testing.T) {
	cfg := TaxConfig{
		GSTPercentage:        decimal.NewFromInt(18),
		ServiceTaxPercentage: decimal.NewFromInt(5),
		TaxEnabled:           false,
	}

	out, err := CalculateTaxes(decimal.NewFromInt(1000), cfg)
	require.NoError(t, err)
	require.True(t, out.TotalTaxAmount.IsZero())
	decEq(t, "1000", out.TotalAmount)
}

func TestCalculateTaxesZeroBase(t *testing.T) {
	out, err := CalculateTaxes(decimal.Zero, TaxConfig{
		GSTPercentage: decimal.NewFromInt(18),
		TaxEnabled:    true,
	})
	require.NoError(t, err)
	require.True(t, out.TotalAmount.IsZero())
	require.True(t, out.TotalTaxAmount.IsZero())
}

func TestCalculateTaxesNegativeBase(t *testing.T) {
	_, err := CalculateTaxes(decimal.NewFromInt(-1), TaxConfig{TaxEnabled: true})
	require.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestTaxServiceDefaultSettings(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaxService(db)

	setting, err := svc.GetSettings()
	require.NoError(t, err)
	decEq(t, "18", setting.GSTPercentage)
	require.True(t, setting.TaxEnabled)

	// Second call returns the same row, not a new one.
	again, err := svc.GetSettings()
	require.NoError(t, err)
	require.Equal(t, setting.ID, again.ID)
}

func TestTaxServiceUpdateSettings(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaxService(db)

	updated, err := svc.UpdateSettings(TaxConfig{
		GSTPercentage:        decimal.NewFromInt(12),
		ServiceTaxPercentage: decimal.NewFromInt(5),
		OtherTaxes: []OtherTax{
			{Name: "Cess", Percentage: decimal.NewFromInt(1)},
		},
		TaxEnabled: true,
	})
	require.NoError(t, err)
	decEq(t, "12", updated.GSTPercentage)

	cfg, err := svc.GetConfig()
	require.NoError(t, err)
	require.Len(t, cfg.OtherTaxes, 1)
	require.Equal(t, "Cess", cfg.OtherTaxes[0].Name)
}

func TestTaxServiceRejectsInvalidSettings(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaxService(db)

	_, err := svc.UpdateSettings(TaxConfig{
		GSTPercentage: decimal.NewFromInt(-1),
		TaxEnabled:    true,
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.UpdateSettings(TaxConfig{
		OtherTaxes: []OtherTax{{Name: "", Percentage: decimal.NewFromInt(2)}},
		TaxEnabled: true,
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/models"
)

var hundred = decimal.NewFromInt(100)

// OtherTax is one named percentage-based tax on top of GST and service tax.
type OtherTax struct {
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
}

// TaxConfig is the input configuration for a tax calculation.
type TaxConfig struct {
	GSTPercentage        decimal.Decimal `json:"gstPercentage"`
	ServiceTaxPercentage decimal.Decimal `json:"serviceTaxPercentage"`
	OtherTaxes           []OtherTax      `json:"otherTaxes"`
	TaxEnabled           bool            `json:"taxEnabled"`
}

// TaxBreakdown is the result of applying a TaxConfig to a base amount.
type TaxBreakdown struct {
	BaseAmount       decimal.Decimal `json:"baseAmount"`
	GSTAmount        decimal.Decimal `json:"gstAmount"`
	ServiceTaxAmount decimal.Decimal `json:"serviceTaxAmount"`
	OtherTaxAmount   decimal.Decimal `json:"otherTaxAmount"`
	TotalTaxAmount   decimal.Decimal `json:"totalTaxAmount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
}

// CalculateTaxes computes the tax breakdown for baseAmount. With taxes disabled
// every tax field is zero and the total equals the base. Amounts are rounded to
// two decimal places.
func CalculateTaxes(baseAmount decimal.Decimal, cfg TaxConfig) (TaxBreakdown, error) {
	if baseAmount.IsNegative() {
		return TaxBreakdown{}, fmt.Errorf("base amount %s: %w", baseAmount, apperrors.ErrInvalidAmount)
	}

	out := TaxBreakdown{
		BaseAmount:       baseAmount,
		GSTAmount:        decimal.Zero,
		ServiceTaxAmount: decimal.Zero,
		OtherTaxAmount:   decimal.Zero,
		TotalTaxAmount:   decimal.Zero,
		TotalAmount:      baseAmount,
	}
	if !cfg.TaxEnabled {
		return out, nil
	}

	out.GSTAmount = baseAmount.Mul(cfg.GSTPercentage).Div(hundred).Round(2)
	out.ServiceTaxAmount = baseAmount.Mul(cfg.ServiceTaxPercentage).Div(hundred).Round(2)
	for _, t := range cfg.OtherTaxes {
		out.OtherTaxAmount = out.OtherTaxAmount.Add(baseAmount.Mul(t.Percentage).Div(hundred).Round(2))
	}

	out.TotalTaxAmount = out.GSTAmount.Add(out.ServiceTaxAmount).Add(out.OtherTaxAmount)
	out.TotalAmount = baseAmount.Add(out.TotalTaxAmount)
	return out, nil
}

// TaxService loads and updates the persisted hotel-wide tax settings.
type TaxService struct {
	DB *gorm.DB
}

func NewTaxService(db *gorm.DB) *TaxService {
	return &TaxService{DB: db}
}

// GetSettings returns the settings row, creating a default one on first run.
func (s *TaxService) GetSettings() (*models.TaxSetting, error) {
	var setting models.TaxSetting
	err := s.DB.Order("id ASC").First(&setting).Error
	if err == nil {
		return &setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load tax settings: %w", err)
	}

	setting = models.TaxSetting{
		GSTPercentage:        decimal.NewFromInt(18),
		ServiceTaxPercentage: decimal.Zero,
		TaxEnabled:           true,
	}
	if err := s.DB.Create(&setting).Error; err != nil {
		return nil, fmt.Errorf("failed to create default tax settings: %w", err)
	}
	return &setting, nil
}

// GetConfig returns the persisted settings as a calculation config.
func (s *TaxService) GetConfig() (TaxConfig, error) {
	setting, err := s.GetSettings()
	if err != nil {
		return TaxConfig{}, err
	}

	cfg := TaxConfig{
		GSTPercentage:        setting.GSTPercentage,
		ServiceTaxPercentage: setting.ServiceTaxPercentage,
		TaxEnabled:           setting.TaxEnabled,
	}
	if len(setting.OtherTaxes) > 0 {
		if err := json.Unmarshal(setting.OtherTaxes, &cfg.OtherTaxes); err != nil {
			return TaxConfig{}, fmt.Errorf("failed to parse other taxes: %w", err)
		}
	}
	return cfg, nil
}

// UpdateSettings replaces the tax configuration.
func (s *TaxService) UpdateSettings(cfg TaxConfig) (*models.TaxSetting, error) {
	if cfg.GSTPercentage.IsNegative() || cfg.ServiceTaxPercentage.IsNegative() {
		return nil, fmt.Errorf("tax percentages must not be negative: %w", apperrors.ErrValidation)
	}
	for _, t := range cfg.OtherTaxes {
		if t.Name == "" || t.Percentage.IsNegative() {
			return nil, fmt.Errorf("other tax entries need a name and a non-negative percentage: %w", apperrors.ErrValidation)
		}
	}

	setting, err := s.GetSettings()
	if err != nil {
		return nil, err
	}

	otherJSON, err := json.Marshal(cfg.OtherTaxes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode other taxes: %w", err)
	}

	updates := map[string]interface{}{
		"gst_percentage":         cfg.GSTPercentage,
		"service_tax_percentage": cfg.ServiceTaxPercentage,
		"other_taxes":            datatypes.JSON(otherJSON),
		"tax_enabled":            cfg.TaxEnabled,
	}
	if err := s.DB.Model(setting).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update tax settings: %w", err)
	}
	return s.GetSettings()
}

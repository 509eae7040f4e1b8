package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionIsValid(t *testing.T) {
	tests := []struct {
		name  string
		tx    Transaction
		valid bool
	}{
		{
			name:  "valid transaction",
			tx:    Transaction{Sales: 100, Units: 10, GrossProfit: 20, Cost: 80},
			valid: true,
		},
		{
			name:  "zero sales",
			tx:    Transaction{Sales: 0, Units: 10},
			valid: false,
		},
		{
			name:  "negative sales",
			tx:    Transaction{Sales: -5, Units: 10},
			valid: false,
		},
		{
			name:  "zero units",
			tx:    Transaction{Sales: 100, Units: 0},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.tx.IsValid())
		})
	}
}

func TestDeriveMetrics(t *testing.T) {
	t.Run("normal ratios", func(t *testing.T) {
		tx := Transaction{Sales: 200, Units: 20, GrossProfit: 80, Cost: 120}
		tx.DeriveMetrics()

		assert.InDelta(t, 0.4, tx.GrossMargin, 1e-9)
		assert.InDelta(t, 4.0, tx.ProfitPerUnit, 1e-9)
		assert.InDelta(t, 6.0, tx.CostPerUnit, 1e-9)
	})

	t.Run("division by zero yields zero sentinel", func(t *testing.T) {
		tx := Transaction{Sales: 0, Units: 0, GrossProfit: 10, Cost: 5}
		tx.DeriveMetrics()

		assert.Zero(t, tx.GrossMargin)
		assert.Zero(t, tx.ProfitPerUnit)
		assert.Zero(t, tx.CostPerUnit)
	})
}

func TestCheckProfitMismatch(t *testing.T) {
	tests := []struct {
		name     string
		tx       Transaction
		mismatch bool
	}{
		{
			name:     "profit equals sales minus cost",
			tx:       Transaction{Sales: 100, Cost: 80, GrossProfit: 20},
			mismatch: false,
		},
		{
			name:     "within tolerance",
			tx:       Transaction{Sales: 100, Cost: 80, GrossProfit: 20.5},
			mismatch: false,
		},
		{
			name:     "beyond tolerance",
			tx:       Transaction{Sales: 100, Cost: 80, GrossProfit: 35},
			mismatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.tx.CheckProfitMismatch(0.01)
			assert.Equal(t, tt.mismatch, got)
			assert.Equal(t, tt.mismatch, tt.tx.ProfitMismatch)
		})
	}
}

func TestMonth(t *testing.T) {
	tx := Transaction{OrderDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2024-03", tx.Month())

	unknown := Transaction{}
	assert.Equal(t, "", unknown.Month())
	assert.False(t, unknown.HasOrderDate())
}

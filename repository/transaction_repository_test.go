package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtn-loyalty-tier3/models"
)

func decisionFixture() (*models.TransactionRecord, []models.TransactionLineRecord) {
	rec := &models.TransactionRecord{
		TransactionID:   "TX-555",
		StoreID:         "STORE-042",
		LoyaltyID:       "5551234567",
		CIDCustomerID:   "5551234567",
		AgeVerified:     true,
		Tier3Eligible:   true,
		CIDFundEligible: true,
		TotalDiscount:   decimal.RequireFromString("0.97"),
	}
	lines := []models.TransactionLineRecord{{
		LineNumber:         1,
		UPC:                "028200003843",
		SKUGUID:            "SKU-MARL-GOLD",
		SKUName:            "MARLBORO GOLD PACK",
		UOM:                models.UOMPack,
		Quantity:           1,
		UnitPrice:          decimal.RequireFromString("7.00"),
		BaseExtendedPrice:  decimal.RequireFromString("7.00"),
		Discounts:          models.LineDiscounts{Loyalty: decimal.RequireFromString("0.97")},
		TotalDiscount:      decimal.RequireFromString("0.97"),
		FinalUnitPrice:     decimal.RequireFromString("6.03"),
		FinalExtendedPrice: decimal.RequireFromString("6.03"),
	}}
	return rec, lines
}

func TestSaveDecision(t *testing.T) {
	mock := withMockDB(t)
	rec, lines := decisionFixture()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))
	mock.ExpectExec(`INSERT INTO transaction_lines`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewTransactionRepository()
	id, err := repo.SaveDecision(context.Background(), rec, lines)
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)
}

func TestSaveDecisionLineFailureRollsBack(t *testing.T) {
	mock := withMockDB(t)
	rec, lines := decisionFixture()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))
	mock.ExpectExec(`INSERT INTO transaction_lines`).
		WillReturnError(errors.New("column mismatch"))
	mock.ExpectRollback()

	repo := NewTransactionRepository()
	_, err := repo.SaveDecision(context.Background(), rec, lines)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert transaction line")
}

func TestSaveDecisionHeaderFailureRollsBack(t *testing.T) {
	mock := withMockDB(t)
	rec, lines := decisionFixture()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO transactions`).
		WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	repo := NewTransactionRepository()
	_, err := repo.SaveDecision(context.Background(), rec, lines)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert transaction")
}

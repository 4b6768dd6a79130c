package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletValidate(t *testing.T) {
	limit := Money(5000)
	zero := Money(0)
	day := 5
	badDay := 32

	cases := []struct {
		name   string
		wallet Wallet
		code   string
	}{
		{name: "debit", wallet: Wallet{Name: "Cash", Kind: KindDebit}},
		{name: "credit", wallet: Wallet{Name: "Card", Kind: KindCredit, CreditLimit: &limit, BillingDay: &day}},
		{name: "blank name", wallet: Wallet{Name: "  ", Kind: KindDebit}, code: "INVALID_NAME"},
		{name: "long name", wallet: Wallet{Name: strings.Repeat("w", 101), Kind: KindDebit}, code: "INVALID_NAME"},
		{name: "debit with credit limit", wallet: Wallet{Name: "Cash", Kind: KindDebit, CreditLimit: &limit}, code: "INVALID_DEBIT_FIELDS"},
		{name: "debit with billing day", wallet: Wallet{Name: "Cash", Kind: KindDebit, BillingDay: &day}, code: "INVALID_DEBIT_FIELDS"},
		{name: "credit without limit", wallet: Wallet{Name: "Card", Kind: KindCredit, BillingDay: &day}, code: "INVALID_CREDIT_LIMIT"},
		{name: "credit with zero limit", wallet: Wallet{Name: "Card", Kind: KindCredit, CreditLimit: &zero, BillingDay: &day}, code: "INVALID_CREDIT_LIMIT"},
		{name: "credit with billing day out of range", wallet: Wallet{Name: "Card", Kind: KindCredit, CreditLimit: &limit, BillingDay: &badDay}, code: "INVALID_BILLING_DAY"},
		{name: "unknown kind", wallet: Wallet{Name: "Jar", Kind: "savings"}, code: "INVALID_KIND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.wallet.Validate()
			if tc.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, &Error{Kind: KindValidation, Code: tc.code})
		})
	}
}

func TestApplyCreditDefaults(t *testing.T) {
	w := Wallet{Name: "Card", Kind: KindCredit}
	w.ApplyCreditDefaults()
	require.NotNil(t, w.CreditLimit)
	require.NotNil(t, w.BillingDay)
	assert.Equal(t, DefaultCreditLimit, *w.CreditLimit)
	assert.Equal(t, DefaultBillingDay, *w.BillingDay)
	assert.NoError(t, w.Validate())

	d := Wallet{Name: "Cash", Kind: KindDebit}
	d.ApplyCreditDefaults()
	assert.Nil(t, d.CreditLimit)
	assert.Nil(t, d.BillingDay)
}

func TestParseWalletKindAndDirection(t *testing.T) {
	k, err := ParseWalletKind(" Credit ")
	require.NoError(t, err)
	assert.Equal(t, KindCredit, k)
	_, err = ParseWalletKind("pix")
	assert.ErrorIs(t, err, &Error{Kind: KindValidation, Code: "INVALID_KIND"})

	d, err := ParseDirection("OUTFLOW")
	require.NoError(t, err)
	assert.Equal(t, Outflow, d)
	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, &Error{Kind: KindValidation, Code: "INVALID_DIRECTION"})
}

func TestTransactionValidate(t *testing.T) {
	valid := func() Transaction {
		return Transaction{Description: "Lunch", Amount: 2500, Category: "Food", Direction: Outflow, PaymentMethod: KindDebit}
	}
	cases := []struct {
		name   string
		mutate func(*Transaction)
		code   string
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "category at column limit", mutate: func(tx *Transaction) { tx.Category = strings.Repeat("c", 60) }},
		{name: "category over column limit", mutate: func(tx *Transaction) { tx.Category = strings.Repeat("c", 61) }, code: "INVALID_CATEGORY"},
		{name: "zero amount", mutate: func(tx *Transaction) { tx.Amount = 0 }, code: "INVALID_AMOUNT"},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount = -1 }, code: "INVALID_AMOUNT"},
		{name: "blank description", mutate: func(tx *Transaction) { tx.Description = " " }, code: "INVALID_DESCRIPTION"},
		{name: "long description", mutate: func(tx *Transaction) { tx.Description = strings.Repeat("d", 256) }, code: "INVALID_DESCRIPTION"},
		{name: "bad direction", mutate: func(tx *Transaction) { tx.Direction = "up" }, code: "INVALID_DIRECTION"},
		{name: "bad payment method", mutate: func(tx *Transaction) { tx.PaymentMethod = "pix" }, code: "INVALID_PAYMENT_METHOD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := valid()
			tc.mutate(&tx)
			err := tx.Validate()
			if tc.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, &Error{Kind: KindValidation, Code: tc.code})
		})
	}
}

func TestErrorIsMatchesKindAndCode(t *testing.T) {
	err := NotFound("WALLET_NOT_FOUND", "wallet %d not found", 7)
	assert.Equal(t, "wallet 7 not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, &Error{Kind: KindNotFound, Code: "WALLET_NOT_FOUND"})
	assert.NotErrorIs(t, err, &Error{Kind: KindNotFound, Code: "CATEGORY_NOT_FOUND"})
	assert.NotErrorIs(t, err, ErrValidation)
}

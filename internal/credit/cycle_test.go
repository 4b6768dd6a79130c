package credit

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet_ledger/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y, m, day int) domain.Date {
	return domain.NewDate(y, time.Month(m), day)
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		billingDay int
		today      domain.Date
		start, end domain.Date
	}{
		{"before billing day", 10, d(2024, 1, 5), d(2023, 12, 10), d(2024, 1, 10)},
		{"after billing day", 10, d(2024, 1, 15), d(2024, 1, 10), d(2024, 2, 10)},
		{"on billing day", 10, d(2024, 1, 10), d(2024, 1, 10), d(2024, 2, 10)},
		{"day before billing day", 10, d(2024, 1, 9), d(2023, 12, 10), d(2024, 1, 10)},
		{"clamped to leap february", 31, d(2024, 2, 15), d(2024, 1, 31), d(2024, 2, 29)},
		{"on clamped day", 31, d(2024, 2, 29), d(2024, 2, 29), d(2024, 3, 31)},
		{"clamped to short february", 30, d(2023, 2, 28), d(2023, 2, 28), d(2023, 3, 30)},
		{"clamped to april", 31, d(2024, 4, 30), d(2024, 4, 30), d(2024, 5, 31)},
		{"year rollover", 1, d(2023, 12, 31), d(2023, 12, 1), d(2024, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.billingDay, tt.today)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

type fakeOutflows struct {
	used     domain.Money
	err      error
	from, to domain.Date
}

func (f *fakeOutflows) OutflowBetween(_ context.Context, _ uint, from, to domain.Date) (domain.Money, error) {
	f.from, f.to = from, to
	return f.used, f.err
}

func creditWallet(limit domain.Money, day int) *domain.Wallet {
	return &domain.Wallet{ID: 7, Name: "Visa", Kind: domain.KindCredit, CreditLimit: &limit, BillingDay: &day}
}

func TestUtilization(t *testing.T) {
	src := &fakeOutflows{used: 30000}
	c := NewCalculator(src, func() domain.Date { return d(2024, 1, 15) })

	u, err := c.Utilization(context.Background(), creditWallet(100000, 10))
	require.NoError(t, err)
	assert.Equal(t, domain.Money(30000), u.Used)
	assert.Equal(t, domain.Money(70000), u.Available)
	assert.Equal(t, d(2024, 1, 10), src.from)
	assert.Equal(t, d(2024, 2, 10), src.to)
}

func TestUtilizationOverLimitIsNegative(t *testing.T) {
	c := NewCalculator(&fakeOutflows{used: 120000}, func() domain.Date { return d(2024, 1, 15) })

	u, err := c.Utilization(context.Background(), creditWallet(100000, 10))
	require.NoError(t, err)
	assert.Equal(t, domain.Money(-20000), u.Available)
}

func TestUtilizationErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewCalculator(&fakeOutflows{err: boom}, func() domain.Date { return d(2024, 1, 15) })

	_, err := c.Utilization(context.Background(), creditWallet(100000, 10))
	assert.ErrorIs(t, err, boom)

	_, err = c.Utilization(context.Background(), &domain.Wallet{Name: "Checking", Kind: domain.KindDebit})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

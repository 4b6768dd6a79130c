package transaction

import (
	"context"
	"testing"
	"time"

	"wallet_ledger/internal/domain"
	"wallet_ledger/internal/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedViews records a debit outflow, a debit inflow, a credit outflow and a legacy outflow with no wallet
func seedViews(t *testing.T, f fixture) (debitID, creditID uint) {
	t.Helper()
	ctx := context.Background()

	d := outflow(f.userID, "groceries", 1000, domain.KindDebit, date(2024, 1, 14))
	require.NoError(t, f.store.Create(ctx, d))
	in := &domain.Transaction{UserID: f.userID, Description: "refund", Amount: 2000, Category: "Other",
		Direction: domain.Inflow, PaymentMethod: domain.KindDebit, OccurredOn: date(2024, 1, 15)}
	require.NoError(t, f.store.Create(ctx, in))
	c := outflow(f.userID, "dinner", 300, domain.KindCredit, date(2024, 1, 12))
	require.NoError(t, f.store.Create(ctx, c))

	insertRaw(t, f.db, domain.Transaction{
		UserID: f.userID, Description: "legacy", Amount: 500, Category: "Food",
		Direction: domain.Outflow, PaymentMethod: "cash",
		OccurredAt: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
	})
	return *d.WalletID, *c.WalletID
}

func TestParseView(t *testing.T) {
	v, err := ParseView("")
	require.NoError(t, err)
	assert.Equal(t, ViewDebit, v)
	v, err = ParseView("credit")
	require.NoError(t, err)
	assert.Equal(t, ViewCredit, v)
	_, err = ParseView("savings")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTotalsCountsLegacyRowsAsDebit(t *testing.T) {
	f := setup(t)
	seedViews(t, f)
	ctx := context.Background()

	debit, err := f.store.Totals(ctx, ViewDebit, SearchFilters{UserID: f.userID})
	require.NoError(t, err)
	assert.Equal(t, Totals{
		Count:        3,
		OutflowCount: 2,
		OutflowTotal: 1500,
		InflowTotal:  2000,
		MaxOutflow:   1000,
		MinOutflow:   500,
	}, debit)

	credit, err := f.store.Totals(ctx, ViewCredit, SearchFilters{UserID: f.userID})
	require.NoError(t, err)
	assert.Equal(t, Totals{Count: 1, OutflowCount: 1, OutflowTotal: 300, MaxOutflow: 300, MinOutflow: 300}, credit)
}

func TestTotalsRespectFilters(t *testing.T) {
	f := setup(t)
	_, creditID := seedViews(t, f)
	ctx := context.Background()

	today, err := f.store.Totals(ctx, ViewDebit, SearchFilters{UserID: f.userID, From: date(2024, 1, 15), To: date(2024, 1, 15)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), today.Count) // refund and the legacy row
	assert.Equal(t, domain.Money(500), today.OutflowTotal)

	empty, err := f.store.Totals(ctx, ViewCredit, SearchFilters{UserID: f.userID, WalletIDs: []uint{creditID + 100}})
	require.NoError(t, err)
	assert.Equal(t, Totals{}, empty)
}

func TestFlowsPlaceLegacyRowsOnTheirTimestamp(t *testing.T) {
	f := setup(t)
	seedViews(t, f)

	flows, err := f.store.Flows(context.Background(), ViewDebit, SearchFilters{UserID: f.userID})
	require.NoError(t, err)
	require.Len(t, flows, 3)

	byDate := map[string]domain.Money{}
	for _, fl := range flows {
		byDate[fl.Date(time.UTC).String()] += fl.Amount
	}
	assert.Equal(t, map[string]domain.Money{"2024-01-14": 1000, "2024-01-15": 2500}, byDate)
}

func TestOutflowBetween(t *testing.T) {
	f := setup(t)
	_, creditID := seedViews(t, f)
	ctx := context.Background()
	extra := outflow(f.userID, "flight", 7000, domain.KindCredit, date(2024, 1, 10))
	extra.WalletID = &creditID
	require.NoError(t, f.store.Create(ctx, extra))

	used, err := f.store.OutflowBetween(ctx, creditID, domain.NewDate(2024, 1, 10), domain.NewDate(2024, 2, 10))
	require.NoError(t, err)
	assert.Equal(t, domain.Money(7300), used)

	used, err = f.store.OutflowBetween(ctx, creditID, domain.NewDate(2023, 12, 10), domain.NewDate(2024, 1, 10))
	require.NoError(t, err)
	assert.Zero(t, used, "end of the window is exclusive")
}

func TestBalances(t *testing.T) {
	f := setup(t)
	debitID, creditID := seedViews(t, f)

	got, err := f.store.Balances(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]domain.Money{debitID: 1000, creditID: -300}, got)
}

func TestLegacyBackfillHelpers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	insertRaw(t, f.db, domain.Transaction{UserID: f.userID, Description: "a", Amount: 100, Category: "Food",
		Direction: domain.Outflow, PaymentMethod: "pix", OccurredAt: fixedNow})
	insertRaw(t, f.db, domain.Transaction{UserID: f.userID, Description: "b", Amount: 200, Category: "Food",
		Direction: domain.Outflow, PaymentMethod: domain.KindCredit, OccurredAt: fixedNow})

	kinds, err := f.store.LegacyPaymentMethods(ctx, f.userID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.WalletKind{domain.KindDebit, domain.KindCredit}, kinds)

	card, err := f.wallets.Create(ctx, f.userID, wallet.CreateInput{Name: "Visa", Kind: domain.KindCredit})
	require.NoError(t, err)
	n, err := f.store.AttachWallet(ctx, f.userID, domain.KindCredit, card.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	kinds, err = f.store.LegacyPaymentMethods(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, []domain.WalletKind{domain.KindDebit}, kinds)
}

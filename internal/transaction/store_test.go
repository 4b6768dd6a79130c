package transaction

import (
	"context"
	"testing"
	"time"

	"wallet_ledger/internal/db/dbtest"
	"wallet_ledger/internal/domain"
	"wallet_ledger/internal/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *Store
	wallets *wallet.Store
	db      *gorm.DB
	userID  uint
}

func setup(t *testing.T) fixture {
	t.Helper()
	gdb := dbtest.New(t)
	ws := wallet.NewStore(gdb)
	s := NewStore(gdb, wallet.NewResolver(ws), Options{Now: func() time.Time { return fixedNow }})
	return fixture{store: s, wallets: ws, db: gdb, userID: newUser(t, gdb, "5511912345678")}
}

func newUser(t *testing.T, gdb *gorm.DB, phone string) uint {
	t.Helper()
	u := domain.User{Phone: phone}
	require.NoError(t, gdb.Create(&u).Error)
	return u.ID
}

func date(y int, m time.Month, d int) *domain.Date {
	v := domain.NewDate(y, m, d)
	return &v
}

func amount(v domain.Money) *domain.Money { return &v }

func outflow(userID uint, desc string, cents domain.Money, kind domain.WalletKind, on *domain.Date) *domain.Transaction {
	return &domain.Transaction{
		UserID: userID, Description: desc, Amount: cents, Category: "Food",
		Direction: domain.Outflow, PaymentMethod: kind, OccurredOn: on,
	}
}

// insertRaw bypasses the write path, for legacy rows
func insertRaw(t *testing.T, gdb *gorm.DB, tx domain.Transaction) {
	t.Helper()
	require.NoError(t, gdb.Create(&tx).Error)
}

func TestCreateAutoProvisionsMainWallet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tx := outflow(f.userID, "lunch", 2000, domain.KindDebit, nil)
	require.NoError(t, f.store.Create(ctx, tx))
	require.NotNil(t, tx.WalletID)

	w, err := f.wallets.GetByID(ctx, *tx.WalletID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, domain.MainWalletName, w.Name)
	assert.Equal(t, domain.KindDebit, w.Kind)
	assert.True(t, w.IsDefault)

	assert.Equal(t, domain.NewDate(2024, 1, 15), *tx.OccurredOn)
	assert.Equal(t, fixedNow, tx.OccurredAt)
}

func TestCreateFillsCategoryAndTimestamp(t *testing.T) {
	f := setup(t)
	tx := outflow(f.userID, "  taxi  ", 1500, domain.KindDebit, date(2024, 1, 3))
	tx.Category = " "

	require.NoError(t, f.store.Create(context.Background(), tx))
	assert.Equal(t, DefaultCategory, tx.Category)
	assert.Equal(t, "taxi", tx.Description)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), tx.OccurredAt)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		mut  func(*domain.Transaction)
	}{
		{"zero amount", func(tx *domain.Transaction) { tx.Amount = 0 }},
		{"negative amount", func(tx *domain.Transaction) { tx.Amount = -5 }},
		{"blank description", func(tx *domain.Transaction) { tx.Description = "  " }},
		{"bad direction", func(tx *domain.Transaction) { tx.Direction = "sideways" }},
		{"bad payment method", func(tx *domain.Transaction) { tx.PaymentMethod = "pix" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := outflow(f.userID, "x", 100, domain.KindDebit, nil)
			tt.mut(tx)
			assert.ErrorIs(t, f.store.Create(ctx, tx), domain.ErrValidation)
		})
	}

	var n int64
	require.NoError(t, f.db.Model(&domain.Wallet{}).Count(&n).Error)
	assert.Zero(t, n, "validation failures must not provision wallets")
}

func TestCreateWithExplicitWallet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	card, err := f.wallets.Create(ctx, f.userID, wallet.CreateInput{Name: "Visa", Kind: domain.KindCredit})
	require.NoError(t, err)

	t.Run("payment method must match kind", func(t *testing.T) {
		tx := outflow(f.userID, "shoes", 9000, domain.KindDebit, nil)
		tx.WalletID = &card.ID
		assert.ErrorIs(t, f.store.Create(ctx, tx), domain.ErrInvariant)
	})

	t.Run("matching kind is stored", func(t *testing.T) {
		tx := outflow(f.userID, "shoes", 9000, domain.KindCredit, nil)
		tx.WalletID = &card.ID
		require.NoError(t, f.store.Create(ctx, tx))
		assert.Equal(t, card.ID, *tx.WalletID)
	})

	t.Run("other user's wallet is forbidden", func(t *testing.T) {
		other := newUser(t, f.db, "5521988887777")
		tx := outflow(other, "shoes", 9000, domain.KindCredit, nil)
		tx.WalletID = &card.ID
		assert.ErrorIs(t, f.store.Create(ctx, tx), domain.ErrPermission)
	})

	t.Run("inactive wallet is rejected", func(t *testing.T) {
		old, err := f.wallets.Create(ctx, f.userID, wallet.CreateInput{Name: "Old", Kind: domain.KindDebit})
		require.NoError(t, err)
		_, err = f.wallets.SoftDelete(ctx, old.ID, f.userID)
		require.NoError(t, err)

		tx := outflow(f.userID, "bread", 300, domain.KindDebit, nil)
		tx.WalletID = &old.ID
		assert.ErrorIs(t, f.store.Create(ctx, tx), domain.ErrInvariant)
	})
}

func TestGetAndDeleteAreOwnerScoped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	other := newUser(t, f.db, "5521988887777")
	tx := outflow(f.userID, "lunch", 2000, domain.KindDebit, nil)
	require.NoError(t, f.store.Create(ctx, tx))

	_, err := f.store.GetByID(ctx, tx.ID, other)
	assert.ErrorIs(t, err, domain.ErrPermission)
	assert.ErrorIs(t, f.store.DeleteByID(ctx, tx.ID, other), domain.ErrPermission)

	require.NoError(t, f.store.DeleteByID(ctx, tx.ID, f.userID))
	_, err = f.store.GetByID(ctx, tx.ID, f.userID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.store.DeleteByID(ctx, tx.ID, f.userID), domain.ErrNotFound)
}

func TestSearch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	card, err := f.wallets.Create(ctx, f.userID, wallet.CreateInput{Name: "Visa", Kind: domain.KindCredit})
	require.NoError(t, err)

	seed := []*domain.Transaction{
		outflow(f.userID, "Supermarket", 12000, domain.KindDebit, date(2024, 1, 2)),
		outflow(f.userID, "Bakery", 800, domain.KindDebit, date(2024, 1, 5)),
		outflow(f.userID, "Cinema", 4000, domain.KindCredit, date(2024, 1, 10)),
		{UserID: f.userID, Description: "Salary", Amount: 500000, Category: "Salary",
			Direction: domain.Inflow, PaymentMethod: domain.KindDebit, OccurredOn: date(2024, 1, 5)},
	}
	seed[2].Category = "Leisure"
	seed[2].WalletID = &card.ID
	for _, tx := range seed {
		require.NoError(t, f.store.Create(ctx, tx))
	}
	noise := outflow(newUser(t, f.db, "5521988887777"), "Supermarket", 100, domain.KindDebit, date(2024, 1, 2))
	require.NoError(t, f.store.Create(ctx, noise))

	inflow := domain.Inflow
	tests := []struct {
		name  string
		f     SearchFilters
		total int64
	}{
		{"all of the user", SearchFilters{}, 4},
		{"date range inclusive", SearchFilters{From: date(2024, 1, 5), To: date(2024, 1, 10)}, 3},
		{"single day", SearchFilters{From: date(2024, 1, 5), To: date(2024, 1, 5)}, 2},
		{"amount range", SearchFilters{MinAmount: amount(800), MaxAmount: amount(4000)}, 2},
		{"description substring", SearchFilters{Description: "market"}, 1},
		{"category case-insensitive", SearchFilters{Category: "leisure"}, 1},
		{"direction", SearchFilters{Direction: &inflow}, 1},
		{"wallet set", SearchFilters{WalletIDs: []uint{card.ID}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.f.UserID = f.userID
			items, total, err := f.store.Search(ctx, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Len(t, items, int(tt.total))
			for _, it := range items {
				assert.Equal(t, f.userID, it.UserID)
			}
		})
	}

	t.Run("pagination keeps the total", func(t *testing.T) {
		items, total, err := f.store.Search(ctx, SearchFilters{UserID: f.userID, Offset: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, items, 2)
		assert.Equal(t, "Salary", items[0].Description) // newest first, ties by id
		assert.Equal(t, "Bakery", items[1].Description)

		items, total, err = f.store.Search(ctx, SearchFilters{UserID: f.userID, Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Empty(t, items)
	})

	t.Run("invalid filters", func(t *testing.T) {
		_, _, err := f.store.Search(ctx, SearchFilters{UserID: f.userID, From: date(2024, 2, 1), To: date(2024, 1, 1)})
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, _, err = f.store.Search(ctx, SearchFilters{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestSearchFallsBackToTimestampForLegacyRows(t *testing.T) {
	f := setup(t)
	insertRaw(t, f.db, domain.Transaction{
		UserID: f.userID, Description: "old coffee", Amount: 450, Category: "Food",
		Direction: domain.Outflow, PaymentMethod: domain.KindDebit,
		OccurredAt: time.Date(2024, 1, 3, 10, 30, 0, 0, time.UTC),
	})

	items, total, err := f.store.Search(context.Background(), SearchFilters{UserID: f.userID, From: date(2024, 1, 3), To: date(2024, 1, 3)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].OccurredOn)

	_, total, err = f.store.Search(context.Background(), SearchFilters{UserID: f.userID, From: date(2024, 1, 4)})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestFiltersWithDates(t *testing.T) {
	f := SearchFilters{From: date(2024, 1, 10)}
	got, ok := f.WithDates(domain.NewDate(2024, 1, 1), domain.NewDate(2024, 1, 31))
	assert.True(t, ok)
	assert.Equal(t, domain.NewDate(2024, 1, 10), *got.From)
	assert.Equal(t, domain.NewDate(2024, 1, 31), *got.To)
	assert.Equal(t, domain.NewDate(2024, 1, 10), *f.From, "receiver is not modified")

	_, ok = f.WithDates(domain.NewDate(2023, 12, 1), domain.NewDate(2023, 12, 31))
	assert.False(t, ok)
}

package category

import (
	"context"
	"testing"

	"wallet_ledger/internal/db/dbtest"
	"wallet_ledger/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Store, *gorm.DB, uint) {
	t.Helper()
	gdb := dbtest.New(t)
	return NewStore(gdb), gdb, newUser(t, gdb, "5511912345678")
}

func newUser(t *testing.T, gdb *gorm.DB, phone string) uint {
	t.Helper()
	u := domain.User{Phone: phone}
	require.NoError(t, gdb.Create(&u).Error)
	return u.ID
}

func ptr[T any](v T) *T { return &v }

func TestListDefaultsThenOwn(t *testing.T) {
	s, _, userID := setup(t)
	ctx := context.Background()

	_, err := s.Create(ctx, userID, CreateInput{Name: "Pets", Affinity: domain.AffinityOutflow, Color: "#112233"})
	require.NoError(t, err)

	list, err := s.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, len(domain.DefaultCategories)+1)
	last := list[len(list)-1]
	assert.Equal(t, "Pets", last.Name)
	assert.False(t, last.IsDefault())
	for _, c := range list[:len(list)-1] {
		assert.True(t, c.IsDefault())
	}
}

func TestCreate(t *testing.T) {
	s, gdb, userID := setup(t)
	ctx := context.Background()

	c, err := s.Create(ctx, userID, CreateInput{Name: "  Gym "})
	require.NoError(t, err)
	assert.Equal(t, "Gym", c.Name)
	assert.Equal(t, domain.AffinityBoth, c.Affinity)
	assert.Equal(t, DefaultColor, c.Color)

	tests := []struct {
		name string
		in   CreateInput
		kind error
	}{
		{"duplicate of own", CreateInput{Name: "gym"}, domain.ErrInvariant},
		{"duplicate of default", CreateInput{Name: "FOOD"}, domain.ErrInvariant},
		{"blank name", CreateInput{Name: " "}, domain.ErrValidation},
		{"bad affinity", CreateInput{Name: "X", Affinity: "sideways"}, domain.ErrValidation},
		{"bad color", CreateInput{Name: "X", Color: "red"}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, userID, tt.in)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	// Another user may reuse the name
	other := newUser(t, gdb, "5521988887777")
	_, err = s.Create(ctx, other, CreateInput{Name: "Gym"})
	assert.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	s, gdb, userID := setup(t)
	ctx := context.Background()
	gym, err := s.Create(ctx, userID, CreateInput{Name: "Gym"})
	require.NoError(t, err)
	_, err = s.Create(ctx, userID, CreateInput{Name: "Pets"})
	require.NoError(t, err)

	got, err := s.Update(ctx, gym.ID, userID, UpdateInput{Name: ptr("Fitness"), Color: ptr("#00FF00")})
	require.NoError(t, err)
	assert.Equal(t, "Fitness", got.Name)
	assert.Equal(t, "#00FF00", got.Color)

	_, err = s.Update(ctx, gym.ID, userID, UpdateInput{Name: ptr("fitness")})
	assert.NoError(t, err, "renaming to the same name in another case is allowed")

	_, err = s.Update(ctx, gym.ID, userID, UpdateInput{Name: ptr("pets")})
	assert.ErrorIs(t, err, domain.ErrInvariant)

	var food domain.Category
	require.NoError(t, gdb.Where("user_id IS NULL AND name = ?", "Food").First(&food).Error)
	_, err = s.Update(ctx, food.ID, userID, UpdateInput{Color: ptr("#000000")})
	assert.ErrorIs(t, err, domain.ErrPermission)

	other := newUser(t, gdb, "5521988887777")
	_, err = s.Update(ctx, gym.ID, other, UpdateInput{Color: ptr("#000000")})
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = s.Update(ctx, 9999, userID, UpdateInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s, gdb, userID := setup(t)
	ctx := context.Background()
	gym, err := s.Create(ctx, userID, CreateInput{Name: "Gym"})
	require.NoError(t, err)

	var food domain.Category
	require.NoError(t, gdb.Where("user_id IS NULL AND name = ?", "Food").First(&food).Error)
	assert.ErrorIs(t, s.Delete(ctx, food.ID, userID), domain.ErrPermission)

	require.NoError(t, s.Delete(ctx, gym.ID, userID))
	assert.ErrorIs(t, s.Delete(ctx, gym.ID, userID), domain.ErrNotFound)

	list, err := s.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, len(domain.DefaultCategories))
}

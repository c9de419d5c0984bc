package cart

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/basket/internal/memory"
	"github.com/mesh-intelligence/basket/pkg/types"
)

// testCatalog is a tiny product lookup keyed by item ID.
type testCatalog map[string]types.CartLine

func (c testCatalog) LookupItem(key string) (types.CartLine, error) {
	l, ok := c[key]
	if !ok {
		return types.CartLine{}, fmt.Errorf("lookup %q: %w", key, types.ErrItemNotFound)
	}
	return l, nil
}

func products() testCatalog {
	return testCatalog{
		"1": {ID: "1", Name: "Headphones", Price: 1999, OriginalPrice: 2999, Rating: 4.3},
		"2": {ID: "2", Name: "Watch", Price: 2499, Rating: 4.1},
		"5": {ID: "5", Name: "Earphones", Price: 549, Rating: 3.9},
	}
}

func newStore(t *testing.T, storage types.Storage, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(storage, opts...)
}

func TestStore_LoadEmptyWhenMissing(t *testing.T) {
	s := newStore(t, memory.New())
	c := s.Load()
	assert.True(t, c.Empty())
	assert.Equal(t, 0, s.Count())
}

func TestStore_LoadCorruptFailsSoft(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "garbage", data: "not json"},
		{name: "truncated array", data: `[{"id":1,"qty":2}`},
		{name: "wrong shape", data: `"a string"`},
		{name: "number", data: `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := memory.New()
			require.NoError(t, st.SetItem(DefaultProductKey, tt.data))

			s := newStore(t, st)
			assert.True(t, s.Snapshot().Empty())
		})
	}
}

func TestStore_LoadReadFailureFailsSoft(t *testing.T) {
	st := memory.New()
	require.NoError(t, st.SetItem(DefaultProductKey, `[{"id":1,"name":"x","price":1,"qty":1}]`))
	st.FailReads = errors.New("storage disabled")

	s := newStore(t, st)
	assert.True(t, s.Snapshot().Empty())
}

func TestStore_LoadNormalizes(t *testing.T) {
	st := memory.New()
	require.NoError(t, st.SetItem(DefaultProductKey, `[
		{"id":1,"name":"Headphones","price":1999,"qty":2},
		{"id":1,"name":"Headphones","price":1999,"qty":7},
		{"id":2,"name":"Watch","price":2499,"qty":0},
		{"id":5,"name":"Earphones","price":549,"qty":-3},
		{"name":"No id","price":10,"qty":1}
	]`))

	c := newStore(t, st).Snapshot()
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Quantity("1"), "first occurrence of a duplicate key wins")
	for _, l := range c.Lines {
		assert.GreaterOrEqual(t, l.Quantity, 1)
	}
}

func TestStore_LoadAcceptsMapLayout(t *testing.T) {
	st := memory.New()
	require.NoError(t, st.SetItem(DefaultFoodKey, `{
		"r1|m1": {"item": {"id":"m1","name":"Paneer Tikka","price":220}, "qty": 2},
		"r2|m4": {"id":"m4","restaurant_id":"r2","name":"Pad Thai","price":260,"qty":1},
		"r3|m9": {"item": {"id":"m9","name":"Bad","price":1}, "qty": 0}
	}`))

	s := newStore(t, st, WithKey(DefaultFoodKey), WithLayout(LayoutMap))
	c := s.Snapshot()
	require.Equal(t, 2, c.Len())

	l, ok := c.Line("r1|m1")
	require.True(t, ok)
	assert.Equal(t, "r1", l.RestaurantID, "restaurant ID recovered from the key")
	assert.Equal(t, 2, l.Quantity)
	assert.Equal(t, 1, c.Quantity("r2|m4"))
	assert.Equal(t, 0, c.Quantity("r3|m9"))
}

func TestStore_AddNewAndExisting(t *testing.T) {
	st := memory.New()
	s := newStore(t, st)
	cat := products()

	c, err := s.Add("1", cat)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Quantity("1"))

	c, err = s.Add("1", cat)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Quantity("1"))
	assert.Equal(t, 1, c.Len())

	l, _ := c.Line("1")
	assert.Equal(t, "Headphones", l.Name)
	assert.Equal(t, 1999.0, l.Price)
	assert.Equal(t, 2999.0, l.OriginalPrice)
}

func TestStore_AddUnknownItem(t *testing.T) {
	st := memory.New()
	s := newStore(t, st)

	c, err := s.Add("404", products())
	assert.ErrorIs(t, err, types.ErrItemNotFound)
	assert.True(t, c.Empty())

	_, err = st.GetItem(DefaultProductKey)
	assert.ErrorIs(t, err, types.ErrNotFound, "a rejected add does not write storage")
}

func TestStore_AddSnapshotSemantics(t *testing.T) {
	s := newStore(t, memory.New())
	cat := products()

	_, err := s.Add("2", cat)
	require.NoError(t, err)

	// A later price change in the catalog does not reach the stored line.
	watch := cat["2"]
	watch.Price = 99
	cat["2"] = watch

	c, err := s.Add("2", cat)
	require.NoError(t, err)
	l, _ := c.Line("2")
	assert.Equal(t, 2499.0, l.Price)
	assert.Equal(t, 2, l.Quantity)
}

func TestStore_AddResolvesToCompositeKey(t *testing.T) {
	lookup := LookupFunc(func(key string) (types.CartLine, error) {
		if key == "m1" || key == "r1|m1" {
			return types.CartLine{ID: "m1", RestaurantID: "r1", RestaurantName: "Spice Route", Name: "Dal", Price: 120}, nil
		}
		return types.CartLine{}, types.ErrItemNotFound
	})
	s := newStore(t, memory.New(), WithKey(DefaultFoodKey), WithLayout(LayoutMap))

	_, err := s.Add("m1", lookup)
	require.NoError(t, err)
	c, err := s.Add("r1|m1", lookup)
	require.NoError(t, err)

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Quantity("r1|m1"))

	// Bare ID resolving to an existing composite key increments it.
	c, err = s.Add("m1", lookup)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Quantity("r1|m1"))
}

func TestStore_SetQuantityClamps(t *testing.T) {
	tests := []struct {
		name string
		qty  int
		want int
	}{
		{name: "positive kept", qty: 4, want: 4},
		{name: "one kept", qty: 1, want: 1},
		{name: "zero clamps to one", qty: 0, want: 1},
		{name: "negative clamps to one", qty: -5, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, memory.New())
			_, err := s.Add("1", products())
			require.NoError(t, err)

			c, err := s.SetQuantity("1", tt.qty)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Quantity("1"))
			assert.Equal(t, 1, c.Len(), "line is never removed")
		})
	}
}

func TestStore_SetQuantityAbsentKey(t *testing.T) {
	s := newStore(t, memory.New())
	_, err := s.SetQuantity("1", 3)
	assert.ErrorIs(t, err, types.ErrLineNotFound)
}

func TestStore_Decrement(t *testing.T) {
	s := newStore(t, memory.New())
	cat := products()
	_, _ = s.Add("1", cat)
	_, _ = s.Add("1", cat)

	c := s.Decrement("1")
	assert.Equal(t, 1, c.Quantity("1"))

	c = s.Decrement("1")
	assert.True(t, c.Empty(), "quantity zero removes the line")

	c = s.Decrement("1")
	assert.True(t, c.Empty())
}

func TestStore_RemoveIdempotent(t *testing.T) {
	s := newStore(t, memory.New())
	_, _ = s.Add("1", products())

	c := s.Remove("1")
	assert.True(t, c.Empty())
	c = s.Remove("1")
	assert.True(t, c.Empty())
	c = s.Remove("never-added")
	assert.True(t, c.Empty())
}

func TestStore_AddThenRemoveRoundTrip(t *testing.T) {
	for _, layout := range []Layout{LayoutArray, LayoutMap} {
		t.Run(string(layout), func(t *testing.T) {
			st := memory.New()
			s := newStore(t, st, WithLayout(layout))
			cat := products()

			_, err := s.Add("1", cat)
			require.NoError(t, err)
			_, err = s.SetQuantity("1", 3)
			require.NoError(t, err)
			before, err := st.GetItem(DefaultProductKey)
			require.NoError(t, err)

			_, err = s.Add("5", cat)
			require.NoError(t, err)
			s.Remove("5")

			after, err := st.GetItem(DefaultProductKey)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestStore_Totals(t *testing.T) {
	s := newStore(t, memory.New())

	assert.Equal(t, 0.0, s.Total(0))
	assert.Equal(t, 30.0, s.Total(30), "empty cart totals exactly the delivery fee")

	cat := products()
	_, _ = s.Add("1", cat)
	_, _ = s.Add("1", cat)
	_, _ = s.Add("5", cat)

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 1999.0*2+549, s.Subtotal())
	assert.Equal(t, 1999.0*2+549+30, s.Total(30))
}

func TestStore_TotalRoundsToCents(t *testing.T) {
	lookup := LookupFunc(func(key string) (types.CartLine, error) {
		return types.CartLine{ID: types.ItemID(key), Name: key, Price: 0.1}, nil
	})
	s := newStore(t, memory.New())
	for i := 0; i < 3; i++ {
		_, err := s.Add("x", lookup)
		require.NoError(t, err)
	}
	assert.Equal(t, 0.3, s.Subtotal())
}

func TestStore_PersistsAcrossReload(t *testing.T) {
	st := memory.New()
	s := newStore(t, st)
	cat := products()
	_, _ = s.Add("1", cat)
	_, _ = s.Add("2", cat)
	_, _ = s.SetQuantity("2", 5)

	reloaded := newStore(t, st)
	c := reloaded.Snapshot()
	assert.Equal(t, 1, c.Quantity("1"))
	assert.Equal(t, 5, c.Quantity("2"))
}

func TestStore_WriteFailureKeepsMemoryState(t *testing.T) {
	st := memory.New()
	s := newStore(t, st)
	st.FailWrites = types.ErrQuotaExceeded

	c, err := s.Add("1", products())
	require.NoError(t, err, "persistence failures are not returned")
	assert.Equal(t, 1, c.Quantity("1"))
	assert.ErrorIs(t, s.SaveErr(), types.ErrQuotaExceeded)

	st.FailWrites = nil
	_, err = s.Add("1", products())
	require.NoError(t, err)
	assert.NoError(t, s.SaveErr())

	reloaded := newStore(t, st)
	assert.Equal(t, 2, reloaded.Snapshot().Quantity("1"))
}

func TestStore_Clear(t *testing.T) {
	st := memory.New()
	s := newStore(t, st)
	_, _ = s.Add("1", products())

	c := s.Clear()
	assert.True(t, c.Empty())

	raw, err := st.GetItem(DefaultProductKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestStore_CountMatchesQuantitiesUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	st := memory.New()
	s := newStore(t, st)
	cat := products()
	keys := []string{"1", "2", "5"}

	for i := 0; i < 500; i++ {
		key := keys[rng.Intn(len(keys))]
		switch rng.Intn(4) {
		case 0:
			_, err := s.Add(key, cat)
			require.NoError(t, err)
		case 1:
			s.Remove(key)
		case 2:
			_, _ = s.SetQuantity(key, rng.Intn(11)-5)
		case 3:
			s.Decrement(key)
		}

		c := s.Snapshot()
		sum := 0
		seen := map[string]bool{}
		for _, l := range c.Lines {
			require.GreaterOrEqual(t, l.Quantity, 1)
			require.False(t, seen[l.Key()], "duplicate key %q", l.Key())
			seen[l.Key()] = true
			sum += l.Quantity
		}
		require.Equal(t, sum, c.Count())
	}

	reloaded := newStore(t, st)
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
}

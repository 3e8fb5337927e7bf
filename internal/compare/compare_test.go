package compare

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiolink/catalog/internal/domain"
)

type memoryStore struct {
	saved   []domain.Product
	saves   int
	loadErr error
	saveErr error
}

func (m *memoryStore) Load(ctx context.Context) ([]domain.Product, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]domain.Product(nil), m.saved...), nil
}

func (m *memoryStore) Save(ctx context.Context, products []domain.Product) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append([]domain.Product(nil), products...)
	return nil
}

func item(id string) domain.Product {
	return domain.Product{
		ID:           id,
		Slug:         "slug-" + id,
		Title:        "Radio " + id,
		MainCategory: "motorola-solutions",
	}
}

func members(s *Set) []string {
	out := make([]string, 0, s.Len())
	for _, p := range s.Products() {
		out = append(out, p.ID)
	}
	return out
}

func TestToggleScenario(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	s := Restore(ctx, store)

	assert.Empty(t, members(s))
	s.Toggle(ctx, item("A"))
	assert.Equal(t, []string{"A"}, members(s))
	s.Toggle(ctx, item("B"))
	assert.Equal(t, []string{"A", "B"}, members(s))
	s.Toggle(ctx, item("A"))
	assert.Equal(t, []string{"B"}, members(s))
	s.Clear(ctx)
	assert.Empty(t, members(s))

	assert.Equal(t, 4, store.saves)
	assert.Empty(t, store.saved)
}

func TestToggleTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	s := Restore(ctx, &memoryStore{})
	s.Add(ctx, item("1"))
	s.Add(ctx, item("2"))
	before := members(s)

	for _, id := range []string{"2", "3"} {
		s.Toggle(ctx, item(id))
		s.Toggle(ctx, item(id))
		assert.Equal(t, before, members(s))
	}
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := Restore(ctx, &memoryStore{})

	for range 5 {
		s.Add(ctx, item("1"))
	}
	assert.Equal(t, []string{"1"}, members(s))
	assert.True(t, s.Contains("1"))
	assert.False(t, s.Contains("2"))
}

func TestCapacityRejectsWithoutEviction(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	s := Restore(ctx, store)
	for _, id := range []string{"1", "2", "3", "4"} {
		s.Add(ctx, item(id))
	}
	require.True(t, s.Full())

	s.Add(ctx, item("5"))
	assert.Equal(t, []string{"1", "2", "3", "4"}, members(s))

	s.Toggle(ctx, item("5"))
	assert.Equal(t, []string{"1", "2", "3", "4"}, members(s))
	assert.Len(t, store.saved, Capacity)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := Restore(ctx, &memoryStore{})
	s.Add(ctx, item("1"))
	s.Add(ctx, item("2"))
	s.Add(ctx, item("3"))

	s.Remove(ctx, "2")
	assert.Equal(t, []string{"1", "3"}, members(s))
	s.Remove(ctx, "missing")
	assert.Equal(t, []string{"1", "3"}, members(s))
}

func TestRestoreFromStore(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{saved: []domain.Product{item("x"), item("y")}}

	s := Restore(ctx, store)
	assert.Equal(t, []string{"x", "y"}, members(s))

	s.Add(ctx, item("z"))
	again := Restore(ctx, store)
	assert.Equal(t, []string{"x", "y", "z"}, members(again))
}

func TestRestoreDropsInvalidSnapshots(t *testing.T) {
	broken := item("b")
	broken.Title = ""
	gap := item("g")
	gap.SubSubCategory = "orphan"
	store := &memoryStore{saved: []domain.Product{
		item("1"), broken, item("1"), gap, item("2"), item("3"), item("4"), item("5"),
	}}

	s := Restore(context.Background(), store)
	assert.Equal(t, []string{"1", "2", "3", "4"}, members(s))
}

func TestPersistenceFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{saveErr: errors.New("read only")}

	s := Restore(ctx, store)
	require.True(t, s.Restored())

	s.Toggle(ctx, item("1"))
	s.Add(ctx, item("2"))
	assert.Equal(t, []string{"1", "2"}, members(s))
	assert.Equal(t, 2, store.saves)
}

func TestFailedLoadKeepsStoredSet(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{saved: []domain.Product{item("b"), item("c"), item("d")}}
	store.loadErr = errors.New("i/o timeout")

	s := Restore(ctx, store)
	assert.False(t, s.Restored())
	assert.Zero(t, s.Len())

	s.Toggle(ctx, item("a"))
	s.Clear(ctx)
	s.Add(ctx, item("e"))
	assert.Equal(t, []string{"e"}, members(s))

	assert.Zero(t, store.saves)
	assert.Equal(t, []string{"b", "c", "d"}, []string{store.saved[0].ID, store.saved[1].ID, store.saved[2].ID})
}

func TestObserver(t *testing.T) {
	ctx := context.Background()
	var ops []string
	var changes []bool
	s := Restore(ctx, &memoryStore{}, WithObserver(func(op string, changed bool) {
		ops = append(ops, op)
		changes = append(changes, changed)
	}))

	s.Add(ctx, item("1"))
	s.Add(ctx, item("1"))
	s.Remove(ctx, "1")
	s.Clear(ctx)

	assert.Equal(t, []string{"add", "add", "remove", "clear"}, ops)
	assert.Equal(t, []bool{true, false, true, false}, changes)
}

func TestProductsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := Restore(ctx, &memoryStore{})
	s.Add(ctx, item("1"))

	out := s.Products()
	out[0].ID = "mutated"
	assert.True(t, s.Contains("1"))
}

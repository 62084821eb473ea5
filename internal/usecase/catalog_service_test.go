package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/macroledger/backend/internal/domain"
)

// mockSheetStore is an in-memory implementation of domain.SheetStore shared by
// the service tests in this package.
type mockSheetStore struct {
	foods   []domain.FoodProfile
	entries []domain.LogEntry

	fetchFoodsErr   error
	appendFoodErr   error
	fetchEntriesErr error
	appendEntryErr  error
	deleteErr       error

	fetchFoodsCalls   int
	fetchEntriesCalls int
}

func newMockSheetStore() *mockSheetStore {
	return &mockSheetStore{}
}

func (m *mockSheetStore) FetchFoods(ctx context.Context) (*domain.CatalogSnapshot, error) {
	m.fetchFoodsCalls++
	if m.fetchFoodsErr != nil {
		return nil, m.fetchFoodsErr
	}
	snapshot := &domain.CatalogSnapshot{}
	for i, f := range m.foods {
		f.Row = i + 2 // header occupies row 1
		snapshot.Foods = append(snapshot.Foods, f)
	}
	return snapshot, nil
}

func (m *mockSheetStore) AppendFood(ctx context.Context, profile domain.FoodProfile) error {
	if m.appendFoodErr != nil {
		return m.appendFoodErr
	}
	m.foods = append(m.foods, profile)
	return nil
}

func (m *mockSheetStore) FetchEntries(ctx context.Context) (*domain.LedgerSnapshot, error) {
	m.fetchEntriesCalls++
	if m.fetchEntriesErr != nil {
		return nil, m.fetchEntriesErr
	}
	snapshot := &domain.LedgerSnapshot{}
	for i, e := range m.entries {
		e.Row = i + 2
		snapshot.Entries = append(snapshot.Entries, e)
	}
	return snapshot, nil
}

func (m *mockSheetStore) AppendEntry(ctx context.Context, entry domain.LogEntry) error {
	if m.appendEntryErr != nil {
		return m.appendEntryErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockSheetStore) DeleteRow(ctx context.Context, table domain.Table, row int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	switch table {
	case domain.TableFoods:
		if row < 2 || row > len(m.foods)+1 {
			return fmt.Errorf("%w: %d", domain.ErrRowOutOfRange, row)
		}
		m.foods = append(m.foods[:row-2], m.foods[row-1:]...)
	case domain.TableLog:
		if row < 2 || row > len(m.entries)+1 {
			return fmt.Errorf("%w: %d", domain.ErrRowOutOfRange, row)
		}
		m.entries = append(m.entries[:row-2], m.entries[row-1:]...)
	}
	return nil
}

func (m *mockSheetStore) ExportCSV(ctx context.Context, table domain.Table) ([]byte, error) {
	return nil, nil
}

// mockCache is a TTL-less map cache with error injection.
type mockCache struct {
	data     map[string]interface{}
	getError error
	setError error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]interface{})}
}

func (m *mockCache) Get(ctx context.Context, key string) (interface{}, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func TestCatalogSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches from store and caches", func(t *testing.T) {
		store := newMockSheetStore()
		store.foods = []domain.FoodProfile{
			{Name: "Banana", Unit: "piece", Macros: domain.Macros{Protein: 1.3, Carbs: 27, Fats: 0.3}},
		}
		svc := NewCatalogService(store, newMockCache(), time.Minute)

		first, err := svc.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if len(first.Foods) != 1 || first.Foods[0].Name != "Banana" {
			t.Fatalf("Snapshot() = %+v, want one Banana", first)
		}
		if first.Foods[0].Row != 2 {
			t.Errorf("Row = %d, want 2", first.Foods[0].Row)
		}

		if _, err := svc.Snapshot(ctx); err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if store.fetchFoodsCalls != 1 {
			t.Errorf("store fetched %d times, want 1 (second read served from cache)", store.fetchFoodsCalls)
		}
	})

	t.Run("surfaces duplicate foods at load time", func(t *testing.T) {
		store := newMockSheetStore()
		store.foods = []domain.FoodProfile{
			{Name: "Banana", Unit: "piece"},
			{Name: "Oats", Unit: "grams"},
			{Name: "Banana", Unit: "grams"},
			{Name: "Oats", Unit: "g"},
		}
		svc := NewCatalogService(store, newMockCache(), time.Minute)

		_, err := svc.Snapshot(ctx)
		var dupErr *domain.DuplicateFoodsError
		if !errors.As(err, &dupErr) {
			t.Fatalf("Snapshot() error = %v, want DuplicateFoodsError", err)
		}
		if len(dupErr.Names) != 2 || dupErr.Names[0] != "Banana" || dupErr.Names[1] != "Oats" {
			t.Errorf("duplicate names = %v, want [Banana, Oats]", dupErr.Names)
		}
	})

	t.Run("propagates store failure", func(t *testing.T) {
		store := newMockSheetStore()
		store.fetchFoodsErr = errors.New("workbook gone")
		svc := NewCatalogService(store, newMockCache(), time.Minute)

		if _, err := svc.Snapshot(ctx); err == nil {
			t.Error("Snapshot() error = nil, want store failure")
		}
	})
}

func TestCatalogLookup(t *testing.T) {
	ctx := context.Background()
	store := newMockSheetStore()
	store.foods = []domain.FoodProfile{
		{Name: "Banana", Unit: "piece", Macros: domain.Macros{Protein: 1.3}},
	}
	svc := NewCatalogService(store, newMockCache(), time.Minute)

	t.Run("finds an existing food", func(t *testing.T) {
		got, err := svc.Lookup(ctx, "Banana")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if got.Unit != "piece" {
			t.Errorf("Unit = %s, want piece", got.Unit)
		}
	})

	t.Run("match is case-sensitive", func(t *testing.T) {
		if _, err := svc.Lookup(ctx, "banana"); !errors.Is(err, domain.ErrFoodNotFound) {
			t.Errorf("Lookup(banana) error = %v, want ErrFoodNotFound", err)
		}
	})

	t.Run("unknown food", func(t *testing.T) {
		if _, err := svc.Lookup(ctx, "Dragonfruit"); !errors.Is(err, domain.ErrFoodNotFound) {
			t.Errorf("Lookup() error = %v, want ErrFoodNotFound", err)
		}
	})
}

func TestCatalogRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and is visible to the next lookup", func(t *testing.T) {
		store := newMockSheetStore()
		svc := NewCatalogService(store, newMockCache(), time.Minute)

		registered, err := svc.Register(ctx, domain.FoodProfile{
			Name:   "Greek Yogurt",
			Unit:   "grams",
			Macros: domain.Macros{Protein: 7, Carbs: 4, Fats: 3},
		})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if registered.Row != 2 {
			t.Errorf("Row = %d, want 2 (refresh-after-write assigns the sheet row)", registered.Row)
		}
		if registered.CreatedAt.IsZero() {
			t.Error("CreatedAt is zero, want a registration timestamp")
		}

		if _, err := svc.Lookup(ctx, "Greek Yogurt"); err != nil {
			t.Errorf("Lookup() after Register() error = %v", err)
		}
	})

	t.Run("rejects blank name", func(t *testing.T) {
		svc := NewCatalogService(newMockSheetStore(), newMockCache(), time.Minute)

		if _, err := svc.Register(ctx, domain.FoodProfile{Name: "   "}); !errors.Is(err, domain.ErrEmptyName) {
			t.Errorf("Register() error = %v, want ErrEmptyName", err)
		}
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		store := newMockSheetStore()
		store.foods = []domain.FoodProfile{{Name: "Banana", Unit: "piece"}}
		svc := NewCatalogService(store, newMockCache(), time.Minute)

		_, err := svc.Register(ctx, domain.FoodProfile{Name: "Banana", Unit: "grams"})
		if !errors.Is(err, domain.ErrDuplicateFood) {
			t.Errorf("Register() error = %v, want ErrDuplicateFood", err)
		}
	})

	t.Run("rejects negative macros", func(t *testing.T) {
		svc := NewCatalogService(newMockSheetStore(), newMockCache(), time.Minute)

		_, err := svc.Register(ctx, domain.FoodProfile{
			Name:   "Antimatter",
			Unit:   "grams",
			Macros: domain.Macros{Protein: -1},
		})
		if !errors.Is(err, domain.ErrInvalidMacros) {
			t.Errorf("Register() error = %v, want ErrInvalidMacros", err)
		}
	})

	t.Run("blank unit defaults to grams", func(t *testing.T) {
		store := newMockSheetStore()
		svc := NewCatalogService(store, newMockCache(), time.Minute)

		registered, err := svc.Register(ctx, domain.FoodProfile{
			Name:   "Rice",
			Macros: domain.Macros{Protein: 2.7, Carbs: 28},
		})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if registered.Unit != "grams" {
			t.Errorf("Unit = %q, want grams", registered.Unit)
		}
	})

	t.Run("surfaces store write failure", func(t *testing.T) {
		store := newMockSheetStore()
		store.appendFoodErr = fmt.Errorf("%w: disk full", domain.ErrStoreWriteFailed)
		svc := NewCatalogService(store, newMockCache(), time.Minute)

		_, err := svc.Register(ctx, domain.FoodProfile{Name: "Oats", Unit: "grams"})
		if !errors.Is(err, domain.ErrStoreWriteFailed) {
			t.Errorf("Register() error = %v, want ErrStoreWriteFailed", err)
		}
	})
}

func TestCatalogDelete(t *testing.T) {
	ctx := context.Background()
	store := newMockSheetStore()
	store.foods = []domain.FoodProfile{
		{Name: "Banana", Unit: "piece"},
		{Name: "Oats", Unit: "grams"},
	}
	svc := NewCatalogService(store, newMockCache(), time.Minute)

	// Warm the cache, then delete; the next snapshot must reflect the removal.
	if _, err := svc.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if err := svc.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	snapshot, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snapshot.Foods) != 1 || snapshot.Foods[0].Name != "Oats" {
		t.Errorf("Snapshot() after delete = %+v, want only Oats", snapshot.Foods)
	}

	t.Run("out-of-range row", func(t *testing.T) {
		if err := svc.Delete(ctx, 99); !errors.Is(err, domain.ErrRowOutOfRange) {
			t.Errorf("Delete(99) error = %v, want ErrRowOutOfRange", err)
		}
	})
}

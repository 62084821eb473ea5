package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/macroledger/backend/internal/domain"
)

const catalogCacheKey = "snapshot:catalog"

// defaultSnapshotTTL keeps snapshots alive across the handlers of one render
// cycle without serving stale data for long.
const defaultSnapshotTTL = 45 * time.Second

// CatalogService maintains the set of known foods. Reads go through the
// snapshot cache; every successful write invalidates it and re-fetches, so a
// register is visible to the next lookup in the same session.
type CatalogService struct {
	store    domain.SheetStore
	cache    domain.CacheRepository
	cacheTTL time.Duration
}

// NewCatalogService creates a catalog backed by the given store and cache.
func NewCatalogService(store domain.SheetStore, cache domain.CacheRepository, cacheTTL time.Duration) *CatalogService {
	if cacheTTL == 0 {
		cacheTTL = defaultSnapshotTTL
	}
	return &CatalogService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Snapshot returns the current catalog, from cache when fresh. A store with
// non-unique food names fails with DuplicateFoodsError instead of silently
// picking one of the duplicates.
func (s *CatalogService) Snapshot(ctx context.Context) (*domain.CatalogSnapshot, error) {
	if cached, err := s.cache.Get(ctx, catalogCacheKey); err == nil {
		if snapshot, ok := cached.(*domain.CatalogSnapshot); ok {
			return snapshot, nil
		}
	}

	snapshot, err := s.store.FetchFoods(ctx)
	if err != nil {
		return nil, err
	}
	if dups := duplicateNames(snapshot.Foods); len(dups) > 0 {
		return nil, &domain.DuplicateFoodsError{Names: dups}
	}

	// Cache failures are not fatal; the next read just hits the store again.
	_ = s.cache.Set(ctx, catalogCacheKey, snapshot, s.cacheTTL)
	return snapshot, nil
}

// Lookup finds a profile by exact, case-sensitive name match.
func (s *CatalogService) Lookup(ctx context.Context, name string) (domain.FoodProfile, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return domain.FoodProfile{}, err
	}
	for _, f := range snapshot.Foods {
		if f.Name == name {
			return f, nil
		}
	}
	return domain.FoodProfile{}, domain.ErrFoodNotFound
}

// Register validates and persists a new food, then refreshes the catalog so
// the write is visible to subsequent lookups. The stored profile is returned.
func (s *CatalogService) Register(ctx context.Context, profile domain.FoodProfile) (domain.FoodProfile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return domain.FoodProfile{}, domain.ErrEmptyName
	}
	if profile.Protein < 0 || profile.Carbs < 0 || profile.Fats < 0 || profile.Calories < 0 {
		return domain.FoodProfile{}, domain.ErrInvalidMacros
	}
	if strings.TrimSpace(profile.Unit) == "" {
		profile.Unit = "grams"
	}

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return domain.FoodProfile{}, err
	}
	for _, f := range snapshot.Foods {
		if f.Name == profile.Name {
			return domain.FoodProfile{}, domain.ErrDuplicateFood
		}
	}

	profile.CreatedAt = time.Now().UTC()
	if err := s.store.AppendFood(ctx, profile); err != nil {
		return domain.FoodProfile{}, err
	}

	// Refresh-after-write: re-read the store instead of patching the local
	// snapshot, so the returned profile carries its sheet row.
	s.Invalidate(ctx)
	return s.Lookup(ctx, profile.Name)
}

// Delete removes a catalog row by its 1-based sheet row number.
func (s *CatalogService) Delete(ctx context.Context, row int) error {
	if err := s.store.DeleteRow(ctx, domain.TableFoods, row); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate drops the cached snapshot so the next read hits the store.
func (s *CatalogService) Invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, catalogCacheKey)
}

// duplicateNames returns every food name that occurs more than once, sorted.
func duplicateNames(foods []domain.FoodProfile) []string {
	counts := make(map[string]int, len(foods))
	for _, f := range foods {
		counts[f.Name]++
	}
	var dups []string
	for name, n := range counts {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}

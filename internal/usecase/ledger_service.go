package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/macroledger/backend/internal/domain"
)

const ledgerCacheKey = "snapshot:ledger"

// LogRequest describes one logging action.
//
// For a food already in the catalog only Food, Quantity and optionally Date
// matter; the contribution is computed from the stored profile. For a food the
// catalog does not know, Macros must be supplied: with Register set they are a
// per-unit profile that is saved to the catalog and then scaled, without it
// they are the absolute contribution of a one-off miscellaneous entry.
type LogRequest struct {
	Date     string         `json:"date,omitempty"` // dd/mm/yyyy, empty means today
	Food     string         `json:"food"`
	Quantity float64        `json:"quantity"`
	Unit     string         `json:"unit,omitempty"`
	Macros   *domain.Macros `json:"macros,omitempty"`
	Register bool           `json:"register,omitempty"`
}

// LedgerService owns the append-only log of entries. All reads go through the
// snapshot cache; writes invalidate it.
type LedgerService struct {
	store      domain.SheetStore
	cache      domain.CacheRepository
	catalog    *CatalogService
	calculator *Calculator
	cacheTTL   time.Duration
}

// NewLedgerService creates a ledger backed by the given store and cache.
func NewLedgerService(
	store domain.SheetStore,
	cache domain.CacheRepository,
	catalog *CatalogService,
	calculator *Calculator,
	cacheTTL time.Duration,
) *LedgerService {
	if cacheTTL == 0 {
		cacheTTL = defaultSnapshotTTL
	}
	return &LedgerService{
		store:      store,
		cache:      cache,
		catalog:    catalog,
		calculator: calculator,
		cacheTTL:   cacheTTL,
	}
}

// Log validates the request, computes the macro contribution and appends the
// entry. Flow: resolve date -> resolve profile -> scale -> append -> invalidate.
func (s *LedgerService) Log(ctx context.Context, req LogRequest) (domain.LogEntry, error) {
	req.Food = strings.TrimSpace(req.Food)
	if req.Food == "" {
		return domain.LogEntry{}, domain.ErrEmptyName
	}

	date := domain.NormalizeDate(time.Now().UTC())
	if req.Date != "" {
		parsed, err := domain.ParseDate(req.Date)
		if err != nil {
			return domain.LogEntry{}, err
		}
		date = parsed
	}

	entry := domain.LogEntry{
		Date:     date,
		Food:     req.Food,
		Quantity: req.Quantity,
	}

	profile, err := s.catalog.Lookup(ctx, req.Food)
	switch {
	case err == nil:
		contribution, calcErr := s.calculator.Calculate(profile, req.Quantity)
		if calcErr != nil {
			return domain.LogEntry{}, calcErr
		}
		entry.Unit = profile.Unit
		entry.Macros = contribution

	case err == domain.ErrFoodNotFound && req.Macros != nil && req.Register:
		// New food: save the per-unit profile, then log the scaled contribution.
		registered, regErr := s.catalog.Register(ctx, domain.FoodProfile{
			Name:   req.Food,
			Unit:   req.Unit,
			Macros: *req.Macros,
		})
		if regErr != nil {
			return domain.LogEntry{}, regErr
		}
		contribution, calcErr := s.calculator.Calculate(registered, req.Quantity)
		if calcErr != nil {
			return domain.LogEntry{}, calcErr
		}
		entry.Unit = registered.Unit
		entry.Macros = contribution

	case err == domain.ErrFoodNotFound && req.Macros != nil:
		// Miscellaneous one-off: the supplied macros are already absolute, but
		// the quantity still has to satisfy the minimum or the row would be
		// quarantined as malformed on the next read.
		if err := s.calculator.CheckQuantity(req.Quantity); err != nil {
			return domain.LogEntry{}, err
		}
		if req.Macros.Protein < 0 || req.Macros.Carbs < 0 || req.Macros.Fats < 0 || req.Macros.Calories < 0 {
			return domain.LogEntry{}, domain.ErrInvalidMacros
		}
		entry.Unit = req.Unit
		entry.Macros = withDerivedCalories(*req.Macros)

	default:
		return domain.LogEntry{}, err
	}

	if err := s.store.AppendEntry(ctx, entry); err != nil {
		return domain.LogEntry{}, err
	}
	s.Invalidate(ctx)
	return entry, nil
}

// Snapshot returns the full ledger, from cache when fresh. The snapshot is the
// consistency unit of one render cycle: fetch once, compute everything from it.
func (s *LedgerService) Snapshot(ctx context.Context) (*domain.LedgerSnapshot, error) {
	if cached, err := s.cache.Get(ctx, ledgerCacheKey); err == nil {
		if snapshot, ok := cached.(*domain.LedgerSnapshot); ok {
			return snapshot, nil
		}
	}

	snapshot, err := s.store.FetchEntries(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, ledgerCacheKey, snapshot, s.cacheTTL)
	return snapshot, nil
}

// Delete removes a log row by its 1-based sheet row number.
func (s *LedgerService) Delete(ctx context.Context, row int) error {
	if err := s.store.DeleteRow(ctx, domain.TableLog, row); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate drops the cached snapshot so the next read hits the store.
func (s *LedgerService) Invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, ledgerCacheKey)
}

package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/macroledger/backend/config"
	"github.com/macroledger/backend/internal/domain"
	"github.com/macroledger/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog *usecase.CatalogService
	ledger  *usecase.LedgerService
	reports *usecase.ReportService
	store   domain.SheetStore
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *usecase.CatalogService,
	ledger *usecase.LedgerService,
	reports *usecase.ReportService,
	store domain.SheetStore,
) *Handler {
	return &Handler{
		catalog: catalog,
		ledger:  ledger,
		reports: reports,
		store:   store,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "macroledger-backend",
		"version": config.Version,
	})
}

// ListFoods returns the full catalog snapshot.
func (h *Handler) ListFoods(c *gin.Context) {
	snapshot, err := h.catalog.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// registerFoodRequest is the POST /foods payload.
type registerFoodRequest struct {
	Name     string  `json:"name" binding:"required"`
	Unit     string  `json:"unit"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Calories float64 `json:"calories"`
}

// RegisterFood adds a new food to the catalog.
func (h *Handler) RegisterFood(c *gin.Context) {
	var req registerFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	profile, err := h.catalog.Register(c.Request.Context(), domain.FoodProfile{
		Name: req.Name,
		Unit: req.Unit,
		Macros: domain.Macros{
			Protein:  req.Protein,
			Carbs:    req.Carbs,
			Fats:     req.Fats,
			Calories: req.Calories,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// DeleteFood removes a catalog row by its 1-based sheet row number.
func (h *Handler) DeleteFood(c *gin.Context) {
	row, ok := rowParam(c)
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), row); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": row})
}

// ListLog returns the ledger snapshot, filtered to one day when ?date= is set.
func (h *Handler) ListLog(c *gin.Context) {
	snapshot, err := h.ledger.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if raw := c.Query("date"); raw != "" {
		date, err := domain.ParseDate(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		filtered := &domain.LedgerSnapshot{
			Entries: usecase.FilterByDate(snapshot.Entries, date),
			Skipped: snapshot.Skipped,
		}
		c.JSON(http.StatusOK, filtered)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// LogFood appends one entry to the ledger.
func (h *Handler) LogFood(c *gin.Context) {
	var req usecase.LogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	entry, err := h.ledger.Log(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// DeleteLogEntry removes a log row by its 1-based sheet row number.
func (h *Handler) DeleteLogEntry(c *gin.Context) {
	row, ok := rowParam(c)
	if !ok {
		return
	}
	if err := h.ledger.Delete(c.Request.Context(), row); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": row})
}

// Summary returns period rollups; ?period defaults to day.
func (h *Handler) Summary(c *gin.Context) {
	period := domain.PeriodDay
	if raw := c.Query("period"); raw != "" {
		parsed, err := domain.ParsePeriod(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		period = parsed
	}

	report, err := h.reports.Summary(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// TopContributors ranks foods by one nutrient; ?nutrient defaults to protein,
// ?n to 3, ?date restricts the ranking to one day.
func (h *Handler) TopContributors(c *gin.Context) {
	nutrient := domain.NutrientProtein
	if raw := c.Query("nutrient"); raw != "" {
		parsed, err := domain.ParseNutrient(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		nutrient = parsed
	}

	n := 3
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid n: %q", raw)})
			return
		}
		n = parsed
	}

	date, ok := optionalDate(c, "date")
	if !ok {
		return
	}

	top, err := h.reports.Top(c.Request.Context(), nutrient, n, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nutrient": nutrient, "top": top})
}

// GoalProgress reports progress toward a nutrient target. A non-positive
// target is reported as skipped, not as an error.
func (h *Handler) GoalProgress(c *gin.Context) {
	nutrient := domain.NutrientProtein
	if raw := c.Query("nutrient"); raw != "" {
		parsed, err := domain.ParseNutrient(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		nutrient = parsed
	}

	var target float64
	if raw := c.Query("target"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid target: %q", raw)})
			return
		}
		target = parsed
	}

	date, ok := optionalDate(c, "date")
	if !ok {
		return
	}

	status, err := h.reports.Goal(c.Request.Context(), nutrient, target, date)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTarget) {
			c.JSON(http.StatusOK, gin.H{"nutrient": nutrient, "skipped": true, "reason": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nutrient": nutrient, "goal": status})
}

// DailyTotals returns the zero-filled calendar view; the window defaults to
// the last 30 days ending today.
func (h *Handler) DailyTotals(c *gin.Context) {
	nutrient := domain.NutrientCalories
	if raw := c.Query("nutrient"); raw != "" {
		parsed, err := domain.ParseNutrient(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		nutrient = parsed
	}

	to := domain.NormalizeDate(time.Now().UTC())
	from := to.AddDate(0, 0, -29)
	if d, ok := optionalDate(c, "from"); !ok {
		return
	} else if d != nil {
		from = *d
	}
	if d, ok := optionalDate(c, "to"); !ok {
		return
	} else if d != nil {
		to = *d
	}

	days, err := h.reports.Daily(c.Request.Context(), nutrient, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nutrient": nutrient, "days": days})
}

// Export streams one table as a CSV download.
func (h *Handler) Export(c *gin.Context) {
	var table domain.Table
	switch c.Param("table") {
	case "foods":
		table = domain.TableFoods
	case "log":
		table = domain.TableLog
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown table: %q", c.Param("table"))})
		return
	}

	data, err := h.store.ExportCSV(c.Request.Context(), table)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := "food_database.csv"
	if table == domain.TableLog {
		filename = "food_log.csv"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Refresh drops both cached snapshots so the next reads hit the store.
func (h *Handler) Refresh(c *gin.Context) {
	h.catalog.Invalidate(c.Request.Context())
	h.ledger.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"refreshed": true})
}

// rowParam parses the :row path parameter; rows start at 2 (row 1 is the header).
func rowParam(c *gin.Context) (int, bool) {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil || row < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid row: %q", c.Param("row"))})
		return 0, false
	}
	return row, true
}

// optionalDate parses a date query parameter; the second return is false when
// the parameter was present but malformed (a response has been written).
func optionalDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	date, err := domain.ParseDate(raw)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return &date, true
}

// respondError maps domain errors to HTTP statuses at the interaction
// boundary; nothing here is allowed to crash the process.
func respondError(c *gin.Context, err error) {
	var dupErr *domain.DuplicateFoodsError
	switch {
	case errors.As(err, &dupErr):
		c.JSON(http.StatusConflict, gin.H{"error": dupErr.Error(), "duplicates": dupErr.Names})
	case errors.Is(err, domain.ErrDuplicateFood):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFoodNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRowOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidMacros),
		errors.Is(err, domain.ErrUnknownUnit),
		errors.Is(err, domain.ErrMalformedDate),
		errors.Is(err, domain.ErrUnknownNutrient),
		errors.Is(err, domain.ErrUnknownPeriod),
		errors.Is(err, domain.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStoreWriteFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

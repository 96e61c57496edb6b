package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/chancenmarket/chancen/internal/model"
	"github.com/chancenmarket/chancen/internal/store"
)

// unknownPrice is returned when a category has no priced listings yet.
const unknownPrice = "unknown"

// AIHandler serves the listing assistant endpoints. Both are deterministic:
// descriptions come from a template and prices from the category median.
type AIHandler struct {
	DB *sql.DB
}

// GenerateDescription handles POST /api/ai/generate-description.
func (h *AIHandler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	var req model.DescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.Category == "" {
		jsonError(w, http.StatusBadRequest, "title and category required")
		return
	}

	jsonResponse(w, http.StatusOK, model.DescriptionResponse{
		Description: describe(req.Title, req.Category, req.CategoryFields),
	})
}

// SuggestPrice handles POST /api/ai/suggest-price.
func (h *AIHandler) SuggestPrice(w http.ResponseWriter, r *http.Request) {
	var req model.PriceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.Category == "" {
		jsonError(w, http.StatusBadRequest, "title and category required")
		return
	}

	prices, err := store.CategoryPrices(r.Context(), h.DB, req.Category)
	if err != nil {
		slog.Error("failed to load category prices", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to suggest price")
		return
	}

	jsonResponse(w, http.StatusOK, model.PriceResponse{SuggestedPrice: priceRange(prices)})
}

// describe renders a short listing description. Known category fields come
// first in catalogue order, any others follow sorted by name.
func describe(title, category string, fields map[string]any) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(title))

	cat, ok := model.FindCategory(category)
	if ok {
		fmt.Fprintf(&b, " in der Kategorie %s.", cat.NameDE)
	} else {
		b.WriteString(".")
	}

	var details []string
	seen := make(map[string]bool)
	for _, f := range cat.Fields {
		if v, ok := fields[f.Name]; ok && fmt.Sprint(v) != "" {
			details = append(details, fmt.Sprintf("%s: %v", f.Label, v))
			seen[f.Name] = true
		}
	}
	var rest []string
	for k := range fields {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		if v := fmt.Sprint(fields[k]); v != "" {
			details = append(details, fmt.Sprintf("%s: %s", k, v))
		}
	}

	if len(details) > 0 {
		fmt.Fprintf(&b, " Details: %s.", strings.Join(details, ", "))
	}
	b.WriteString(" Bei Interesse gerne melden.")
	return b.String()
}

// priceRange suggests a range of ten percent around the median of prices,
// which must be sorted ascending.
func priceRange(prices []float64) string {
	if len(prices) == 0 {
		return unknownPrice
	}
	var median float64
	if n := len(prices); n%2 == 1 {
		median = prices[n/2]
	} else {
		median = (prices[n/2-1] + prices[n/2]) / 2
	}
	low := math.Round(median * 0.9)
	high := math.Round(median * 1.1)
	return fmt.Sprintf("Angemessener Preis: €%.0f-%.0f", low, high)
}

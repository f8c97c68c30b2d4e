// Package costing derives batch costs and price suggestions from ingredient
// rows and cost parameters.
//
// Compute is pure: it performs no I/O, keeps no state between calls, and
// maps identical inputs to identical figures. Malformed or negative inputs
// are normalized rather than reported, so every figure is finite.
package costing

import (
	"math"

	"github.com/mesh-intelligence/costbook/internal/numeric"
	"github.com/mesh-intelligence/costbook/pkg/types"
)

// maxMarginFraction caps the target margin strictly below 1 so the
// recommended price stays finite and positive.
const maxMarginFraction = 0.999

// RowFigures holds the derived cost of one ingredient row, correlated to its
// input by ID.
type RowFigures struct {
	ID       string  `json:"id"`
	UnitCost float64 `json:"unit_cost"`
	LineCost float64 `json:"line_cost"`
}

// Figures is the full set of derived values for one snapshot of rows and
// parameters. It is never persisted.
type Figures struct {
	Rows []RowFigures `json:"rows"`

	IngredientsTotal float64 `json:"ingredients_total"`
	OverheadAmount   float64 `json:"overhead_amount"`
	Subtotal         float64 `json:"subtotal"`
	LaborAmount      float64 `json:"labor_amount"`
	Packaging        float64 `json:"packaging"`
	Total            float64 `json:"total"`

	PerItemInclusive       float64 `json:"per_item_inclusive"`
	PerItemIngredientsOnly float64 `json:"per_item_ingredients_only"`

	ProfitBatch         float64 `json:"profit_batch"`
	ProfitPerItem       float64 `json:"profit_per_item"`
	ProfitMarginPercent float64 `json:"profit_margin_percent"`

	RecommendedBatchPrice   float64 `json:"recommended_batch_price"`
	RecommendedPerItemPrice float64 `json:"recommended_per_item_price"`

	WholesalePrice float64 `json:"wholesale_price"`
	RetailPrice    float64 `json:"retail_price"`

	// Effective rates after clamping, for display.
	OverheadRate float64 `json:"overhead_rate"`
	LaborRate    float64 `json:"labor_rate"`
	Yield        float64 `json:"yield"`

	byID map[string]RowFigures
}

// Row returns the figures for the row with the given id.
func (f Figures) Row(id string) (RowFigures, bool) {
	rf, ok := f.byID[id]
	return rf, ok
}

// ComputeRow derives the unit and line cost of a single row. A pack
// quantity of zero or less makes the ingredient free.
func ComputeRow(r types.IngredientRow) RowFigures {
	price := numeric.ParseNumber(r.PackPrice, 0)
	packQty := numeric.ParseNumber(r.PackQuantity, 0)
	need := numeric.ParseNumber(r.AmountNeeded, 0)

	unitCost := 0.0
	if packQty > 0 {
		unitCost = finite(price / packQty)
	}
	return RowFigures{ID: r.ID, UnitCost: unitCost, LineCost: finite(unitCost * need)}
}

// Compute derives every figure from rows and p.
//
// Labor is charged on ingredients plus overhead, not on ingredients alone.
// Yield floors at 1, so a zero, negative or unreadable yield divides by one.
// Wholesale and retail prices mark up the ingredients-only cost per item.
func Compute(rows []types.IngredientRow, p types.CostParameters) Figures {
	f := Figures{
		Rows: make([]RowFigures, 0, len(rows)),
		byID: make(map[string]RowFigures, len(rows)),
	}
	for _, r := range rows {
		rf := ComputeRow(r)
		f.Rows = append(f.Rows, rf)
		f.byID[rf.ID] = rf
		f.IngredientsTotal = finite(f.IngredientsTotal + rf.LineCost)
	}

	f.OverheadRate = math.Max(0, numeric.ParseNumber(p.OverheadPercent, 0)/100)
	f.LaborRate = math.Max(0, numeric.ParseNumber(p.LaborPercent, 0)/100)
	f.Packaging = math.Max(0, numeric.ParseNumber(p.PackagingCost, 0))
	f.Yield = math.Max(1, numeric.ParseNumber(p.YieldCount, 0))

	f.OverheadAmount = finite(f.IngredientsTotal * f.OverheadRate)
	f.Subtotal = finite(f.IngredientsTotal + f.OverheadAmount)
	f.LaborAmount = finite(f.Subtotal * f.LaborRate)
	f.Total = finite(f.Subtotal + f.LaborAmount + f.Packaging)

	f.PerItemInclusive = finite(f.Total / f.Yield)
	f.PerItemIngredientsOnly = finite(f.IngredientsTotal / f.Yield)

	sellPrice := math.Max(0, numeric.ParseNumber(p.TargetSellPrice, 0))
	f.ProfitBatch = finite(sellPrice - f.Total)
	f.ProfitPerItem = finite(f.ProfitBatch / f.Yield)
	if sellPrice > 0 {
		f.ProfitMarginPercent = finite(f.ProfitBatch / sellPrice * 100)
	}

	margin := clamp(numeric.ParseNumber(p.TargetMarginPercent, 0)/100, 0, maxMarginFraction)
	f.RecommendedBatchPrice = finite(f.Total / (1 - margin))
	f.RecommendedPerItemPrice = finite(f.RecommendedBatchPrice / f.Yield)

	wholesaleRate := math.Max(0, numeric.ParseNumber(p.WholesaleMarkupPercent, 0)/100)
	retailRate := math.Max(0, numeric.ParseNumber(p.RetailMarkupPercent, 0)/100)
	f.WholesalePrice = finite(f.PerItemIngredientsOnly * (1 + wholesaleRate))
	f.RetailPrice = finite(f.PerItemIngredientsOnly * (1 + retailRate))

	return f
}

// finite maps an overflowed or undefined result to zero.
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

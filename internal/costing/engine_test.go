package costing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/costbook/pkg/types"
)

const delta = 1e-9

func flourRow() types.IngredientRow {
	return types.IngredientRow{ID: "flour", Name: "flour", PackPrice: "75", PackQuantity: "1000", AmountNeeded: "420"}
}

func params(mods ...func(*types.CostParameters)) types.CostParameters {
	p := types.DefaultParameters()
	for _, m := range mods {
		m(&p)
	}
	return p
}

func TestComputeRow(t *testing.T) {
	tests := []struct {
		name     string
		row      types.IngredientRow
		unitCost float64
		lineCost float64
	}{
		{"pack priced per gram", flourRow(), 0.075, 31.5},
		{"zero pack quantity is free", types.IngredientRow{PackPrice: "50", PackQuantity: "0", AmountNeeded: "10"}, 0, 0},
		{"negative pack quantity is free", types.IngredientRow{PackPrice: "50", PackQuantity: "-5", AmountNeeded: "10"}, 0, 0},
		{"unreadable fields are zero", types.IngredientRow{PackPrice: "abc", PackQuantity: "", AmountNeeded: "?"}, 0, 0},
		{"trailing units ignored", types.IngredientRow{PackPrice: "120php", PackQuantity: "12 pcs", AmountNeeded: "3"}, 10, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRow(tt.row)
			assert.InDelta(t, tt.unitCost, got.UnitCost, delta)
			assert.InDelta(t, tt.lineCost, got.LineCost, delta)
		})
	}
}

func TestCompute_WorkedExample(t *testing.T) {
	p := params(func(p *types.CostParameters) {
		p.OverheadPercent = "40"
		p.LaborPercent = "30"
		p.PackagingCost = "0"
		p.YieldCount = "20"
	})

	f := Compute([]types.IngredientRow{flourRow()}, p)

	rf, ok := f.Row("flour")
	require.True(t, ok)
	assert.InDelta(t, 0.075, rf.UnitCost, delta)
	assert.InDelta(t, 31.5, rf.LineCost, delta)

	assert.InDelta(t, 31.5, f.IngredientsTotal, delta)
	assert.InDelta(t, 12.6, f.OverheadAmount, delta)
	assert.InDelta(t, 44.1, f.Subtotal, delta)
	assert.InDelta(t, 13.23, f.LaborAmount, delta)
	assert.InDelta(t, 57.33, f.Total, delta)
	assert.InDelta(t, 2.8665, f.PerItemInclusive, delta)
	assert.InDelta(t, 1.575, f.PerItemIngredientsOnly, delta)
}

func TestCompute_PricingFigures(t *testing.T) {
	p := params(func(p *types.CostParameters) {
		p.OverheadPercent = "0"
		p.LaborPercent = "0"
		p.PackagingCost = "10"
		p.YieldCount = "10"
		p.TargetSellPrice = "200"
		p.TargetMarginPercent = "50"
		p.WholesaleMarkupPercent = "100"
		p.RetailMarkupPercent = "150"
	})
	rows := []types.IngredientRow{{ID: "a", PackPrice: "90", PackQuantity: "1", AmountNeeded: "1"}}

	f := Compute(rows, p)

	assert.InDelta(t, 100, f.Total, delta)
	assert.InDelta(t, 100, f.ProfitBatch, delta)
	assert.InDelta(t, 10, f.ProfitPerItem, delta)
	assert.InDelta(t, 50, f.ProfitMarginPercent, delta)
	assert.InDelta(t, 200, f.RecommendedBatchPrice, delta)
	assert.InDelta(t, 20, f.RecommendedPerItemPrice, delta)
	assert.InDelta(t, 18, f.WholesalePrice, delta)
	assert.InDelta(t, 22.5, f.RetailPrice, delta)
}

func TestCompute_Deterministic(t *testing.T) {
	rows := []types.IngredientRow{
		flourRow(),
		{ID: "b", PackPrice: "1e2", PackQuantity: "3", AmountNeeded: "7"},
		{ID: "c", PackPrice: "-4", PackQuantity: "abc", AmountNeeded: "Infinity"},
	}
	p := params(func(p *types.CostParameters) {
		p.YieldCount = "7"
		p.TargetSellPrice = "123.45"
		p.TargetMarginPercent = "33.3"
	})

	first := Compute(rows, p)
	for range 5 {
		assert.Equal(t, first, Compute(rows, p))
	}
}

func TestCompute_ZeroRows(t *testing.T) {
	p := params(func(p *types.CostParameters) {
		p.PackagingCost = "5"
		p.YieldCount = "5"
		p.WholesaleMarkupPercent = "100"
	})

	f := Compute(nil, p)

	assert.Empty(t, f.Rows)
	assert.Zero(t, f.IngredientsTotal)
	assert.Zero(t, f.OverheadAmount)
	assert.Zero(t, f.LaborAmount)
	assert.Zero(t, f.PerItemIngredientsOnly)
	assert.Zero(t, f.WholesalePrice)
	assert.Zero(t, f.RetailPrice)
	assert.InDelta(t, 5, f.Total, delta)
	assert.InDelta(t, 1, f.PerItemInclusive, delta)
}

func TestCompute_YieldFloor(t *testing.T) {
	rows := []types.IngredientRow{flourRow()}
	want := Compute(rows, params(func(p *types.CostParameters) { p.YieldCount = "1" }))

	for _, y := range []string{"-5", "0", "abc", "", "0.5"} {
		t.Run(y, func(t *testing.T) {
			got := Compute(rows, params(func(p *types.CostParameters) { p.YieldCount = y }))
			assert.Equal(t, want.PerItemInclusive, got.PerItemInclusive)
			assert.Equal(t, want.PerItemIngredientsOnly, got.PerItemIngredientsOnly)
			assert.Equal(t, want.RecommendedPerItemPrice, got.RecommendedPerItemPrice)
			assert.Equal(t, 1.0, got.Yield)
		})
	}
}

func TestCompute_MarginCap(t *testing.T) {
	rows := []types.IngredientRow{flourRow()}
	capped := Compute(rows, params(func(p *types.CostParameters) { p.TargetMarginPercent = "99.9" }))

	for _, m := range []string{"150", "100", "1e6"} {
		t.Run(m, func(t *testing.T) {
			got := Compute(rows, params(func(p *types.CostParameters) { p.TargetMarginPercent = m }))
			assert.InDelta(t, capped.RecommendedBatchPrice, got.RecommendedBatchPrice, 1e-6)
			assert.InDelta(t, got.Total/(1-maxMarginFraction), got.RecommendedBatchPrice, 1e-6)
			assert.False(t, math.IsInf(got.RecommendedBatchPrice, 0))
			assert.Greater(t, got.RecommendedBatchPrice, 0.0)
		})
	}

	negative := Compute(rows, params(func(p *types.CostParameters) { p.TargetMarginPercent = "-20" }))
	assert.InDelta(t, negative.Total, negative.RecommendedBatchPrice, delta)
}

func TestCompute_NegativeRatesClampToZero(t *testing.T) {
	rows := []types.IngredientRow{flourRow()}
	p := params(func(p *types.CostParameters) {
		p.OverheadPercent = "-40"
		p.LaborPercent = "-30"
		p.PackagingCost = "-10"
		p.TargetSellPrice = "-100"
		p.WholesaleMarkupPercent = "-50"
		p.RetailMarkupPercent = "-50"
	})

	f := Compute(rows, p)

	assert.Zero(t, f.OverheadAmount)
	assert.Zero(t, f.LaborAmount)
	assert.Zero(t, f.Packaging)
	assert.InDelta(t, f.IngredientsTotal, f.Total, delta)
	assert.Zero(t, f.ProfitMarginPercent, "no margin without a sell price")
	assert.InDelta(t, -f.Total, f.ProfitBatch, delta)
	assert.InDelta(t, f.PerItemIngredientsOnly, f.WholesalePrice, delta)
	assert.InDelta(t, f.PerItemIngredientsOnly, f.RetailPrice, delta)
}

func TestCompute_RowCorrelationByID(t *testing.T) {
	rows := []types.IngredientRow{
		{ID: "x", PackPrice: "10", PackQuantity: "10", AmountNeeded: "5"},
		{ID: "y", PackPrice: "20", PackQuantity: "10", AmountNeeded: "5"},
	}

	f := Compute(rows, types.DefaultParameters())

	require.Len(t, f.Rows, 2)
	assert.Equal(t, "x", f.Rows[0].ID)
	assert.Equal(t, "y", f.Rows[1].ID)
	y, ok := f.Row("y")
	require.True(t, ok)
	assert.InDelta(t, 10, y.LineCost, delta)
	_, ok = f.Row("missing")
	assert.False(t, ok)
}

func TestCompute_OverflowStaysFinite(t *testing.T) {
	rows := []types.IngredientRow{
		{ID: "huge", PackPrice: "1e308", PackQuantity: "1", AmountNeeded: "10"},
		{ID: "tiny-pack", PackPrice: "1e300", PackQuantity: "1e-300", AmountNeeded: "1"},
		{ID: "big", PackPrice: "1.5e308", PackQuantity: "1", AmountNeeded: "1"},
		{ID: "big-too", PackPrice: "1.5e308", PackQuantity: "1", AmountNeeded: "1"},
	}
	f := Compute(rows, params(func(p *types.CostParameters) {
		p.TargetSellPrice = "1e308"
		p.TargetMarginPercent = "99"
		p.WholesaleMarkupPercent = "1e308"
	}))

	huge, ok := f.Row("huge")
	require.True(t, ok)
	assert.Equal(t, 1e308, huge.UnitCost)
	assert.Zero(t, huge.LineCost)
	tiny, ok := f.Row("tiny-pack")
	require.True(t, ok)
	assert.Zero(t, tiny.UnitCost)
	assert.Zero(t, tiny.LineCost)

	values := []float64{
		f.IngredientsTotal, f.OverheadAmount, f.Subtotal, f.LaborAmount, f.Packaging, f.Total,
		f.PerItemInclusive, f.PerItemIngredientsOnly,
		f.ProfitBatch, f.ProfitPerItem, f.ProfitMarginPercent,
		f.RecommendedBatchPrice, f.RecommendedPerItemPrice,
		f.WholesalePrice, f.RetailPrice,
	}
	for i, v := range values {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v), "figure %d is %v", i, v)
	}

	_, err := json.Marshal(f)
	assert.NoError(t, err)
}

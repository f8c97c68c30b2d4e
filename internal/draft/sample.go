package draft

import "github.com/mesh-intelligence/costbook/pkg/types"

// SampleSnapshot returns a pre-seeded chocolate chip cookie batch. Row ids
// are left empty; Restore assigns them.
func SampleSnapshot() types.Snapshot {
	return types.Snapshot{
		Rows: []types.IngredientRow{
			{Name: "All-purpose flour", PackPrice: "75", PackQuantity: "1000", AmountNeeded: "420"},
			{Name: "Butter", PackPrice: "220", PackQuantity: "225", AmountNeeded: "225"},
			{Name: "Brown sugar", PackPrice: "90", PackQuantity: "1000", AmountNeeded: "300"},
			{Name: "Eggs", PackPrice: "108", PackQuantity: "12", AmountNeeded: "2"},
			{Name: "Chocolate chips", PackPrice: "185", PackQuantity: "500", AmountNeeded: "340"},
			{Name: "Baking soda", PackPrice: "35", PackQuantity: "227", AmountNeeded: "5"},
		},
		Parameters: types.CostParameters{
			OverheadPercent:        types.DefaultOverheadPercent,
			LaborPercent:           types.DefaultLaborPercent,
			PackagingCost:          "60",
			YieldCount:             "24",
			TargetSellPrice:        "960",
			TargetMarginPercent:    "35",
			WholesaleMarkupPercent: "100",
			RetailMarkupPercent:    "200",
		},
	}
}

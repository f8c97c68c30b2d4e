package types

// Ingredient field names accepted by IngredientRow.With.
const (
	FieldName         = "name"
	FieldPackPrice    = "pack_price"
	FieldPackQuantity = "pack_quantity"
	FieldAmountNeeded = "amount_needed"
)

// IngredientFields lists the editable ingredient fields in display order.
var IngredientFields = []string{FieldName, FieldPackPrice, FieldPackQuantity, FieldAmountNeeded}

// IngredientRow is one line of a recipe. Numeric fields hold the raw text the
// user typed so partial entries survive a round trip; the costing engine
// coerces them at computation time. ID is assigned at creation and never
// reassigned.
type IngredientRow struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PackPrice    string `json:"pack_price"`
	PackQuantity string `json:"pack_quantity"`
	AmountNeeded string `json:"amount_needed"`
}

// BlankRow returns a row with the given id, an empty name and zeroed numeric
// fields.
func BlankRow(id string) IngredientRow {
	return IngredientRow{
		ID:           id,
		PackPrice:    "0",
		PackQuantity: "0",
		AmountNeeded: "0",
	}
}

// With returns a copy of r with the named field replaced by value. The ID is
// not an editable field. Returns ErrUnknownField for any other name.
func (r IngredientRow) With(field, value string) (IngredientRow, error) {
	switch field {
	case FieldName:
		r.Name = value
	case FieldPackPrice:
		r.PackPrice = value
	case FieldPackQuantity:
		r.PackQuantity = value
	case FieldAmountNeeded:
		r.AmountNeeded = value
	default:
		return r, ErrUnknownField
	}
	return r, nil
}

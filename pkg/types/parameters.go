package types

// Cost parameter names accepted by CostParameters.Get and CostParameters.With.
const (
	ParamOverheadPercent        = "overhead_percent"
	ParamLaborPercent           = "labor_percent"
	ParamPackagingCost          = "packaging_cost"
	ParamYieldCount             = "yield_count"
	ParamTargetSellPrice        = "target_sell_price"
	ParamTargetMarginPercent    = "target_margin_percent"
	ParamWholesaleMarkupPercent = "wholesale_markup_percent"
	ParamRetailMarkupPercent    = "retail_markup_percent"
)

// ParameterNames lists every cost parameter in display order.
var ParameterNames = []string{
	ParamOverheadPercent,
	ParamLaborPercent,
	ParamPackagingCost,
	ParamYieldCount,
	ParamTargetSellPrice,
	ParamTargetMarginPercent,
	ParamWholesaleMarkupPercent,
	ParamRetailMarkupPercent,
}

// Documented parameter defaults.
const (
	DefaultOverheadPercent = "40"
	DefaultLaborPercent    = "30"
	DefaultNumeric         = "0"
)

// CostParameters holds the batch-level rates and pricing targets as raw text.
// There are no relational constraints between fields; the costing engine
// clamps each one independently.
type CostParameters struct {
	OverheadPercent        string `json:"overhead_percent"`
	LaborPercent           string `json:"labor_percent"`
	PackagingCost          string `json:"packaging_cost"`
	YieldCount             string `json:"yield_count"`
	TargetSellPrice        string `json:"target_sell_price"`
	TargetMarginPercent    string `json:"target_margin_percent"`
	WholesaleMarkupPercent string `json:"wholesale_markup_percent"`
	RetailMarkupPercent    string `json:"retail_markup_percent"`
}

// DefaultParameters returns overhead 40%, labor 30% and zero for everything
// else.
func DefaultParameters() CostParameters {
	return CostParameters{
		OverheadPercent:        DefaultOverheadPercent,
		LaborPercent:           DefaultLaborPercent,
		PackagingCost:          DefaultNumeric,
		YieldCount:             DefaultNumeric,
		TargetSellPrice:        DefaultNumeric,
		TargetMarginPercent:    DefaultNumeric,
		WholesaleMarkupPercent: DefaultNumeric,
		RetailMarkupPercent:    DefaultNumeric,
	}
}

// ParameterDefault returns the documented default for the named parameter.
func ParameterDefault(name string) (string, error) {
	return DefaultParameters().Get(name)
}

// Get returns the raw text of the named parameter.
func (p CostParameters) Get(name string) (string, error) {
	switch name {
	case ParamOverheadPercent:
		return p.OverheadPercent, nil
	case ParamLaborPercent:
		return p.LaborPercent, nil
	case ParamPackagingCost:
		return p.PackagingCost, nil
	case ParamYieldCount:
		return p.YieldCount, nil
	case ParamTargetSellPrice:
		return p.TargetSellPrice, nil
	case ParamTargetMarginPercent:
		return p.TargetMarginPercent, nil
	case ParamWholesaleMarkupPercent:
		return p.WholesaleMarkupPercent, nil
	case ParamRetailMarkupPercent:
		return p.RetailMarkupPercent, nil
	default:
		return "", ErrUnknownParameter
	}
}

// With returns a copy of p with the named parameter replaced by value.
func (p CostParameters) With(name, value string) (CostParameters, error) {
	switch name {
	case ParamOverheadPercent:
		p.OverheadPercent = value
	case ParamLaborPercent:
		p.LaborPercent = value
	case ParamPackagingCost:
		p.PackagingCost = value
	case ParamYieldCount:
		p.YieldCount = value
	case ParamTargetSellPrice:
		p.TargetSellPrice = value
	case ParamTargetMarginPercent:
		p.TargetMarginPercent = value
	case ParamWholesaleMarkupPercent:
		p.WholesaleMarkupPercent = value
	case ParamRetailMarkupPercent:
		p.RetailMarkupPercent = value
	default:
		return p, ErrUnknownParameter
	}
	return p, nil
}

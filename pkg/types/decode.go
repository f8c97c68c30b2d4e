package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Serialized records may be hand-edited or written by an earlier schema, so
// every field is looked up under its current key and then its legacy
// camelCase key, type-checked independently, and defaulted when unusable.

var rowKeys = map[string][]string{
	FieldName:         {"name"},
	FieldPackPrice:    {"pack_price", "price"},
	FieldPackQuantity: {"pack_quantity", "packQty"},
	FieldAmountNeeded: {"amount_needed", "need"},
}

var parameterKeys = map[string][]string{
	ParamOverheadPercent:        {"overhead_percent", "overheadPct"},
	ParamLaborPercent:           {"labor_percent", "laborPct"},
	ParamPackagingCost:          {"packaging_cost", "packagingCost"},
	ParamYieldCount:             {"yield_count", "yieldCount"},
	ParamTargetSellPrice:        {"target_sell_price", "sellPriceBatch"},
	ParamTargetMarginPercent:    {"target_margin_percent", "targetMargin"},
	ParamWholesaleMarkupPercent: {"wholesale_markup_percent", "whMarkup"},
	ParamRetailMarkupPercent:    {"retail_markup_percent", "rtMarkup"},
}

type object map[string]json.RawMessage

// lookup returns the first present value among keys.
func (o object) lookup(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// text returns the value under keys as a string. Strings pass through,
// finite numbers are stringified, anything else yields def.
func (o object) text(def string, keys ...string) string {
	raw, ok := o.lookup(keys...)
	if !ok {
		return def
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return def
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return def
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return def
	}
}

// asObject decodes raw as a JSON object; ok is false for any other shape.
func asObject(raw json.RawMessage) (object, bool) {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil || o == nil {
		return nil, false
	}
	return o, true
}

// DecodeSnapshot parses a serialized snapshot. Only a payload that is not a
// JSON object is an error. Rows that are not objects are skipped; rows
// without a usable id keep an empty ID so the draft store can re-key them.
// Both the nested {"rows", "parameters"} form and the legacy flat form with
// parameters at the top level are accepted.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	top, ok := asObject(data)
	if !ok {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", ErrInvalidData)
	}
	return decodeSnapshotObject(top), nil
}

func decodeSnapshotObject(top object) Snapshot {
	snap := Snapshot{Rows: []IngredientRow{}}

	if raw, ok := top["rows"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			for _, item := range items {
				o, ok := asObject(item)
				if !ok {
					continue
				}
				snap.Rows = append(snap.Rows, decodeRow(o))
			}
		}
	}

	params := top
	if raw, ok := top["parameters"]; ok {
		if o, ok := asObject(raw); ok {
			params = o
		}
	}
	snap.Parameters = decodeParameters(params)
	return snap
}

func decodeRow(o object) IngredientRow {
	row := BlankRow(o.text("", "id"))
	for _, field := range IngredientFields {
		def, _ := BlankRow("").get(field)
		row, _ = row.With(field, o.text(def, rowKeys[field]...))
	}
	return row
}

func (r IngredientRow) get(field string) (string, error) {
	switch field {
	case FieldName:
		return r.Name, nil
	case FieldPackPrice:
		return r.PackPrice, nil
	case FieldPackQuantity:
		return r.PackQuantity, nil
	case FieldAmountNeeded:
		return r.AmountNeeded, nil
	default:
		return "", ErrUnknownField
	}
}

func decodeParameters(o object) CostParameters {
	p := DefaultParameters()
	for _, name := range ParameterNames {
		def, _ := p.Get(name)
		p, _ = p.With(name, o.text(def, parameterKeys[name]...))
	}
	return p
}

// DecodeSessionMeta parses serialized lifecycle metadata. A missing or
// non-string bound id means unbound; a missing display name becomes
// DefaultDisplayName.
func DecodeSessionMeta(data []byte) (SessionMeta, error) {
	o, ok := asObject(data)
	if !ok {
		return SessionMeta{}, fmt.Errorf("decoding session meta: %w", ErrInvalidData)
	}
	return SessionMeta{
		BoundSessionID:     o.stringOnly("", "bound_session_id", "sessionId"),
		DisplayName:        o.stringOnly(DefaultDisplayName, "display_name", "sessionTitle"),
		LastSyncedSnapshot: o.stringOnly("", "last_synced_snapshot", "lastSavedJSON"),
	}, nil
}

// stringOnly is like text but rejects numbers.
func (o object) stringOnly(def string, keys ...string) string {
	raw, ok := o.lookup(keys...)
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	return s
}

// DecodeSavedSession parses one serialized saved session, as written by an
// export or by the legacy browser store (name, data, millisecond
// timestamps). Returns ErrInvalidID when the record has no id.
func DecodeSavedSession(data []byte) (*SavedSession, error) {
	o, ok := asObject(data)
	if !ok {
		return nil, fmt.Errorf("decoding saved session: %w", ErrInvalidData)
	}
	id := o.stringOnly("", "id")
	if id == "" {
		return nil, ErrInvalidID
	}

	rec := &SavedSession{
		ID:          id,
		DisplayName: o.stringOnly(DefaultDisplayName, "display_name", "name"),
		Snapshot:    Snapshot{Rows: []IngredientRow{}, Parameters: DefaultParameters()},
	}
	if t, ok := o.timestamp("created_at", "createdAt"); ok {
		rec.CreatedAt = t
	}
	if t, ok := o.timestamp("updated_at", "updatedAt"); ok {
		rec.UpdatedAt = &t
	}
	if raw, ok := o.lookup("snapshot", "data"); ok {
		if so, ok := asObject(raw); ok {
			rec.Snapshot = decodeSnapshotObject(so)
		}
	}
	return rec, nil
}

// timestamp accepts RFC 3339 strings and Unix millisecond numbers.
func (o object) timestamp(keys ...string) (time.Time, bool) {
	raw, ok := o.lookup(keys...)
	if !ok {
		return time.Time{}, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return time.Time{}, false
	}
	switch x := v.(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(x)).UTC(), true
	default:
		return time.Time{}, false
	}
}

// pkg/model/record.go
package model

import "strconv"

// Canonical column names the pipeline operates on after normalization.
// Raw exports use the German eBay vocabulary (camel-case, mixed language);
// the normalizer maps those onto this fixed set.
const (
	FieldPrice             = "price"
	FieldOdometer          = "odometer"
	FieldOdometerKm        = "odometer_km"
	FieldRegistrationYear  = "registration_year"
	FieldRegistrationMonth = "registration_month"
	FieldBrand             = "brand"
	FieldModel             = "model"
	FieldUnrepairedDamage  = "unrepaired_damage"
	FieldVehicleType       = "vehicle_type"
	FieldGearbox           = "gearbox"
	FieldFuelType          = "fuel_type"
	FieldPowerPS           = "power_ps"
	FieldName              = "name"
	FieldAdCreated         = "ad_created"
	FieldDateCrawled       = "date_crawled"
	FieldLastSeen          = "last_seen"
	FieldPostalCode        = "postal_code"
)

// Record represents a single vehicle listing. Field values are nil (absent),
// string (raw or categorical), or int64 (after coercion).
type Record struct {
	ID     string                 // Row identifier assigned at ingestion
	Fields map[string]interface{} // Column name -> value
}

// Int returns the value of a field as int64.
// The second return is false when the field is absent, nil, or not numeric.
func (r Record) Int(field string) (int64, bool) {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		return int64(val), true
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// String returns the value of a field as a string.
// The second return is false when the field is absent or nil.
func (r Record) String(field string) (string, bool) {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case []byte:
		return string(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}

// IsNull reports whether a field is absent or holds a nil value.
func (r Record) IsNull(field string) bool {
	v, ok := r.Fields[field]
	return !ok || v == nil
}

// Clone returns a deep copy of the record. Stages that rewrite field maps
// operate on copies so the caller's input set is never mutated.
func (r Record) Clone() Record {
	fields := make(map[string]interface{}, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{ID: r.ID, Fields: fields}
}

// RecordSet is an ordered collection of records. Row order is preserved from
// ingestion; it carries no meaning beyond deterministic iteration. The column
// list keeps a stable ordering for rendering and reproducible output.
type RecordSet struct {
	Columns []string
	Records []Record
}

// Len returns the number of records in the set.
func (rs RecordSet) Len() int {
	return len(rs.Records)
}

// HasColumn reports whether the set declares the named column.
func (rs RecordSet) HasColumn(name string) bool {
	for _, col := range rs.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record set.
func (rs RecordSet) Clone() RecordSet {
	out := RecordSet{
		Columns: append([]string(nil), rs.Columns...),
		Records: make([]Record, len(rs.Records)),
	}
	for i, rec := range rs.Records {
		out.Records[i] = rec.Clone()
	}
	return out
}

// RenameColumn renames a column in the declared column list and in every
// record. Renaming a column that does not exist is a no-op.
func (rs *RecordSet) RenameColumn(from, to string) {
	renamed := false
	for i, col := range rs.Columns {
		if col == from {
			rs.Columns[i] = to
			renamed = true
			break
		}
	}
	if !renamed {
		return
	}
	for i := range rs.Records {
		if v, ok := rs.Records[i].Fields[from]; ok {
			rs.Records[i].Fields[to] = v
			delete(rs.Records[i].Fields, from)
		}
	}
}

// DropColumn removes a column from the declared column list and from every
// record. Dropping a column that does not exist is a no-op.
func (rs *RecordSet) DropColumn(name string) {
	found := false
	cols := rs.Columns[:0]
	for _, col := range rs.Columns {
		if col == name {
			found = true
			continue
		}
		cols = append(cols, col)
	}
	rs.Columns = cols
	if !found {
		return
	}
	for i := range rs.Records {
		delete(rs.Records[i].Fields, name)
	}
}

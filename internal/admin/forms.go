package admin

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/medicarehq/pharmacy-web/internal/pharmacy"
)

// Field describes one input of the edit modal. Each resource kind has a
// fixed schema; everything else on the record passes through untouched.
type Field struct {
	Name      string
	Label     string
	Type      string // "text", "number", "textarea", "select-bool", "datetime-local"
	Value     string
	Step      string
	Required  bool
	BoolValue bool
}

func editFields(kind pharmacy.Kind, rec pharmacy.Record) []Field {
	switch kind {
	case pharmacy.KindMedicines:
		return []Field{
			{Name: "name", Label: "Medicine Name", Type: "text", Value: stringField(rec, "name"), Required: true},
			{Name: "description", Label: "Description", Type: "textarea", Value: stringField(rec, "description"), Required: true},
			{Name: "price", Label: "Price", Type: "number", Value: stringField(rec, "price"), Step: "0.01", Required: true},
			{Name: "stock_quantity", Label: "Stock Quantity", Type: "number", Value: stringField(rec, "stock_quantity"), Required: true},
			{Name: "image", Label: "Image URL", Type: "text", Value: stringField(rec, "image")},
		}
	case pharmacy.KindDoctors:
		return []Field{
			{Name: "name", Label: "Doctor Name", Type: "text", Value: stringField(rec, "name"), Required: true},
			{Name: "specialty", Label: "Specialty", Type: "text", Value: stringField(rec, "specialty"), Required: true},
			{Name: "is_available", Label: "Available", Type: "select-bool", Required: true, BoolValue: boolField(rec, "is_available")},
		}
	case pharmacy.KindAppointments:
		// datetime-local inputs reject a trailing Z.
		date := strings.TrimSuffix(stringField(rec, "date"), "Z")
		return []Field{
			{Name: "customer_name", Label: "Customer Name", Type: "text", Value: stringField(rec, "customer_name"), Required: true},
			{Name: "doctor", Label: "Doctor ID", Type: "number", Value: stringField(rec, "doctor"), Required: true},
			{Name: "date", Label: "Appointment Date & Time", Type: "datetime-local", Value: date, Required: true},
		}
	}
	return nil
}

func editTitle(kind pharmacy.Kind, rec pharmacy.Record) string {
	switch kind {
	case pharmacy.KindMedicines:
		return "Edit Medicine - " + stringField(rec, "name")
	case pharmacy.KindDoctors:
		return "Edit Doctor - Dr. " + stringField(rec, "name")
	case pharmacy.KindAppointments:
		return "Edit Appointment - " + stringField(rec, "customer_name")
	}
	return "Edit"
}

// parseEditForm merges submitted values into the snapshot, coercing the
// typed fields of the kind's schema. The merged record is the full field
// set the upstream PUT expects.
func parseEditForm(kind pharmacy.Kind, form url.Values, snapshot pharmacy.Record) (pharmacy.Record, error) {
	merged := make(pharmacy.Record, len(snapshot))
	for k, v := range snapshot {
		merged[k] = v
	}

	switch kind {
	case pharmacy.KindMedicines:
		if err := setRequiredString(merged, form, "name", "Medicine name is required"); err != nil {
			return nil, err
		}
		if err := setRequiredString(merged, form, "description", "Description is required"); err != nil {
			return nil, err
		}
		if err := setRequiredString(merged, form, "price", "Price is required"); err != nil {
			return nil, err
		}
		stock, err := intFromForm(form, "stock_quantity")
		if err != nil {
			return nil, fmt.Errorf("Stock quantity must be a number")
		}
		merged["stock_quantity"] = stock
		merged["image"] = strings.TrimSpace(form.Get("image"))

	case pharmacy.KindDoctors:
		if err := setRequiredString(merged, form, "name", "Doctor name is required"); err != nil {
			return nil, err
		}
		if err := setRequiredString(merged, form, "specialty", "Specialty is required"); err != nil {
			return nil, err
		}
		// The select submits "true"/"false"; the API wants a real boolean.
		merged["is_available"] = form.Get("is_available") == "true"

	case pharmacy.KindAppointments:
		if err := setRequiredString(merged, form, "customer_name", "Customer name is required"); err != nil {
			return nil, err
		}
		doctor, err := intFromForm(form, "doctor")
		if err != nil {
			return nil, fmt.Errorf("Doctor ID must be a number")
		}
		merged["doctor"] = doctor
		if err := setRequiredString(merged, form, "date", "Appointment date is required"); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown resource kind %q", kind)
	}

	return merged, nil
}

func setRequiredString(rec pharmacy.Record, form url.Values, key, message string) error {
	value := strings.TrimSpace(form.Get(key))
	if value == "" {
		return fmt.Errorf("%s", message)
	}
	rec[key] = value
	return nil
}

func intFromForm(form url.Values, key string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(form.Get(key)), 10, 64)
}

// stringField renders a record value for a form input. JSON numbers arrive
// as float64; integral ones render without a decimal point.
func stringField(rec pharmacy.Record, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func boolField(rec pharmacy.Record, key string) bool {
	v, _ := rec[key].(bool)
	return v
}

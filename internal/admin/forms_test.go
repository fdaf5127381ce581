package admin

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medicarehq/pharmacy-web/internal/pharmacy"
)

func TestParseEditForm_MedicineMergesAndCoerces(t *testing.T) {
	snapshot := pharmacy.Record{
		"id":             float64(7),
		"name":           "Paracetamol",
		"description":    "Pain relief",
		"price":          "9.99",
		"stock_quantity": float64(40),
		"image":          "old.png",
	}
	form := url.Values{
		"name":           {"Paracetamol"},
		"description":    {"Pain relief"},
		"price":          {"12.50"},
		"stock_quantity": {"55"},
		"image":          {""},
	}

	merged, err := parseEditForm(pharmacy.KindMedicines, form, snapshot)
	require.NoError(t, err)
	require.Equal(t, "12.50", merged["price"])
	require.Equal(t, int64(55), merged["stock_quantity"])
	require.Equal(t, "", merged["image"])
	// Fields outside the form pass through from the snapshot.
	require.Equal(t, float64(7), merged["id"])
}

func TestParseEditForm_RequiredFieldMessages(t *testing.T) {
	tests := []struct {
		name string
		kind pharmacy.Kind
		form url.Values
		want string
	}{
		{
			name: "missing medicine name",
			kind: pharmacy.KindMedicines,
			form: url.Values{"description": {"d"}, "price": {"1"}, "stock_quantity": {"1"}},
			want: "Medicine name is required",
		},
		{
			name: "blank price",
			kind: pharmacy.KindMedicines,
			form: url.Values{"name": {"n"}, "description": {"d"}, "price": {"  "}, "stock_quantity": {"1"}},
			want: "Price is required",
		},
		{
			name: "non-numeric stock",
			kind: pharmacy.KindMedicines,
			form: url.Values{"name": {"n"}, "description": {"d"}, "price": {"1"}, "stock_quantity": {"lots"}},
			want: "Stock quantity must be a number",
		},
		{
			name: "missing specialty",
			kind: pharmacy.KindDoctors,
			form: url.Values{"name": {"House"}, "is_available": {"true"}},
			want: "Specialty is required",
		},
		{
			name: "non-numeric doctor id",
			kind: pharmacy.KindAppointments,
			form: url.Values{"customer_name": {"Jane"}, "doctor": {"x"}, "date": {"2026-09-01T10:00"}},
			want: "Doctor ID must be a number",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseEditForm(tt.kind, tt.form, pharmacy.Record{})
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestParseEditForm_DoctorAvailability(t *testing.T) {
	form := url.Values{"name": {"House"}, "specialty": {"Diagnostics"}, "is_available": {"false"}}
	merged, err := parseEditForm(pharmacy.KindDoctors, form, pharmacy.Record{"is_available": true})
	require.NoError(t, err)
	require.Equal(t, false, merged["is_available"])
}

func TestParseEditForm_AppointmentDoctorCoerced(t *testing.T) {
	form := url.Values{"customer_name": {"Jane"}, "doctor": {"4"}, "date": {"2026-09-01T10:00"}}
	merged, err := parseEditForm(pharmacy.KindAppointments, form, pharmacy.Record{})
	require.NoError(t, err)
	require.Equal(t, int64(4), merged["doctor"])
}

func TestEditFields_AppointmentDateDropsZoneSuffix(t *testing.T) {
	rec := pharmacy.Record{"customer_name": "Jane", "doctor": float64(4), "date": "2026-09-01T10:00:00Z"}
	fields := editFields(pharmacy.KindAppointments, rec)
	var date Field
	for _, f := range fields {
		if f.Name == "date" {
			date = f
		}
	}
	require.Equal(t, "2026-09-01T10:00:00", date.Value)
	require.Equal(t, "datetime-local", date.Type)
}

func TestEditTitle(t *testing.T) {
	require.Equal(t, "Edit Medicine - Ibuprofen", editTitle(pharmacy.KindMedicines, pharmacy.Record{"name": "Ibuprofen"}))
	require.Equal(t, "Edit Doctor - Dr. House", editTitle(pharmacy.KindDoctors, pharmacy.Record{"name": "House"}))
	require.Equal(t, "Edit Appointment - Jane", editTitle(pharmacy.KindAppointments, pharmacy.Record{"customer_name": "Jane"}))
}

func TestStringField_NumberFormatting(t *testing.T) {
	rec := pharmacy.Record{"whole": float64(40), "fractional": float64(9.99)}
	require.Equal(t, "40", stringField(rec, "whole"))
	require.Equal(t, "9.99", stringField(rec, "fractional"))
	require.Equal(t, "", stringField(rec, "missing"))
}

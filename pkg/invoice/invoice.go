// Package invoice lays out and renders the single-page order invoice.
//
// Rendering happens in two steps. Build turns an order into a Document, a
// plain value holding every string and measurement that will be drawn.
// WritePDF paints a Document onto a Letter page with fpdf.
package invoice

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrMissingField is returned by Build when the order lacks a field the
// invoice prints.
var ErrMissingField = errors.New("invoice: missing required field")

const dateLayout = "2006-01-02"

// Input is the subset of an order the invoice needs.
type Input struct {
	BillNo       string
	Mobile       string
	Measurements string
	Description  string
	TotalAmount  float64
	Advance      float64
	DueAmount    float64
	DeliveryDate string
	CreatedDate  string
}

type Detail struct {
	Label string
	Value string
}

// Column is one column of the order table. Width is in inches.
type Column struct {
	Title string
	Width float64
	Align string // fpdf alignment for body cells: "L", "C" or "R"
}

// Document is the complete, deterministic content of one invoice.
type Document struct {
	Title          string
	Subtitle       string
	DetailsHeading string
	Details        []Detail
	OrderHeading   string
	Columns        []Column
	Row            []string
	Thanks         string
	Contact        string
	Tagline        string
	Date           time.Time
}

var orderColumns = []Column{
	{Title: "Description", Width: 1.6, Align: "L"},
	{Title: "Measurements", Width: 1.6, Align: "L"},
	{Title: "Total Amount", Width: 1.0, Align: "R"},
	{Title: "Advance", Width: 1.0, Align: "R"},
	{Title: "Due Amount", Width: 1.0, Align: "R"},
	{Title: "Delivery Date", Width: 1.3, Align: "C"},
}

// Build lays out the invoice for in, dated today. Amounts are printed as
// stored; the due amount is never recomputed here.
func Build(in Input, today time.Time) (*Document, error) {
	for _, f := range []struct{ name, value string }{
		{"bill_no", in.BillNo},
		{"mobile", in.Mobile},
		{"created_date", in.CreatedDate},
		{"delivery_date", in.DeliveryDate},
	} {
		if f.value == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	return &Document{
		Title:          "SACHIN TAILORS",
		Subtitle:       "Premium Tailoring Services – Perfect Fit, Timeless Style",
		DetailsHeading: "Invoice Details",
		Details: []Detail{
			{"Bill No:", in.BillNo},
			{"Customer Mobile:", in.Mobile},
			{"Invoice Date:", today.Format(dateLayout)},
			{"Created Date:", in.CreatedDate},
		},
		OrderHeading: "Order Details",
		Columns:      append([]Column(nil), orderColumns...),
		Row: []string{
			in.Description,
			in.Measurements,
			FormatAmount(in.TotalAmount),
			FormatAmount(in.Advance),
			FormatAmount(in.DueAmount),
			in.DeliveryDate,
		},
		Thanks:  "Thank you for choosing Sachin Tailors! We appreciate your business.",
		Contact: "Contact: +91 81222 88855 | Email: info@sachintailors.com | Address: 123 Tailor Street, City, India",
		Tagline: "“Where every stitch tells your story.”",
		Date:    today,
	}, nil
}

// FormatAmount prints v with exactly two decimals, rounding the binary
// value as printf's %.2f does. A non-finite value prints as 0.00.
func FormatAmount(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "0.00"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

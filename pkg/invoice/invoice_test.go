package invoice

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func sampleInput() Input {
	return Input{
		BillNo:       "AB12CD34",
		Mobile:       "9876543210",
		Measurements: "Chest 40, Waist 34",
		Description:  "Two-piece suit",
		TotalAmount:  1500,
		Advance:      500,
		DueAmount:    1000,
		DeliveryDate: "2025-03-30",
		CreatedDate:  "2025-03-01",
	}
}

func TestBuildLaysOutOrder(t *testing.T) {
	doc, err := Build(sampleInput(), today)
	require.NoError(t, err)

	assert.Equal(t, "SACHIN TAILORS", doc.Title)
	assert.Equal(t, []Detail{
		{"Bill No:", "AB12CD34"},
		{"Customer Mobile:", "9876543210"},
		{"Invoice Date:", "2025-03-14"},
		{"Created Date:", "2025-03-01"},
	}, doc.Details)
	assert.Equal(t, []string{
		"Two-piece suit", "Chest 40, Waist 34", "1500.00", "500.00", "1000.00", "2025-03-30",
	}, doc.Row)

	var widths []float64
	for _, c := range doc.Columns {
		widths = append(widths, c.Width)
	}
	assert.Equal(t, []float64{1.6, 1.6, 1.0, 1.0, 1.0, 1.3}, widths)
}

func TestBuildPrintsStoredDueAmount(t *testing.T) {
	in := sampleInput()
	in.DueAmount = 999.5 // deliberately inconsistent with total - advance

	doc, err := Build(in, today)
	require.NoError(t, err)
	assert.Equal(t, "999.50", doc.Row[4])
}

func TestBuildRejectsMissingFields(t *testing.T) {
	for _, tc := range []struct {
		field string
		clear func(*Input)
	}{
		{"bill_no", func(in *Input) { in.BillNo = "" }},
		{"mobile", func(in *Input) { in.Mobile = "" }},
		{"created_date", func(in *Input) { in.CreatedDate = "" }},
		{"delivery_date", func(in *Input) { in.DeliveryDate = "" }},
	} {
		t.Run(tc.field, func(t *testing.T) {
			in := sampleInput()
			tc.clear(&in)
			_, err := Build(in, today)
			assert.ErrorIs(t, err, ErrMissingField)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "-250.00", FormatAmount(-250))
	assert.Equal(t, "2.67", FormatAmount(2.675))
	assert.Equal(t, "1000.50", FormatAmount(1000.5))
}

func TestFormatAmountToleratesNonFinite(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, "0.00", FormatAmount(math.Inf(1)))
		assert.Equal(t, "0.00", FormatAmount(math.NaN()))
	})
}

func TestWritePDFIsDeterministic(t *testing.T) {
	doc, err := Build(sampleInput(), today)
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, doc.WritePDF(&a))
	require.NoError(t, doc.WritePDF(&b))

	assert.True(t, bytes.HasPrefix(a.Bytes(), []byte("%PDF-")))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestLongTextStaysOnOnePage(t *testing.T) {
	for _, n := range []int{0, 5, 12, 24} {
		t.Run(fmt.Sprintf("repeat_%d", n), func(t *testing.T) {
			in := sampleInput()
			in.Description = strings.Repeat("Hand-stitched lapels with contrast piping ", n)
			in.Measurements = strings.Repeat("Sleeve 24 ", 2*n)

			doc, err := Build(in, today)
			require.NoError(t, err)
			pdf, err := doc.layout()
			require.NoError(t, err)

			assert.Equal(t, 1, pdf.PageNo())
			_, ph := pdf.GetPageSize()
			assert.LessOrEqual(t, pdf.GetY(), ph-margin)

			var buf bytes.Buffer
			require.NoError(t, doc.WritePDF(&buf))
			assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")))
		})
	}
}

func TestFitRowShrinksInsteadOfDroppingText(t *testing.T) {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.AddPage()
	p := &painter{pdf: pdf, tr: func(s string) string { return s }}

	text := strings.TrimSpace(strings.Repeat("Hand-stitched lapels with contrast piping ", 20))
	cells := []string{text, "1500.00"}
	widths := []float64{1.6, 1.0}
	styles := []string{"", ""}

	size, lines, h := p.fitRow(cells, widths, styles, bodySize, 2.5)
	assert.Less(t, size, bodySize)
	assert.GreaterOrEqual(t, size, minBodySize)
	assert.LessOrEqual(t, h, 2.5)
	assert.Equal(t, text, strings.Join(lines[0], " "))
}

func TestFitRowClipsOnlyBelowMinimumSize(t *testing.T) {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.AddPage()
	p := &painter{pdf: pdf, tr: func(s string) string { return s }}

	text := strings.Repeat("word ", 5000)
	size, lines, h := p.fitRow([]string{text}, []float64{1.6}, []string{""}, bodySize, 1.0)
	assert.Equal(t, minBodySize, size)
	assert.LessOrEqual(t, h, 1.0)
	assert.True(t, strings.HasSuffix(lines[0][len(lines[0])-1], "..."))
}

func TestWrapKeepsEveryWord(t *testing.T) {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", 11)

	text := strings.TrimSpace(strings.Repeat("alpha beta gamma delta ", 10))
	lines := wrap(pdf, text, 1.6-2*cellPad)

	require.Greater(t, len(lines), 1)
	assert.Equal(t, text, strings.Join(lines, " "))
	for _, ln := range lines {
		assert.LessOrEqual(t, pdf.GetStringWidth(ln), 1.6-2*cellPad+1e-9)
	}
}

func TestWrapEmptyTextKeepsOneLine(t *testing.T) {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", 11)

	assert.Equal(t, []string{""}, wrap(pdf, "", 1.0))
}

package invoice

import (
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth  = 8.5
	margin     = 0.75
	cellPad    = 8.0 / 72
	lineFactor = 1.25
	fontFamily = "Helvetica"

	bodySize    = 11.0
	minBodySize = 4.0
)

type rgb struct{ r, g, b int }

var (
	navy     = rgb{0x1A, 0x2A, 0x44}
	gold     = rgb{0xD4, 0xA0, 0x17}
	grid     = rgb{0xE0, 0xE0, 0xE0}
	bodyText = rgb{0x33, 0x33, 0x33}
	subtle   = rgb{0x55, 0x55, 0x55}
	footer   = rgb{0x77, 0x77, 0x77}
	rowFill  = rgb{0xF4, 0xF6, 0xF8}
	softFill = rgb{0xF9, 0xF9, 0xF9}
	white    = rgb{0xFF, 0xFF, 0xFF}
)

// WritePDF renders d as a single Letter page and writes it to w.
func (d *Document) WritePDF(w io.Writer) error {
	pdf, err := d.layout()
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("invoice: write: %w", err)
	}
	return nil
}

// layout draws the page. Nothing below it adds a page: the order row is
// shrunk until it fits between its header and the footer.
func (d *Document) layout() (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetCreationDate(d.Date)
	pdf.SetTitle(fmt.Sprintf("Invoice %s", d.detail("Bill No:")), true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	p := &painter{pdf: pdf, tr: tr}

	p.centered(d.Title, "B", 24, navy, 12)
	p.centered(d.Subtitle, "", 14, subtle, 16)
	pdf.Ln(0.3)

	p.detailsTable(d)
	pdf.Ln(0.4)

	pdf.Ln(20.0 / 72)
	p.text(d.OrderHeading, "B", 15, navy, "L", 10)

	foot := d.footerBlocks()
	p.orderTable(d, p.blocksHeight(foot))
	for _, b := range foot {
		pdf.Ln(b.before / 72)
		p.text(b.text, b.style, b.size, b.color, b.align, b.after)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("invoice: layout: %w", err)
	}
	return pdf, nil
}

// block is a full-width paragraph; before and after are in points.
type block struct {
	text, style, align string
	size               float64
	color              rgb
	before, after      float64
}

func (d *Document) footerBlocks() []block {
	return []block{
		{text: d.Thanks, align: "L", size: 11, color: bodyText, before: 36, after: 8},
		{text: d.Contact, align: "C", size: 10, color: footer, before: 20},
		{text: d.Tagline, style: "I", align: "C", size: 13, color: gold, before: 20, after: 10},
	}
}

func (d *Document) detail(label string) string {
	for _, dt := range d.Details {
		if dt.Label == label {
			return dt.Value
		}
	}
	return ""
}

type painter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func lineHeight(size float64) float64 { return size / 72 * lineFactor }

func (p *painter) font(style string, size float64, c rgb) {
	p.pdf.SetFont(fontFamily, style, size)
	p.pdf.SetTextColor(c.r, c.g, c.b)
}

// text writes a wrapped paragraph across the full content width followed by
// spaceAfter points of space.
func (p *painter) text(s, style string, size float64, c rgb, align string, spaceAfter float64) {
	p.font(style, size, c)
	p.pdf.MultiCell(0, lineHeight(size), p.tr(s), "", align, false)
	if spaceAfter > 0 {
		p.pdf.Ln(spaceAfter / 72)
	}
}

func (p *painter) centered(s, style string, size float64, c rgb, spaceAfter float64) {
	p.text(s, style, size, c, "C", spaceAfter)
}

func (p *painter) detailsTable(d *Document) {
	widths := []float64{2.0, 3.5}
	total := widths[0] + widths[1]
	x := (pageWidth - total) / 2
	startY := p.pdf.GetY()

	p.pdf.SetX(x)
	p.row([]string{d.DetailsHeading}, []float64{total}, []string{"C"}, "B", 13, white, navy)
	for _, dt := range d.Details {
		p.pdf.SetX(x)
		p.rowStyled([]string{dt.Label, dt.Value}, widths, []string{"L", "L"}, []string{"B", ""}, 11, bodyText, softFill)
	}
	p.box(x, startY, total, p.pdf.GetY()-startY)
}

// blocksHeight is the vertical space the blocks take when written from the
// left margin.
func (p *painter) blocksHeight(blocks []block) float64 {
	width := pageWidth - 2*margin - 2*p.pdf.GetCellMargin()
	var h float64
	for _, b := range blocks {
		p.pdf.SetFont(fontFamily, b.style, b.size)
		n := len(wrap(p.pdf, p.tr(b.text), width))
		h += (b.before+b.after)/72 + float64(n)*lineHeight(b.size)
	}
	return h
}

// orderTable draws the column header and the single order row, leaving
// reserve inches free above the bottom margin.
func (p *painter) orderTable(d *Document, reserve float64) {
	widths := make([]float64, len(d.Columns))
	titles := make([]string, len(d.Columns))
	heads := make([]string, len(d.Columns))
	aligns := make([]string, len(d.Columns))
	var total float64
	for i, col := range d.Columns {
		widths[i] = col.Width
		titles[i] = col.Title
		heads[i] = "C"
		aligns[i] = col.Align
		total += col.Width
	}
	// The table is wider than the content area; centre it on the page.
	x := (pageWidth - total) / 2
	startY := p.pdf.GetY()

	p.pdf.SetX(x)
	p.row(titles, widths, heads, "B", 12, white, navy)
	styles := make([]string, len(d.Row))
	p.pdf.SetX(x)
	room := p.pageBottom() - p.pdf.GetY() - reserve
	size, lines, h := p.fitRow(d.Row, widths, styles, bodySize, room)
	p.drawRow(lines, widths, aligns, styles, size, bodyText, rowFill, h)
	endY := p.pdf.GetY()

	p.box(x, startY, total, endY-startY)
	p.pdf.SetDrawColor(navy.r, navy.g, navy.b)
	p.pdf.SetLineWidth(1.2 / 72)
	p.pdf.Line(x, endY, x+total, endY)
	p.pdf.SetX(margin)
}

func (p *painter) row(cells []string, widths []float64, aligns []string, style string, size float64, c, fill rgb) {
	styles := make([]string, len(cells))
	for i := range styles {
		styles[i] = style
	}
	p.rowStyled(cells, widths, aligns, styles, size, c, fill)
}

// rowStyled draws one table row. Every cell wraps inside its column and the
// row grows to the tallest cell; text is vertically centred.
func (p *painter) rowStyled(cells []string, widths []float64, aligns, styles []string, size float64, c, fill rgb) {
	lines, h := p.wrapRow(cells, widths, styles, size)
	p.drawRow(lines, widths, aligns, styles, size, c, fill, h)
}

func (p *painter) wrapRow(cells []string, widths []float64, styles []string, size float64) ([][]string, float64) {
	lines := make([][]string, len(cells))
	maxLines := 1
	for i, cell := range cells {
		p.pdf.SetFont(fontFamily, styles[i], size)
		lines[i] = wrap(p.pdf, p.tr(cell), widths[i]-2*cellPad)
		if len(lines[i]) > maxLines {
			maxLines = len(lines[i])
		}
	}
	return lines, float64(maxLines)*lineHeight(size) + 2*cellPad
}

// fitRow wraps cells at the largest size, stepping down from size to
// minBodySize, whose row is at most maxH tall. Only when even minBodySize
// is too tall are the trailing lines of the longest cells dropped, the
// last kept line ending in an ellipsis.
func (p *painter) fitRow(cells []string, widths []float64, styles []string, size, maxH float64) (float64, [][]string, float64) {
	for {
		lines, h := p.wrapRow(cells, widths, styles, size)
		if h <= maxH {
			return size, lines, h
		}
		if size <= minBodySize {
			keep := int((maxH - 2*cellPad) / lineHeight(size))
			if keep < 1 {
				keep = 1
			}
			for i, ls := range lines {
				if len(ls) > keep {
					lines[i] = append(ls[:keep-1:keep-1], ls[keep-1]+"...")
				}
			}
			return size, lines, float64(keep)*lineHeight(size) + 2*cellPad
		}
		size = math.Max(size-0.5, minBodySize)
	}
}

func (p *painter) drawRow(lines [][]string, widths []float64, aligns, styles []string, size float64, c, fill rgb, h float64) {
	lh := lineHeight(size)
	x0, y := p.pdf.GetXY()
	x := x0
	p.pdf.SetFillColor(fill.r, fill.g, fill.b)
	p.pdf.SetDrawColor(grid.r, grid.g, grid.b)
	p.pdf.SetLineWidth(0.75 / 72)
	for i := range lines {
		p.pdf.Rect(x, y, widths[i], h, "FD")
		p.font(styles[i], size, c)
		ty := y + (h-float64(len(lines[i]))*lh)/2
		for j, ln := range lines[i] {
			p.pdf.SetXY(x+cellPad, ty+float64(j)*lh)
			p.pdf.CellFormat(widths[i]-2*cellPad, lh, ln, "", 0, aligns[i], false, 0, "")
		}
		x += widths[i]
	}
	p.pdf.SetXY(x0, y+h)
}

func (p *painter) box(x, y, w, h float64) {
	p.pdf.SetDrawColor(gold.r, gold.g, gold.b)
	p.pdf.SetLineWidth(1.5 / 72)
	p.pdf.Rect(x, y, w, h, "D")
}

func (p *painter) pageBottom() float64 {
	_, ph := p.pdf.GetPageSize()
	return ph - margin
}

// wrap splits s into lines no wider than width using the current font.
// Empty text yields a single blank line so the cell keeps its height.
func wrap(pdf *fpdf.Fpdf, s string, width float64) []string {
	split := pdf.SplitLines([]byte(s), width)
	if len(split) == 0 {
		return []string{""}
	}
	out := make([]string, len(split))
	for i, b := range split {
		out[i] = string(b)
	}
	return out
}

package printing

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// LayoutSpec holds the geometry of a printed document. All heights are in
// millimeters. The template stylesheet uses the same values so that what
// Paginate decides is what the browser prints.
type LayoutSpec struct {
	Paper       PaperSize
	Orientation Orientation
	Margins     Margins

	// FirstHeader is the issuer, partner and document meta block of page one
	FirstHeader float64
	// NextHeader is the reduced header repeated on continuation pages
	NextHeader float64
	// TableHeader is the column title row of the line table
	TableHeader float64
	// Footer holds the page number and legal mentions
	Footer float64
	// CarryRow is the height of a "Report" or "A reporter" row
	CarryRow float64
	// TotalsBlock holds the TVA breakdown, totals, amount in words and signature
	TotalsBlock float64
	// RowBase is the height of a single-line table row
	RowBase float64
	// RowLineExtra is added for every wrapped designation line after the first
	RowLineExtra float64
	// DesignationChars is the designation column width in characters
	DesignationChars int
}

// DefaultLayout returns the layout used for the given paper and orientation
func DefaultLayout(paper PaperSize, orientation Orientation) LayoutSpec {
	if !orientation.IsValid() {
		orientation = OrientationPortrait
	}
	spec := LayoutSpec{
		Paper:            PaperSizeA4,
		Orientation:      orientation,
		Margins:          DefaultMargins(),
		FirstHeader:      88,
		NextHeader:       22,
		TableHeader:      8,
		Footer:           12,
		CarryRow:         7,
		TotalsBlock:      72,
		RowBase:          7,
		RowLineExtra:     4.5,
		DesignationChars: 46,
	}
	if paper == PaperSizeA5 {
		spec.Paper = PaperSizeA5
		spec.FirstHeader = 70
		spec.NextHeader = 18
		spec.TableHeader = 7
		spec.Footer = 10
		spec.CarryRow = 6
		spec.TotalsBlock = 60
		spec.RowBase = 6
		spec.RowLineExtra = 4
		spec.DesignationChars = 28
	}
	if orientation == OrientationLandscape {
		// issuer and partner blocks sit side by side, as do the TVA
		// breakdown and the totals
		spec.DesignationChars = spec.DesignationChars * 17 / 10
		spec.FirstHeader -= 10
		spec.TotalsBlock -= 16
		if spec.Paper == PaperSizeA5 {
			spec.FirstHeader -= 12
		}
	}
	return spec
}

// usableHeight is the page height inside the margins
func (s LayoutSpec) usableHeight() float64 {
	_, h := PageDimensions(s.Paper, s.Orientation)
	return h - s.Margins.Top - s.Margins.Bottom
}

// BodyHeight returns the height available for table rows on a page,
// excluding the carried-out row reserve.
func (s LayoutSpec) BodyHeight(first bool) float64 {
	h := s.usableHeight() - s.TableHeader - s.Footer
	if first {
		return h - s.FirstHeader
	}
	return h - s.NextHeader - s.CarryRow
}

// Validate checks that the geometry leaves room for at least one row and
// that the totals block fits on the first page, so a short document prints
// on a single page.
func (s LayoutSpec) Validate() error {
	if s.RowBase <= 0 || s.RowLineExtra < 0 || s.CarryRow < 0 || s.DesignationChars <= 0 {
		return shared.NewDomainError("INVALID_LAYOUT", "Row geometry must be positive")
	}
	if s.BodyHeight(true) < s.RowBase+s.CarryRow || s.BodyHeight(false) < s.RowBase+s.CarryRow {
		return shared.NewDomainError("INVALID_LAYOUT", "Page body is too small for a single row")
	}
	if s.TotalsBlock > s.BodyHeight(false) {
		return shared.NewDomainError("INVALID_LAYOUT", "Totals block does not fit on a page")
	}
	if s.TotalsBlock > s.BodyHeight(true) {
		return shared.NewDomainError("INVALID_LAYOUT", "Totals block does not fit on the first page")
	}
	return nil
}

// RowHeight returns the printed height of a row with the given number of
// designation lines.
func (s LayoutSpec) RowHeight(lines int) float64 {
	if lines < 1 {
		lines = 1
	}
	return s.RowBase + float64(lines-1)*s.RowLineExtra
}

// Row is one line of the table before pagination. Amount is what the
// carried sums add up: the net HT for priced documents, the quantity for
// delivery notes.
type Row[T any] struct {
	Designation string
	Amount      decimal.Decimal
	Item        T
}

// PlacedRow is a row positioned on a page
type PlacedRow[T any] struct {
	// Index is the 1-based position of the row in the document
	Index  int
	Lines  []string
	Height float64
	Amount decimal.Decimal
	Item   T
}

// Page is one printed page of the table
type Page[T any] struct {
	Number     int
	Of         int
	Rows       []PlacedRow[T]
	CarriedIn  decimal.Decimal
	PageTotal  decimal.Decimal
	CarriedOut decimal.Decimal
	IsFirst    bool
	IsLast     bool
	ShowTotals bool
}

// HasCarryIn reports whether the page prints a "Report" row
func (p Page[T]) HasCarryIn() bool {
	return !p.IsFirst
}

// HasCarryOut reports whether the page prints an "A reporter" row
func (p Page[T]) HasCarryOut() bool {
	return !p.IsLast
}

// Paginate distributes rows over pages. Rows keep their order and each
// appears exactly once. Every page but the last reserves room for a
// carried-out row, continuation pages carry the previous total in, and
// the last page holds the totals block. When the totals do not fit below
// the last rows they move to an extra page without rows. A row taller than
// an empty page is printed alone on its page. At least one page is always
// returned.
func Paginate[T any](rows []Row[T], spec LayoutSpec) []Page[T] {
	placed := make([]PlacedRow[T], len(rows))
	for i, r := range rows {
		lines := WrapText(r.Designation, spec.DesignationChars)
		placed[i] = PlacedRow[T]{
			Index:  i + 1,
			Lines:  lines,
			Height: spec.RowHeight(len(lines)),
			Amount: r.Amount,
			Item:   r.Item,
		}
	}

	pages := make([]Page[T], 0, 1)
	carried := decimal.Zero
	next := 0

	for {
		first := len(pages) == 0
		avail := spec.BodyHeight(first)
		page := Page[T]{
			Number:    len(pages) + 1,
			CarriedIn: carried,
			PageTotal: decimal.Zero,
			IsFirst:   first,
		}

		used := 0.0
		for next < len(placed) {
			row := placed[next]
			if used+row.Height+spec.CarryRow > avail && len(page.Rows) > 0 {
				break
			}
			page.Rows = append(page.Rows, row)
			page.PageTotal = page.PageTotal.Add(row.Amount)
			used += row.Height
			next++
		}

		page.CarriedOut = page.CarriedIn.Add(page.PageTotal)
		carried = page.CarriedOut

		if next == len(placed) && used+spec.TotalsBlock <= avail {
			page.IsLast = true
			page.ShowTotals = true
			pages = append(pages, page)
			break
		}
		pages = append(pages, page)

		if next == len(placed) {
			// rows are done but the totals block needs its own page
			pages = append(pages, Page[T]{
				Number:     len(pages) + 1,
				CarriedIn:  carried,
				PageTotal:  decimal.Zero,
				CarriedOut: carried,
				IsLast:     true,
				ShowTotals: true,
			})
			break
		}
	}

	for i := range pages {
		pages[i].Of = len(pages)
	}
	return pages
}

// WrapText splits s into lines of at most width characters, breaking at
// whitespace. Explicit newlines are kept and words longer than width are
// cut. An empty string yields a single empty line.
func WrapText(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var lines []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		lines = append(lines, wrapParagraph(paragraph, width)...)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func wrapParagraph(p string, width int) []string {
	words := strings.FieldsFunc(p, unicode.IsSpace)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		lines = append(lines, current.String())
		current.Reset()
		currentLen = 0
	}

	for _, w := range words {
		for utf8.RuneCountInString(w) > width {
			if currentLen > 0 {
				flush()
			}
			head, tail := splitRunes(w, width)
			lines = append(lines, head)
			w = tail
		}
		wl := utf8.RuneCountInString(w)
		if wl == 0 {
			continue
		}
		if currentLen > 0 && currentLen+1+wl > width {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(w)
		currentLen += wl
	}
	if currentLen > 0 {
		flush()
	}
	return lines
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

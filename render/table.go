package render

import "image/color"

// ColumnDef defines the properties of a table column.
type ColumnDef struct {
	Share    float64 // fraction of the table width; 0 means fill
	MinWidth float64 // minimum width for fill columns, in CSS pixels
	Align    Align
}

// Padding defines spacing inside a cell.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// UniformPadding creates a Padding with the same value on all sides.
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// CellStyle defines the visual appearance of a cell. Nil fields inherit.
type CellStyle struct {
	Fill   *color.RGBA
	Color  *color.RGBA
	Weight *Weight
	Size   float64
}

// TableStyle defines the overall appearance of a table.
type TableStyle struct {
	Header      CellStyle
	Body        CellStyle
	StripeFill  *color.RGBA // fill of every second body row
	RuleColor   color.RGBA  // line between rows
	CellPadding Padding
	Radius      float64 // outer corner radius
}

// TableRow is one body row.
type TableRow struct {
	cells []string
	style *CellStyle
	last  bool
}

// SetStyle overrides the body style for this row.
func (r *TableRow) SetStyle(s CellStyle) *TableRow {
	r.style = &s
	return r
}

// SetLast marks the row drawn with the rounded bottom edge.
func (r *TableRow) SetLast(last bool) *TableRow {
	r.last = last
	return r
}

// Table lays out a header row and body rows on a Surface.
type Table struct {
	columns []ColumnDef
	header  []string
	rows    []*TableRow
	style   TableStyle
}

// NewTable creates a table with default padding.
func NewTable() *Table {
	return &Table{style: TableStyle{CellPadding: UniformPadding(12), Body: CellStyle{Size: 13}}}
}

// SetColumns sets column definitions for the table.
func (t *Table) SetColumns(cols ...ColumnDef) *Table {
	t.columns = cols
	return t
}

// SetHeader sets the header cells.
func (t *Table) SetHeader(cells ...string) *Table {
	t.header = cells
	return t
}

// SetStyle sets the table-wide style.
func (t *Table) SetStyle(s TableStyle) *Table {
	t.style = s
	return t
}

// AddRow adds a body row and returns it for chaining.
func (t *Table) AddRow(cells ...string) *TableRow {
	r := &TableRow{cells: cells}
	t.rows = append(t.rows, r)
	return r
}

// Render draws the table at (x, y) with total width w and returns its height.
func (t *Table) Render(s *Surface, x, y, w float64) float64 {
	widths := t.calculateWidths(w)
	if len(widths) == 0 {
		return 0
	}

	top := y
	if len(t.header) > 0 {
		y += t.renderRow(s, t.header, widths, x, y, t.resolveStyle(nil, -1, true), Corners{TL: t.style.Radius, TR: t.style.Radius})
	}
	for i, r := range t.rows {
		var c Corners
		if r.last {
			c = Corners{BR: t.style.Radius, BL: t.style.Radius}
		}
		if i > 0 {
			s.HLine(x, y, w, t.style.RuleColor)
		}
		y += t.renderRow(s, r.cells, widths, x, y, t.resolveStyle(r, i, false), c)
	}
	return y - top
}

// calculateWidths computes final column widths from shares and the
// remaining space.
func (t *Table) calculateWidths(total float64) []float64 {
	numCols := len(t.columns)
	if numCols == 0 {
		numCols = len(t.header)
		if numCols == 0 && len(t.rows) > 0 {
			numCols = len(t.rows[0].cells)
		}
		if numCols == 0 {
			return nil
		}
		t.columns = make([]ColumnDef, numCols)
	}

	widths := make([]float64, numCols)
	fixed := 0.0
	fill := 0
	for i, col := range t.columns {
		if col.Share > 0 {
			widths[i] = total * col.Share
			fixed += widths[i]
		} else {
			fill++
		}
	}
	if fill > 0 {
		remaining := total - fixed
		if remaining < 0 {
			remaining = 0
		}
		each := remaining / float64(fill)
		for i, col := range t.columns {
			if col.Share == 0 {
				widths[i] = max(each, col.MinWidth)
			}
		}
	}
	return widths
}

func (t *Table) rowHeight(s *Surface, cells []string, widths []float64, st TextStyle) float64 {
	p := t.style.CellPadding
	h := 0.0
	for i, text := range cells {
		if i >= len(widths) {
			break
		}
		h = max(h, s.MeasureText(max(widths[i]-p.Left-p.Right, 1), text, st))
	}
	return h + p.Top + p.Bottom
}

func (t *Table) renderRow(s *Surface, cells []string, widths []float64, x, y float64, cs CellStyle, c Corners) float64 {
	st := TextStyle{Size: cs.Size, Color: colorInk}
	if st.Size <= 0 {
		st.Size = 13
	}
	if cs.Color != nil {
		st.Color = *cs.Color
	}
	if cs.Weight != nil {
		st.Weight = *cs.Weight
	}
	h := t.rowHeight(s, cells, widths, st)

	if cs.Fill != nil {
		total := 0.0
		for _, w := range widths {
			total += w
		}
		s.FillRoundRect(x, y, total, h, c, *cs.Fill)
	}

	p := t.style.CellPadding
	cx := x
	for i, text := range cells {
		if i >= len(widths) {
			break
		}
		st.Align = AlignLeft
		if i < len(t.columns) {
			st.Align = t.columns[i].Align
		}
		s.Text(cx+p.Left, y+p.Top, max(widths[i]-p.Left-p.Right, 1), text, st)
		cx += widths[i]
	}
	return h
}

// resolveStyle merges table, stripe and row styles for one row.
func (t *Table) resolveStyle(row *TableRow, bodyIdx int, isHeader bool) CellStyle {
	var result CellStyle
	if isHeader {
		mergeStyle(&result, &t.style.Header)
		return result
	}
	mergeStyle(&result, &t.style.Body)
	if t.style.StripeFill != nil && bodyIdx%2 == 1 {
		result.Fill = t.style.StripeFill
	}
	if row != nil && row.style != nil {
		mergeStyle(&result, row.style)
	}
	return result
}

// mergeStyle copies set fields from src to dst.
func mergeStyle(dst, src *CellStyle) {
	if src.Fill != nil {
		dst.Fill = src.Fill
	}
	if src.Color != nil {
		dst.Color = src.Color
	}
	if src.Weight != nil {
		dst.Weight = src.Weight
	}
	if src.Size > 0 {
		dst.Size = src.Size
	}
}

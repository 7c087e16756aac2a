package timeline

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

const svgStyle = `
.grid-header{fill:#ffffff;stroke:#e0e0e0}
.grid-row{fill:#ffffff}
.grid-row:nth-child(even){fill:#f5f5f5}
.tick{stroke:#e0e0e0}
.lower-text{font:12px sans-serif;fill:#555;text-anchor:middle}
.bar-label{font:12px sans-serif;fill:#333;dominant-baseline:middle}
.bar{fill:#b8c2cc}
.bar-progress{fill:#a3a3ff}
.status-progress .bar{fill:#90caf9}
.status-done .bar{fill:#a5d6a7}
.status-closed .bar{fill:#bdbdbd}
.milestone .bar-milestone{fill:#ff8a65}
.has-children .bar{stroke:#424242;stroke-width:1}
`

// WriteSVG renders the layout as a standalone SVG document.
func WriteSVG(w io.Writer, l *Layout) error {
	var b bytes.Buffer
	width := l.Width
	if width <= 0 {
		width = l.Config.columnWidth()
	}

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" class="gantt">`,
		num(width), num(l.Height), num(width), num(l.Height))
	b.WriteString("\n<style>")
	b.WriteString(svgStyle)
	b.WriteString("</style>\n")

	m := l.Marker
	fmt.Fprintf(&b, `<defs><marker id="%s" markerWidth="%s" markerHeight="%s" refX="%s" refY="%s" orient="auto"><path d="%s" fill="%s"/></marker></defs>`+"\n",
		m.ID, num(m.Width), num(m.Height), num(m.RefX), num(m.RefY), m.Path, m.Fill)

	writeGrid(&b, l, width)

	for _, bar := range l.Bars {
		writeBar(&b, bar)
	}
	for _, c := range l.Curves {
		fmt.Fprintf(&b, `<path class="dependency" data-from="%s" data-to="%s" d="%s" stroke="%s" stroke-width="%d" fill="none" marker-end="url(#%s)"/>`+"\n",
			escape(c.FromID), escape(c.ToID), c.Path, CurveStroke, CurveStrokeWidth, m.ID)
	}
	b.WriteString("</svg>\n")

	_, err := w.Write(b.Bytes())
	return err
}

func writeGrid(b *bytes.Buffer, l *Layout, width float64) {
	cfg := l.Config
	fmt.Fprintf(b, `<rect class="grid-header" x="0" y="0" width="%s" height="%s"/>`+"\n", num(width), num(cfg.HeaderHeight))
	rowHeight := cfg.BarHeight + cfg.Padding
	for i := range l.Bars {
		y := cfg.HeaderHeight + float64(i)*rowHeight
		fmt.Fprintf(b, `<rect class="grid-row" x="0" y="%s" width="%s" height="%s"/>`+"\n", num(y), num(width), num(rowHeight))
	}
	if len(l.Bars) == 0 {
		return
	}
	for _, col := range l.Scale.Columns(l.End) {
		x := l.Scale.X(col)
		fmt.Fprintf(b, `<line class="tick" x1="%s" y1="0" x2="%s" y2="%s"/>`+"\n", num(x), num(x), num(l.Height))
		fmt.Fprintf(b, `<text class="lower-text" x="%s" y="%s">%s</text>`+"\n",
			num(x+l.Scale.ColumnWidth/2), num(cfg.HeaderHeight-10), escape(columnLabel(l.ViewMode, col)))
	}
}

func writeBar(b *bytes.Buffer, bar Bar) {
	r := bar.Rect
	fmt.Fprintf(b, `<g class="bar-wrapper %s %s %s" data-id="%s">`,
		bar.CustomClass, bar.StatusClass, bar.TypeClass, escape(bar.ObjectID))
	if bar.IsMilestone() {
		cx, cy, h := r.X, r.Y+r.Height/2, r.Height/2
		fmt.Fprintf(b, `<rect class="bar" x="%s" y="%s" width="0" height="%s"/>`, num(r.X), num(r.Y), num(r.Height))
		fmt.Fprintf(b, `<polygon class="bar-milestone" points="%s,%s %s,%s %s,%s %s,%s"/>`,
			num(cx), num(cy-h), num(cx+h), num(cy), num(cx), num(cy+h), num(cx-h), num(cy))
	} else {
		fmt.Fprintf(b, `<rect class="bar" x="%s" y="%s" width="%s" height="%s" rx="3" ry="3"/>`,
			num(r.X), num(r.Y), num(r.Width), num(r.Height))
		if bar.Progress > 0 {
			fmt.Fprintf(b, `<rect class="bar-progress" x="%s" y="%s" width="%s" height="%s" rx="3" ry="3"/>`,
				num(r.X), num(r.Y), num(r.Width*float64(bar.Progress)/100), num(r.Height))
		}
	}
	fmt.Fprintf(b, `<text class="bar-label" x="%s" y="%s">%s %s</text>`,
		num(r.X+r.Width+8), num(r.Y+r.Height/2), escape(bar.Label), escape(bar.Name))
	b.WriteString("</g>\n")
}

func columnLabel(mode ViewMode, t time.Time) string {
	switch mode {
	case ViewYear:
		return t.Format("2006")
	case ViewMonth:
		return t.Format("Jan 2006")
	default:
		return t.Format("02 Jan")
	}
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

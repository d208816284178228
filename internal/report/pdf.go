package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"diagnote/internal/canvas"
	"diagnote/internal/domain"
	"diagnote/internal/richtext"
)

// A4 portrait, millimetres.
const (
	pageWidth  = 210.0
	margin     = 15.0
	drawWidth  = pageWidth - 2*margin
	maxDrawMM  = 150.0
	lineHeight = 5.0
)

// WriteNotePDF writes a report of note to path: the canvas annotations
// followed by the diagnosis history.
func WriteNotePDF(path string, note *domain.Note, entries []domain.DiagnosisHistory, scene *canvas.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Write(f, note, entries, scene); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write renders the report to w.
func Write(w io.Writer, note *domain.Note, entries []domain.DiagnosisHistory, scene *canvas.Scene) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.SetMargins(margin, margin, margin)
	p.SetAutoPageBreak(true, margin)
	tr := p.UnicodeTranslatorFromDescriptor("")

	p.AddPage()
	p.SetFont("Helvetica", "B", 16)
	p.CellFormat(0, 10, tr(note.Title), "", 1, "L", false, 0, "")
	if note.Patient != "" {
		p.SetFont("Helvetica", "", 11)
		p.CellFormat(0, 6, tr("Patient: "+note.Patient), "", 1, "L", false, 0, "")
	}
	p.Ln(4)

	if scene != nil && len(scene.Objects) > 0 {
		drawScene(p, scene)
	}

	p.SetFont("Helvetica", "B", 13)
	p.CellFormat(0, 8, "History", "B", 1, "L", false, 0, "")
	p.Ln(2)
	if len(entries) == 0 {
		p.SetFont("Helvetica", "I", 10)
		p.CellFormat(0, lineHeight, "No entries.", "", 1, "L", false, 0, "")
	}
	for _, e := range entries {
		p.SetFont("Helvetica", "B", 11)
		head := e.Label
		if e.Author != "" {
			head += "  (" + e.Author + ")"
		}
		p.CellFormat(0, 6, tr(head), "", 1, "L", false, 0, "")
		p.SetFont("Helvetica", "", 10)
		text := strings.TrimSpace(richtext.PlainText(e.Editor))
		if text == "" {
			text = "-"
		}
		p.MultiCell(0, lineHeight, tr(text), "", "L", false)
		p.Ln(3)
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// frame maps canvas units onto the page.
type frame struct {
	x0, y0, scale float64
}

func (f frame) pt(x, y float64) (float64, float64) {
	return f.x0 + x*f.scale, f.y0 + y*f.scale
}

func drawScene(p *gofpdf.Fpdf, scene *canvas.Scene) {
	w, h := scene.Width, scene.Height
	if w <= 0 || h <= 0 {
		w, h = 1200, 800
	}
	scale := drawWidth / w
	if h*scale > maxDrawMM {
		scale = maxDrawMM / h
	}
	f := frame{x0: margin, y0: p.GetY(), scale: scale}

	p.SetDrawColor(160, 160, 160)
	p.SetLineWidth(0.2)
	p.Rect(f.x0, f.y0, w*scale, h*scale, "D")

	for _, o := range scene.Objects {
		drawObject(p, f, o, 0, 0)
	}
	p.SetY(f.y0 + h*scale + 6)
}

// drawObject draws o. dx and dy offset members framed by their group.
func drawObject(p *gofpdf.Fpdf, f frame, o canvas.ObjectJSON, dx, dy float64) {
	if !o.Visible {
		return
	}
	left, top := o.Left+dx, o.Top+dy
	width, height := o.Width*o.ScaleX, o.Height*o.ScaleY

	switch o.Type {
	case canvas.TypeGroup:
		cx, cy := left+width/2, top+height/2
		for _, m := range o.Objects {
			if m.Framed {
				drawObject(p, f, m, cx, cy)
			} else {
				drawObject(p, f, m, 0, 0)
			}
		}
	case canvas.TypePath:
		if len(o.Points) < 2 {
			return
		}
		r, g, b := strokeColor(o.Stroke)
		p.SetDrawColor(r, g, b)
		p.SetLineWidth(maxf(o.StrokeWidth*o.ScaleX*f.scale, 0.1))
		p.SetLineCapStyle("round")
		pts := make([]gofpdf.PointType, 0, len(o.Points))
		for _, pt := range o.Points {
			x, y := f.pt(left+pt.X*o.ScaleX, top+pt.Y*o.ScaleY)
			pts = append(pts, gofpdf.PointType{X: x, Y: y})
		}
		for i := 1; i < len(pts); i++ {
			p.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
		}
	case canvas.TypeCircle:
		p.SetDrawColor(0, 0, 0)
		p.SetLineWidth(0.3)
		x, y := f.pt(left+width/2, top+height/2)
		p.Circle(x, y, o.Radius*o.ScaleX*f.scale, "D")
	default:
		p.SetDrawColor(60, 90, 160)
		p.SetLineWidth(0.3)
		x, y := f.pt(left, top)
		p.Rect(x, y, width*f.scale, height*f.scale, "D")
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

var namedColors = map[string][3]int{
	"black": {0, 0, 0},
	"red":   {220, 0, 0},
	"green": {0, 150, 0},
	"blue":  {0, 0, 220},
	"white": {255, 255, 255},
}

// strokeColor understands color names and #rgb / #rrggbb. Anything else
// is drawn black.
func strokeColor(s string) (int, int, int) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c[0], c[1], c[2]
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		var r, g, b int
		if len(hex) == 6 {
			if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err == nil {
				return r, g, b
			}
		}
	}
	return 0, 0, 0
}

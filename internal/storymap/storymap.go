// Package storymap renders a printable PDF of the route a player took
// through the story, with a transcript of the dialogue history.
package storymap

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"dumplingtale/internal/dialogue"
	"dumplingtale/internal/story"

	"github.com/jung-kurt/gofpdf/v2"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	sceneSize = 56.0
	pathStep  = 70.0
	perRow    = 6
	fontSize  = 8
	titleSize = 16
	labelSize = 7
	lineH     = 11.0
)

type stop struct {
	id       int
	chapter  string
	label    string
	scene    string
	minigame bool
}

// Route collapses history into the ordered list of distinct consecutive
// node ids. When history is empty the current node is the only stop.
func Route(history []dialogue.Entry, currentID int) []int {
	out := make([]int, 0, len(history)+1)
	for _, e := range history {
		if len(out) > 0 && out[len(out)-1] == e.NodeID {
			continue
		}
		out = append(out, e.NodeID)
	}
	if currentID > 0 && (len(out) == 0 || out[len(out)-1] != currentID) {
		out = append(out, currentID)
	}
	return out
}

// Generate returns the PDF bytes: a route page with one scene per visited
// node and a transcript page. A nil content yields nil.
func Generate(c *story.Content, history []dialogue.Entry, currentID int, title string) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	if title == "" {
		title = c.Title
	}
	stops := buildStops(c, Route(history, currentID))

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	parchment(pdf)
	drawHeader(pdf, tr, "Journey Home", title)
	drawCompassRose(pdf, pageW-margin-55, margin+50)
	drawRoute(pdf, tr, stops, currentID)

	pdf.AddPage()
	parchment(pdf)
	drawHeader(pdf, tr, "Transcript", title)
	drawTranscript(pdf, tr, history)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("storymap: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("storymap: %w", err)
	}
	return buf.Bytes(), nil
}

func buildStops(c *story.Content, route []int) []stop {
	stops := make([]stop, 0, len(route))
	for _, id := range route {
		s := stop{id: id, label: fmt.Sprintf("Node %d", id), scene: "default"}
		if n, ch, err := c.Node(id); err == nil {
			s.chapter = ch.Name
			if n.Speaker != "" {
				s.label = n.Speaker
			}
			if n.Background != "" {
				s.scene = n.Background
			}
			s.minigame = n.Minigame != nil
		}
		stops = append(stops, s)
	}
	return stops
}

// parchment fills the page and draws the wavy edge.
func parchment(pdf *gofpdf.Fpdf) {
	pdf.SetFillColor(245, 235, 210)
	pdf.Rect(0, 0, pageW, pageH, "F")
	pts := wavyRectPoints(margin, margin, pageW-2*margin, pageH-2*margin, 12, 4)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Polygon(pts, "D")
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetTextColor(80, 50, 30)
}

func drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, heading, title string) {
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(pageW-margin-160, margin+2)
	pdf.CellFormat(150, 14, tr(heading), "", 0, "R", false, 0, "")
	if title != "" {
		pdf.SetFont("Helvetica", "", fontSize)
		pdf.SetXY(pageW-margin-160, margin+18)
		pdf.CellFormat(150, 10, tr(title), "", 0, "R", false, 0, "")
	}
}

func layout(n int) [][2]float64 {
	pos := make([][2]float64, n)
	x0 := float64(margin) + sceneSize
	y0 := float64(margin) + 110
	for i := range pos {
		row := i / perRow
		col := i % perRow
		if row%2 == 1 {
			col = perRow - 1 - col
		}
		pos[i][0] = x0 + float64(col)*pathStep
		pos[i][1] = y0 + float64(row)*pathStep
	}
	return pos
}

func drawRoute(pdf *gofpdf.Fpdf, tr func(string) string, stops []stop, currentID int) {
	maxStops := perRow * ((pageH - 2*margin - 150) / int(pathStep))
	if len(stops) > maxStops {
		stops = stops[len(stops)-maxStops:]
	}
	pos := layout(len(stops))

	pdf.SetDrawColor(180, 40, 40)
	pdf.SetLineWidth(2)
	pdf.SetDashPattern([]float64{10, 6}, 0)
	for i := 0; i+1 < len(pos); i++ {
		pdf.Line(pos[i][0], pos[i][1], pos[i+1][0], pos[i+1][1])
	}
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)

	chapter := ""
	for i, s := range stops {
		x, y := pos[i][0], pos[i][1]
		if s.chapter != "" && s.chapter != chapter {
			chapter = s.chapter
			pdf.SetFont("Helvetica", "I", labelSize)
			pdf.SetTextColor(120, 30, 30)
			pdf.SetXY(x-sceneSize/2, y-sceneSize/2-12)
			pdf.CellFormat(sceneSize, 8, tr(truncate(chapter, 16)), "", 0, "C", false, 0, "")
		}
		current := s.id == currentID
		drawScene(pdf, x, y, s.scene, s.minigame, current)

		pdf.SetFont("Helvetica", "B", labelSize)
		pdf.SetTextColor(40, 25, 15)
		pdf.SetXY(x-sceneSize/2-4, y+sceneSize/2+4)
		pdf.CellFormat(sceneSize+8, 10, tr(strings.ToUpper(truncate(s.label, 14))), "", 0, "C", false, 0, "")
		if current {
			pdf.SetFont("Helvetica", "I", 7)
			pdf.SetXY(x-sceneSize/2, y+sceneSize/2+14)
			pdf.CellFormat(sceneSize, 8, "You are here", "", 0, "C", false, 0, "")
		}
		pdf.SetTextColor(80, 50, 30)
	}
}

// drawTranscript writes the history, newest last, until the page is full.
// Older lines are dropped first when it does not fit.
func drawTranscript(pdf *gofpdf.Fpdf, tr func(string) string, history []dialogue.Entry) {
	width := float64(pageW - 2*margin - 20)
	top := float64(margin) + 50
	bottom := float64(pageH - margin - 10)

	lines := make([]string, 0, len(history))
	for _, e := range history {
		who := e.Speaker
		if who == "" {
			who = "Narrator"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", who, e.Text))
	}
	pdf.SetFont("Helvetica", "", fontSize+1)
	pdf.SetTextColor(40, 25, 15)

	var wrapped [][]byte
	for _, l := range lines {
		wrapped = append(wrapped, pdf.SplitLines([]byte(tr(l)), width)...)
		wrapped = append(wrapped, nil)
	}
	fit := int((bottom - top) / lineH)
	if len(wrapped) > fit {
		wrapped = wrapped[len(wrapped)-fit:]
	}
	y := top
	for _, w := range wrapped {
		if len(w) > 0 {
			pdf.SetXY(margin+10, y)
			pdf.CellFormat(width, lineH, string(w), "", 0, "L", false, 0, "")
		}
		y += lineH
	}
	if len(lines) == 0 {
		pdf.SetXY(margin+10, top)
		pdf.CellFormat(width, lineH, "Nothing said yet.", "", 0, "L", false, 0, "")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// wavyRectPoints returns polygon points for a rectangle with a sinusoidal
// wobble on each side.
func wavyRectPoints(x, y, w, h float64, steps int, amp float64) []gofpdf.PointType {
	pts := make([]gofpdf.PointType, 0, steps*4+4)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + t*w + amp*math.Sin(float64(i)*0.7), Y: y + amp*math.Cos(float64(i)*0.5)})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + w + amp*math.Sin(float64(i)*0.6), Y: y + t*h + amp*math.Cos(float64(i)*0.4)})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + w - t*w + amp*math.Sin(float64(i)*0.8), Y: y + h + amp*math.Cos(float64(i)*0.3)})
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, gofpdf.PointType{X: x + amp*math.Sin(float64(i)*0.5), Y: y + h - t*h + amp*math.Cos(float64(i)*0.6)})
	}
	return pts
}

func drawCompassRose(pdf *gofpdf.Fpdf, cx, cy float64) {
	const rad = 22.0
	pdf.SetDrawColor(101, 67, 33)
	pdf.SetLineWidth(1)
	pdf.Circle(cx, cy, rad, "D")
	for i := 0; i < 8; i++ {
		angle := float64(i)*45.0*math.Pi/180 - math.Pi/2
		if i%2 == 0 {
			pdf.SetDrawColor(180, 40, 40)
			pdf.SetLineWidth(1.5)
		} else {
			pdf.SetDrawColor(180, 140, 60)
			pdf.SetLineWidth(1)
		}
		pdf.Line(cx, cy, cx+rad*math.Cos(angle), cy+rad*math.Sin(angle))
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(cx-4, cy-rad-13)
	pdf.CellFormat(8, 6, "N", "", 0, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", fontSize)
}

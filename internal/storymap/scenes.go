package storymap

import "github.com/jung-kurt/gofpdf/v2"

// drawScene draws a small pictorial for a background key. Minigame stops
// get a dumpling over the scene.
func drawScene(pdf *gofpdf.Fpdf, x, y float64, scene string, minigame, current bool) {
	r := sceneSize / 2.0
	if current {
		pdf.SetDrawColor(80, 50, 20)
		pdf.SetLineWidth(2)
		pdf.Circle(x, y, r+4.0, "D")
		pdf.SetLineWidth(1)
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(1.2)
	switch scene {
	case "station", "train", "street", "town":
		drawTown(pdf, x, y, r)
	case "road", "bus":
		drawRoad(pdf, x, y, r)
	case "snow", "winter", "hills":
		drawSnow(pdf, x, y, r)
	case "kitchen", "home", "living_room":
		drawHouse(pdf, x, y, r)
	case "table", "dinner":
		drawTable(pdf, x, y, r)
	default:
		pdf.Circle(x, y, r*0.35, "D")
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
	if minigame {
		drawDumpling(pdf, x, y, r)
	}
}

func drawTown(pdf *gofpdf.Fpdf, x, y, r float64) {
	for i, dx := range []float64{-r * 0.5, -r * 0.1, r * 0.3} {
		w, h := 10.0, 14.0+float64(i)*4
		pdf.Rect(x+dx-w/2, y+r*0.3-h, w, h, "D")
	}
}

func drawRoad(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.SetLineWidth(2)
	pdf.Line(x-r*0.8, y, x+r*0.8, y)
	pdf.SetLineWidth(1)
	pdf.SetDashPattern([]float64{3, 3}, 0)
	pdf.Line(x-r*0.7, y+4, x+r*0.7, y+4)
	pdf.SetDashPattern([]float64{}, 0)
}

func drawSnow(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Arc(x-r*0.4, y+r*0.3, r*0.6, r*0.4, 0, 180, 360, "D")
	pdf.Arc(x+r*0.3, y+r*0.3, r*0.5, r*0.35, 0, 180, 360, "D")
	for _, d := range [][2]float64{{-0.5, -0.5}, {0.1, -0.7}, {0.5, -0.3}} {
		pdf.Circle(x+r*d[0], y+r*d[1], 1.5, "D")
	}
}

func drawHouse(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Rect(x-r*0.4, y-r*0.2, r*0.8, r*0.6, "D")
	pdf.Line(x-r*0.4, y-r*0.2, x, y-r*0.5)
	pdf.Line(x, y-r*0.5, x+r*0.4, y-r*0.2)
}

func drawTable(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Ellipse(x, y, r*0.7, r*0.3, 0, "D")
	pdf.Circle(x-r*0.3, y, 3, "D")
	pdf.Circle(x+r*0.3, y, 3, "D")
}

// drawDumpling is a half-moon with pleats.
func drawDumpling(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.SetDrawColor(180, 40, 40)
	pdf.SetLineWidth(1.5)
	cy := y + r*0.55
	pdf.Arc(x, cy, r*0.35, r*0.25, 0, 180, 360, "D")
	pdf.Line(x-r*0.35, cy, x+r*0.35, cy)
	for i := -1; i <= 1; i++ {
		dx := float64(i) * r * 0.15
		pdf.Line(x+dx, cy-r*0.2, x+dx+2, cy-r*0.1)
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

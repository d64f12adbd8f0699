package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderImage draws a cover into a cell grid using half-block glyphs.
// Each cell holds two vertically stacked pixels: the upper one as the
// foreground of "▀", the lower one as the background. cols and rows are
// terminal cells, so the vertical sampling resolution is rows*2.
func RenderImage(img image.Image, cols, rows int) string {
	if img == nil || cols < 1 || rows < 1 {
		return ""
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return ""
	}

	// Fit the image into the cell grid preserving aspect ratio.
	pxRows := rows * 2
	scaleX := float64(bounds.Dx()) / float64(cols)
	scaleY := float64(bounds.Dy()) / float64(pxRows)
	scale := scaleX
	if scaleY > scale {
		scale = scaleY
	}
	outCols := int(float64(bounds.Dx()) / scale)
	outRows := int(float64(bounds.Dy()) / scale / 2)
	if outCols < 1 {
		outCols = 1
	}
	if outRows < 1 {
		outRows = 1
	}

	var b strings.Builder
	for row := 0; row < outRows; row++ {
		for col := 0; col < outCols; col++ {
			upper := sample(img, col, row*2, scale)
			lower := sample(img, col, row*2+1, scale)
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(upper)).
				Background(lipgloss.Color(lower))
			b.WriteString(style.Render("▀"))
		}
		if row < outRows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// sample picks the source pixel for an output position and returns it
// as a hex color. Nearest neighbor is plenty for cover thumbnails.
func sample(img image.Image, col, pxRow int, scale float64) string {
	bounds := img.Bounds()
	x := bounds.Min.X + int(float64(col)*scale)
	y := bounds.Min.Y + int(float64(pxRow)*scale)
	if x >= bounds.Max.X {
		x = bounds.Max.X - 1
	}
	if y >= bounds.Max.Y {
		y = bounds.Max.Y - 1
	}
	r, g, bl, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, bl>>8)
}

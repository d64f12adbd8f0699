package tui

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func testImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRenderImage_RowCount(t *testing.T) {
	img := testImage(20, 40, color.White)
	out := RenderImage(img, 10, 10)
	rows := strings.Split(out, "\n")
	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
}

func TestRenderImage_PreservesAspect(t *testing.T) {
	// A wide image must not fill all requested rows.
	img := testImage(100, 10, color.Black)
	out := RenderImage(img, 20, 20)
	rows := strings.Split(out, "\n")
	if len(rows) >= 20 {
		t.Fatalf("expected fewer rows than requested, got %d", len(rows))
	}
}

func TestRenderImage_NilAndDegenerate(t *testing.T) {
	if out := RenderImage(nil, 10, 10); out != "" {
		t.Fatalf("expected empty output for nil image, got %q", out)
	}
	img := testImage(5, 5, color.White)
	if out := RenderImage(img, 0, 10); out != "" {
		t.Fatalf("expected empty output for zero cols, got %q", out)
	}
}

func TestRenderImage_UsesHalfBlocks(t *testing.T) {
	img := testImage(4, 4, color.RGBA{R: 255, A: 255})
	out := RenderImage(img, 2, 2)
	if !strings.Contains(out, "▀") {
		t.Fatal("expected half-block glyphs in output")
	}
}

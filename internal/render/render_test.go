package render

import (
	"reflect"
	"strings"
	"testing"
)

func TestLines_PlainText(t *testing.T) {
	lines := Lines("Summary: a short description", 80)
	if !reflect.DeepEqual(lines, []string{"Summary: a short description"}) {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestLines_Wraps(t *testing.T) {
	lines := Lines("one two three four five", 9)
	want := []string{"one two", "three", "four five"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %#v, got %#v", want, lines)
	}
}

func TestLines_FlattensMarkup(t *testing.T) {
	lines := Lines("<p>First paragraph.</p><p>Second <em>styled</em> paragraph.</p>", 80)
	want := []string{"First paragraph.", "Second styled paragraph."}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %#v, got %#v", want, lines)
	}
}

func TestLines_UnescapesEntities(t *testing.T) {
	lines := Lines("Tom &amp; Jerry", 80)
	if len(lines) != 1 || !strings.Contains(lines[0], "Tom & Jerry") {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestLines_LongWordSplits(t *testing.T) {
	lines := Lines(strings.Repeat("a", 25), 10)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %#v", lines)
	}
	for _, l := range lines {
		if len(l) > 10 {
			t.Fatalf("line exceeds width: %q", l)
		}
	}
}

func TestLines_Empty(t *testing.T) {
	if lines := Lines("   ", 80); lines != nil {
		t.Fatalf("expected nil, got %#v", lines)
	}
}

package suggest

import (
	"reflect"
	"testing"
)

func TestFindBreakpointsEmpty(t *testing.T) {
	got := FindBreakpoints(nil)
	if !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("got %v", got)
	}
}

func TestFindBreakpointsLongGap(t *testing.T) {
	segments := []Segment{
		{StartMS: 0, EndMS: 10_000, Text: "a"},
		{StartMS: 10_000, EndMS: 20_000, Text: "b"},
		{StartMS: 22_000, EndMS: 30_000, Text: "c"},
	}
	got := FindBreakpoints(segments)
	want := []int{0, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFindBreakpointsSemanticShift(t *testing.T) {
	segments := []Segment{
		{StartMS: 0, EndMS: 10_000, Embedding: []float32{1, 0}},
		{StartMS: 10_000, EndMS: 20_000, Embedding: []float32{1, 0.1}},
		{StartMS: 20_000, EndMS: 30_000, Embedding: []float32{0, 1}},
	}
	got := FindBreakpoints(segments)
	want := []int{0, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFindBreakpointsNoEmbeddingsNoSemanticSplit(t *testing.T) {
	segments := []Segment{
		{StartMS: 0, EndMS: 10_000},
		{StartMS: 10_000, EndMS: 20_000},
		{StartMS: 20_000, EndMS: 30_000},
	}
	got := FindBreakpoints(segments)
	want := []int{0, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestIsFullWindow(t *testing.T) {
	if !IsFullWindow([]int{0, 5}, 5) {
		t.Fatalf("expected full window")
	}
	if IsFullWindow([]int{0, 2, 5}, 5) {
		t.Fatalf("expected partitioned window")
	}
}

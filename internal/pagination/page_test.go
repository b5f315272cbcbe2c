package pagination

import (
	"strconv"
	"testing"
)

func TestNewPage_Metadata(t *testing.T) {
	p := NewPage([]int{1, 2, 3}, 0, 3, 7)

	if p.TotalElements != 7 {
		t.Fatalf("TotalElements = %d; want 7", p.TotalElements)
	}
	if p.TotalPages != 3 { // ceil(7/3)
		t.Fatalf("TotalPages = %d; want 3", p.TotalPages)
	}
	if !p.First || p.Last {
		t.Fatalf("first/last = %v/%v; want true/false", p.First, p.Last)
	}
	if !p.HasNext || p.HasPrevious {
		t.Fatalf("hasNext/hasPrevious = %v/%v; want true/false", p.HasNext, p.HasPrevious)
	}
}

func TestNewPage_LastPage(t *testing.T) {
	p := NewPage([]int{7}, 2, 3, 7)

	if p.First {
		t.Fatalf("page 2 must not be first")
	}
	if !p.Last || p.HasNext {
		t.Fatalf("last/hasNext = %v/%v; want true/false", p.Last, p.HasNext)
	}
	if !p.HasPrevious {
		t.Fatalf("page 2 must have previous")
	}
}

func TestNewPage_NilContentBecomesEmptySlice(t *testing.T) {
	p := NewPage[int](nil, 0, 10, 0)
	if p.Content == nil || len(p.Content) != 0 {
		t.Fatalf("Content = %#v; want empty non-nil slice", p.Content)
	}
}

func TestEmpty(t *testing.T) {
	p := Empty[string]()

	if len(p.Content) != 0 || p.TotalElements != 0 || p.TotalPages != 0 {
		t.Fatalf("empty page has non-zero counts: %+v", p)
	}
	if !p.First || !p.Last {
		t.Fatalf("empty page must be first and last: %+v", p)
	}
	if p.HasNext || p.HasPrevious {
		t.Fatalf("empty page must not have neighbors: %+v", p)
	}
}

func TestMap_PreservesMetadata(t *testing.T) {
	in := NewPage([]int{1, 2, 3}, 1, 3, 9)
	out := Map(in, strconv.Itoa)

	if out.TotalElements != in.TotalElements || out.TotalPages != in.TotalPages ||
		out.Number != in.Number || out.Size != in.Size ||
		out.First != in.First || out.Last != in.Last ||
		out.HasNext != in.HasNext || out.HasPrevious != in.HasPrevious {
		t.Fatalf("metadata changed: in=%+v out=%+v", in, out)
	}
	if len(out.Content) != 3 || out.Content[0] != "1" || out.Content[2] != "3" {
		t.Fatalf("content = %v; want [1 2 3] as strings", out.Content)
	}
}

func TestMap_FunctorLaws(t *testing.T) {
	in := NewPage([]int{4, 5}, 0, 2, 2)

	// Identity.
	id := Map(in, func(v int) int { return v })
	if len(id.Content) != len(in.Content) || id.Content[0] != 4 || id.Content[1] != 5 {
		t.Fatalf("identity map changed content: %v", id.Content)
	}

	// Composition: map f then g == map g(f(x)).
	f := func(v int) int { return v * 2 }
	g := strconv.Itoa
	lhs := Map(Map(in, f), g)
	rhs := Map(in, func(v int) string { return g(f(v)) })
	for i := range lhs.Content {
		if lhs.Content[i] != rhs.Content[i] {
			t.Fatalf("composition law violated at %d: %q != %q", i, lhs.Content[i], rhs.Content[i])
		}
	}
}

func TestPageRequest_Offset(t *testing.T) {
	r := PageRequest{Page: 3, Size: 25}
	if got := r.Offset(); got != 75 {
		t.Fatalf("Offset() = %d; want 75", got)
	}
}

func TestBy(t *testing.T) {
	s := By("action_date", Desc)
	if len(s) != 1 || s[0].Property != "action_date" || s[0].Direction != Desc {
		t.Fatalf("By() = %+v", s)
	}
}

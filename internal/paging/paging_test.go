package paging

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSize(t *testing.T) {
	cases := map[int32]int{-1: DefaultSize, 0: DefaultSize, 5: 5, 100: 100, 1000: MaxSize}
	for in, want := range cases {
		if got := Size(in); got != want {
			t.Fatalf("Size(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPageWalksAllItems(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	id := func(s string) string { return s }

	var (
		got   []string
		token string
		pages int
	)
	for {
		page, next := Page(items, id, 2, token)
		got = append(got, page...)
		pages++
		if next == "" {
			break
		}
		token = next
	}
	if diff := cmp.Diff(items, got); diff != "" {
		t.Fatalf("unexpected items (-want +got):\n%s", diff)
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
}

func TestPageUnknownTokenRestarts(t *testing.T) {
	page, next := Page([]string{"a", "b"}, func(s string) string { return s }, 1, "zzz")
	if len(page) != 1 || page[0] != "a" || next != "a" {
		t.Fatalf("unexpected page %v next %q", page, next)
	}
}

func TestPageExactFitHasNoNextToken(t *testing.T) {
	page, next := Page([]string{"a", "b"}, func(s string) string { return s }, 2, "")
	if len(page) != 2 || next != "" {
		t.Fatalf("unexpected page %v next %q", page, next)
	}
}

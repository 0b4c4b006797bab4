package util

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Polo Sporty Shirt":     "polo-sporty-shirt",
		"  Brooks -- Brothers ": "brooks-brothers",
		"Ürün!":                 "r-n",
		"!!!":                   "product",
	}
	for in, want := range cases {
		if got := Slugify(in, "product"); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPaging(t *testing.T) {
	if p, off := Page(0, 6); p != 1 || off != 0 {
		t.Fatalf("Page(0) = %d,%d", p, off)
	}
	if p, off := Page(3, 6); p != 3 || off != 12 {
		t.Fatalf("Page(3) = %d,%d", p, off)
	}
	cases := []struct{ count, limit, want int }{
		{0, 6, 0}, {1, 6, 1}, {6, 6, 1}, {7, 6, 2}, {13, 6, 3}, {5, 0, 0},
	}
	for _, c := range cases {
		if got := TotalPages(c.count, c.limit); got != c.want {
			t.Errorf("TotalPages(%d,%d) = %d, want %d", c.count, c.limit, got, c.want)
		}
	}
}

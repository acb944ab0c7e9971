package pagination

import "testing"

func TestValidateClamps(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	if p.Page != 1 || p.PerPage != MaxPerPage {
		t.Fatalf("unexpected params %+v", p)
	}
	p = &PaginationParams{Page: 3, PerPage: 0}
	p.Validate()
	if p.PerPage != DefaultPerPage || p.Offset() != 2*DefaultPerPage {
		t.Fatalf("unexpected params %+v offset %d", p, p.Offset())
	}
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(2, 10, 25)
	if pg.TotalPages != 3 || !pg.HasNext || !pg.HasPrev {
		t.Fatalf("unexpected pagination %+v", pg)
	}
	last := NewPagination(3, 10, 25)
	if last.HasNext {
		t.Fatal("last page should not have next")
	}
}

func TestNewPaginatedResultNeverNilItems(t *testing.T) {
	res := NewPaginatedResult[int](nil, NewPagination(1, 10, 0))
	if res.Items == nil {
		t.Fatal("items should be an empty slice")
	}
}

func TestParseLimit(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", 10},
		{"abc", 10},
		{"0", 10},
		{"-4", 10},
		{"5", 5},
		{"500", 50},
	}
	for _, c := range cases {
		if got := ParseLimit(c.raw, 10, 50); got != c.want {
			t.Errorf("ParseLimit(%q) = %d, want %d", c.raw, got, c.want)
		}
	}
}

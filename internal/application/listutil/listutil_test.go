package listutil

import (
	"net/url"
	"testing"
)

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name string
		q    url.Values
		want int
	}{
		{"default", url.Values{}, 1},
		{"valid", url.Values{"page": {"3"}}, 3},
		{"negative", url.Values{"page": {"-1"}}, 1},
		{"garbage", url.Values{"page": {"two"}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePageParams(tt.q).Page; got != tt.want {
				t.Errorf("Page = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestParseFilterParams verifies search and filter extraction from query values.
func TestParseFilterParams(t *testing.T) {
	q := url.Values{"q": {"  smith "}, "type": {"worship"}, "from": {" "}, "unknown": {"x"}}
	f := ParseFilterParams(q, []string{"from", "to", "type"})
	if f.Search != "smith" {
		t.Errorf("expected search=smith, got %q", f.Search)
	}
	if f.Filters["type"] != "worship" {
		t.Errorf("expected type=worship, got %q", f.Filters["type"])
	}
	if _, ok := f.Filters["from"]; ok {
		t.Error("blank filter value should be dropped")
	}
	if _, ok := f.Filters["unknown"]; ok {
		t.Error("unexpected filter key 'unknown'")
	}
}

// TestNewPageInfo verifies pagination metadata computation.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		perPage    int
		total      int
		wantPages  int
		wantPage   int
		wantStart  int
		wantEnd    int
		wantOffset int
	}{
		{"basic", 1, 10, 25, 3, 1, 1, 10, 0},
		{"page2", 2, 10, 25, 3, 2, 11, 20, 10},
		{"lastPage", 3, 10, 25, 3, 3, 21, 25, 20},
		{"pageBeyondTotal", 10, 10, 25, 3, 3, 21, 25, 20},
		{"emptyList", 1, 10, 0, 1, 1, 0, 0, 0},
		{"emptyListPage5", 5, 10, 0, 1, 1, 0, 0, 0},
		{"exactFit", 1, 10, 10, 1, 1, 1, 10, 0},
		{"zeroPerPage", 1, 0, 11, 2, 1, 1, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.perPage, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: got %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pi.Page, tt.wantPage)
			}
			if pi.StartRow() != tt.wantStart {
				t.Errorf("StartRow: got %d, want %d", pi.StartRow(), tt.wantStart)
			}
			if pi.EndRow() != tt.wantEnd {
				t.Errorf("EndRow: got %d, want %d", pi.EndRow(), tt.wantEnd)
			}
			if pi.Offset() != tt.wantOffset {
				t.Errorf("Offset: got %d, want %d", pi.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestPageInfo_HasNextPrev(t *testing.T) {
	first := NewPageInfo(1, 10, 25)
	if first.HasPrev() || !first.HasNext() {
		t.Errorf("page 1 of 3: prev=%v next=%v", first.HasPrev(), first.HasNext())
	}
	last := NewPageInfo(3, 10, 25)
	if !last.HasPrev() || last.HasNext() {
		t.Errorf("page 3 of 3: prev=%v next=%v", last.HasPrev(), last.HasNext())
	}
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	tests := []struct {
		page int
		want []int
	}{
		{1, []int{1, 2, 3}},
		{2, []int{4, 5, 6}},
		{3, []int{7}},
		{9, []int{7}},
	}
	for _, tt := range tests {
		got := Window(items, NewPageInfo(tt.page, 3, len(items)))
		if len(got) != len(tt.want) {
			t.Fatalf("page %d: got %v, want %v", tt.page, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("page %d: got %v, want %v", tt.page, got, tt.want)
			}
		}
	}
	if got := Window([]int{}, NewPageInfo(1, 3, 0)); len(got) != 0 {
		t.Errorf("empty window = %v", got)
	}
}

package relay

import "testing"

func TestParseRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		total  int64
		want   *[2]int64
	}{
		{name: "absent", header: "", total: 100},
		{name: "closed", header: "bytes=200-299", total: 1000, want: &[2]int64{200, 299}},
		{name: "open ended", header: "bytes=5-", total: 100, want: &[2]int64{5, 99}},
		{name: "end beyond total", header: "bytes=10-5000", total: 100, want: &[2]int64{10, 99}},
		{name: "start beyond total", header: "bytes=5000-6000", total: 1000, want: &[2]int64{999, 999}},
		{name: "end before start", header: "bytes=50-10", total: 100, want: &[2]int64{50, 50}},
		{name: "single byte", header: "bytes=0-0", total: 1, want: &[2]int64{0, 0}},
		{name: "suffix form not matched", header: "bytes=-500", total: 1000},
		{name: "other unit", header: "items=0-5", total: 1000},
		{name: "garbage", header: "nonsense", total: 1000},
		{name: "multi range uses first", header: "bytes=0-9,20-29", total: 100, want: &[2]int64{0, 9}},
		{name: "unknown total", header: "bytes=0-9", total: 0},
		{name: "start overflows int64", header: "bytes=99999999999999999999-", total: 100, want: &[2]int64{99, 99}},
		{name: "end overflows int64", header: "bytes=0-99999999999999999999", total: 100, want: &[2]int64{0, 99}},
		{name: "both overflow", header: "bytes=99999999999999999999-99999999999999999999", total: 100, want: &[2]int64{99, 99}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseRange(tt.header, tt.total)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected no range, got %+v", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected range %v, got nil", *tt.want)
			}
			if got.Start != tt.want[0] || got.End != tt.want[1] {
				t.Fatalf("expected %v, got %d-%d", *tt.want, got.Start, got.End)
			}
			if got.Start < 0 || got.Start > got.End || got.End > tt.total-1 {
				t.Fatalf("range out of bounds: %d-%d of %d", got.Start, got.End, tt.total)
			}
		})
	}
}

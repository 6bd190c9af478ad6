package parallel

import (
	"sync/atomic"
	"testing"
)

func TestBands(t *testing.T) {
	tests := []struct {
		name   string
		height int
		n      int
		want   [][2]int
	}{
		{"even split", 8, 4, [][2]int{{0, 2}, {2, 4}, {4, 6}, {6, 8}}},
		{"remainder goes first", 7, 3, [][2]int{{0, 3}, {3, 5}, {5, 7}}},
		{"more bands than rows", 2, 5, [][2]int{{0, 1}, {1, 2}}},
		{"zero bands", 3, 0, [][2]int{{0, 3}}},
		{"empty", 0, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bands(tt.height, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("Bands(%d, %d) = %v, want %v", tt.height, tt.n, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Bands(%d, %d)[%d] = %v, want %v", tt.height, tt.n, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRows_CoversEveryRowOnce(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	for _, height := range []int{1, 15, 16, 17, 100, 1023} {
		counts := make([]atomic.Int32, height)
		Rows(pool, height, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				counts[y].Add(1)
			}
		})
		for y := range counts {
			if c := counts[y].Load(); c != 1 {
				t.Fatalf("height %d: row %d visited %d times, want 1", height, y, c)
			}
		}
	}
}

func TestRows_NilPoolRunsInline(t *testing.T) {
	calls := 0
	Rows(nil, 50, func(y0, y1 int) {
		calls++
		if y0 != 0 || y1 != 50 {
			t.Errorf("Rows(nil) band = [%d, %d), want [0, 50)", y0, y1)
		}
	})
	if calls != 1 {
		t.Errorf("Rows(nil) called fn %d times, want 1", calls)
	}

	Rows(nil, 0, func(int, int) { t.Error("Rows with zero height should not call fn") })
}

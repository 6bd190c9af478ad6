package parallel

// minBandRows keeps bands from becoming so thin that scheduling dominates.
const minBandRows = 16

// Rows splits [0, height) into contiguous bands and calls fn(y0, y1) for
// each, in parallel on pool. Bands never overlap, so fn may write its rows
// of a shared output without locking. A nil pool runs fn(0, height) on the
// calling goroutine.
//
// Rows returns once every band has finished.
func Rows(pool *WorkerPool, height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	if pool == nil || pool.Workers() == 1 || height <= minBandRows {
		fn(0, height)
		return
	}

	bands := min(pool.Workers()*4, (height+minBandRows-1)/minBandRows)
	work := make([]func(), 0, bands)
	for _, b := range Bands(height, bands) {
		work = append(work, func() { fn(b[0], b[1]) })
	}
	pool.ExecuteAll(work)
}

// Bands divides [0, height) into n half-open [y0, y1) ranges whose sizes
// differ by at most one row. n is clamped to [1, height].
func Bands(height, n int) [][2]int {
	if height <= 0 {
		return nil
	}
	n = max(1, min(n, height))

	out := make([][2]int, n)
	base, extra := height/n, height%n
	y := 0
	for i := range n {
		size := base
		if i < extra {
			size++
		}
		out[i] = [2]int{y, y + size}
		y += size
	}
	return out
}

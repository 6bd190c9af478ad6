package filter

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gogpu/foveate/internal/parallel"
)

func TestBlurZeroSigmaIsIdentity(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	want := append([]float32(nil), data...)

	Blur(data, 2, 1, 3, 0)

	for i := range data {
		if data[i] != want[i] {
			t.Fatalf("Blur(sigma=0) changed data[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestBlurConstantStaysConstant(t *testing.T) {
	const w, h, ch = 9, 7, 3
	data := make([]float32, w*h*ch)
	for i := range data {
		data[i] = 200
	}

	Blur(data, w, h, ch, 1.0)

	for i, v := range data {
		if math.Abs(float64(v)-200) > 1e-3 {
			t.Fatalf("data[%d] = %v, want 200", i, v)
		}
	}
}

func TestBlurSpreadsImpulse(t *testing.T) {
	const w, h = 9, 9
	data := make([]float32, w*h)
	data[4*w+4] = 1

	Blur(data, w, h, 1, 1.0)

	center := data[4*w+4]
	if center >= 1 || center <= 0 {
		t.Fatalf("center after blur = %v, want in (0, 1)", center)
	}
	if data[4*w+5] <= 0 || data[4*w+5] >= center {
		t.Errorf("neighbor = %v, want in (0, %v)", data[4*w+5], center)
	}

	var sum float64
	for _, v := range data {
		sum += float64(v)
	}
	if math.Abs(sum-1) > 1e-3 {
		t.Errorf("blurred impulse sum = %v, want ~1 (energy preserved away from edges)", sum)
	}
}

func TestBlurSymmetric(t *testing.T) {
	const w, h = 11, 1
	data := make([]float32, w*h)
	data[5] = 10

	Blur(data, w, h, 1, 0.8)

	for i := 0; i < 5; i++ {
		if math.Abs(float64(data[i]-data[w-1-i])) > 1e-6 {
			t.Errorf("data[%d] = %v, data[%d] = %v, want symmetric", i, data[i], w-1-i, data[w-1-i])
		}
	}
}

func TestBlurParallelMatchesBlur(t *testing.T) {
	const w, h, ch = 37, 120, 3
	rng := rand.New(rand.NewSource(3))
	serial := make([]float32, w*h*ch)
	for i := range serial {
		serial[i] = float32(rng.Intn(256))
	}
	banded := append([]float32(nil), serial...)

	pool := parallel.NewWorkerPool(4)
	defer pool.Close()

	Blur(serial, w, h, ch, 1.5)
	BlurParallel(banded, w, h, ch, 1.5, pool)

	for i := range serial {
		if serial[i] != banded[i] {
			t.Fatalf("BlurParallel()[%d] = %v, Blur() = %v", i, banded[i], serial[i])
		}
	}
}

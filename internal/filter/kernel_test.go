package filter

import (
	"math"
	"testing"
)

func TestGaussianKernelNonPositiveSigma(t *testing.T) {
	for _, sigma := range []float64{0, -5} {
		kernel := GaussianKernel(sigma)
		if len(kernel) != 1 || kernel[0] != 1.0 {
			t.Errorf("GaussianKernel(%v) = %v, want [1]", sigma, kernel)
		}
	}
}

func TestGaussianKernelNormalized(t *testing.T) {
	for _, sigma := range []float64{0.3, 0.5, 1, 2, 5} {
		var sum float64
		for _, v := range GaussianKernel(sigma) {
			sum += float64(v)
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("GaussianKernel(%v) sum = %v, want ~1.0", sigma, sum)
		}
	}
}

func TestGaussianKernelSymmetric(t *testing.T) {
	kernel := GaussianKernel(1.5)
	n := len(kernel)

	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		if kernel[i] != kernel[j] {
			t.Errorf("kernel[%d] = %v != kernel[%d] = %v (asymmetric)", i, kernel[i], j, kernel[j])
		}
	}
}

func TestGaussianKernelSize(t *testing.T) {
	tests := []struct {
		sigma    float64
		wantSize int
	}{
		{0.5, 5},  // ceil(1.5)*2+1
		{1.0, 7},  // ceil(3)*2+1
		{2.0, 13}, // ceil(6)*2+1
	}

	for _, tt := range tests {
		if got := len(GaussianKernel(tt.sigma)); got != tt.wantSize {
			t.Errorf("len(GaussianKernel(%v)) = %d, want %d", tt.sigma, got, tt.wantSize)
		}
		if got := KernelSize(tt.sigma); got != tt.wantSize {
			t.Errorf("KernelSize(%v) = %d, want %d", tt.sigma, got, tt.wantSize)
		}
	}
}

func TestGaussianKernelPeakAtCenter(t *testing.T) {
	kernel := GaussianKernel(2)
	center := len(kernel) / 2
	for i, v := range kernel {
		if i != center && v >= kernel[center] {
			t.Errorf("kernel[%d] = %v >= center value %v", i, v, kernel[center])
		}
	}
}

func TestCachedGaussianKernel(t *testing.T) {
	k1 := CachedGaussianKernel(0.5)
	k2 := CachedGaussianKernel(0.5)

	if &k1[0] != &k2[0] {
		t.Error("CachedGaussianKernel(0.5) should return the cached slice")
	}

	k3 := CachedGaussianKernel(1.0)
	if len(k3) == len(k1) {
		t.Errorf("kernels for different sigmas have the same length %d", len(k1))
	}
}

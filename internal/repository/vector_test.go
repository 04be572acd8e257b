package repository

import (
	"math"
	"testing"
)

func TestFormatVector(t *testing.T) {
	got := formatVector([]float32{0.5, -1, 2})
	want := "[0.5,-1,2]"
	if got != want {
		t.Errorf("formatVector = %q, want %q", got, want)
	}
}

func TestFormatVector_Empty(t *testing.T) {
	if got := formatVector(nil); got != "[]" {
		t.Errorf("formatVector(nil) = %q, want []", got)
	}
}

func TestEncodeDecodeVector(t *testing.T) {
	original := []float32{0.1, 0.2, 0.3}

	data, err := encodeVector(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := decodeVector(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("decoded length %d, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("decoded[%d] = %g, want %g", i, decoded[i], original[i])
		}
	}
}

func TestCosineSimilarity_Identical(t *testing.T) {
	v := []float32{1, 2, 3}
	if got := cosineSimilarity(v, v); math.Abs(got-1) > 1e-9 {
		t.Errorf("similarity of identical vectors = %g, want 1", got)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Errorf("similarity of orthogonal vectors = %g, want 0", got)
	}
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("similarity with zero vector = %g, want 0", got)
	}
}

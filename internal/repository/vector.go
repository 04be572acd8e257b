package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// formatVector renders a vector in pgvector literal syntax: "[1,2,3]".
func formatVector(vector []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// encodeVector serializes a vector for the sqlite backend.
func encodeVector(vector []float32) ([]byte, error) {
	data, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("encode vector: %w", err)
	}
	return data, nil
}

func decodeVector(data []byte) ([]float32, error) {
	var vector []float32
	if err := json.Unmarshal(data, &vector); err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	return vector, nil
}

// cosineSimilarity returns the cosine of the angle between a and b,
// or 0 when either vector has zero magnitude. Panics are not possible:
// callers guarantee equal dimensions.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

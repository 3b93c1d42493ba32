package session

import (
	"strings"
	"testing"
)

func BenchmarkTokenPairDecode(b *testing.B) {
	pair := NewTokenPair(strings.Repeat("a", 220), strings.Repeat("r", 220))
	blob, err := Encode(&pair)
	if err != nil {
		b.Fatalf("encode failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(blob); err != nil {
			b.Fatalf("decode failed: %v", err)
		}
	}
}

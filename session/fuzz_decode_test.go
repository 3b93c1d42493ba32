package session

import "testing"

// FuzzTokenPairDecode exercises the binary token decoder with arbitrary inputs.
// Goal: no panics, graceful error handling on truncated or garbage blobs.
func FuzzTokenPairDecode(f *testing.F) {
	pair := &TokenPair{
		SchemaVersion: CurrentSchemaVersion,
		AccessToken:   "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ1MSJ9.sig",
		RefreshToken:  "refresh-fuzz",
		TokenType:     "bearer",
		SavedAt:       1700000000,
	}
	encoded, err := Encode(pair)
	if err == nil {
		f.Add(encoded)
	}

	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{1})
	f.Add([]byte{2, 0xFF, 0xFF})
	f.Add([]byte{255, 255, 255})

	if len(encoded) > 10 {
		f.Add(encoded[:10])
	}
	if len(encoded) > 30 {
		f.Add(encoded[:30])
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		p, err := Decode(data)
		if err != nil {
			return
		}

		// A successful decode must round-trip.
		again, err := Encode(p)
		if err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
		q, err := Decode(again)
		if err != nil {
			t.Fatalf("decode of re-encoded blob failed: %v", err)
		}
		if *p != *q {
			t.Fatalf("round trip mismatch: %+v vs %+v", p, q)
		}
	})
}

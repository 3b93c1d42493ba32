package jwt

import (
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// FuzzInspect exercises the unverified decoder with arbitrary token strings.
// Goal: no panics; garbage must be rejected with ErrMalformedToken.
func FuzzInspect(f *testing.F) {
	insp, err := NewInspector(Config{Leeway: 30 * time.Second})
	if err != nil {
		f.Fatal(err)
	}

	valid := gjwt.NewWithClaims(gjwt.SigningMethodHS256, Claims{
		Type: TypeAccess,
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: gjwt.NewNumericDate(time.Unix(1700003600, 0)),
		},
	})
	signed, err := valid.SignedString([]byte("fuzz-secret-fuzz-secret"))
	if err != nil {
		f.Fatal(err)
	}

	f.Add(signed)
	f.Add("")
	f.Add("a.b.c")
	f.Add("....")
	f.Add("eyJhbGciOiJub25lIn0.e30.")

	f.Fuzz(func(t *testing.T, token string) {
		_, _ = insp.Inspect(token)
		_, _ = insp.Expired(token)
	})
}

package session

import "time"

// CurrentSchemaVersion is the binary schema version written by [Encode].
const CurrentSchemaVersion uint8 = 2

// DefaultTokenType is the token type assumed when the server or a legacy blob
// does not carry one.
const DefaultTokenType = "bearer"

// TokenPair is the durable credential set for one signed-in identity.
//
// TokenPair values are copied by value between the store and its callers; none of
// the backends retain references to caller memory.
type TokenPair struct {
	SchemaVersion uint8
	AccessToken   string
	RefreshToken  string
	TokenType     string
	SavedAt       int64
}

// NewTokenPair builds a pair stamped with the current time.
func NewTokenPair(access, refresh string) TokenPair {
	return TokenPair{
		SchemaVersion: CurrentSchemaVersion,
		AccessToken:   access,
		RefreshToken:  refresh,
		TokenType:     DefaultTokenType,
		SavedAt:       time.Now().Unix(),
	}
}

// Empty reports whether the pair carries no access token.
func (p TokenPair) Empty() bool {
	return p.AccessToken == ""
}

package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	tokenFormatVersionCurrent = CurrentSchemaVersion
	tokenFormatVersionV1      = 1
)

// Encode serializes p into the current binary schema.
//
// Layout (v2): version byte, access token (uint16 length + bytes), refresh token
// (uint16 length + bytes), token type (uint8 length + bytes), saved-at (int64 BE).
func Encode(p *TokenPair) ([]byte, error) {
	if p == nil {
		return nil, errors.New("nil token pair")
	}

	var buf bytes.Buffer
	buf.Grow(len(p.AccessToken) + len(p.RefreshToken) + 32)

	buf.WriteByte(tokenFormatVersionCurrent)

	if err := writeLong(&buf, p.AccessToken); err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	if err := writeLong(&buf, p.RefreshToken); err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	tokenType := p.TokenType
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	if len(tokenType) > math.MaxUint8 {
		return nil, errors.New("token type too long")
	}
	buf.WriteByte(byte(len(tokenType)))
	buf.WriteString(tokenType)

	if err := binary.Write(&buf, binary.BigEndian, p.SavedAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by any supported schema version. Blobs written
// by v1 have no token type and decode with [DefaultTokenType].
func Decode(data []byte) (*TokenPair, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != tokenFormatVersionCurrent && version != tokenFormatVersionV1 {
		return nil, fmt.Errorf("unsupported token schema version %d", version)
	}

	p := &TokenPair{SchemaVersion: tokenFormatVersionCurrent}

	if p.AccessToken, err = readLong(reader); err != nil {
		return nil, err
	}
	if p.RefreshToken, err = readLong(reader); err != nil {
		return nil, err
	}

	if version == tokenFormatVersionCurrent {
		typeLen, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}
		tokenType := make([]byte, typeLen)
		if _, err := io.ReadFull(reader, tokenType); err != nil {
			return nil, err
		}
		p.TokenType = string(tokenType)
	}
	if p.TokenType == "" {
		p.TokenType = DefaultTokenType
	}

	if err := binary.Read(reader, binary.BigEndian, &p.SavedAt); err != nil {
		return nil, err
	}

	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes after token pair")
	}

	return p, nil
}

func writeLong(buf *bytes.Buffer, s string) error {
	if len(s) > math.MaxUint16 {
		return errors.New("value too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readLong(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	if int(n) > r.Len() {
		return "", io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return "", err
	}
	return string(out), nil
}

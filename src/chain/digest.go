package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const (
	// GenesisPrevFingerprint is the predecessor link carried by block 0.
	GenesisPrevFingerprint = "0"

	// FingerprintSize is the length in hex characters of every fingerprint.
	FingerprintSize = sha256.Size * 2
)

// Digest returns the lowercase hex SHA-256 of b.
//
// The same function is used for genesis, append and validation; fingerprints
// are compared as opaque strings.
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// CanonicalBytes renders the hashed fields of a block:
//
//	decimal(index) || prev || decimal(createdAt) || payload.CanonicalBytes()
//
// Any store that wants to stay hash compatible must reproduce this byte for
// byte.
func CanonicalBytes(index uint64, prev string, createdAt int64, p Payload) ([]byte, error) {
	if p == nil {
		return nil, &SerializationError{Kind: "<nil>", Err: errNilPayload}
	}
	data, err := p.CanonicalBytes()
	if err != nil {
		return nil, &SerializationError{Kind: p.Kind(), Err: err}
	}

	buf := make([]byte, 0, 20+len(prev)+20+len(data))
	buf = strconv.AppendUint(buf, index, 10)
	buf = append(buf, prev...)
	buf = strconv.AppendInt(buf, createdAt, 10)
	buf = append(buf, data...)
	return buf, nil
}

// fingerprint computes Digest(CanonicalBytes(...)).
func fingerprint(index uint64, prev string, createdAt int64, p Payload) (string, error) {
	b, err := CanonicalBytes(index, prev, createdAt, p)
	if err != nil {
		return "", err
	}
	return Digest(b), nil
}

package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// hashHexLen is the length of a full hex-encoded SHA-256 digest.
const hashHexLen = 64

// HashBytes computes the raw SHA-256 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-256 of the envelope "type len\0content",
// mirroring Git's object hashing but with SHA-256.
func HashObject(objType ObjectType, data []byte) Hash {
	header := fmt.Sprintf("%s %d\x00", objType, len(data))
	h := sha256.New()
	h.Write([]byte(header))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ValidateHash checks hash syntax: at least 8 lowercase hex characters,
// at most a full 64-character digest. Prefix-resolution callers accept
// the shorter forms; Read requires the full length. It does not check
// existence.
func ValidateHash(h Hash) error {
	if len(h) < 8 || len(h) > hashHexLen {
		return fmt.Errorf("%w: %q has length %d", ErrBadHash, h, len(h))
	}
	for _, c := range h {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w: %q contains non-hex character %q", ErrBadHash, h, c)
		}
	}
	return nil
}

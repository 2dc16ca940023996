package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest - фиксированный 256 битный хеш содержимого описания модуля.
type Digest [32]byte

// Sum hashes data.
func Sum(data []byte) Digest {
	return sha256.Sum256(data)
}

// String returns the digest as lower-case hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

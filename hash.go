package dict

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// hashSeed seeds GenHashFunction and friends. It is randomized at start
// so hash flooding attacks cannot be prepared offline.
var hashSeed atomic.Uint64

func init() {
	hashSeed.Store(rand.Uint64())
}

// SetHashFunctionSeed sets the seed used by GenHashFunction,
// GenStringHash and GenCaseHashFunction. Dicts already holding keys hashed
// with the previous seed must not be used afterwards.
func SetHashFunctionSeed(seed uint64) {
	hashSeed.Store(seed)
}

// HashFunctionSeed returns the current seed.
func HashFunctionSeed() uint64 {
	return hashSeed.Load()
}

// GenHashFunction returns the seeded 64-bit xxHash of key.
func GenHashFunction(key []byte) uint64 {
	h := xxhash.NewWithSeed(hashSeed.Load())
	_, _ = h.Write(key)
	return h.Sum64()
}

// GenStringHash is GenHashFunction for strings, without copying.
func GenStringHash(key string) uint64 {
	h := xxhash.NewWithSeed(hashSeed.Load())
	_, _ = h.WriteString(key)
	return h.Sum64()
}

// GenCaseHashFunction hashes key ignoring ASCII case, so that "Key" and
// "KEY" hash alike.
func GenCaseHashFunction(key []byte) uint64 {
	return caseHash(key)
}

func caseHash[T string | []byte](key T) uint64 {
	var buf [64]byte
	h := xxhash.NewWithSeed(hashSeed.Load())
	for i := 0; i < len(key); {
		n := 0
		for ; n < len(buf) && i < len(key); n, i = n+1, i+1 {
			buf[n] = toLowerASCII(key[i])
		}
		_, _ = h.Write(buf[:n])
	}
	return h.Sum64()
}

func toLowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// equalFoldASCII compares two strings ignoring ASCII case.
func equalFoldASCII(s, t string) bool {
	if len(s) != len(t) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if toLowerASCII(s[i]) != toLowerASCII(t[i]) {
			return false
		}
	}
	return true
}

// StringType returns a Type for string keys hashed with GenStringHash.
func StringType[V any]() Type[string, V] {
	return Type[string, V]{
		Hash: GenStringHash,
	}
}

// CaseStringType returns a Type for string keys that are compared and
// hashed ignoring ASCII case.
func CaseStringType[V any]() Type[string, V] {
	return Type[string, V]{
		Hash: caseHash[string],
		KeyCompare: func(_ any, key1, key2 string) bool {
			return equalFoldASCII(key1, key2)
		},
	}
}

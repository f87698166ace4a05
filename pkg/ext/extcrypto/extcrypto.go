// Package extcrypto provides hashing functions and random identifiers.
//
// MD5 and SHA-1 are offered for fingerprinting only.
package extcrypto

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // fingerprinting only
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // fingerprinting only
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/types"
)

// All returns all cryptographic function definitions.
func All() []functions.Def {
	return []functions.Def{
		UUID(),
		Hash(),
		HMAC(),
	}
}

// UUID returns the definition for uuid(), a random version 4 UUID.
func UUID() functions.Def {
	return functions.Def{
		Name: "uuid",
		Doc:  "random version 4 UUID",
		Fn: func([]types.Value) (types.Value, error) {
			var b [16]byte
			if _, err := rand.Read(b[:]); err != nil {
				return types.Null, fmt.Errorf("generate random bytes: %w", err)
			}
			b[6] = (b[6] & 0x0f) | 0x40
			b[8] = (b[8] & 0x3f) | 0x80
			return types.Str(fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
				b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])), nil
		},
	}
}

// Hash returns the definition for hash(str, algorithm), a lowercase hex
// digest. Algorithms: md5, sha1, sha256, sha384, sha512.
func Hash() functions.Def {
	return functions.Def{
		Name: "hash", Required: 2, Scalable: true,
		Doc: "hex digest of a string",
		Fn: func(args []types.Value) (types.Value, error) {
			s, err := args[0].AsString()
			if err != nil {
				return types.Null, err
			}
			algorithm, err := args[1].AsString()
			if err != nil {
				return types.Null, err
			}
			newHash, err := hasher(algorithm)
			if err != nil {
				return types.Null, err
			}
			h := newHash()
			h.Write([]byte(s))
			return types.Str(hex.EncodeToString(h.Sum(nil))), nil
		},
	}
}

// HMAC returns the definition for hmac(str, key, algorithm).
func HMAC() functions.Def {
	return functions.Def{
		Name: "hmac", Required: 3, Scalable: true,
		Doc: "hex HMAC of a string",
		Fn: func(args []types.Value) (types.Value, error) {
			s, err := args[0].AsString()
			if err != nil {
				return types.Null, err
			}
			key, err := args[1].AsString()
			if err != nil {
				return types.Null, err
			}
			algorithm, err := args[2].AsString()
			if err != nil {
				return types.Null, err
			}
			newHash, err := hasher(algorithm)
			if err != nil {
				return types.Null, err
			}
			mac := hmac.New(newHash, []byte(key))
			mac.Write([]byte(s))
			return types.Str(hex.EncodeToString(mac.Sum(nil))), nil
		},
	}
}

func hasher(algorithm string) (func() hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "md5":
		return md5.New, nil //nolint:gosec
	case "sha1":
		return sha1.New, nil //nolint:gosec
	case "sha256":
		return sha256.New, nil
	case "sha384":
		return sha512.New384, nil
	case "sha512":
		return sha512.New, nil
	}
	return nil, fmt.Errorf("unsupported algorithm %q; use md5, sha1, sha256, sha384, or sha512", algorithm)
}

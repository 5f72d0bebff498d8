/*
Package viewkey provides viewing keys of ScoreVault contract records.

A viewing key is a 32-byte secret held by the record owner and shared with
authorized readers. It never leaves the client: two independent keys are
derived from it with HKDF-SHA256. The access token is what the contract
verifies. State-changing transactions carry only its commitment (SHA-256 of
the token), read-only invocations as well as rotation and revocation carry the
token itself. The sealing key encrypts record metadata (see [Seal]), so a
published access token does not expose metadata.
*/
package viewkey

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/hkdf"
)

// Size is the viewing key size in bytes.
const Size = 32

// CommitmentSize is the size of viewing key commitment in bytes.
const CommitmentSize = sha256.Size

// AccessTokenSize is the size of the access token in bytes.
const AccessTokenSize = 32

const (
	textPrefix = "vk_"

	accessInfo = "scorevault access v1"
)

// ErrInvalidKey is returned when a viewing key can't be decoded.
var ErrInvalidKey = errors.New("invalid viewing key")

// Key is a viewing key.
type Key [Size]byte

// Generate creates a new random viewing key. Optional entropy is mixed with
// the output of the system random generator.
func Generate(entropy []byte) (Key, error) {
	var seed [Size]byte

	_, err := rand.Read(seed[:])
	if err != nil {
		return Key{}, fmt.Errorf("read random seed: %w", err)
	}

	h := sha256.New()
	h.Write(seed[:])
	h.Write(entropy)

	var k Key
	copy(k[:], h.Sum(nil))

	return k, nil
}

// Parse decodes a viewing key from its text form produced by [Key.String].
func Parse(s string) (Key, error) {
	encoded, ok := strings.CutPrefix(s, textPrefix)
	if !ok {
		return Key{}, fmt.Errorf("%w: missing %q prefix", ErrInvalidKey, textPrefix)
	}

	b, err := base58.Decode(encoded)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	if len(b) != Size {
		return Key{}, fmt.Errorf("%w: wrong length %d", ErrInvalidKey, len(b))
	}

	var k Key
	copy(k[:], b)

	return k, nil
}

// String returns text form of the viewing key.
func (k Key) String() string {
	return textPrefix + base58.Encode(k[:])
}

// AccessToken returns the token passed to contract methods checking the
// viewing key: getRecord, rotateCredential and revoke.
func (k Key) AccessToken() []byte {
	return k.derive(accessInfo, AccessTokenSize)
}

// Commitment returns the access token commitment passed to state-changing
// contract methods.
func (k Key) Commitment() [CommitmentSize]byte {
	return sha256.Sum256(k.AccessToken())
}

// derive returns size bytes of HKDF-SHA256 output for the given info.
func (k Key) derive(info string, size int) []byte {
	b := make([]byte, size)

	// HKDF fails only when more than 255 hash lengths are requested
	_, err := io.ReadFull(hkdf.New(sha256.New, k[:], nil, []byte(info)), b)
	if err != nil {
		panic(fmt.Sprintf("derive %q key: %v", info, err))
	}

	return b
}

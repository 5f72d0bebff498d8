package viewkey

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Overhead is the number of bytes Seal adds to the plaintext.
const Overhead = chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

const sealInfo = "scorevault seal v1"

// ErrOpen is returned when sealed metadata can't be decrypted with the key.
var ErrOpen = errors.New("open sealed metadata")

// Seal encrypts metadata with XChaCha20-Poly1305 under a key derived from the
// viewing key independently of [Key.AccessToken]. Owner is authenticated along
// with the metadata, so sealed data can't be moved to another record.
func Seal(k Key, owner []byte, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(k)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())

	_, err = rand.Read(nonce)
	if err != nil {
		return nil, fmt.Errorf("read random nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, owner), nil
}

// Open decrypts metadata sealed by [Seal].
func Open(k Key, owner []byte, sealed []byte) ([]byte, error) {
	aead, err := newAEAD(k)
	if err != nil {
		return nil, err
	}

	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: data is too short", ErrOpen)
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	return plaintext, nil
}

func newAEAD(k Key) (cipher.AEAD, error) {
	aead, err := chacha20poly1305.NewX(k.derive(sealInfo, chacha20poly1305.KeySize))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	return aead, nil
}

// Package cryptox seals and opens the encrypted birth payload stored on
// each profile. Records carry the ciphertext and IV as hex strings; the
// key lives only in configuration.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecryption covers every ciphertext/IV/key mismatch: wrong key,
// corrupted ciphertext or IV, invalid padding, or a payload that fails
// its integrity check. Callers must not confuse it with a missing
// record.
var ErrDecryption = errors.New("decryption failed")

// sealedEnvelope is the plaintext layout inside the ciphertext. The
// digest binds the payload to the exact bytes that were sealed: CBC
// alone cannot detect a tampered IV (a flipped IV bit alters exactly
// one byte of the first plaintext block), so Open verifies the digest
// before releasing any plaintext.
type sealedEnvelope struct {
	Payload json.RawMessage `json:"payload"`
	Digest  string          `json:"digest"`
}

// Seal serializes v to JSON and encrypts it with AES-256-CBC under a
// fresh random 16-byte IV. The IV is generated here and never accepted
// from the caller; reusing an IV under the same key would break
// confidentiality.
func Seal(v any, key []byte) (ciphertextHex, ivHex string, err error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", "", fmt.Errorf("marshal payload: %w", err)
	}

	sum := sha256.Sum256(payload)
	plaintext, err := json.Marshal(sealedEnvelope{
		Payload: payload,
		Digest:  hex.EncodeToString(sum[:]),
	})
	if err != nil {
		return "", "", fmt.Errorf("marshal envelope: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", "", fmt.Errorf("init cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(ciphertext), hex.EncodeToString(iv), nil
}

// Open decrypts a sealed payload, verifies its digest and unmarshals
// the plaintext JSON into v. Any mismatch between ciphertext, IV and
// key yields ErrDecryption; partial or garbage plaintext is never
// returned.
func Open(ciphertextHex, ivHex string, key []byte, v any) error {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return fmt.Errorf("%w: ciphertext is not valid hex", ErrDecryption)
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return fmt.Errorf("%w: iv is not valid hex", ErrDecryption)
	}
	if len(iv) != aes.BlockSize {
		return fmt.Errorf("%w: iv must be %d bytes", ErrDecryption, aes.BlockSize)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return fmt.Errorf("%w: ciphertext length is not a multiple of the block size", ErrDecryption)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return ErrDecryption
	}

	var envelope sealedEnvelope
	if err := json.Unmarshal(plaintext, &envelope); err != nil {
		return ErrDecryption
	}

	sum := sha256.Sum256(envelope.Payload)
	want, err := hex.DecodeString(envelope.Digest)
	if err != nil || subtle.ConstantTimeCompare(sum[:], want) != 1 {
		return ErrDecryption
	}

	if err := json.Unmarshal(envelope.Payload, v); err != nil {
		return ErrDecryption
	}
	return nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errors.New("invalid padding byte")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("inconsistent padding")
		}
	}
	return data[:len(data)-n], nil
}

package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"balance-ledger-bot/pkg/apperror"
)

// blobSeparator splits ciphertext from IV inside the decoded blob.
const blobSeparator = "::"

// AESEncryptionService implements ports.EncryptionService using AES-256-CBC
// with PKCS#7 padding. Each Encrypt draws a fresh random 16-byte IV and embeds
// it in the returned blob, base64(base64(ciphertext) + "::" + base64(iv)), so
// Decrypt is self-contained given the blob and the static key.
//
// CBC carries no authentication tag. Decrypting under a wrong key fails the
// padding check in virtually all cases, but callers must not treat a
// successful Decrypt as an integrity proof.
type AESEncryptionService struct {
	key []byte // 32-byte key for AES-256
}

// NewAESEncryptionService creates a new AES-256-CBC encryption service.
// hexKey must be a 64-character hex string (32 bytes decoded).
func NewAESEncryptionService(hexKey string) (*AESEncryptionService, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding AES key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("AES key must be 32 bytes, got %d", len(key))
	}
	return &AESEncryptionService{key: key}, nil
}

// Encrypt encrypts plaintext using AES-256-CBC under a fresh random IV.
func (s *AESEncryptionService) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generating iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	inner := base64.StdEncoding.EncodeToString(ciphertext) +
		blobSeparator +
		base64.StdEncoding.EncodeToString(iv)
	return base64.StdEncoding.EncodeToString([]byte(inner)), nil
}

// Decrypt decrypts a blob produced by Encrypt. Any malformed blob (bad
// base64, missing separator, wrong IV or block length, invalid padding)
// yields an apperror with code SYS_002.
func (s *AESEncryptionService) Decrypt(blob string) (string, error) {
	inner, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", apperror.ErrDecryption(fmt.Errorf("decoding blob: %w", err))
	}

	ctPart, ivPart, found := strings.Cut(string(inner), blobSeparator)
	if !found {
		return "", apperror.ErrDecryption(fmt.Errorf("blob separator missing"))
	}

	ciphertext, err := base64.StdEncoding.DecodeString(ctPart)
	if err != nil {
		return "", apperror.ErrDecryption(fmt.Errorf("decoding ciphertext: %w", err))
	}
	iv, err := base64.StdEncoding.DecodeString(ivPart)
	if err != nil {
		return "", apperror.ErrDecryption(fmt.Errorf("decoding iv: %w", err))
	}

	if len(iv) != aes.BlockSize {
		return "", apperror.ErrDecryption(fmt.Errorf("iv must be %d bytes, got %d", aes.BlockSize, len(iv)))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", apperror.ErrDecryption(fmt.Errorf("ciphertext length %d is not a positive multiple of the block size", len(ciphertext)))
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", apperror.ErrDecryption(err)
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-n], nil
}

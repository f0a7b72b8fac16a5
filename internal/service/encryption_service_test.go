package service

import (
	"encoding/base64"
	"errors"
	"testing"

	"balance-ledger-bot/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Valid 32-byte key in hex (64 chars)
const testAESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestAESEncryptionService_NewInvalidKey(t *testing.T) {
	_, err := NewAESEncryptionService("shortkey")
	assert.Error(t, err)

	_, err = NewAESEncryptionService("abcdef") // valid hex, wrong length
	assert.Error(t, err)
}

func TestAESEncryptionService_EncryptDecrypt(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	for _, plaintext := range []string{"0.00", "10.50", "-20", "9999999999.99", ""} {
		blob, err := svc.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, blob)

		decrypted, err := svc.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestAESEncryptionService_DifferentIVs(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	plaintext := "10.50"
	b1, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	b2, err := svc.Encrypt(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, b1, b2, "same plaintext should produce different blobs due to random IV")

	d1, _ := svc.Decrypt(b1)
	d2, _ := svc.Decrypt(b2)
	assert.Equal(t, d1, d2)
}

func TestAESEncryptionService_MalformedBlob(t *testing.T) {
	svc, _ := NewAESEncryptionService(testAESKey)

	cases := map[string]string{
		"not base64":        "not-base64!!!",
		"missing separator": base64.StdEncoding.EncodeToString([]byte("nodelimiterhere")),
		"bad inner base64":  base64.StdEncoding.EncodeToString([]byte("???::???")),
		"short iv": base64.StdEncoding.EncodeToString([]byte(
			base64.StdEncoding.EncodeToString(make([]byte, 16)) + "::" +
				base64.StdEncoding.EncodeToString(make([]byte, 4)))),
		"ragged ciphertext": base64.StdEncoding.EncodeToString([]byte(
			base64.StdEncoding.EncodeToString(make([]byte, 7)) + "::" +
				base64.StdEncoding.EncodeToString(make([]byte, 16)))),
	}

	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Decrypt(blob)
			require.Error(t, err)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "SYS_002", appErr.Code)
		})
	}
}

func TestAESEncryptionService_WrongKey(t *testing.T) {
	svc1, _ := NewAESEncryptionService(testAESKey)
	otherKey := "abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789"
	svc2, _ := NewAESEncryptionService(otherKey)

	blob, err := svc1.Encrypt("100.00")
	require.NoError(t, err)

	decrypted, err := svc2.Decrypt(blob)
	// Padding validation rejects nearly every wrong-key decrypt; on the rare
	// pass the plaintext is garbage, which the caller catches at decimal
	// parsing. Either way the original value must not come back.
	if err == nil {
		assert.NotEqual(t, "100.00", decrypted)
	}
}

func TestPKCS7RoundTrip(t *testing.T) {
	for size := 0; size <= 33; size++ {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i)
		}
		padded := pkcs7Pad(data, 16)
		require.Zero(t, len(padded)%16)

		unpadded, err := pkcs7Unpad(padded, 16)
		require.NoError(t, err)
		assert.Equal(t, data, unpadded)
	}
}

func TestPKCS7Unpad_Invalid(t *testing.T) {
	_, err := pkcs7Unpad([]byte{}, 16)
	assert.Error(t, err)

	bad := make([]byte, 16)
	bad[15] = 17 // padding longer than block
	_, err = pkcs7Unpad(bad, 16)
	assert.Error(t, err)

	bad = make([]byte, 16)
	bad[15] = 3
	bad[14] = 3
	bad[13] = 9 // inconsistent run
	_, err = pkcs7Unpad(bad, 16)
	assert.Error(t, err)
}

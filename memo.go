package ringct

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha512"
	"io"

	"github.com/bwesterb/go-ristretto"
	"golang.org/x/crypto/hkdf"
)

func memoStream(shared *ristretto.Point) (cipher.Stream, error) {
	kdf := hkdf.New(sha512.New, shared.Bytes(), []byte(MEMO_DOMAIN_TAG), nil)
	key := make([]byte, 48)
	defer wipeBytes(key)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key[:32])
	if err != nil {
		return nil, err
	}
	return cipher.NewCTR(block, key[32:]), nil
}

// EncryptMemo keys AES-CTR from the output's shared secret.
func EncryptMemo(plain []byte, shared *ristretto.Point) ([]byte, error) {
	stream, err := memoStream(shared)
	if err != nil {
		return nil, err
	}
	ciphertext := make([]byte, len(plain))
	stream.XORKeyStream(ciphertext, plain)
	return ciphertext, nil
}

func DecryptMemo(ciphertext []byte, shared *ristretto.Point) ([]byte, error) {
	return EncryptMemo(ciphertext, shared)
}

// DecryptOutputMemo is the recipient's view of an output memo.
func DecryptOutputMemo(output *TxOut, viewSecret *ristretto.Scalar) ([]byte, error) {
	shared := createSharedSecret(output.EphemeralKey, viewSecret)
	defer wipePoint(shared)
	return DecryptMemo(output.EMemo, shared)
}

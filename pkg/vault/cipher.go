package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

const ivSize = 12
const tagSize = aes.BlockSize
const versionMagic = byte('G')

// KeySize is the length of the process-wide encryption key.
const KeySize = 32

type gcmCipher struct {
	aead cipher.AEAD
}

func newGCM(key []byte) (*gcmCipher, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}

	return &gcmCipher{aead: aead}, nil
}

func (g *gcmCipher) seal(plainText []byte) ([]byte, error) {
	// Never use more than 2^32 random nonces with a given key because of
	// the risk of a repeat.
	nonce, err := RandomBytes(ivSize)
	if err != nil {
		return nil, err
	}

	return pack(g.aead.Seal(nil, nonce, plainText, nil), nonce), nil
}

func (g *gcmCipher) open(packed []byte) ([]byte, error) {
	if len(packed) < 1+tagSize+ivSize {
		return nil, errors.New("ciphertext is too short")
	}
	if packed[0] != versionMagic {
		return nil, errors.New("unknown ciphertext version")
	}

	cipherText, iv := unpack(packed)

	return g.aead.Open(nil, iv, cipherText, nil)
}

// RandomBytes reads size bytes from the system CSPRNG.
func RandomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}

	return value, nil
}

// pack lays out "<magic><tag><iv><ciphertext>".
func pack(cipherTextWithTag []byte, iv []byte) []byte {
	tagStart := len(cipherTextWithTag) - tagSize
	tag := cipherTextWithTag[tagStart:]
	cipherText := cipherTextWithTag[:tagStart]

	data := make([]byte, 0, 1+tagSize+ivSize+len(cipherText))
	data = append(data, versionMagic)
	data = append(data, tag...)
	data = append(data, iv[:ivSize]...)
	data = append(data, cipherText...)

	return data
}

func unpack(packed []byte) ([]byte, []byte) {
	index := 1
	tag := packed[index : index+tagSize]
	index += tagSize

	iv := packed[index : index+ivSize]
	index += ivSize

	cipherText := make([]byte, 0, len(packed)-index+tagSize)
	cipherText = append(cipherText, packed[index:]...)
	cipherText = append(cipherText, tag...)

	return cipherText, iv
}

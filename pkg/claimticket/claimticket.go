// Package claimticket issues and verifies QR-coded pickup credentials for
// approved physical document requests. The plaintext claim code is only ever
// stored encrypted; residents see a masked form unless they explicitly ask
// for the reveal.
package claimticket

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// Code alphabet avoids ambiguous characters (0/O, 1/I/L).
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
const codeLength = 10

var ErrInvalidCiphertext = errors.New("claimticket: invalid ciphertext")

// Ticket is an issued claim credential.
type Ticket struct {
	Code          string    // plaintext, shown once / on reveal
	CodeMasked    string    // e.g. "AB******YZ"
	CodeEncrypted string    // AES-GCM, base64
	WindowStart   time.Time // first day the document can be claimed
	WindowEnd     time.Time // last day before re-issuance is needed
}

// Payload is the JSON embedded in the QR image and persisted alongside the
// request. It never contains the plaintext code.
type Payload struct {
	RequestNumber string `json:"request_number"`
	CodeEnc       string `json:"code_enc"`
	CodeMasked    string `json:"code_masked"`
	WindowStart   string `json:"window_start"`
	WindowEnd     string `json:"window_end"`
}

// DeriveKey turns the configured secret into a 32-byte AES key.
func DeriveKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// Issue generates a fresh claim ticket. The pickup window opens after the
// document type's processing days and stays open for two weeks.
func Issue(key []byte, processingDays int, now time.Time) (Ticket, error) {
	code, err := randomCode()
	if err != nil {
		return Ticket{}, err
	}
	enc, err := Encrypt(key, code)
	if err != nil {
		return Ticket{}, err
	}
	if processingDays < 1 {
		processingDays = 1
	}
	start := now.AddDate(0, 0, processingDays)
	return Ticket{
		Code:          code,
		CodeMasked:    Mask(code),
		CodeEncrypted: enc,
		WindowStart:   start,
		WindowEnd:     start.AddDate(0, 0, 14),
	}, nil
}

// Mask hides the middle of a claim code, keeping two characters on each end.
func Mask(code string) string {
	if len(code) <= 4 {
		return strings.Repeat("*", len(code))
	}
	return code[:2] + strings.Repeat("*", len(code)-4) + code[len(code)-2:]
}

// Encrypt seals the plaintext code with AES-256-GCM.
func Encrypt(key []byte, code string) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(code), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt recovers the plaintext code from its stored form.
func Decrypt(key []byte, enc string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}

// WritePNG renders the payload as a QR image at path (directories are
// created as needed).
func WritePNG(p Payload, path string) error {
	content, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return qrcode.WriteFile(string(content), qrcode.Medium, 256, path)
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("claimticket: %w", err)
	}
	var b strings.Builder
	for _, c := range buf {
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}

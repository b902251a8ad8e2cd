// Package keystore manages user credentials and RSA key pairs.
//
// Each registered user has:
//
//   - a credential record in the config registry (argon2id salt and a
//     passphrase verifier)
//   - <keys>/<user>_public.der, the PKIX DER public key
//   - <keys>/<user>.key, the PKCS#8 DER private key sealed with
//     ChaCha20-Poly1305 (nonce || ciphertext)
//
// The verifier and the private key wrapping key are both expanded with
// HKDF from a single argon2id derivation, so neither reveals the other.
// Imported recipient keys are stored as <keys>/<name>_public.der and
// recorded in the registry without credentials.
package keystore

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/gifveil/gifveil/internal/config"
	"github.com/gifveil/gifveil/internal/logging"
)

var (
	ErrUserExists      = errors.New("user already exists")
	ErrUnknownUser     = errors.New("unknown user")
	ErrBadPassphrase   = errors.New("incorrect passphrase")
	ErrInvalidUsername = errors.New("invalid username")
)

const (
	// KeyBits is the RSA modulus size of generated keys
	KeyBits = 2048
	// SaltSize is the argon2id salt length
	SaltSize = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// KDFParams tunes the argon2id derivation. Tests lower the cost.
type KDFParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultKDF is the argon2id cost used for new and existing users
var DefaultKDF = KDFParams{Time: argonTime, Memory: argonMemory, Threads: argonThreads}

// Store resolves users against a registry and a key directory.
// Register and ImportPublicKey modify the registry; the caller saves it.
type Store struct {
	dir  string
	reg  *config.Registry
	kdf  KDFParams
	bits int
}

// Option configures a Store
type Option func(*Store)

// WithKDF overrides the argon2id parameters
func WithKDF(p KDFParams) Option {
	return func(s *Store) { s.kdf = p }
}

// WithKeyBits overrides the RSA modulus size of generated keys
func WithKeyBits(bits int) Option {
	return func(s *Store) { s.bits = bits }
}

// New returns a Store keeping key files in dir
func New(reg *config.Registry, dir string, opts ...Option) *Store {
	s := &Store{dir: dir, reg: reg, kdf: DefaultKDF, bits: KeyBits}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the key directory
func (s *Store) Dir() string {
	return s.dir
}

// Fingerprint returns the hex xxhash64 of a DER-encoded public key
func Fingerprint(der []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(der))
}

func validateName(name string) error {
	if !usernamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, name)
	}
	return nil
}

func (s *Store) publicPath(name string) string {
	return filepath.Join(s.dir, name+"_public.der")
}

func (s *Store) privatePath(name string) string {
	return filepath.Join(s.dir, name+".key")
}

// deriveKeys returns the passphrase verifier and the private key wrapping key
func (s *Store) deriveKeys(passphrase string, salt []byte) (verifier, wrapKey []byte, err error) {
	master := argon2.IDKey([]byte(passphrase), salt, s.kdf.Time, s.kdf.Memory, s.kdf.Threads, 32)

	verifier = make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, salt, []byte("gifveil verifier")), verifier); err != nil {
		return nil, nil, err
	}
	wrapKey = make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, salt, []byte("gifveil key wrap")), wrapKey); err != nil {
		return nil, nil, err
	}
	return verifier, wrapKey, nil
}

// Register creates a user with a fresh key pair protected by passphrase
func (s *Store) Register(name, passphrase string) (*config.User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if s.reg.GetUser(name) != nil || s.reg.GetRecipient(name) != nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, name)
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	verifier, wrapKey, err := s.deriveKeys(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive keys: %w", err)
	}

	priv, err := rsa.GenerateKey(rand.Reader, s.bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode public key: %w", err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to encode private key: %w", err)
	}

	sealed, err := sealKey(privDER, wrapKey, []byte(name))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create keys directory: %w", err)
	}
	if err := writeFile(s.privatePath(name), sealed, 0o600); err != nil {
		return nil, err
	}
	if err := writeFile(s.publicPath(name), pubDER, 0o644); err != nil {
		return nil, err
	}

	user := &config.User{
		ID:             uuid.NewString(),
		PasswordHash:   hex.EncodeToString(verifier),
		Salt:           hex.EncodeToString(salt),
		KeyFingerprint: Fingerprint(pubDER),
		Created:        time.Now().UTC(),
	}
	s.reg.SetUser(name, user)

	logging.Info("User registered",
		zap.String("user", name),
		zap.String("id", user.ID),
		zap.String("fingerprint", user.KeyFingerprint),
	)
	return user, nil
}

// Authenticate checks passphrase and returns the user's private key
func (s *Store) Authenticate(name, passphrase string) (*rsa.PrivateKey, error) {
	user := s.reg.GetUser(name)
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, name)
	}

	salt, err := hex.DecodeString(user.Salt)
	if err != nil {
		return nil, fmt.Errorf("corrupt salt for %s: %w", name, err)
	}
	stored, err := hex.DecodeString(user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("corrupt verifier for %s: %w", name, err)
	}

	verifier, wrapKey, err := s.deriveKeys(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive keys: %w", err)
	}
	if !hmac.Equal(verifier, stored) {
		logging.Warn("Authentication failed", zap.String("user", name))
		return nil, ErrBadPassphrase
	}

	sealed, err := os.ReadFile(s.privatePath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	privDER, err := openKey(sealed, wrapKey, []byte(name))
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKCS8PrivateKey(privDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key for %s is not RSA", name)
	}
	return priv, nil
}

// PublicKey returns the public key of a registered user or imported
// recipient
func (s *Store) PublicKey(name string) (*rsa.PublicKey, error) {
	der, err := s.ExportPublicKey(name)
	if err != nil {
		return nil, err
	}
	return parsePublicKey(der)
}

// ExportPublicKey returns the PKIX DER public key stored under name after
// checking it against the registry fingerprint
func (s *Store) ExportPublicKey(name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	var want string
	switch {
	case s.reg.GetUser(name) != nil:
		want = s.reg.GetUser(name).KeyFingerprint
	case s.reg.GetRecipient(name) != nil:
		want = s.reg.GetRecipient(name).KeyFingerprint
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, name)
	}

	der, err := os.ReadFile(s.publicPath(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	if got := Fingerprint(der); got != want {
		return nil, fmt.Errorf("public key for %s has fingerprint %s, registry has %s", name, got, want)
	}
	return der, nil
}

// ImportPublicKey stores a DER public key under name and returns its
// fingerprint
func (s *Store) ImportPublicKey(name string, der []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if s.reg.GetUser(name) != nil {
		return "", fmt.Errorf("%w: %s is a registered user", ErrUserExists, name)
	}
	if _, err := parsePublicKey(der); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create keys directory: %w", err)
	}
	if err := writeFile(s.publicPath(name), der, 0o644); err != nil {
		return "", err
	}

	fp := Fingerprint(der)
	s.reg.SetRecipient(name, fp)
	logging.Info("Public key imported", zap.String("name", name), zap.String("fingerprint", fp))
	return fp, nil
}

// Users returns registered usernames in sorted order
func (s *Store) Users() []string {
	return s.reg.UserNames()
}

func parsePublicKey(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is %T, want RSA", key)
	}
	return pub, nil
}

func sealKey(plain, key, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plain, ad), nil
}

func openKey(sealed, key, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("private key file is truncated")
	}
	plain, err := aead.Open(nil, sealed[:aead.NonceSize()], sealed[aead.NonceSize():], ad)
	if err != nil {
		return nil, fmt.Errorf("private key file failed authentication: %w", err)
	}
	return plain, nil
}

func writeFile(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

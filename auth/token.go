package auth

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/mnehpets/queryserve/middleware"
)

var (
	ErrTokenFormat  = errors.New("invalid token format")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenConfig  = errors.New("invalid token codec configuration")
)

// tokenPrefix versions the wire format so a future codec can change the
// layout without misinterpreting old tokens.
const tokenPrefix = "qsv1"

// maxTokenLen bounds the amount of attacker-controlled data we will
// decode/allocate for a presented credential.
const maxTokenLen = 8192

// tokenClaims is the sealed payload. Integer keys keep tokens short.
type tokenClaims struct {
	Subject string   `cbor:"1,keyasint"`
	Expires int64    `cbor:"2,keyasint"`
	Scope   []string `cbor:"3,keyasint,omitempty"`
}

// TokenCodec issues and verifies self-contained sealed tokens.
//
// Format: "qsv1" "." [keyID] "." [sealed_b64]
// where sealed = nonce || AEAD.Seal(nil, nonce, cbor(claims), aad)
// and aad = "qsv1:" + keyID.
// Key rotation: keys contains all accepted keys; keyID selects the current
// sealing key.
//
// The nonce is randomly generated per token.
type TokenCodec struct {
	keyID string
	keys  map[string][]byte

	// newAEAD constructs the AEAD used to seal/open tokens.
	// Defaults to chacha20poly1305.NewX.
	newAEAD func(key []byte) (cipher.AEAD, error)

	// now is replaceable in tests.
	now func() time.Time
}

// TokenOption configures a TokenCodec.
type TokenOption func(*TokenCodec)

// WithTokenAEAD configures the codec to use a custom AEAD factory
// (e.g. AES-GCM).
func WithTokenAEAD(f func([]byte) (cipher.AEAD, error)) TokenOption {
	return func(tc *TokenCodec) { tc.newAEAD = f }
}

// NewTokenCodec creates a codec sealing with keys[keyID] and opening with
// any key in keys.
func NewTokenCodec(keyID string, keys map[string][]byte, opts ...TokenOption) (*TokenCodec, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: keys must not be empty", ErrTokenConfig)
	}
	if _, ok := keys[keyID]; !ok {
		return nil, fmt.Errorf("%w: keyID not found in keys", ErrTokenConfig)
	}
	tc := &TokenCodec{
		keyID:   keyID,
		keys:    keys,
		newAEAD: chacha20poly1305.NewX,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(tc)
	}
	// Validate keys.
	for id, k := range keys {
		if _, err := tc.newAEAD(k); err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", ErrTokenConfig, id, err)
		}
	}
	return tc, nil
}

func tokenAAD(keyID string) []byte {
	return []byte(tokenPrefix + ":" + keyID)
}

// Issue seals a token for subject with the given scopes, valid for ttl.
func (tc *TokenCodec) Issue(subject string, scope []string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("%w: ttl must be positive", ErrTokenConfig)
	}
	plain, err := cbor.Marshal(tokenClaims{
		Subject: subject,
		Expires: tc.now().Add(ttl).Unix(),
		Scope:   scope,
	})
	if err != nil {
		return "", err
	}

	aead, err := tc.newAEAD(tc.keys[tc.keyID])
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, plain, tokenAAD(tc.keyID))
	return tokenPrefix + "." + tc.keyID + "." + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Verify implements Verifier. It opens the token, checks expiry and returns
// the sealed principal.
func (tc *TokenCodec) Verify(_ context.Context, credential string) (*Principal, error) {
	if len(credential) == 0 || len(credential) > maxTokenLen {
		return nil, ErrTokenFormat
	}
	parts := strings.SplitN(credential, ".", 3)
	if len(parts) != 3 || parts[0] != tokenPrefix || parts[1] == "" || parts[2] == "" {
		return nil, ErrTokenFormat
	}
	keyID := parts[1]
	key, ok := tc.keys[keyID]
	if !ok {
		return nil, ErrTokenInvalid
	}

	sealed, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrTokenFormat
	}
	aead, err := tc.newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrTokenFormat
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, tokenAAD(keyID))
	if err != nil {
		return nil, ErrTokenInvalid
	}

	var claims tokenClaims
	if err := cbor.Unmarshal(plain, &claims); err != nil {
		return nil, ErrTokenInvalid
	}
	if tc.now().Unix() >= claims.Expires {
		return nil, ErrTokenExpired
	}
	return &Principal{Subject: claims.Subject, Scope: claims.Scope}, nil
}

// RequireToken returns a layer admitting only requests bearing a token the
// codec issued.
func RequireToken(codec *TokenCodec) middleware.Layer {
	return RequireBearer(codec)
}

package utils // package utils provides helpers for token creation, hashing and ids

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/distributor-orders/internal/model"
)

var (
	// ErrTokenExpired is returned when a token is past its exp claim.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, wrong algorithms and malformed payloads.
	ErrTokenInvalid = errors.New("invalid token")
)

// Tokens signs and verifies the two token kinds. Access and refresh
// tokens use different secrets, so one can never stand in for the other.
type Tokens struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokens builds a Tokens. A nil now uses time.Now.
func NewTokens(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, now func() time.Time) *Tokens {
	if now == nil {
		now = time.Now
	}
	return &Tokens{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           now,
	}
}

// SignedToken is a serialized JWT with its expiry.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// AccessClaims is the verified payload of an access token.
type AccessClaims struct {
	UserID string
	Role   model.Role
	Name   string
	Phone  string
}

// NewAccessToken builds and signs an HS256 JWT carrying the user's id,
// name, phone, role and address.
func (t *Tokens) NewAccessToken(id model.Identity) (SignedToken, error) {
	now := t.now().UTC()
	exp := now.Add(t.accessTTL)
	claims := jwt.MapClaims{
		"id":      id.ID,
		"name":    id.Name,
		"phone":   id.Phone,
		"role":    string(id.Role),
		"address": id.Address,
		"exp":     exp.Unix(),
		"iat":     now.Unix(),
		"jti":     NewKSUID(),
	}
	return sign(claims, t.accessSecret, exp)
}

// NewRefreshToken builds and signs an HS256 JWT carrying only the user id.
// The jti makes two tokens minted in the same second distinct.
func (t *Tokens) NewRefreshToken(userID string) (SignedToken, error) {
	now := t.now().UTC()
	exp := now.Add(t.refreshTTL)
	claims := jwt.MapClaims{
		"id":  userID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
		"jti": NewKSUID(),
	}
	return sign(claims, t.refreshSecret, exp)
}

func sign(claims jwt.MapClaims, secret []byte, exp time.Time) (SignedToken, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry, then checks that the id
// and role claims are strings and the role is known. A verified token
// with unusable claims yields ErrInvalidPayload.
func (t *Tokens) ParseAccessToken(raw string) (AccessClaims, error) {
	claims, err := t.parse(raw, t.accessSecret)
	if err != nil {
		return AccessClaims{}, err
	}
	id, okID := claims["id"].(string)
	role, okRole := claims["role"].(string)
	if !okID || id == "" || !okRole || !model.Role(role).Valid() {
		return AccessClaims{}, ErrInvalidPayload
	}
	name, _ := claims["name"].(string)
	phone, _ := claims["phone"].(string)
	return AccessClaims{UserID: id, Role: model.Role(role), Name: name, Phone: phone}, nil
}

// ErrInvalidPayload is a verified token whose claims are not usable.
var ErrInvalidPayload = errors.New("invalid payload")

// ParseRefreshToken verifies a refresh token and returns its user id.
func (t *Tokens) ParseRefreshToken(raw string) (string, error) {
	claims, err := t.parse(raw, t.refreshSecret)
	if err != nil {
		return "", err
	}
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", ErrTokenInvalid
	}
	return id, nil
}

func (t *Tokens) parse(raw string, secret []byte) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// HashRefreshToken returns the SHA-256 hash of a refresh token as a hex
// string. Only the hash is stored on the user record.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

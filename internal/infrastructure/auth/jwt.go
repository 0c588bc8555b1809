package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("auth: invalid token")
	ErrChannelMismatch = errors.New("auth: token does not grant this channel")
)

// Verifier validates HS256 bearer tokens issued by the identity subsystem.
// The subject claim carries the user id.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

func (v *Verifier) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return v.secret, nil
}

// UserID verifies token and returns its subject.
func (v *Verifier) UserID(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// IssueAccessToken signs a token for userID; used by tooling and tests.
func (v *Verifier) IssueAccessToken(userID string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

type channelClaims struct {
	Channel  string `json:"channel"`
	SocketID string `json:"socket_id"`
	jwt.RegisteredClaims
}

// ChannelTokens issues and checks short-lived realtime subscription grants.
type ChannelTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewChannelTokens(secret string, ttl time.Duration) *ChannelTokens {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ChannelTokens{secret: []byte("channel:" + secret), ttl: ttl, now: time.Now}
}

// Issue grants userID a subscription to channel for the given socket.
func (c *ChannelTokens) Issue(userID, socketID, channel string) (string, error) {
	now := c.now()
	claims := channelClaims{
		Channel:  channel,
		SocketID: socketID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks that token grants userID the channel on socketID.
func (c *ChannelTokens) Verify(token, userID, socketID, channel string) error {
	var claims channelClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject != userID || claims.SocketID != socketID || claims.Channel != channel {
		return ErrChannelMismatch
	}
	return nil
}

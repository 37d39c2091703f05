package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xavierca1/frontdesk/internal/entity"
)

const (
	issuer        = "frontdesk"
	audienceAPI   = "frontdesk-api"
	audienceOAuth = "frontdesk-oauth-state"
	audienceFeed  = "frontdesk-calendar-feed"
	stateLifetime = 10 * time.Minute
	feedLifetime  = 365 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the staff identity inside a session token.
type Claims struct {
	Username     string      `json:"username"`
	Chiropractor string      `json:"chiropractor"`
	Role         entity.Role `json:"role"`
	jwt.RegisteredClaims
}

type stateClaims struct {
	Chiropractor string `json:"chiropractor"`
	Username     string `json:"username"`
	jwt.RegisteredClaims
}

type feedClaims struct {
	Chiropractor string `json:"chiropractor"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 tokens for sessions and OAuth state.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *Manager) Issue(u *entity.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		Username:     u.Username,
		Chiropractor: u.Chiropractor,
		Role:         u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			Audience:  jwt.ClaimStrings{audienceAPI},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims, audienceAPI); err != nil {
		return nil, err
	}
	if claims.Chiropractor == "" || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignState binds an OAuth round trip to the chiropractor that started it.
func (m *Manager) SignState(username, chiropractor string) (string, error) {
	now := m.now()
	claims := stateClaims{
		Chiropractor: chiropractor,
		Username:     username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audienceOAuth},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateLifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyState returns the username and chiropractor carried by a state token.
func (m *Manager) VerifyState(state string) (string, string, error) {
	claims := &stateClaims{}
	if err := m.parse(state, claims, audienceOAuth); err != nil {
		return "", "", err
	}
	if claims.Chiropractor == "" {
		return "", "", ErrInvalidToken
	}
	return claims.Username, claims.Chiropractor, nil
}

// SignFeed issues the token embedded in a calendar subscription URL.
// Subscription clients cannot send headers, so the URL is the credential.
func (m *Manager) SignFeed(chiropractor string) (string, error) {
	now := m.now()
	claims := feedClaims{
		Chiropractor: chiropractor,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audienceFeed},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(feedLifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyFeed returns the chiropractor a feed token was issued for.
func (m *Manager) VerifyFeed(token string) (string, error) {
	claims := &feedClaims{}
	if err := m.parse(token, claims, audienceFeed); err != nil {
		return "", err
	}
	if claims.Chiropractor == "" {
		return "", ErrInvalidToken
	}
	return claims.Chiropractor, nil
}

func (m *Manager) parse(tokenString string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

package session

import (
	"errors"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// Session exposes the credentials of the signed-in user, if any.
type Session interface {
	// Token returns the bearer token and true when a user is authenticated.
	Token() (string, bool)
}

// JWTSession holds the bearer token issued by the storefront's auth service.
// The token is not verified here, the remote API does that; it is only
// checked for shape and expiry so expired sessions are sent to sign-in
// without a round trip.
type JWTSession struct {
	mu     sync.RWMutex
	token  string
	clock  clock.Clock
	parser *jwt.Parser
}

func NewJWTSession(token string, clk clock.Clock) *JWTSession {
	if clk == nil {
		clk = clock.New()
	}
	return &JWTSession{
		token:  token,
		clock:  clk,
		parser: jwt.NewParser(),
	}
}

// SetToken replaces the current token; an empty token signs the user out.
func (s *JWTSession) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *JWTSession) Token() (string, bool) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return "", false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := s.parser.ParseUnverified(token, &claims); err != nil {
		log.Debugf("Session token is malformed: %v", err)
		return "", false
	}

	if claims.ExpiresAt != nil && !s.clock.Now().Before(claims.ExpiresAt.Time) {
		log.Debugf("Session token expired at %s", claims.ExpiresAt.Time)
		return "", false
	}

	return token, true
}

// Authenticated reports whether s holds a usable token. A nil session is
// never authenticated.
func Authenticated(s Session) bool {
	if s == nil {
		return false
	}
	_, ok := s.Token()
	return ok
}

// ErrNoSession is returned by Subject when nobody is signed in.
var ErrNoSession = errors.New("session: no authenticated user")

// Subject returns the "sub" claim of the current token.
func (s *JWTSession) Subject() (string, error) {
	token, ok := s.Token()
	if !ok {
		return "", ErrNoSession
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := s.parser.ParseUnverified(token, &claims); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Static is a fixed Session, handy for tests and tools.
type Static struct {
	Value string
}

func (s Static) Token() (string, bool) {
	return s.Value, s.Value != ""
}

package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// CookieName carries the signed browser token.
const CookieName = "slopeselector_browser"

const claimBrowserID = "sid"

var ErrInvalidToken = errors.New("invalid browser token")

// Tokens signs and verifies browser tokens with an HMAC secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret []byte) *Tokens {
	return &Tokens{secret: secret, now: time.Now}
}

// Secret is the HS256 signing key, shared with the cookie-validating middleware.
func (t *Tokens) Secret() []byte {
	return t.secret
}

// Issue returns a signed token naming browserID.
func (t *Tokens) Issue(browserID string) (string, error) {
	claims := jwt.MapClaims{
		claimBrowserID: browserID,
		"iat":          t.now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign browser token")
	}
	return signed, nil
}

// Parse validates a token and returns the browser id it names.
func (t *Tokens) Parse(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	id, ok := BrowserID(parsed)
	if !ok {
		return "", ErrInvalidToken
	}
	return id, nil
}

// BrowserID extracts the browser id from a parsed token.
func BrowserID(tok *jwt.Token) (string, bool) {
	if tok == nil {
		return "", false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	id, ok := claims[claimBrowserID].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

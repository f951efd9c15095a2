package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"insight-server/internal/model"
)

// TokenService mints and checks the self-contained bearer tokens used in
// place of server-side sessions. Tokens are HS256-signed over the claims
// {sub, role, iat, exp}; the signing key is read-only after construction so
// the service is safe for concurrent use.
type TokenService struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(key []byte, accessTTL time.Duration, refreshTTL time.Duration) *TokenService {
	return &TokenService{key: key, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue signs a token for the user with the given validity window. The
// subject is the user's email; exactly one role claim is embedded.
func (s *TokenService) Issue(user model.User, validity time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.Email,
		"role": user.Role.String(),
		"iat":  now.Unix(),
		"exp":  now.Add(validity).Unix(),
	})
	return token.SignedString(s.key)
}

// IssuePair mints the access/refresh pair handed out at login. Both tokens
// share the claim shape and signing key; only the expiry horizon differs.
func (s *TokenService) IssuePair(user model.User) (model.TokenPair, error) {
	access, err := s.Issue(user, s.accessTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	refresh, err := s.Issue(user, s.refreshTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ExtractSubject verifies the signature and returns the subject claim.
// It fails with model.ErrMalformedToken when the structure cannot be parsed
// or the signature does not verify, and with model.ErrExpiredToken when the
// token is well-signed but past its expiry.
func (s *TokenService) ExtractSubject(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", model.ErrMalformedToken
	}

	expired, err := s.expired(claims)
	if err != nil {
		return "", err
	}
	if expired {
		return "", model.ErrExpiredToken
	}

	return subject, nil
}

// IsExpired reports whether the embedded expiry has elapsed. No clock-skew
// tolerance is applied. Unparsable tokens count as expired.
func (s *TokenService) IsExpired(tokenString string) bool {
	claims, err := s.parse(tokenString)
	if err != nil {
		return true
	}

	expired, err := s.expired(claims)
	if err != nil {
		return true
	}
	return expired
}

// IsValidFor reports whether the token's subject matches the user's email
// and the token has not expired.
func (s *TokenService) IsValidFor(tokenString string, user model.User) bool {
	claims, err := s.parse(tokenString)
	if err != nil {
		return false
	}

	subject, err := claims.GetSubject()
	if err != nil || subject != user.Email {
		return false
	}

	expired, err := s.expired(claims)
	if err != nil {
		return false
	}
	return !expired
}

// parse verifies the signature only; expiry is checked separately so a
// well-signed expired token can still be inspected.
func (s *TokenService) parse(tokenString string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrMalformedToken
		}
		return s.key, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return nil, model.ErrMalformedToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrMalformedToken
	}

	return claims, nil
}

func (s *TokenService) expired(claims jwt.MapClaims) (bool, error) {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, model.ErrMalformedToken
	}
	return exp.Time.Before(time.Now().UTC()), nil
}

package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var tokenSignatureAlg = jwt.SigningMethodHS256

type JWTTokenGenerator struct {
	Secret []byte
	Issuer string
	now    func() time.Time
}

// NewJWTTokenGenerator creates a HS256 token generator.
func NewJWTTokenGenerator(secret, issuer string) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		Issuer: issuer,
		now:    time.Now,
	}
}

// GenerateToken signs a token for the user that expires after ttl.
func (j *JWTTokenGenerator) GenerateToken(userID int64, email string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	issuedAt := j.clock()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(tokenSignatureAlg, claims).SignedString(j.Secret)
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{tokenSignatureAlg.Alg()}),
		jwt.WithTimeFunc(j.clock),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// UserID returns the numeric subject of the token.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

func (j *JWTTokenGenerator) clock() time.Time {
	if j.now == nil {
		return time.Now()
	}
	return j.now()
}

// WithClock overrides the time source, used to test expiry.
func (j *JWTTokenGenerator) WithClock(now func() time.Time) *JWTTokenGenerator {
	j.now = now
	return j
}

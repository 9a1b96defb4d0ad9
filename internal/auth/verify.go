package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/unclebandit/campaign-broadcaster/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the session claims issued by the identity provider.
type Claims struct {
	Email       string `json:"email"`
	WorkspaceID string `json:"workspace_id"`
	jwt.RegisteredClaims
}

// Caller converts the claims to the request's caller.
func (c *Claims) Caller() model.Caller {
	return model.Caller{UserID: c.Subject, Email: c.Email, WorkspaceID: c.WorkspaceID}
}

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

func (v *Verifier) ParseAndValidate(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parser := jwt.NewParser(opts...)

	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Sign issues a token for the claims. Used by tests and local tooling.
func (v *Verifier) Sign(claims *Claims) (string, error) {
	if claims.Issuer == "" {
		claims.Issuer = v.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

package capability

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"
)

// DefaultTokenExpiry mirrors the teacher's service-token default.
const DefaultTokenExpiry = 1 * time.Hour

// Claims is the JWT payload binding an agent id, optional domain scope,
// and its capability grants, the same shape as the teacher's
// ServiceClaims generalized from a bare service id to a full capability
// set.
type Claims struct {
	AgentID      string   `json:"agent_id"`
	Domain       string   `json:"domain,omitempty"`
	Capabilities []string `json:"capabilities"`
	jwt.RegisteredClaims
}

// TokenIssuer signs capability tokens with an RSA private key.
type TokenIssuer struct {
	privateKey *rsa.PrivateKey
	issuer     string
	expiry     time.Duration
}

// NewTokenIssuer builds a TokenIssuer. A zero expiry falls back to
// DefaultTokenExpiry.
func NewTokenIssuer(privateKey *rsa.PrivateKey, issuer string, expiry time.Duration) *TokenIssuer {
	if expiry == 0 {
		expiry = DefaultTokenExpiry
	}
	return &TokenIssuer{privateKey: privateKey, issuer: issuer, expiry: expiry}
}

// Issue signs a token binding a's id, domain scope and capability set.
func (i *TokenIssuer) Issue(a *Agent) (string, error) {
	now := time.Now()
	domain := ""
	if a.Domain != nil {
		domain = *a.Domain
	}
	claims := &Claims{
		AgentID:      a.ID,
		Domain:       domain,
		Capabilities: a.Capabilities.List(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			Issuer:    i.issuer,
			Subject:   a.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(i.privateKey)
	if err != nil {
		return "", causalityerrors.Wrap(causalityerrors.KindValidation, "sign capability token", err)
	}
	return signed, nil
}

// TokenVerifier verifies capability tokens against an RSA public key and
// reconstructs the Agent they assert.
type TokenVerifier struct {
	publicKey *rsa.PublicKey
}

// NewTokenVerifier builds a TokenVerifier.
func NewTokenVerifier(publicKey *rsa.PublicKey) *TokenVerifier {
	return &TokenVerifier{publicKey: publicKey}
}

// Verify parses and validates tokenString, returning the Agent it
// asserts. Signature failure, expiry, and malformed claims all fail.
func (v *TokenVerifier) Verify(tokenString string) (*Agent, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.publicKey, nil
	})
	if err != nil {
		return nil, causalityerrors.Wrap(causalityerrors.KindValidation, "verify capability token", err)
	}
	if !token.Valid {
		return nil, causalityerrors.New(causalityerrors.KindValidation, "capability token is not valid")
	}

	caps := make([]Capability, 0, len(claims.Capabilities))
	for _, c := range claims.Capabilities {
		caps = append(caps, Capability(c))
	}
	var domain *string
	if claims.Domain != "" {
		d := claims.Domain
		domain = &d
	}
	return NewAgent(claims.AgentID, domain, caps...), nil
}

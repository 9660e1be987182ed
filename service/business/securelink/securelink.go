// Package securelink issues and validates application level capability
// tokens: short lived signed credentials binding one subject to one
// document for one purpose. They are independent of any backend native
// URL signing and gate the web embeddable viewer route.
package securelink

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// PurposeDocumentAccess is the only purpose issued today.
const PurposeDocumentAccess = "document-access"

// DefaultValidity applies when the issuer is constructed with a zero TTL.
const DefaultValidity = time.Hour

var (
	ErrTokenExpired  = errors.New("capability token expired")
	ErrTokenInvalid  = errors.New("capability token invalid")
	ErrTokenMismatch = errors.New("capability token does not match the requested resource")
)

// Claims binds a token to a document, a subject and a purpose.
type Claims struct {
	jwt.RegisteredClaims
	DocumentID string `json:"document_id"`
	Purpose    string `json:"purpose"`
}

// Issuer creates and verifies capability tokens with a shared secret.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

func NewIssuer(secret []byte, validity time.Duration) *Issuer {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Issuer{secret: secret, validity: validity}
}

// Validity is the lifetime of tokens this issuer creates.
func (i *Issuer) Validity() time.Duration {
	return i.validity
}

// Issue signs a token authorizing userID to access documentID.
func (i *Issuer) Issue(documentID, userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		DocumentID: documentID,
		Purpose:    PurposeDocumentAccess,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign capability token")
	}
	return signed, nil
}

// Verify checks signature, expiry and binding of a token against the
// requested document. The distinct sentinel errors let callers log
// expired, invalid and mismatched tokens differently; responses should
// not distinguish expired from invalid.
func (i *Issuer) Verify(tokenString, documentID string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Purpose != PurposeDocumentAccess || claims.DocumentID != documentID {
		return nil, ErrTokenMismatch
	}
	return claims, nil
}

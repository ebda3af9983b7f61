// Package identity verifies bearer credentials against the external
// trust service that issues them. The service publishes its current
// signing certificates at a well-known URL; tokens are RS256 JWTs keyed
// by certificate id.
package identity

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified identity attached to authenticated requests.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier turns a raw bearer token into verified claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// TrustVerifier validates tokens against the trust service's published
// signing certificates. Keys are fetched per verification; the service
// rotates them and this layer keeps no cache.
type TrustVerifier struct {
	client    *http.Client
	certsURL  string
	projectID string
	parser    *jwt.Parser
}

const issuerPrefix = "https://securetoken.google.com/"

func NewTrustVerifier(certsURL, projectID string) *TrustVerifier {
	return &TrustVerifier{
		client:    &http.Client{Timeout: 10 * time.Second},
		certsURL:  certsURL,
		projectID: projectID,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256"}),
			jwt.WithIssuer(issuerPrefix+projectID),
			jwt.WithAudience(projectID),
			jwt.WithExpirationRequired(),
		),
	}
}

func (v *TrustVerifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	certs, err := v.fetchSigningCerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch signing certs: %w", err)
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		certPEM, ok := certs[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return publicKeyFromCert(certPEM)
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// fetchSigningCerts downloads the kid -> PEM certificate map.
func (v *TrustVerifier) fetchSigningCerts(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trust service returned %s", resp.Status)
	}

	certs := map[string]string{}
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return nil, err
	}
	return certs, nil
}

func publicKeyFromCert(certPEM string) (interface{}, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, fmt.Errorf("signing cert is not PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing cert: %w", err)
	}
	return cert.PublicKey, nil
}

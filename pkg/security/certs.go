package security

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// Validator implements document.CertValidator using crypto/x509.
type Validator struct{}

// NewValidator builds a Validator. It holds no state: validation is pure
// function of the PEM text handed to it.
func NewValidator() *Validator { return &Validator{} }

// ValidateCertificate reports whether certPEM decodes as a well-formed
// X.509 certificate.
func (*Validator) ValidateCertificate(certPEM string) error {
	_, err := ParseCertificate(certPEM)
	return err
}

// ValidateCertificateWithKey reports whether certPEM is a well-formed
// certificate whose public key matches keyPEM's private key.
func (*Validator) ValidateCertificateWithKey(certPEM, keyPEM string) error {
	if _, err := ParseCertificate(certPEM); err != nil {
		return err
	}
	if _, err := tls.X509KeyPair([]byte(certPEM), []byte(keyPEM)); err != nil {
		return fmt.Errorf("certificate does not match private key: %w", err)
	}
	return nil
}

// ParseCertificate decodes a single PEM-encoded X.509 certificate.
func ParseCertificate(certPEM string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("not a PEM-encoded certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing certificate: %w", err)
	}
	return cert, nil
}

// ValidateCertChain verifies cert was signed by ca, mirroring the chain
// check the original implementation expects for internally-issued
// certificates.
func ValidateCertChain(cert, ca *x509.Certificate) error {
	if cert == nil {
		return fmt.Errorf("certificate is nil")
	}
	if ca == nil {
		return fmt.Errorf("CA certificate is nil")
	}

	roots := x509.NewCertPool()
	roots.AddCert(ca)

	opts := x509.VerifyOptions{
		Roots:     roots,
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
	}
	if _, err := cert.Verify(opts); err != nil {
		return fmt.Errorf("certificate verification failed: %w", err)
	}
	return nil
}

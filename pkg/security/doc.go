// Package security provides the wallet's document.CertValidator
// implementation: PEM parsing and certificate/key-match checks for the
// ExternalCertificate and InternalCertificate document variants.
package security

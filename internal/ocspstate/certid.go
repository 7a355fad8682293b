// Package ocspstate implements component F: the per-context OCSP
// stapling derivations (CertID, its base64 encoding, the responder
// URL, and the encoded request) plus the Unknown/Fetching/Valid/Failed
// state machine spec §4.F and §5 describe.
//
// Grounded in caddytls/crypto.go's stapleOCSP and in the
// rubenwo-ocspstapling example's direct use of golang.org/x/crypto/ocsp
// for request creation and response parsing. golang.org/x/crypto/ocsp
// does not expose a standalone CertID marshaler (only the full
// CreateRequest path), so the CertID DER encoding itself — spec's
// "ocsp_id" — is built by hand here against RFC 6960's ASN.1 structure;
// this is the one derivation in this package built on encoding/asn1
// rather than a third-party library, because no such library in the
// reference corpus exposes it standalone.
package ocspstate

import (
	"crypto/sha1" //nolint:gosec // OCSP CertID hashing is specified to use SHA-1 (RFC 6960).
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"
)

var oidSHA1 = asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}

var asn1Null = asn1.RawValue{FullBytes: []byte{0x05, 0x00}}

type algorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

type certID struct {
	HashAlgorithm  algorithmIdentifier
	IssuerNameHash []byte
	IssuerKeyHash  []byte
	SerialNumber   *big.Int
}

// buildCertID returns the DER encoding of the OCSP CertID for leaf,
// identified by issuer. It never returns a zero-length result without
// an error: a zero-length i2d-equivalent is treated as failure by the
// caller, per spec's open-question note on i2d_OCSP_CERTID's return
// value.
func buildCertID(leaf, issuer *x509.Certificate) ([]byte, error) {
	if issuer == nil {
		return nil, fmt.Errorf("ocspstate: no issuer, cannot derive CertID")
	}

	nameHash := sha1.Sum(issuer.RawSubject) //nolint:gosec

	var spki struct {
		Algorithm pkix.AlgorithmIdentifier
		PublicKey asn1.BitString
	}
	if _, err := asn1.Unmarshal(issuer.RawSubjectPublicKeyInfo, &spki); err != nil {
		return nil, fmt.Errorf("ocspstate: parsing issuer public key info: %w", err)
	}
	keyHash := sha1.Sum(spki.PublicKey.RightAlign()) //nolint:gosec

	der, err := asn1.Marshal(certID{
		HashAlgorithm:  algorithmIdentifier{Algorithm: oidSHA1, Parameters: asn1Null},
		IssuerNameHash: nameHash[:],
		IssuerKeyHash:  keyHash[:],
		SerialNumber:   leaf.SerialNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("ocspstate: marshaling CertID: %w", err)
	}
	if len(der) == 0 {
		return nil, fmt.Errorf("ocspstate: CertID encoded to zero length")
	}
	return der, nil
}

// Package certchain implements component C: loading a leaf certificate
// and its chain from a PEM stream, and resolving the leaf's issuer
// either from extra certificates bundled in that same stream or from a
// trust store. Grounded in caddytls/crypto.go's certificate-loading
// helpers (adapted from Caddy's own PEM-bundle handling) and in the
// standard library's crypto/x509, which plays the role spec §4.C
// assigns to the TLS library's certificate-chain and trust-store APIs.
package certchain

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// Chain is the result of loading a PEM certificate bundle: the leaf,
// its full DER chain (suitable for tls.Certificate.Certificate), and
// the issuer if one could be found — in the bundle itself, else in the
// trust store. Issuer is nil when neither yields a match; callers must
// treat that as "stapling disabled for this context," not as an error.
type Chain struct {
	Leaf     *x509.Certificate
	Issuer   *x509.Certificate
	RawChain [][]byte // leaf DER first, then any bundled intermediates
}

// Load reads certPath (a PEM file: leaf certificate first, optionally
// followed by chain certificates) and keyPath (a PEM private key,
// which must match the leaf), and resolves the issuer per spec §4.C.
// roots is the trust store consulted when the bundle itself doesn't
// carry an issuer; a nil roots uses the system pool.
func Load(certPath, keyPath string, roots *x509.CertPool) (*Chain, tls.Certificate, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, tls.Certificate{}, &Error{Kind: ErrLoadCert, Path: certPath, Err: err}
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, tls.Certificate{}, &Error{Kind: ErrLoadCert, Path: keyPath, Err: err}
	}
	return LoadPEM(certPEM, keyPEM, certPath, keyPath, roots)
}

// LoadPEM is Load's in-memory core: it takes the cert and key PEM bytes
// directly rather than reading them from disk. This is what the
// asynchronous SNI path uses to materialize a transient Context from a
// helper response, which has no filesystem path to point Load at.
// certPath/keyPath are used only to label errors.
func LoadPEM(certPEM, keyPEM []byte, certPath, keyPath string, roots *x509.CertPool) (*Chain, tls.Certificate, error) {
	chain, err := parseChain(certPEM, certPath, roots)
	if err != nil {
		return nil, tls.Certificate{}, err
	}

	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, tls.Certificate{}, &Error{Kind: ErrParseKey, Path: keyPath, Err: fmt.Errorf("no PEM block found")}
	}
	tlsCert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, tls.Certificate{}, &Error{Kind: ErrParseKey, Path: keyPath, Err: err}
	}
	if err := matchesLeaf(tlsCert.PrivateKey, chain.Leaf); err != nil {
		return nil, tls.Certificate{}, &Error{Kind: ErrParseKey, Path: keyPath, Err: err}
	}
	tlsCert.Leaf = chain.Leaf

	return chain, tlsCert, nil
}

// parseChain reads the leaf certificate first, then drains any
// remaining PEM blocks as the extra chain, recording the first one
// that issued the leaf. If none is found, it falls back to a
// trust-store lookup via (*x509.Certificate).Verify, which is the
// standard library's equivalent of the TLS library's configured
// trust-store issuer search.
func parseChain(certPEM []byte, path string, roots *x509.CertPool) (*Chain, error) {
	rest := certPEM

	block, rest := pem.Decode(rest)
	if block == nil {
		return nil, &Error{Kind: ErrParseCert, Path: path, Err: fmt.Errorf("no PEM block found")}
	}
	leaf, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, &Error{Kind: ErrParseCert, Path: path, Err: err}
	}

	chain := &Chain{Leaf: leaf, RawChain: [][]byte{block.Bytes}}

	intermediates := x509.NewCertPool()
	for {
		// pem.Decode returning a nil block is the drain's natural
		// termination: there is no separate "no start line" error
		// state to clear, unlike an OpenSSL BIO-backed PEM reader.
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, &Error{Kind: ErrParseCert, Path: path, Err: fmt.Errorf("parsing chain certificate: %w", err)}
		}
		chain.RawChain = append(chain.RawChain, block.Bytes)
		intermediates.AddCert(cert)
		if chain.Issuer == nil && leaf.CheckSignatureFrom(cert) == nil {
			chain.Issuer = cert
		}
	}

	if chain.Issuer == nil {
		chain.Issuer = lookupTrustStoreIssuer(leaf, intermediates, roots)
	}

	return chain, nil
}

// lookupTrustStoreIssuer asks the trust store (system pool by default)
// for a certificate that issued leaf. It never fails the load: a miss
// just leaves stapling disabled for this context (spec invariant 2).
func lookupTrustStoreIssuer(leaf *x509.Certificate, intermediates, roots *x509.CertPool) *x509.Certificate {
	if roots == nil {
		var err error
		roots, err = x509.SystemCertPool()
		if err != nil || roots == nil {
			return nil
		}
	}
	chains, err := leaf.Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil || len(chains) == 0 || len(chains[0]) < 2 {
		return nil
	}
	return chains[0][1]
}

// matchesLeaf verifies that priv is the private key for leaf, beyond
// what tls.X509KeyPair already checks for the first certificate in
// the supplied chain (belt and suspenders: X509KeyPair already errors
// on mismatch, but spec §4.C calls this out as its own failure mode).
func matchesLeaf(priv crypto.PrivateKey, leaf *x509.Certificate) error {
	switch pub := leaf.PublicKey.(type) {
	case *rsa.PublicKey:
		k, ok := priv.(*rsa.PrivateKey)
		if !ok || k.PublicKey.N.Cmp(pub.N) != 0 {
			return fmt.Errorf("private key does not match RSA certificate")
		}
	case *ecdsa.PublicKey:
		k, ok := priv.(*ecdsa.PrivateKey)
		if !ok || k.PublicKey.X.Cmp(pub.X) != 0 || k.PublicKey.Y.Cmp(pub.Y) != 0 {
			return fmt.Errorf("private key does not match ECDSA certificate")
		}
	case ed25519.PublicKey:
		k, ok := priv.(ed25519.PrivateKey)
		if !ok || !k.Public().(ed25519.PublicKey).Equal(pub) {
			return fmt.Errorf("private key does not match Ed25519 certificate")
		}
	}
	return nil
}

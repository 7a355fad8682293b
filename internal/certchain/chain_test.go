package certchain

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// genCert creates a self-signed (if parent is nil) or CA-signed leaf
// certificate, returning its DER bytes, PEM bytes, and private key.
func genCert(t *testing.T, cn string, isCA bool, parent *x509.Certificate, parentKey *ecdsa.PrivateKey) (*x509.Certificate, []byte, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  isCA,
	}
	signer := tmpl
	signerKey := key
	if parent != nil {
		signer = parent
		signerKey = parentKey
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, signer, &key.PublicKey, signerKey)
	if err != nil {
		t.Fatalf("CreateCertificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	return cert, pemBytes, key
}

func writeKeyPEM(t *testing.T, key *ecdsa.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
}

func TestLoadChainWithIssuerInFile(t *testing.T) {
	ca, caPEM, caKey := genCert(t, "Test CA", true, nil, nil)
	_, leafPEM, leafKey := genCert(t, "leaf.test", false, ca, caKey)

	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	bundle := append(append([]byte{}, leafPEM...), caPEM...)
	writeFile(t, certPath, bundle)
	writeFile(t, keyPath, writeKeyPEM(t, leafKey))

	chain, tlsCert, err := Load(certPath, keyPath, x509.NewCertPool())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if chain.Leaf.Subject.CommonName != "leaf.test" {
		t.Errorf("Leaf CN = %q", chain.Leaf.Subject.CommonName)
	}
	if chain.Issuer == nil || chain.Issuer.Subject.CommonName != "Test CA" {
		t.Fatalf("Issuer = %v, want Test CA", chain.Issuer)
	}
	if len(chain.RawChain) != 2 {
		t.Errorf("len(RawChain) = %d, want 2 (leaf + issuer)", len(chain.RawChain))
	}
	if len(tlsCert.Certificate) != 2 {
		t.Errorf("len(tls.Certificate.Certificate) = %d, want 2", len(tlsCert.Certificate))
	}
}

func TestLoadChainWithoutIssuerFromTrustStore(t *testing.T) {
	ca, _, caKey := genCert(t, "Trusted CA", true, nil, nil)
	_, leafPEM, leafKey := genCert(t, "leaf2.test", false, ca, caKey)

	roots := x509.NewCertPool()
	roots.AddCert(ca)

	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	writeFile(t, certPath, leafPEM) // no chain certs bundled
	writeFile(t, keyPath, writeKeyPEM(t, leafKey))

	chain, _, err := Load(certPath, keyPath, roots)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if chain.Leaf.Subject.CommonName != "leaf2.test" {
		t.Errorf("Leaf CN = %q", chain.Leaf.Subject.CommonName)
	}
	if chain.Issuer == nil || chain.Issuer.Subject.CommonName != "Trusted CA" {
		t.Fatalf("Issuer = %v, want Trusted CA from trust store", chain.Issuer)
	}
}

func TestLoadChainNoIssuerAnywhere(t *testing.T) {
	leaf, leafPEM, leafKey := genCert(t, "alone.test", false, nil, nil)
	_ = leaf

	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	writeFile(t, certPath, leafPEM)
	writeFile(t, keyPath, writeKeyPEM(t, leafKey))

	chain, _, err := Load(certPath, keyPath, x509.NewCertPool())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if chain.Issuer != nil {
		t.Errorf("Issuer = %v, want nil (no issuer available anywhere)", chain.Issuer)
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

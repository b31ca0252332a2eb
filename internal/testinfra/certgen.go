package testinfra

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const certLifetime = time.Hour

// CertBundle is a throwaway CA plus a server certificate signed by it, PEM encoded.
type CertBundle struct {
	CACert, CAKey         []byte
	ServerCert, ServerKey []byte
}

// CertPaths locates a CertBundle written to disk for a database container.
type CertPaths struct {
	CACert     string
	ServerCert string
	ServerKey  string
}

type issued struct {
	cert *x509.Certificate
	der  []byte
	key  *ecdsa.PrivateKey
}

// GenerateCertBundle issues a CA and a server certificate covering hosts,
// which may mix DNS names and IP literals.
func GenerateCertBundle(hosts []string) (*CertBundle, error) {
	ca, err := issue(&x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "shopload-test-ca"},
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("issue CA: %w", err)
	}

	leaf := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "shopload-test-server"},
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			leaf.IPAddresses = append(leaf.IPAddresses, ip)
			continue
		}
		leaf.DNSNames = append(leaf.DNSNames, h)
	}

	server, err := issue(leaf, ca)
	if err != nil {
		return nil, fmt.Errorf("issue server certificate: %w", err)
	}

	bundle := &CertBundle{
		CACert:     pemBlock("CERTIFICATE", ca.der),
		ServerCert: pemBlock("CERTIFICATE", server.der),
	}
	if bundle.CAKey, err = keyPEM(ca.key); err != nil {
		return nil, err
	}
	if bundle.ServerKey, err = keyPEM(server.key); err != nil {
		return nil, err
	}
	return bundle, nil
}

// issue signs template with parent, or self-signs when parent is nil.
func issue(template *x509.Certificate, parent *issued) (*issued, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	template.NotBefore = now.Add(-5 * time.Minute)
	template.NotAfter = now.Add(certLifetime)

	signer, signerCert := key, template
	if parent != nil {
		signer, signerCert = parent.key, parent.cert
	}

	der, err := x509.CreateCertificate(rand.Reader, template, signerCert, &key.PublicKey, signer)
	if err != nil {
		return nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &issued{cert: cert, der: der, key: key}, nil
}

// WriteToDir stores the CA certificate and the server key pair in dir with
// owner-only permissions, as PostgreSQL refuses group-readable keys.
func (b *CertBundle) WriteToDir(dir string) (*CertPaths, error) {
	paths := &CertPaths{
		CACert:     filepath.Join(dir, "ca.crt"),
		ServerCert: filepath.Join(dir, "server.crt"),
		ServerKey:  filepath.Join(dir, "server.key"),
	}

	for _, f := range []struct {
		path string
		data []byte
	}{
		{paths.CACert, b.CACert},
		{paths.ServerCert, b.ServerCert},
		{paths.ServerKey, b.ServerKey},
	} {
		if err := os.WriteFile(f.path, f.data, 0o600); err != nil {
			return nil, fmt.Errorf("write %s: %w", filepath.Base(f.path), err)
		}
	}
	return paths, nil
}

func pemBlock(kind string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: kind, Bytes: der})
}

func keyPEM(key *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("encode key: %w", err)
	}
	return pemBlock("EC PRIVATE KEY", der), nil
}

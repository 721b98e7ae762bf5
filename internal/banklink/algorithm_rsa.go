package banklink

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"unicode/utf8"
)

var _ Algorithm = (*RSAAlgorithm)(nil)

// RSAAlgorithm implements the IPizza "008" signature scheme: SHA-1 with RSA
// PKCS#1 v1.5 over the length-prefixed canonical string, where every value is
// preceded by its character count padded to three digits. The MAC is base64.
//
// A merchant-side instance signs with its private key and verifies bank
// responses with the bank's public key; either side may be nil when only one
// direction is used.
type RSAAlgorithm struct {
	priv *rsa.PrivateKey
	pub  *rsa.PublicKey
}

func NewRSAAlgorithm(priv *rsa.PrivateKey, pub *rsa.PublicKey) *RSAAlgorithm {
	return &RSAAlgorithm{priv: priv, pub: pub}
}

// ParseRSAAlgorithm builds an RSAAlgorithm from PEM blocks. privPEM must be a
// PKCS#1 or PKCS#8 private key, pubPEM a PKIX public key or a certificate;
// either may be empty.
func ParseRSAAlgorithm(privPEM, pubPEM []byte) (*RSAAlgorithm, error) {
	a := &RSAAlgorithm{}
	if len(privPEM) > 0 {
		key, err := parsePrivateKey(privPEM)
		if err != nil {
			return nil, fmt.Errorf("rsa private key: %w", err)
		}
		a.priv = key
	}
	if len(pubPEM) > 0 {
		key, err := parsePublicKey(pubPEM)
		if err != nil {
			return nil, fmt.Errorf("rsa public key: %w", err)
		}
		a.pub = key
	}
	return a, nil
}

func parsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("not an RSA key")
	}
	return key, nil
}

func parsePublicKey(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if block.Type == "CERTIFICATE" {
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		key, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("certificate does not carry an RSA key")
		}
		return key, nil
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA key")
	}
	return key, nil
}

// MacString prefixes every value with its rune count padded to three digits,
// per the IPizza specification. Names never enter the canonical string; the
// agreed field order carries that information.
func (a *RSAAlgorithm) MacString(params []Parameter) string {
	out := make([]byte, 0, 16*len(params))
	for _, p := range params {
		out = append(out, fmt.Sprintf("%03d", utf8.RuneCountInString(p.Value))...)
		out = append(out, p.Value...)
	}
	return string(out)
}

func (a *RSAAlgorithm) Sign(params []Parameter) (string, error) {
	if a.priv == nil {
		return "", errors.New("rsa: no private key configured")
	}
	digest := sha1.Sum([]byte(a.MacString(params)))
	sig, err := rsa.SignPKCS1v15(rand.Reader, a.priv, crypto.SHA1, digest[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

func (a *RSAAlgorithm) Verify(params []Parameter, mac string) (bool, error) {
	if a.pub == nil {
		return false, errors.New("rsa: no public key configured")
	}
	sig, err := base64.StdEncoding.DecodeString(mac)
	if err != nil {
		return false, errors.New("rsa: mac is not valid base64")
	}
	digest := sha1.Sum([]byte(a.MacString(params)))
	err = rsa.VerifyPKCS1v15(a.pub, crypto.SHA1, digest[:], sig)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, rsa.ErrVerification) {
		return false, nil
	}
	return false, err
}

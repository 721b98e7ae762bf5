package banklink

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var _ Algorithm = (*HMACAlgorithm)(nil)

// HMACAlgorithm signs packets with HMAC-SHA256 over a query-style canonical
// string: `name=value` pairs joined with `&`, in store order. The MAC is
// base64 (standard encoding). Used by shared-secret bank variants.
type HMACAlgorithm struct {
	secret []byte
}

func NewHMACAlgorithm(secret []byte) (*HMACAlgorithm, error) {
	if len(secret) == 0 {
		return nil, errors.New("hmac: empty secret")
	}
	return &HMACAlgorithm{secret: secret}, nil
}

func (a *HMACAlgorithm) MacString(params []Parameter) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

func (a *HMACAlgorithm) Sign(params []Parameter) (string, error) {
	h := hmac.New(sha256.New, a.secret)
	h.Write([]byte(a.MacString(params)))
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

func (a *HMACAlgorithm) Verify(params []Parameter, mac string) (bool, error) {
	want, err := base64.StdEncoding.DecodeString(mac)
	if err != nil {
		return false, errors.New("hmac: mac is not valid base64")
	}
	h := hmac.New(sha256.New, a.secret)
	h.Write([]byte(a.MacString(params)))
	return hmac.Equal(h.Sum(nil), want), nil
}

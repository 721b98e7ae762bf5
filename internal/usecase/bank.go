package usecase

import (
	"fmt"
	"os"
	"strings"

	"merchant-banklink/internal/banklink"
	"merchant-banklink/internal/config"
)

// Bank bundles one configured bank: its request/response packet variants,
// the signing algorithm built from its credential material and the merchant
// endpoints registered with it.
type Bank struct {
	ID         string
	Request    banklink.Variant
	Response   banklink.Variant
	Alg        banklink.Algorithm
	SenderID   string
	GatewayURL string
	ReturnURL  string
	CancelURL  string
}

// NewBank resolves variants and loads credential material for one bank entry.
func NewBank(cfg config.BankConfig) (*Bank, error) {
	req, ok := banklink.VariantByName(cfg.RequestVariant)
	if !ok {
		return nil, fmt.Errorf("bank %s: unknown request variant %q", cfg.ID, cfg.RequestVariant)
	}
	resp, ok := banklink.VariantByName(cfg.ResponseVariant)
	if !ok {
		return nil, fmt.Errorf("bank %s: unknown response variant %q", cfg.ID, cfg.ResponseVariant)
	}

	var alg banklink.Algorithm
	switch cfg.Algorithm {
	case "hmac-sha256":
		a, err := banklink.NewHMACAlgorithm([]byte(cfg.Secret))
		if err != nil {
			return nil, fmt.Errorf("bank %s: %w", cfg.ID, err)
		}
		alg = a
	case "rsa-sha1":
		privPEM, err := readOptional(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("bank %s: %w", cfg.ID, err)
		}
		pubPEM, err := readOptional(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("bank %s: %w", cfg.ID, err)
		}
		a, err := banklink.ParseRSAAlgorithm(privPEM, pubPEM)
		if err != nil {
			return nil, fmt.Errorf("bank %s: %w", cfg.ID, err)
		}
		alg = a
	default:
		return nil, fmt.Errorf("bank %s: unknown algorithm %q", cfg.ID, cfg.Algorithm)
	}

	return &Bank{
		ID:         cfg.ID,
		Request:    req,
		Response:   resp,
		Alg:        alg,
		SenderID:   cfg.SenderID,
		GatewayURL: cfg.GatewayURL,
		ReturnURL:  cfg.ReturnURL,
		CancelURL:  cfg.CancelURL,
	}, nil
}

// BuildBanks constructs the registry from config, keyed by bank id.
func BuildBanks(cfg config.BanklinkConfig) (map[string]*Bank, error) {
	banks := make(map[string]*Bank, len(cfg.Banks))
	for _, bc := range cfg.Banks {
		b, err := NewBank(bc)
		if err != nil {
			return nil, err
		}
		banks[b.ID] = b
	}
	return banks, nil
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

// Channel names the transport scheme for forward audit records.
func (b *Bank) Channel() string {
	if strings.HasPrefix(b.GatewayURL, "https://") {
		return "HTTPS"
	}
	return "HTTP"
}

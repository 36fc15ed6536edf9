package payment

import (
	"errors"
	"net/url"
	"time"
)

const (
	momoDefaultEndpoint    = "https://test-payment.momo.vn"
	momoDefaultRequestType = "captureWallet"
	momoDefaultLang        = "vi"
	momoCreatePath         = "/v2/gateway/api/create"
)

// MoMoConfig contains partner credentials for the MoMo payment gateway
type MoMoConfig struct {
	// PartnerCode identifies the merchant
	PartnerCode string
	// AccessKey is sent inside every signed raw string
	AccessKey string
	// SecretKey is the HMAC-SHA256 secret
	SecretKey string
	// Endpoint is the MoMo API base URL
	Endpoint string
	// RedirectURL is where MoMo sends the browser after payment
	RedirectURL string
	// IPNURL receives server-to-server notifications
	IPNURL string
	// RequestType selects the checkout flow
	RequestType string
	// Lang is the checkout page language
	Lang string
	// Timeout bounds the create-payment HTTP call
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrMoMoMissingPartnerCode = errors.New("momo: missing partner code")
	ErrMoMoMissingAccessKey   = errors.New("momo: missing access key")
	ErrMoMoMissingSecretKey   = errors.New("momo: missing secret key")
	ErrMoMoInvalidEndpoint    = errors.New("momo: invalid endpoint")
	ErrMoMoMissingRedirectURL = errors.New("momo: missing redirect URL")
	ErrMoMoMissingIPNURL      = errors.New("momo: missing IPN URL")
)

// Validate validates the configuration and fills defaults
func (c *MoMoConfig) Validate() error {
	if c.PartnerCode == "" {
		return ErrMoMoMissingPartnerCode
	}
	if c.AccessKey == "" {
		return ErrMoMoMissingAccessKey
	}
	if c.SecretKey == "" {
		return ErrMoMoMissingSecretKey
	}
	if c.Endpoint == "" {
		c.Endpoint = momoDefaultEndpoint
	}
	if u, err := url.Parse(c.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return ErrMoMoInvalidEndpoint
	}
	if c.RedirectURL == "" {
		return ErrMoMoMissingRedirectURL
	}
	if c.IPNURL == "" {
		return ErrMoMoMissingIPNURL
	}
	if c.RequestType == "" {
		c.RequestType = momoDefaultRequestType
	}
	if c.Lang == "" {
		c.Lang = momoDefaultLang
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

package payment

import (
	"errors"
	"net/url"
	"time"
)

const (
	vnpayDefaultVersion  = "2.1.0"
	vnpayDefaultLocale   = "vn"
	vnpayDefaultPayURL   = "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
	vnpayDefaultTimezone = "Asia/Ho_Chi_Minh"
)

// VNPayConfig contains merchant credentials for the VNPay payment gateway
type VNPayConfig struct {
	// TmnCode is the merchant terminal code (vnp_TmnCode)
	TmnCode string
	// HashSecret is the shared HMAC-SHA512 secret
	HashSecret string
	// PayURL is the VNPay checkout endpoint
	PayURL string
	// ReturnURL is where VNPay redirects the browser after payment
	ReturnURL string
	// Version is the API version (vnp_Version)
	Version string
	// Locale is the checkout page language, vn or en
	Locale string
	// ExpireAfter bounds how long the checkout link stays valid
	ExpireAfter time.Duration
	// Location is the timezone VNPay expects timestamps in
	Location *time.Location
}

// Errors for configuration validation
var (
	ErrVNPayMissingTmnCode    = errors.New("vnpay: missing terminal code")
	ErrVNPayMissingHashSecret = errors.New("vnpay: missing hash secret")
	ErrVNPayInvalidPayURL     = errors.New("vnpay: invalid pay URL")
	ErrVNPayMissingReturnURL  = errors.New("vnpay: missing return URL")
)

// Validate validates the configuration and fills defaults
func (c *VNPayConfig) Validate() error {
	if c.TmnCode == "" {
		return ErrVNPayMissingTmnCode
	}
	if c.HashSecret == "" {
		return ErrVNPayMissingHashSecret
	}
	if c.PayURL == "" {
		c.PayURL = vnpayDefaultPayURL
	}
	if u, err := url.Parse(c.PayURL); err != nil || u.Scheme == "" || u.Host == "" {
		return ErrVNPayInvalidPayURL
	}
	if c.ReturnURL == "" {
		return ErrVNPayMissingReturnURL
	}
	if c.Version == "" {
		c.Version = vnpayDefaultVersion
	}
	if c.Locale == "" {
		c.Locale = vnpayDefaultLocale
	}
	if c.ExpireAfter <= 0 {
		c.ExpireAfter = 15 * time.Minute
	}
	if c.Location == nil {
		loc, err := time.LoadLocation(vnpayDefaultTimezone)
		if err != nil {
			loc = time.FixedZone("ICT", 7*3600)
		}
		c.Location = loc
	}
	return nil
}

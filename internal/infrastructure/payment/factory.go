package payment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jobboard/backend/internal/domain/payment"
	"github.com/jobboard/backend/internal/infrastructure/config"
)

// NewGateways builds the enabled gateways from application config
func NewGateways(cfg config.PaymentConfig, logger *zap.Logger) (map[payment.Method]payment.Gateway, error) {
	gateways := make(map[payment.Method]payment.Gateway, 2)
	loc := cfg.Location()

	if cfg.VNPay.Enabled {
		vnpay, err := NewVNPayAdapter(&VNPayConfig{
			TmnCode:     cfg.VNPay.TmnCode,
			HashSecret:  cfg.VNPay.HashSecret,
			PayURL:      cfg.VNPay.PayURL,
			ReturnURL:   cfg.VNPay.ReturnURL,
			Locale:      cfg.VNPay.Locale,
			ExpireAfter: cfg.VNPay.ExpireAfter,
			Location:    loc,
		})
		if err != nil {
			return nil, fmt.Errorf("vnpay gateway: %w", err)
		}
		gateways[payment.MethodVNPay] = vnpay
	}

	if cfg.MoMo.Enabled {
		momo, err := NewMoMoAdapter(&MoMoConfig{
			PartnerCode: cfg.MoMo.PartnerCode,
			AccessKey:   cfg.MoMo.AccessKey,
			SecretKey:   cfg.MoMo.SecretKey,
			Endpoint:    cfg.MoMo.Endpoint,
			RedirectURL: cfg.MoMo.RedirectURL,
			IPNURL:      cfg.MoMo.IPNURL,
			RequestType: cfg.MoMo.RequestType,
			Lang:        cfg.MoMo.Lang,
			Timeout:     cfg.MoMo.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("momo gateway: %w", err)
		}
		gateways[payment.MethodMoMo] = momo
	}

	for method := range gateways {
		logger.Info("payment gateway enabled", zap.String("method", method.String()))
	}
	return gateways, nil
}

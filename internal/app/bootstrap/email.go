package bootstrap

import (
	"context"
	"fmt"

	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/internal/notify"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Email providers accepted by EMAIL_PROVIDER.
const (
	EmailProviderAuto     = "auto"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
	EmailProviderStub     = "stub"
)

// BuildEmailSender picks the outbound mail provider. "auto" uses SendGrid when
// an API key is present and otherwise logs messages instead of sending them.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	provider := cfg.EmailProvider
	if provider == "" || provider == EmailProviderAuto {
		provider = EmailProviderStub
		if cfg.SendGridAPIKey != "" {
			provider = EmailProviderSendGrid
		}
	}

	switch provider {
	case EmailProviderSendGrid:
		if cfg.SendGridAPIKey == "" || cfg.EmailFromEmail == "" {
			return nil, fmt.Errorf("bootstrap: sendgrid requires SENDGRID_API_KEY and EMAIL_FROM")
		}
		logger.Info("email provider: sendgrid", "from", cfg.EmailFromEmail)
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromEmail,
			FromName:  cfg.EmailFromName,
			Host:      cfg.SendGridHost,
		}, logger), nil
	case EmailProviderSES:
		if cfg.EmailFromEmail == "" {
			return nil, fmt.Errorf("bootstrap: ses requires EMAIL_FROM")
		}
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		logger.Info("email provider: ses", "from", cfg.EmailFromEmail, "region", cfg.AWSRegion)
		return notify.NewSESSender(NewSESClient(awsCfg, cfg.AWSEndpointOverride), notify.SESConfig{
			FromEmail: cfg.EmailFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger), nil
	case EmailProviderStub:
		if cfg.IsProduction() {
			logger.Error("email provider not configured in production; confirmations will be logged, not sent")
		} else {
			logger.Warn("email provider not configured; confirmations will be logged, not sent")
		}
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
	}
}

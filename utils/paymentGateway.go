package utils

import (
	"context"
	"net/http"
	"strings"
	"time"

	"coursemart/apierr"
	"coursemart/config"
	"coursemart/services"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PaymentGateway looks transactions up at the payment provider before an
// order is marked paid.
type PaymentGateway struct {
	client *resty.Client
}

type gatewayTransaction struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func NewPaymentGateway(baseURL, apiKey string) *PaymentGateway {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	return &PaymentGateway{client: client}
}

// PaymentConfirmer returns the configured gateway, or nil when
// PAYMENT_GATEWAY_URL is unset.
func PaymentConfirmer() services.PaymentConfirmer {
	if config.AppConfig == nil || config.AppConfig.PaymentGatewayURL == "" {
		return nil
	}
	return NewPaymentGateway(config.AppConfig.PaymentGatewayURL, config.AppConfig.PaymentGatewayKey)
}

// ConfirmTransaction checks that the provider holds a successful charge for
// exactly this amount and currency.
func (g *PaymentGateway) ConfirmTransaction(ctx context.Context, transactionID string, amount decimal.Decimal, currency string) error {
	var tx gatewayTransaction
	resp, err := g.client.R().
		SetContext(ctx).
		SetPathParam("id", transactionID).
		SetResult(&tx).
		Get("/transactions/{id}")
	if err != nil {
		return errors.Wrap(err, "payment gateway lookup")
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return apierr.BusinessRule("Unknown payment transaction")
	case resp.IsError():
		return errors.Errorf("payment gateway http %d", resp.StatusCode())
	}

	if status := strings.ToLower(tx.Status); status != "succeeded" && status != "completed" {
		return apierr.BusinessRule("Payment transaction is " + status)
	}
	if !tx.Amount.Equal(amount) || !strings.EqualFold(tx.Currency, currency) {
		return apierr.BusinessRule("Payment amount does not match the order total")
	}
	return nil
}

// Package paymentprovider реализует клиент платежного провайдера Stripe:
// создание товара, цены и сессии оплаты, а также проверку подписи вебхуков.
package paymentprovider

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/natalia-epifanova/course-marketplace/internal/config"
)

// ErrProvider провайдер отклонил запрос или недоступен.
var ErrProvider = errors.New("payment provider error")

var hundred = decimal.NewFromInt(100)

// Client клиент REST API Stripe.
type Client struct {
	http       *resty.Client
	currency   string
	successURL string
}

// NewClient создаёт новый клиент Stripe
func NewClient(cfg config.Stripe) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.SecretKey).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:       client,
		currency:   cfg.Currency,
		successURL: cfg.SuccessURL,
	}
}

// MinorUnits переводит сумму в минимальные единицы валюты (центы), отбрасывая дробный остаток.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).IntPart()
}

// CreateProduct создает товар и возвращает его ID.
func (c *Client) CreateProduct(ctx context.Context, name string) (string, error) {
	const op = "paymentprovider.CreateProduct"

	var product Product
	if err := c.post(ctx, "/v1/products", map[string]string{"name": name}, &product); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return product.ID, nil
}

// CreatePrice создает цену для товара и возвращает ее ID.
func (c *Client) CreatePrice(ctx context.Context, amount decimal.Decimal, productID string) (string, error) {
	const op = "paymentprovider.CreatePrice"

	form := map[string]string{
		"currency":    c.currency,
		"unit_amount": strconv.FormatInt(MinorUnits(amount), 10),
		"product":     productID,
	}
	var price Price
	if err := c.post(ctx, "/v1/prices", form, &price); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return price.ID, nil
}

// CreateCheckoutSession создает разовую сессию оплаты на одну единицу цены.
func (c *Client) CreateCheckoutSession(ctx context.Context, priceID string) (*CheckoutSession, error) {
	const op = "paymentprovider.CreateCheckoutSession"

	form := map[string]string{
		"success_url":             c.successURL,
		"mode":                    "payment",
		"line_items[0][price]":    priceID,
		"line_items[0][quantity]": "1",
	}
	var session CheckoutSession
	if err := c.post(ctx, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &session, nil
}

func (c *Client) post(ctx context.Context, path string, form map[string]string, result any) error {
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetFormData(form).
		SetResult(result).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProvider, err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return fmt.Errorf("%w: %s", ErrProvider, msg)
	}
	return nil
}

package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"

	"medibook/models"
)

// Processor is the opaque payment collaborator. The booking workflow only
// sees the resulting invoice status; gateway specifics stay behind this
// interface.
type Processor interface {
	Process(ctx context.Context, req models.PaymentRequest) (*models.Invoice, error)
}

// DefaultProcessor settles card payments through Stripe and records everything
// else as pending for settlement at the clinic.
type DefaultProcessor struct {
	logger *zap.Logger
}

func NewProcessor(logger *zap.Logger) *DefaultProcessor {
	return &DefaultProcessor{logger: logger}
}

func (p *DefaultProcessor) Process(ctx context.Context, req models.PaymentRequest) (*models.Invoice, error) {
	if err := validateRequest(req); err != nil {
		return nil, fmt.Errorf("invalid payment request: %w", err)
	}

	inv := &models.Invoice{
		InvoiceID: uuid.New().String(),
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Method:    req.Method,
		Status:    "pending",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	switch req.Method {
	case models.PaymentMethodCard:
		return p.processCardPayment(ctx, req, inv)
	case models.PaymentMethodCash, models.PaymentMethodInsurance, models.PaymentMethodPayAtClinic:
		// Settled at the clinic; the booking carries paymentStatus "pending".
		p.logger.Info("payment deferred to clinic",
			zap.String("invoice", inv.InvoiceID), zap.String("method", req.Method))
		return inv, nil
	default:
		return nil, fmt.Errorf("unsupported payment method: %s", req.Method)
	}
}

func (p *DefaultProcessor) processCardPayment(ctx context.Context, req models.PaymentRequest, inv *models.Invoice) (*models.Invoice, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(req.Amount * 100)),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod: stripe.String(req.CardToken),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String("appointment booking " + req.BookingID),
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		p.logger.Error("card payment failed", zap.String("invoice", inv.InvoiceID), zap.Error(err))
		return nil, err
	}

	inv.PaymentID = intent.ID
	inv.UpdatedAt = time.Now()
	if intent.Status == stripe.PaymentIntentStatusSucceeded {
		inv.Status = "paid"
	}

	p.logger.Info("card payment processed",
		zap.String("invoice", inv.InvoiceID),
		zap.String("status", inv.Status))
	return inv, nil
}

func validateRequest(req models.PaymentRequest) error {
	if req.Amount <= 0 {
		return fmt.Errorf("invalid payment amount %.2f", req.Amount)
	}
	if req.BookingID == "" {
		return fmt.Errorf("missing booking ID")
	}
	if req.Method == models.PaymentMethodCard && req.CardToken == "" {
		return fmt.Errorf("missing card token")
	}
	return nil
}

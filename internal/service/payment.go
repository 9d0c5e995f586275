package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"prepkit-store/internal/catalog"
	"prepkit-store/internal/client"
	"prepkit-store/internal/dto"
	"prepkit-store/internal/model"
	"prepkit-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrInvalidPlan       = errors.New("unknown plan")
	ErrAmountMismatch    = errors.New("amount does not match plan price")
	ErrSignatureMismatch = errors.New("signature verification failed")
)

type PaymentService interface {
	CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, req *dto.VerifyRequest) error
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type paymentServiceImpl struct {
	db        *gorm.DB
	gateway   client.RazorpayClient
	orderRepo repository.OrderRepository
	eventRepo repository.PaymentEventRepository
	jobRepo   repository.FulfillmentJobRepository
}

func NewPaymentService(
	db *gorm.DB,
	gateway client.RazorpayClient,
	orderRepo repository.OrderRepository,
	eventRepo repository.PaymentEventRepository,
	jobRepo repository.FulfillmentJobRepository,
) PaymentService {
	return &paymentServiceImpl{
		db:        db,
		gateway:   gateway,
		orderRepo: orderRepo,
		eventRepo: eventRepo,
		jobRepo:   jobRepo,
	}
}

func (s *paymentServiceImpl) CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	plan, ok := catalog.Find(req.PlanName)
	if !ok {
		return nil, ErrInvalidPlan
	}
	// Server-side canonical pricing: the client-declared amount is not
	// trusted beyond matching the catalog price.
	if req.Amount != plan.Price {
		return nil, ErrAmountMismatch
	}

	order, err := s.gateway.CreateOrder(ctx, &client.CreateOrderRequest{
		Amount:   plan.Price * 100,
		Currency: "INR",
		Receipt:  "rcpt_" + uuid.NewString(),
		Notes: map[string]string{
			"planName":  plan.Name,
			"userEmail": req.UserEmail,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay api create order: %w", err)
	}

	return &dto.CreateOrderResponse{
		OrderID:  order.OrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}, nil
}

func (s *paymentServiceImpl) VerifyPayment(ctx context.Context, req *dto.VerifyRequest) error {
	if !s.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return ErrSignatureMismatch
	}

	plan, ok := catalog.Find(req.PlanName)
	if !ok {
		return ErrInvalidPlan
	}

	return s.recordPurchase(ctx, &purchase{
		OrderID:   req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Email:     req.UserEmail,
		PlanName:  plan.Name,
		Amount:    plan.Price * 100,
		EventType: "payment.verified",
	})
}

func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return ErrSignatureMismatch
	}

	var event model.RazorpayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	switch event.Event {
	case "payment.captured":
		return s.handlePaymentCaptured(ctx, &event)
	default:
		log.Debug().Str("event", event.Event).Msg("ignoring webhook event")
	}

	return nil
}

func (s *paymentServiceImpl) handlePaymentCaptured(ctx context.Context, event *model.RazorpayWebhookEvent) error {
	entity := event.Payload.Payment.Entity
	if entity.OrderID == "" || entity.ID == "" {
		return fmt.Errorf("webhook payload missing order or payment id")
	}

	email := entity.Notes["userEmail"]
	if email == "" {
		email = entity.Email
	}
	planName := entity.Notes["planName"]
	if _, ok := catalog.Find(planName); !ok {
		return fmt.Errorf("webhook payload has unknown plan %q", planName)
	}

	return s.recordPurchase(ctx, &purchase{
		OrderID:   entity.OrderID,
		PaymentID: entity.ID,
		Email:     email,
		PlanName:  planName,
		Amount:    entity.Amount,
		EventType: event.Event,
	})
}

type purchase struct {
	OrderID   string
	PaymentID string
	Email     string
	PlanName  string
	Amount    int64
	EventType string
}

// recordPurchase upserts the order record and enqueues the fulfillment job
// in one transaction, keyed by payment id so a duplicate gateway delivery
// is a no-op. Fulfillment itself runs asynchronously: a verified payment is
// never un-confirmed by a delivery hiccup.
func (s *paymentServiceImpl) recordPurchase(ctx context.Context, p *purchase) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen, err := s.eventRepo.Exists(ctx, tx, p.PaymentID)
		if err != nil {
			return fmt.Errorf("check payment event: %w", err)
		}
		if seen {
			log.Info().
				Str("payment_id", p.PaymentID).
				Msg("duplicate gateway delivery, already fulfilled")
			return nil
		}

		err = s.orderRepo.UpsertPurchase(ctx, tx, &model.Order{
			OrderID:   p.OrderID,
			PaymentID: p.PaymentID,
			Email:     p.Email,
			PlanName:  p.PlanName,
			Amount:    p.Amount,
			Status:    model.OrderProcessing,
		})
		if err != nil {
			return fmt.Errorf("store order in db: %w", err)
		}

		err = s.jobRepo.Enqueue(ctx, tx, &model.FulfillmentJob{
			OrderID:  p.OrderID,
			Email:    p.Email,
			PlanName: p.PlanName,
		})
		if err != nil {
			return fmt.Errorf("enqueue fulfillment job: %w", err)
		}

		if err := s.eventRepo.MarkProcessed(ctx, tx, p.PaymentID, p.EventType); err != nil {
			return fmt.Errorf("mark payment event processed: %w", err)
		}

		return nil
	})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prepkit-store/internal/catalog"
	"prepkit-store/internal/client"
	"prepkit-store/internal/dto"
	"prepkit-store/internal/mail"
	"prepkit-store/internal/model"
	"prepkit-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrNoRecipients = errors.New("no matching recipients")

type AdminService interface {
	ListOrders(ctx context.Context, f repository.OrderFilter) (*dto.OrderListResponse, error)
	DeleteOrder(ctx context.Context, id string) error
	Analytics(ctx context.Context) (*repository.Analytics, error)
	SendBulkEmail(ctx context.Context, req *dto.SendEmailRequest) (*dto.SendEmailResponse, error)
	GrantAccess(ctx context.Context, req *dto.GrantAccessRequest) (*dto.GrantAccessResponse, error)
}

type adminServiceImpl struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	mailer    client.MailSender
	fulfiller FulfillmentService
	sendDelay time.Duration
}

func NewAdminService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	mailer client.MailSender,
	fulfiller FulfillmentService,
	sendDelay time.Duration,
) AdminService {
	return &adminServiceImpl{
		db:        db,
		orderRepo: orderRepo,
		mailer:    mailer,
		fulfiller: fulfiller,
		sendDelay: sendDelay,
	}
}

func (s *adminServiceImpl) ListOrders(ctx context.Context, f repository.OrderFilter) (*dto.OrderListResponse, error) {
	orders, err := s.orderRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	plans, err := s.orderRepo.DistinctPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plan names: %w", err)
	}

	return &dto.OrderListResponse{
		Orders:    orders,
		PlanNames: plans,
		Total:     len(orders),
	}, nil
}

func (s *adminServiceImpl) DeleteOrder(ctx context.Context, id string) error {
	return s.orderRepo.Delete(ctx, id)
}

func (s *adminServiceImpl) Analytics(ctx context.Context) (*repository.Analytics, error) {
	return s.orderRepo.Analytics(ctx)
}

// SendBulkEmail dispatches a marketing email to past buyers, sequentially
// with a fixed delay between sends to respect the relay's rate limit.
// A failure on one recipient never aborts the rest; the result reports
// aggregate counts and the failed addresses.
func (s *adminServiceImpl) SendBulkEmail(ctx context.Context, req *dto.SendEmailRequest) (*dto.SendEmailResponse, error) {
	id := mail.Resolve(req.TemplateType)
	subject, body := mail.Render(id, mail.Data{
		Subject: req.CustomSubject,
		Message: req.Message,
	})

	if req.TestEmail != "" {
		err := s.mailer.Send(ctx, &client.Mail{To: req.TestEmail, Subject: subject, HTML: body})
		if err != nil {
			return &dto.SendEmailResponse{FailedCount: 1, FailedEmails: []string{req.TestEmail}}, nil
		}
		return &dto.SendEmailResponse{SentCount: 1}, nil
	}

	planFilter := req.FilterByKit
	if req.SendToAll {
		planFilter = ""
	}

	recipients, err := s.orderRepo.Recipients(ctx, planFilter)
	if err != nil {
		return nil, fmt.Errorf("resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	resp := &dto.SendEmailResponse{}
	for i, to := range recipients {
		err := s.mailer.Send(ctx, &client.Mail{To: to, Subject: subject, HTML: body})
		if err != nil {
			log.Warn().Err(err).Str("email", to).Msg("bulk send failed for recipient")
			resp.FailedCount++
			resp.FailedEmails = append(resp.FailedEmails, to)
		} else {
			resp.SentCount++
		}

		if i+1 < len(recipients) {
			time.Sleep(s.sendDelay)
		}
	}

	log.Info().
		Int("sent", resp.SentCount).
		Int("failed", resp.FailedCount).
		Msg("bulk email dispatch finished")

	return resp, nil
}

// GrantAccess is the manual fulfillment trigger: grant + email out-of-band
// of any payment, recording a zero-amount manual order so the buyer shows
// up in later bulk-email targeting.
func (s *adminServiceImpl) GrantAccess(ctx context.Context, req *dto.GrantAccessRequest) (*dto.GrantAccessResponse, error) {
	plan, ok := catalog.Find(req.Course)
	if !ok {
		return nil, ErrInvalidPlan
	}

	log.Info().
		Str("email", req.Email).
		Str("phone", req.Phone).
		Str("course", plan.Name).
		Msg("manual access grant requested")

	result, err := s.fulfiller.Fulfill(ctx, req.Email, plan.Name)
	if err != nil {
		return nil, fmt.Errorf("manual fulfillment: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.UpsertPurchase(ctx, tx, &model.Order{
			OrderID:  "manual-" + uuid.NewString(),
			Email:    req.Email,
			PlanName: plan.Name,
			Amount:   0,
			Status:   model.OrderEmailSent,
		})
	})
	if err != nil {
		// Access is already granted and the email sent; a bookkeeping
		// failure should not report the grant as failed.
		log.Error().Err(err).Str("email", req.Email).Msg("record manual grant failed")
	}

	return &dto.GrantAccessResponse{
		Success:    true,
		FolderLink: result.FolderLink,
	}, nil
}

package service

import (
	"context"
	"fmt"

	"prepkit-store/internal/catalog"
	"prepkit-store/internal/client"
	"prepkit-store/internal/mail"

	"github.com/rs/zerolog/log"
)

type FulfillmentResult struct {
	FolderName string
	FolderLink string
}

// FulfillmentService grants folder access and sends the purchase email.
// It is invoked by the background worker and by the manual admin trigger.
type FulfillmentService interface {
	Fulfill(ctx context.Context, email, planName string) (*FulfillmentResult, error)
}

type fulfillmentServiceImpl struct {
	drive  client.DriveClient
	mailer client.MailSender
	plans  *catalog.Resolver
}

func NewFulfillmentService(drive client.DriveClient, mailer client.MailSender, plans *catalog.Resolver) FulfillmentService {
	return &fulfillmentServiceImpl{
		drive:  drive,
		mailer: mailer,
		plans:  plans,
	}
}

func (s *fulfillmentServiceImpl) Fulfill(ctx context.Context, email, planName string) (*FulfillmentResult, error) {
	folderID, err := s.plans.FolderID(planName)
	if err != nil {
		return nil, err
	}

	// The link grant alone satisfies delivery. Re-granting reports
	// "already granted", which is not an error here.
	if err := s.drive.GrantAnyoneWithLink(ctx, folderID); err != nil && !client.IsAlreadyGranted(err) {
		return nil, fmt.Errorf("grant link access: %w", err)
	}

	// Per-user grant is best effort; it fails for some account types and
	// the link grant already covers them.
	if err := s.drive.GrantReader(ctx, folderID, email); err != nil {
		log.Warn().
			Err(err).
			Str("email", email).
			Str("folder_id", folderID).
			Msg("per-user grant failed, link grant covers delivery")
	}

	folder, err := s.drive.GetFolder(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("fetch folder metadata: %w", err)
	}

	subject, body := mail.Render(mail.TemplatePurchase, mail.Data{
		PlanName:   planName,
		FolderName: folder.Name,
		FolderLink: folder.Link,
	})

	err = s.mailer.Send(ctx, &client.Mail{
		To:      email,
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		return nil, fmt.Errorf("send purchase email: %w", err)
	}

	return &FulfillmentResult{
		FolderName: folder.Name,
		FolderLink: folder.Link,
	}, nil
}

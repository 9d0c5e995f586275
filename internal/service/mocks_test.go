package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"prepkit-store/internal/client"
	"prepkit-store/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.Order{}, &model.PaymentEvent{}, &model.FulfillmentJob{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

type mockGateway struct {
	CreateOrderFunc            func(ctx context.Context, req *client.CreateOrderRequest) (*client.GatewayOrder, error)
	VerifyPaymentSignatureFunc func(orderID, paymentID, signature string) bool
	VerifyWebhookSignatureFunc func(body []byte, signature string) bool
}

func (m *mockGateway) CreateOrder(ctx context.Context, req *client.CreateOrderRequest) (*client.GatewayOrder, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if m.VerifyPaymentSignatureFunc != nil {
		return m.VerifyPaymentSignatureFunc(orderID, paymentID, signature)
	}
	return false
}

func (m *mockGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(body, signature)
	}
	return false
}

type mockDrive struct {
	GrantAnyoneWithLinkFunc func(ctx context.Context, folderID string) error
	GrantReaderFunc         func(ctx context.Context, folderID, email string) error
	GetFolderFunc           func(ctx context.Context, folderID string) (*client.Folder, error)

	anyoneGrants []string
	readerGrants []string
}

func (m *mockDrive) GrantAnyoneWithLink(ctx context.Context, folderID string) error {
	m.anyoneGrants = append(m.anyoneGrants, folderID)
	if m.GrantAnyoneWithLinkFunc != nil {
		return m.GrantAnyoneWithLinkFunc(ctx, folderID)
	}
	return nil
}

func (m *mockDrive) GrantReader(ctx context.Context, folderID, email string) error {
	m.readerGrants = append(m.readerGrants, email)
	if m.GrantReaderFunc != nil {
		return m.GrantReaderFunc(ctx, folderID, email)
	}
	return nil
}

func (m *mockDrive) GetFolder(ctx context.Context, folderID string) (*client.Folder, error) {
	if m.GetFolderFunc != nil {
		return m.GetFolderFunc(ctx, folderID)
	}
	return &client.Folder{
		Name: "Test Folder",
		Link: "https://drive.google.com/drive/folders/" + folderID,
	}, nil
}

type mockMailer struct {
	mu       sync.Mutex
	SendFunc func(ctx context.Context, m *client.Mail) error
	sent     []*client.Mail
}

func (m *mockMailer) Send(ctx context.Context, mail *client.Mail) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, mail); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return nil
}

type mockFulfiller struct {
	FulfillFunc func(ctx context.Context, email, planName string) (*FulfillmentResult, error)
	calls       []string
}

func (m *mockFulfiller) Fulfill(ctx context.Context, email, planName string) (*FulfillmentResult, error) {
	m.calls = append(m.calls, email)
	if m.FulfillFunc != nil {
		return m.FulfillFunc(ctx, email, planName)
	}
	return &FulfillmentResult{FolderName: "Test Folder", FolderLink: "https://drive.google.com/x"}, nil
}

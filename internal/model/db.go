package model

import "time"

const (
	OrderProcessing = "processing"
	OrderEmailSent  = "email_sent"
	OrderFailed     = "failed"
)

type Order struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      string    `gorm:"size:64;uniqueIndex;not null" json:"orderId"` // razorpay order id
	PaymentID    string    `gorm:"size:64;index" json:"paymentId"`
	Email        string    `gorm:"size:255;index;not null" json:"email"`
	PlanName     string    `gorm:"size:128;index;not null" json:"planName"`
	Amount       int64     `gorm:"not null" json:"amount"` // paise
	Status       string    `gorm:"size:32;index;not null" json:"status"`
	ErrorMessage string    `gorm:"size:512" json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PaymentEvent records a processed verify/webhook delivery keyed by the
// gateway payment id, so at-least-once deliveries fulfill at most once.
type PaymentEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobSent       = "sent"
	JobFailed     = "failed"
)

// FulfillmentJob is the durable outbox row for the grant-access-then-email
// step. It is written in the same transaction as the order record and
// processed by the background worker.
type FulfillmentJob struct {
	ID        uint      `gorm:"primaryKey"`
	OrderID   string    `gorm:"size:64;index;not null"`
	Email     string    `gorm:"size:255;not null"`
	PlanName  string    `gorm:"size:128;not null"`
	Status    string    `gorm:"size:32;index;not null"`
	Attempts  int       `gorm:"not null"`
	NextRetry time.Time `gorm:"index"`
	LastError string    `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

package dto

import (
	"prepkit-store/internal/model"
	"prepkit-store/internal/repository"
)

type CreateOrderRequest struct {
	Amount    int64  `json:"amount"` // INR major units
	PlanName  string `json:"planName"`
	UserEmail string `json:"userEmail"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
}

type VerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	UserEmail         string `json:"userEmail"`
	PlanName          string `json:"planName"`
}

type VerifyResponse struct {
	Verified bool `json:"verified"`
}

type OrderListResponse struct {
	Orders    []*model.Order `json:"orders"`
	PlanNames []string       `json:"planNames"`
	Total     int            `json:"total"`
}

type SendEmailRequest struct {
	TemplateType  string `json:"templateType"`
	CustomSubject string `json:"customSubject"`
	Message       string `json:"message"`
	FilterByKit   string `json:"filterByKit"`
	SendToAll     bool   `json:"sendToAll"`
	TestEmail     string `json:"testEmail"`
}

type SendEmailResponse struct {
	SentCount    int      `json:"sentCount"`
	FailedCount  int      `json:"failedCount"`
	FailedEmails []string `json:"failedEmails,omitempty"`
}

type GrantAccessRequest struct {
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Course string `json:"course"`
}

type GrantAccessResponse struct {
	Success    bool   `json:"success"`
	FolderLink string `json:"folderLink,omitempty"`
}

type AnalyticsResponse = repository.Analytics

package dto

type SubscribeRequest struct {
	PlanID           string `json:"plan_id" validate:"required,oneof=free premium enterprise"`
	PaymentMethodRef string `json:"payment_method_ref,omitempty" validate:"omitempty,max=255"`
}

type CreateClientRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=40"`
	Notes string `json:"notes" validate:"omitempty,max=2000"`
}

type CreateProjectRequest struct {
	ClientID    int64  `json:"client_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=4000"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type CreateInvoiceRequest struct {
	ProjectID int64              `json:"project_id" validate:"required"`
	Lines     []InvoiceLineInput `json:"lines" validate:"required,min=1,dive"`
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft issued paid void"`
}

type InvoiceLineInput struct {
	Description string `json:"description" validate:"required,max=400"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	UnitAmount  int64  `json:"unit_amount" validate:"required,min=0"`
}

type GeneratePatternRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
	Style  string `json:"style" validate:"omitempty,max=100"`
}

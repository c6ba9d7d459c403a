package apierror

import (
	"encoding/json"
	"net/http"
)

// Machine-readable error codes returned in the response envelope.
const (
	CodeBadRequest           = "bad_request"
	CodeUnauthorized         = "unauthorized"
	CodeNotFound             = "not_found"
	CodeInvalidPlan          = "invalid_plan"
	CodePaymentProvider      = "payment_provider_error"
	CodeSubscriptionInactive = "subscription_inactive"
	CodeFeatureNotAvailable  = "feature_not_available"
	CodePlanLimitReached     = "plan_limit_reached"
	CodeInternal             = "internal"
)

// Envelope is the uniform error body for every non-2xx response.
type Envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Write(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Code: code, Message: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	Write(w, http.StatusBadRequest, CodeBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Write(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Write(w, http.StatusNotFound, CodeNotFound, message)
}

func Forbidden(w http.ResponseWriter, code, message string) {
	Write(w, http.StatusForbidden, code, message)
}

func Internal(w http.ResponseWriter, message string) {
	Write(w, http.StatusInternalServerError, CodeInternal, message)
}

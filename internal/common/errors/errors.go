// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Booking domain errors
const (
	ErrCodePricingInputInvalid     ErrorCode = "PRICING_INPUT_INVALID"
	ErrCodePlanTemplateNotFound    ErrorCode = "PLAN_TEMPLATE_NOT_FOUND"
	ErrCodeBookingValidationFailed ErrorCode = "BOOKING_VALIDATION_FAILED"
	ErrCodeUnitNotAvailable        ErrorCode = "UNIT_NOT_AVAILABLE"
	ErrCodeLeadRelationMissing     ErrorCode = "LEAD_RELATION_MISSING"
	ErrCodeKYCFrozen               ErrorCode = "KYC_FROZEN"

	ErrCodeUpstreamFetchFailed     ErrorCode = "UPSTREAM_FETCH_FAILED"
	ErrCodeUpstreamTimeout         ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeBookingSubmissionFailed ErrorCode = "BOOKING_SUBMISSION_FAILED"
	ErrCodeKYCRequestFailed        ErrorCode = "KYC_REQUEST_FAILED"
	ErrCodeKYCLinkFailed           ErrorCode = "KYC_LINK_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeCacheFailed              ErrorCode = "CACHE_OPERATION_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// Generic errors
const (
	ErrCodeBusinessRule     ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication   ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError unwraps err into a *StandardError if one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewPricingInputInvalidError is returned when job variables cannot be turned into a deal.
func NewPricingInputInvalidError(details string) *StandardError {
	return newError(ErrCodePricingInputInvalid, "Pricing input is invalid", details, false)
}

// NewPlanTemplateNotFoundError is returned when a MASTER plan references an unknown template.
func NewPlanTemplateNotFoundError(templateID string) *StandardError {
	return newError(ErrCodePlanTemplateNotFound, "Payment plan template not found",
		fmt.Sprintf("templateId: %s", templateID), false)
}

// NewBookingValidationFailedError carries the user-facing message of the first failed rule.
func NewBookingValidationFailedError(rule, message string) *StandardError {
	return newError(ErrCodeBookingValidationFailed, message, fmt.Sprintf("rule: %s", rule), false).
		WithMetadata("rule", rule)
}

func NewUnitNotAvailableError(unitID, status string) *StandardError {
	return newError(ErrCodeUnitNotAvailable, "Selected unit is no longer available",
		fmt.Sprintf("unitId: %s, status: %s", unitID, status), false)
}

func NewLeadRelationMissingError(leadID string) *StandardError {
	return newError(ErrCodeLeadRelationMissing, "No relation to lead",
		fmt.Sprintf("leadId: %s", leadID), false)
}

func NewKYCFrozenError(requestID string) *StandardError {
	return newError(ErrCodeKYCFrozen, "KYC details are frozen once a request has been sent",
		fmt.Sprintf("kycRequestId: %s", requestID), false)
}

// NewUpstreamFetchFailedError wraps a retryable failure of one of the sales API lookups.
func NewUpstreamFetchFailedError(resource string, err error) *StandardError {
	return newError(ErrCodeUpstreamFetchFailed, fmt.Sprintf("Failed to fetch %s", resource), err.Error(), true)
}

func NewUpstreamTimeoutError(resource string) *StandardError {
	return newError(ErrCodeUpstreamTimeout, fmt.Sprintf("Timed out fetching %s", resource),
		"request exceeded the configured timeout", true)
}

// NewBookingSubmissionFailedError wraps a transport failure of the booking sink. Backend
// field rejections are reported as a FAILED submission result instead.
func NewBookingSubmissionFailedError(err error) *StandardError {
	return newError(ErrCodeBookingSubmissionFailed, "Booking submission failed", err.Error(), true)
}

func NewKYCRequestFailedError(err error) *StandardError {
	return newError(ErrCodeKYCRequestFailed, "KYC request failed", err.Error(), true)
}

func NewKYCLinkFailedError(err error) *StandardError {
	return newError(ErrCodeKYCLinkFailed, "Failed to link KYC request to booking", err.Error(), false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewCacheFailedError(op string, err error) *StandardError {
	return newError(ErrCodeCacheFailed, "Cache operation failed",
		fmt.Sprintf("op: %s, error: %s", op, err.Error()), true)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true)
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRule, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes caught by boundary events
// in the booking process models.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodePricingInputInvalid:      "PRICING_INPUT_INVALID",
	ErrCodePlanTemplateNotFound:     "PLAN_TEMPLATE_NOT_FOUND",
	ErrCodeBookingValidationFailed:  "BOOKING_REJECTED",
	ErrCodeUnitNotAvailable:         "UNIT_NOT_AVAILABLE",
	ErrCodeLeadRelationMissing:      "LEAD_RELATION_MISSING",
	ErrCodeKYCFrozen:                "KYC_FROZEN",
	ErrCodeUpstreamFetchFailed:      "UPSTREAM_FETCH_FAILED",
	ErrCodeUpstreamTimeout:          "UPSTREAM_TIMEOUT",
	ErrCodeBookingSubmissionFailed:  "BOOKING_SUBMISSION_FAILED",
	ErrCodeKYCRequestFailed:         "KYC_REQUEST_FAILED",
	ErrCodeKYCLinkFailed:            "KYC_LINK_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
	ErrCodeCacheFailed:              "CACHE_OPERATION_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUpstreamFetchFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeCacheFailed,
		ErrCodeKYCRequestFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeUpstreamTimeout, ErrCodeTimeout:
		return 2

	// a half-applied multipart submission must not be replayed blindly
	case ErrCodeBookingSubmissionFailed:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "KYC"):
		return "KYC"
	case strings.Contains(codeStr, "UPSTREAM") || strings.Contains(codeStr, "SUBMISSION") || strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "UPSTREAM"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "UNIT") || strings.Contains(codeStr, "LEAD"):
		return "INVENTORY"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "TEMPLATE"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

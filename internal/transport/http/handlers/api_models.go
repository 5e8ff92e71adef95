package handlers

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// SignupRequest defines the payload for account creation.
type SignupRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required"`
}

// SignupResponse describes the response returned for a successful signup.
type SignupResponse struct {
	Message              string `json:"message"`
	UserID               string `json:"user_id"`
	VerificationRequired bool   `json:"verification_required"`
}

// VerifyResponse describes the result of consuming a verification link.
type VerifyResponse struct {
	Message  string `json:"message"`
	Verified bool   `json:"verified"`
}

// ResendVerificationRequest defines the payload for requesting a fresh verification link.
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetRequestSchema defines the payload for initiating a password reset.
type ResetRequestSchema struct {
	Email string `json:"email" binding:"required"`
}

// ResetConfirmRequest defines the payload for completing a password reset.
type ResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ResetResponse is returned by both password reset endpoints.
type ResetResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platformkit/account-service/internal/core/port"
	"github.com/platformkit/account-service/internal/usecase"
)

// PasswordHandler exposes the password reset endpoints.
type PasswordHandler struct {
	resets   *usecase.PasswordResetService
	notifier port.Notifier
}

func NewPasswordHandler(resets *usecase.PasswordResetService, notifier port.Notifier) *PasswordHandler {
	return &PasswordHandler{
		resets:   resets,
		notifier: notifier,
	}
}

// RegisterRoutes binds password reset endpoints.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/request", h.RequestReset)
	r.POST("/confirm", h.ConfirmReset)
}

// RequestReset issues a reset link. The response is identical whether or not
// the address belongs to an account, so it cannot be used to probe for
// registered emails.
func (h *PasswordHandler) RequestReset(c *gin.Context) {
	var req ResetRequestSchema
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	issued, err := h.resets.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to process reset request"))
		return
	}

	if issued != nil {
		h.dispatchReset(issued)
	}

	c.JSON(http.StatusOK, ResetResponse{
		Message: "if the email is registered, a reset link has been sent",
		Success: true,
	})
}

// ConfirmReset consumes a reset token and sets the new password.
func (h *PasswordHandler) ConfirmReset(c *gin.Context) {
	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset confirmation payload"))
		return
	}

	_, err := h.resets.ConfirmReset(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResetNotFound, Status: http.StatusNotFound, Message: "reset token is invalid"},
			{Err: usecase.ErrResetAlreadyUsed, Status: http.StatusConflict, Message: "reset token has already been used"},
			{Err: usecase.ErrResetExpired, Status: http.StatusGone, Message: "reset token has expired"},
			{Err: usecase.ErrNewPasswordInvalid, Status: http.StatusBadRequest, Message: "new password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, ResetResponse{
		Message: "password has been reset",
		Success: true,
	})
}

func (h *PasswordHandler) dispatchReset(issued *usecase.IssuedReset) {
	if h.notifier == nil || issued.Token == "" {
		return
	}

	payload := port.ResetNotification{
		Email:     issued.User.Email,
		Username:  issued.User.Username,
		FirstName: issued.User.FirstName,
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		_ = h.notifier.SendPasswordResetEmail(ctx, payload)
	}()
}

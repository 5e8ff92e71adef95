package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/platformkit/account-service/internal/core/domain"
	"github.com/platformkit/account-service/internal/core/port"
	"github.com/platformkit/account-service/internal/usecase"
)

const notifyTimeout = 10 * time.Second

// RegistrationHandler exposes endpoints for account signup and email verification.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
	notifier     port.Notifier
}

func NewRegistrationHandler(registration *usecase.RegistrationService, notifier port.Notifier) *RegistrationHandler {
	return &RegistrationHandler{
		registration: registration,
		notifier:     notifier,
	}
}

// RegisterRoutes binds registration endpoints.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/signup", h.Signup)
	r.GET("/verify/:token", h.Verify)
	r.POST("/resend-verification", h.ResendVerification)
}

// Signup creates an inactive account and sends the verification link.
func (h *RegistrationHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid signup payload"))
		return
	}

	user, verification, err := h.registration.RegisterUser(c.Request.Context(), usecase.RegistrationInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		// The uniqueness checks race with concurrent signups; the database
		// constraint is the final word.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_email_key":
				c.JSON(http.StatusConflict, NewErrorResponse(c, "email already registered"))
			case "users_username_key":
				c.JSON(http.StatusConflict, NewErrorResponse(c, "username already registered"))
			default:
				c.JSON(http.StatusConflict, NewErrorResponse(c, "account already exists"))
			}
			return
		}

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUsernameTaken, Status: http.StatusConflict, Message: "username already registered"},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to create account")
		return
	}

	h.dispatchVerification(user, verification)

	c.JSON(http.StatusOK, SignupResponse{
		Message:              "account created, check your email to verify your address",
		UserID:               user.ID,
		VerificationRequired: true,
	})
}

// Verify consumes a verification link and activates the account.
func (h *RegistrationHandler) Verify(c *gin.Context) {
	token := c.Param("token")

	_, err := h.registration.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrVerificationNotFound, Status: http.StatusNotFound, Message: "verification link is invalid"},
			{Err: usecase.ErrAlreadyVerified, Status: http.StatusConflict, Message: "email is already verified"},
			{Err: usecase.ErrVerificationExpired, Status: http.StatusGone, Message: "verification link has expired"},
		}, http.StatusInternalServerError, "failed to verify email")
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{
		Message:  "email verified, your account is now active",
		Verified: true,
	})
}

// ResendVerification rotates the outstanding verification token and sends a
// fresh link. Accounts that already verified get the same success shape with
// no email, so the endpoint stays idempotent for impatient clients.
func (h *RegistrationHandler) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid resend payload"))
		return
	}

	user, verification, err := h.registration.ResendVerification(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, usecase.ErrAlreadyVerified) {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "no account found for this email"},
		}, http.StatusInternalServerError, "failed to resend verification email")
		return
	}

	if err == nil {
		h.dispatchVerification(user, verification)
	}

	// Already-verified accounts get the identical shape with no email sent.
	c.JSON(http.StatusOK, SignupResponse{
		Message:              "verification email sent",
		UserID:               user.ID,
		VerificationRequired: true,
	})
}

func (h *RegistrationHandler) dispatchVerification(user domain.User, verification usecase.IssuedVerification) {
	if h.notifier == nil || verification.Token == "" {
		return
	}

	payload := port.VerificationNotification{
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		Token:     verification.Token,
		ExpiresAt: verification.ExpiresAt,
	}

	// Delivery must not hold up or fail the response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		_ = h.notifier.SendVerificationEmail(ctx, payload)
	}()
}

package rest

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/kavyaresto/kavyaserve/internal/common"
	"github.com/kavyaresto/kavyaserve/internal/logging"
	"github.com/kavyaresto/kavyaserve/internal/server/models"
	"github.com/kavyaresto/kavyaserve/internal/server/services"
)

// AuthService is the account lifecycle the handlers drive.
type AuthService interface {
	Signup(ctx context.Context, req services.SignupRequest) error
	ResendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Profile(ctx context.Context, userID string) (*models.Profile, error)
}

// SessionAuthenticator resolves a bearer token to a user id.
type SessionAuthenticator interface {
	Authenticate(token string) (string, error)
}

type Handlers struct {
	svc      AuthService
	sessions SessionAuthenticator
	logger   logging.Logger
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicUser `json:"user"`
}

type profileResponse struct {
	User *models.Profile `json:"user"`
}

var (
	signupFailure  = failure{validation: "All fields are required", internal: "Signup failed"}
	resendFailure  = failure{validation: "Email required", internal: "Resend OTP failed"}
	verifyFailure  = failure{validation: "Email and OTP required", internal: "OTP verification failed"}
	loginFailure   = failure{validation: "Email and password required", internal: "Login failed"}
	profileFailure = failure{internal: "Failed to fetch profile"}
)

// Register mounts the auth routes under /api/auth.
func (h *Handlers) Register(app *fiber.App) {
	g := app.Group("/api/auth")
	g.Post("/signup", h.Signup)
	g.Post("/resend", h.ResendOTP)
	g.Post("/verify", h.VerifyOTP)
	g.Post("/login", h.Login)
	g.Get("/profile", h.requireSession(h.Profile))
}

func (h *Handlers) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return writeMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	err := h.svc.Signup(c.UserContext(), services.SignupRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.logFailure(c, "signup", err)
		return writeError(c, err, signupFailure)
	}

	return writeMessage(c, fiber.StatusOK, "OTP sent to email")
}

func (h *Handlers) ResendOTP(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return writeMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.svc.ResendOTP(c.UserContext(), req.Email); err != nil {
		h.logFailure(c, "resend", err)
		return writeError(c, err, resendFailure)
	}

	return writeMessage(c, fiber.StatusOK, "OTP resent")
}

func (h *Handlers) VerifyOTP(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return writeMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.svc.VerifyOTP(c.UserContext(), req.Email, req.OTP); err != nil {
		h.logFailure(c, "verify", err)
		return writeError(c, err, verifyFailure)
	}

	return writeMessage(c, fiber.StatusOK, "Account verified successfully")
}

func (h *Handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return writeMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.logFailure(c, "login", err)
		return writeError(c, err, loginFailure)
	}

	return c.Status(fiber.StatusOK).JSON(loginResponse{
		Message: "Login successful",
		Token:   res.Token,
		User:    res.User,
	})
}

// Profile is reached only through requireSession.
func (h *Handlers) Profile(c *fiber.Ctx, userID string) error {
	p, err := h.svc.Profile(c.UserContext(), userID)
	if err != nil {
		h.logFailure(c, "profile", err)
		return writeError(c, err, profileFailure)
	}

	return c.Status(fiber.StatusOK).JSON(profileResponse{User: p})
}

func (h *Handlers) logFailure(c *fiber.Ctx, op string, err error) {
	if errors.Is(err, common.ErrorInternal) || errors.Is(err, common.ErrEmailDelivery) {
		h.logger.Error(c.UserContext(), "request failed", "op", op, "error", err)
		return
	}
	h.logger.Debug(c.UserContext(), "request rejected", "op", op, "error", err)
}

// Package services contains server-side business logic. This file implements
// AuthService: signup with e-mailed one-time codes, code resend and
// verification, password login and the signed-in profile.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kavyaresto/kavyaserve/internal/common"
	"github.com/kavyaresto/kavyaserve/internal/dbx"
	"github.com/kavyaresto/kavyaserve/internal/logging"
	"github.com/kavyaresto/kavyaserve/internal/server/models"
	"github.com/kavyaresto/kavyaserve/internal/server/notify"
	"github.com/kavyaresto/kavyaserve/internal/server/otp"
	"github.com/kavyaresto/kavyaserve/internal/server/repositories/repomanager"
)

const passwordHashCost = 10

// OTPSender delivers a one-time code to an e-mail address.
type OTPSender interface {
	SendOTP(ctx context.Context, name, email, code string) notify.Outcome
}

// TokenIssuer mints session tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type SignupRequest struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// LoginResult is a fresh session token plus the public user projection.
type LoginResult struct {
	Token string
	User  models.PublicUser
}

// AuthService orchestrates the account lifecycle against the credential
// store and the OTP sender.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sender      OTPSender
	tokens      TokenIssuer
	logger      logging.Logger

	now      func() time.Time
	newID    func() string
	hashCost int
}

// NewAuthService constructs an AuthService. sender and tokens are built once
// at startup and shared by every request.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, sender OTPSender, tokens TokenIssuer, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		sender:      sender,
		tokens:      tokens,
		logger:      logger.With("module", "auth_service"),
		now:         time.Now,
		newID:       uuid.NewString,
		hashCost:    passwordHashCost,
	}
}

// Signup creates an unverified account, or refreshes one that was never
// verified, and e-mails it a one-time code. A delivery failure is logged
// but not reported: the code stays in the store and can be resent.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) error {
	if blank(req.Name, req.Email, req.Phone, req.Password) {
		return common.ErrValidation
	}

	challenge := otp.New(s.now())

	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		existing, err := repo.GetByEmail(ctx, req.Email)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			existing = nil
		case err != nil:
			return err
		case existing.Verified:
			return common.ErrDuplicateEmail
		}

		hash, err := s.hashPassword(req.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		if existing != nil {
			existing.Name = req.Name
			existing.Phone = req.Phone
			existing.PasswordHash = hash
			existing.Verified = false
			existing.OTPCode = challenge.Code
			existing.OTPExpiresAt = challenge.ExpiresAt
			user = existing
			return repo.Update(ctx, existing)
		}

		created, err := repo.Create(ctx, &models.User{
			ID:           s.newID(),
			Name:         req.Name,
			Email:        req.Email,
			Phone:        req.Phone,
			PasswordHash: hash,
			OTPCode:      challenge.Code,
			OTPExpiresAt: challenge.ExpiresAt,
		})
		if errors.Is(err, common.ErrorAlreadyExists) {
			return common.ErrDuplicateEmail
		}
		user = created
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return err
		}
		s.logger.Error(ctx, "signup failed", "email", req.Email, "error", err)
		return common.ErrorInternal
	}

	if out := s.sender.SendOTP(ctx, user.Name, user.Email, challenge.Code); !out.OK {
		s.logger.Warn(ctx, "otp email not delivered during signup, code kept in store", "email", user.Email, "error", out.Err)
	}

	s.logger.Info(ctx, "signup accepted", "email", user.Email, "user_id", user.ID)
	return nil
}

// ResendOTP e-mails the pending code again. A missing or expired code is
// replaced by a new one first, which also puts the account back into the
// unverified state.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	if blank(email) {
		return common.ErrValidation
	}

	repo := s.repomanager.Users(s.db)

	user, err := s.findUser(ctx, repo.GetByEmail, email)
	if err != nil {
		return err
	}

	now := s.now()
	code := user.OTPCode
	if !user.HasPendingOTP() || !otp.Usable(user.OTPExpiresAt, now) {
		challenge := otp.New(now)
		user.OTPCode = challenge.Code
		user.OTPExpiresAt = challenge.ExpiresAt
		user.Verified = false
		if err := repo.Update(ctx, user); err != nil {
			s.logger.Error(ctx, "storing new otp failed", "email", email, "error", err)
			return common.ErrorInternal
		}
		code = challenge.Code
	}

	if out := s.sender.SendOTP(ctx, user.Name, user.Email, code); !out.OK {
		return fmt.Errorf("%w: %v", common.ErrEmailDelivery, out.Err)
	}

	s.logger.Info(ctx, "otp resent", "email", email)
	return nil
}

// VerifyOTP consumes the pending code and marks the account verified.
// A wrong or expired code leaves the stored challenge untouched.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	if blank(email, code) {
		return common.ErrValidation
	}

	repo := s.repomanager.Users(s.db)

	user, err := s.findUser(ctx, repo.GetByEmail, email)
	if err != nil {
		return err
	}

	if user.Verified {
		return common.ErrAlreadyVerified
	}
	if user.OTPCode == "" || subtle.ConstantTimeCompare([]byte(user.OTPCode), []byte(code)) != 1 {
		return common.ErrInvalidCode
	}
	if !otp.Usable(user.OTPExpiresAt, s.now()) {
		return common.ErrCodeExpired
	}

	user.Verified = true
	user.ClearOTP()
	if err := repo.Update(ctx, user); err != nil {
		s.logger.Error(ctx, "marking user verified failed", "email", email, "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "account verified", "email", email, "user_id", user.ID)
	return nil
}

// Login checks the password of a verified account and issues a session
// token. Unverified accounts are refused before the password is looked at.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if blank(email, password) {
		return nil, common.ErrValidation
	}

	repo := s.repomanager.Users(s.db)

	user, err := s.findUser(ctx, repo.GetByEmail, email)
	if err != nil {
		return nil, err
	}

	if !user.Verified {
		return nil, common.ErrUnverified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), bcryptInput(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "password check failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}

	return &LoginResult{Token: token, User: user.Public()}, nil
}

// Profile returns the signed-in user's own record without credentials.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	repo := s.repomanager.Users(s.db)

	user, err := s.findUser(ctx, repo.GetByID, userID)
	if err != nil {
		return nil, err
	}

	p := user.Profile()
	return &p, nil
}

// --- helpers below ---

// bcrypt only reads the first 72 bytes of a password. Longer passwords are
// cut there instead of being refused.
const bcryptMaxPasswordLen = 72

func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxPasswordLen {
		b = b[:bcryptMaxPasswordLen]
	}
	return b
}

func (s *AuthService) hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(bcryptInput(password), s.hashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// findUser runs a single-user lookup and folds store failures into
// ErrorNotFound or ErrorInternal.
func (s *AuthService) findUser(ctx context.Context, get func(context.Context, string) (*models.User, error), key string) (*models.User, error) {
	user, err := get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "user lookup failed", "key", key, "error", err)
		return nil, common.ErrorInternal
	}
	return user, nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return true
		}
	}
	return false
}

// Package auth implements passwordless owner authentication: register
// by email, log in by requesting an OTP, verify it to receive a JWT.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"simkos/internal/domain"
	"simkos/internal/emailcheck"
	"simkos/internal/mailer"
	"simkos/internal/model"
	"simkos/pkg/jwtutil"
)

// Service handles registration and the OTP login flow.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	jwt     *jwtutil.JWTUtil
	mail    mailer.Sender
	checker emailcheck.Checker
	otpTTL  time.Duration
	now     func() time.Time
}

// NewService creates the auth service.
func NewService(db *gorm.DB, log *zap.Logger, jwt *jwtutil.JWTUtil, mail mailer.Sender, checker emailcheck.Checker, otpTTL time.Duration) *Service {
	return &Service{
		db:      db,
		log:     log,
		jwt:     jwt,
		mail:    mail,
		checker: checker,
		otpTTL:  otpTTL,
		now:     time.Now,
	}
}

// Register creates an owner account. The address must be well formed,
// belong to a domain with MX records and not be registered yet.
func (s *Service) Register(ctx context.Context, email, namaKos string) (uint, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	namaKos = strings.TrimSpace(namaKos)

	if email == "" || namaKos == "" {
		return 0, domain.Validationf("email and nama_kos are required")
	}
	if !emailcheck.ValidFormat(email) {
		return 0, domain.Validationf("invalid email format")
	}
	if !s.checker.DomainExists(ctx, email) {
		return 0, domain.Validationf("email domain not found")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return 0, domain.Conflict("email already registered")
	}

	user := model.User{Email: email, NamaKos: namaKos}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("owner registered",
		zap.Uint("user_id", user.ID),
		zap.String("email", email))
	return user.ID, nil
}

// RequestOTP stores a fresh OTP on the account and mails it. The mail
// send is checked: a delivery failure fails the login request instead
// of leaving the caller waiting for a code that never arrives.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.Validationf("email is required")
	}

	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound("account")
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	otp, err := GenerateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	expires := s.now().Add(s.otpTTL)

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"otp":         otp,
		"otp_expires": expires,
	}).Error; err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.mail.SendOTP(ctx, user.Email, otp); err != nil {
		return err
	}

	s.log.Info("login OTP sent", zap.Uint("user_id", user.ID))
	return nil
}

// Verify checks the OTP and its expiry, signs a session token and only
// then clears the code.
func (s *Service) Verify(ctx context.Context, email, otp string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || otp == "" {
		return "", domain.Validationf("email and otp are required")
	}

	var user model.User
	err := s.db.WithContext(ctx).Where("email = ? AND otp = ?", email, otp).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.Validationf("incorrect OTP")
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}

	if user.OTPExpires == nil || s.now().After(*user.OTPExpires) {
		return "", domain.Validationf("OTP has expired, request a new one")
	}

	// Sign before clearing: a signing failure must not burn the OTP,
	// the caller can retry with the same code.
	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"otp":         nil,
		"otp_expires": nil,
	}).Error; err != nil {
		return "", fmt.Errorf("clear otp: %w", err)
	}

	s.log.Info("owner logged in", zap.Uint("user_id", user.ID))
	return token, nil
}

// GenerateOTP returns six random decimal digits.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

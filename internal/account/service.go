// Package account manages the owner profile: kos name, email change
// with OTP confirmation, and the data/account erasure cascades.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"simkos/internal/auth"
	"simkos/internal/cooldown"
	"simkos/internal/domain"
	"simkos/internal/emailcheck"
	"simkos/internal/mailer"
	"simkos/internal/model"
)

// Service handles profile and account lifecycle operations.
type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	mail           mailer.Sender
	checker        emailcheck.Checker
	cooldowns      cooldown.Store
	resendCooldown time.Duration
	otpTTL         time.Duration
	now            func() time.Time
}

// NewService creates the account service.
func NewService(db *gorm.DB, log *zap.Logger, mail mailer.Sender, checker emailcheck.Checker, cooldowns cooldown.Store, resendCooldown, otpTTL time.Duration) *Service {
	return &Service{
		db:             db,
		log:            log,
		mail:           mail,
		checker:        checker,
		cooldowns:      cooldowns,
		resendCooldown: resendCooldown,
		otpTTL:         otpTTL,
		now:            time.Now,
	}
}

// Profile returns the owner's account record.
func (s *Service) Profile(ctx context.Context, ownerID uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("account")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// UpdateNamaKos renames the boarding house.
func (s *Service) UpdateNamaKos(ctx context.Context, ownerID uint, namaKos string) error {
	namaKos = strings.TrimSpace(namaKos)
	if namaKos == "" {
		return domain.Validationf("nama_kos is required")
	}

	result := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", ownerID).
		Update("nama_kos", namaKos)
	if result.Error != nil {
		return fmt.Errorf("update nama_kos: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound("account")
	}
	return nil
}

// RequestEmailChange validates the new address, takes the per-owner
// resend cooldown, stores the pending address with a fresh OTP and
// mails the OTP to the new address. On a failed send the cooldown is
// released so the owner can retry immediately.
func (s *Service) RequestEmailChange(ctx context.Context, ownerID uint, newEmail string) error {
	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	if newEmail == "" {
		return domain.Validationf("email is required")
	}
	if !emailcheck.ValidFormat(newEmail) {
		return domain.Validationf("invalid email format")
	}

	key := fmt.Sprintf("email-change:%d", ownerID)
	wait, err := s.cooldowns.Acquire(ctx, key, s.resendCooldown)
	if err != nil {
		return fmt.Errorf("acquire cooldown: %w", err)
	}
	if wait > 0 {
		return domain.RateLimited(wait)
	}

	fail := func(cause error) error {
		if relErr := s.cooldowns.Release(ctx, key); relErr != nil {
			s.log.Warn("failed to release cooldown", zap.Error(relErr))
		}
		return cause
	}

	if !s.checker.DomainExists(ctx, newEmail) {
		return fail(domain.Validationf("email domain not found"))
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", newEmail).Count(&count).Error; err != nil {
		return fail(fmt.Errorf("check email: %w", err))
	}
	if count > 0 {
		return fail(domain.Conflict("email already registered"))
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return fail(fmt.Errorf("generate otp: %w", err))
	}
	expires := s.now().Add(s.otpTTL)

	result := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", ownerID).
		Updates(map[string]interface{}{
			"pending_email": newEmail,
			"otp":           otp,
			"otp_expires":   expires,
		})
	if result.Error != nil {
		return fail(fmt.Errorf("store pending email: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return fail(domain.NotFound("account"))
	}

	if err := s.mail.SendOTP(ctx, newEmail, otp); err != nil {
		return fail(err)
	}

	s.log.Info("email change requested", zap.Uint("user_id", ownerID))
	return nil
}

// VerifyEmailChange swaps in the pending address once its OTP checks
// out, then clears the pending state.
func (s *Service) VerifyEmailChange(ctx context.Context, ownerID uint, otp string) error {
	if otp == "" {
		return domain.Validationf("otp is required")
	}

	var user model.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND otp = ?", ownerID, otp).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Validationf("incorrect OTP")
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if user.PendingEmail == nil {
		return domain.Validationf("no pending email change")
	}
	if user.OTPExpires == nil || s.now().After(*user.OTPExpires) {
		return domain.Validationf("OTP has expired, request a new one")
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"email":         *user.PendingEmail,
		"pending_email": nil,
		"otp":           nil,
		"otp_expires":   nil,
	}).Error; err != nil {
		return fmt.Errorf("apply email change: %w", err)
	}

	s.log.Info("email changed", zap.Uint("user_id", ownerID))
	return nil
}

// ClearData removes all of the owner's ledger entries, tenants and
// rooms in one transaction, keeping the account itself.
func (s *Service) ClearData(ctx context.Context, ownerID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteOwnedData(tx, ownerID)
	})
	if err != nil {
		return err
	}
	s.log.Info("owner data cleared", zap.Uint("user_id", ownerID))
	return nil
}

// DeleteAccount removes everything the owner has, the account row
// last so referential constraints hold throughout.
func (s *Service) DeleteAccount(ctx context.Context, ownerID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteOwnedData(tx, ownerID); err != nil {
			return err
		}
		result := tx.Delete(&model.User{}, ownerID)
		if result.Error != nil {
			return fmt.Errorf("delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NotFound("account")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("account deleted", zap.Uint("user_id", ownerID))
	return nil
}

// deleteOwnedData removes dependent rows in dependency order: ledger
// entries and tenants reference rooms, so rooms go last.
func deleteOwnedData(tx *gorm.DB, ownerID uint) error {
	if err := tx.Where("user_id = ?", ownerID).Delete(&model.LedgerEntry{}).Error; err != nil {
		return fmt.Errorf("delete ledger entries: %w", err)
	}
	if err := tx.Where("user_id = ?", ownerID).Delete(&model.Tenant{}).Error; err != nil {
		return fmt.Errorf("delete tenants: %w", err)
	}
	if err := tx.Where("user_id = ?", ownerID).Delete(&model.Room{}).Error; err != nil {
		return fmt.Errorf("delete rooms: %w", err)
	}
	return nil
}

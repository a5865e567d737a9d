package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"simkos/internal/domain"
	"simkos/internal/model"
	"simkos/pkg/config"
	"simkos/pkg/jwtutil"
)

type fakeSender struct {
	to   []string
	otps []string
	err  error
}

func (f *fakeSender) SendOTP(_ context.Context, to, otp string) error {
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	f.otps = append(f.otps, otp)
	return nil
}

type fakeChecker struct {
	exists bool
}

func (f *fakeChecker) DomainExists(context.Context, string) bool {
	return f.exists
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	return db
}

func newTestJWT() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&config.JWTConfig{
		SigningKey:      "test-secret",
		ExpirationHours: 1,
	})
}

type fixture struct {
	svc  *Service
	db   *gorm.DB
	jwt  *jwtutil.JWTUtil
	mail *fakeSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	mail := &fakeSender{}
	jwt := newTestJWT()
	svc := NewService(db, zap.NewNop(), jwt, mail, &fakeChecker{exists: true}, 5*time.Minute)
	return &fixture{svc: svc, db: db, jwt: jwt, mail: mail}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	id, err := f.svc.Register(context.Background(), " Ana@Kos.id ", " Kos Melati ")
	require.NoError(t, err)

	var user model.User
	require.NoError(t, f.db.First(&user, id).Error)
	assert.Equal(t, "ana@kos.id", user.Email)
	assert.Equal(t, "Kos Melati", user.NamaKos)
	assert.Nil(t, user.OTP)
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), "ana@kos.id", "Kos Melati")
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), "ANA@kos.id", "Kos Lain")
	assert.True(t, domain.IsConflict(err))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), "", "Kos Melati")
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.Register(context.Background(), "ana@kos.id", "")
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.Register(context.Background(), "not-an-email", "Kos Melati")
	assert.True(t, domain.IsValidation(err))

	f.svc.checker = &fakeChecker{exists: false}
	_, err = f.svc.Register(context.Background(), "ana@unknown.id", "Kos Melati")
	assert.True(t, domain.IsValidation(err))
}

func TestRequestOTP(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), "ana@kos.id", "Kos Melati")
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestOTP(context.Background(), "Ana@Kos.id"))

	var user model.User
	require.NoError(t, f.db.Where("email = ?", "ana@kos.id").First(&user).Error)
	require.NotNil(t, user.OTP)
	assert.Len(t, *user.OTP, 6)
	require.NotNil(t, user.OTPExpires)
	assert.True(t, user.OTPExpires.After(time.Now()))

	require.Len(t, f.mail.to, 1)
	assert.Equal(t, "ana@kos.id", f.mail.to[0])
	assert.Equal(t, *user.OTP, f.mail.otps[0])
}

func TestRequestOTPUnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.svc.RequestOTP(context.Background(), "nobody@kos.id")
	assert.True(t, domain.IsNotFound(err))
	assert.Empty(t, f.mail.to)
}

func TestRequestOTPSendFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), "ana@kos.id", "Kos Melati")
	require.NoError(t, err)

	f.mail.err = errors.New("smtp down")
	err = f.svc.RequestOTP(context.Background(), "ana@kos.id")
	require.Error(t, err)
	assert.False(t, domain.IsValidation(err))
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	id, err := f.svc.Register(context.Background(), "ana@kos.id", "Kos Melati")
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestOTP(context.Background(), "ana@kos.id"))
	otp := f.mail.otps[0]

	token, err := f.svc.Verify(context.Background(), "ana@kos.id", otp)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := f.jwt.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "ana@kos.id", claims.Email)

	// The OTP is single use.
	var user model.User
	require.NoError(t, f.db.First(&user, id).Error)
	assert.Nil(t, user.OTP)
	assert.Nil(t, user.OTPExpires)

	_, err = f.svc.Verify(context.Background(), "ana@kos.id", otp)
	assert.True(t, domain.IsValidation(err))
}

func TestVerifyWrongOTP(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), "ana@kos.id", "Kos Melati")
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestOTP(context.Background(), "ana@kos.id"))

	_, err = f.svc.Verify(context.Background(), "ana@kos.id", "000000")
	assert.True(t, domain.IsValidation(err))
}

func TestVerifyExpiredOTP(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), "ana@kos.id", "Kos Melati")
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestOTP(context.Background(), "ana@kos.id"))
	otp := f.mail.otps[0]

	f.svc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	_, err = f.svc.Verify(context.Background(), "ana@kos.id", otp)
	assert.True(t, domain.IsValidation(err))
}

func TestVerifySigningFailureKeepsOTP(t *testing.T) {
	f := newFixture(t)
	id, err := f.svc.Register(context.Background(), "ana@kos.id", "Kos Melati")
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestOTP(context.Background(), "ana@kos.id"))
	otp := f.mail.otps[0]

	// A signing failure must not burn the OTP.
	broken := NewService(f.db, zap.NewNop(), jwtutil.NewJWTUtil(nil),
		f.mail, &fakeChecker{exists: true}, 5*time.Minute)
	_, err = broken.Verify(context.Background(), "ana@kos.id", otp)
	require.Error(t, err)

	var user model.User
	require.NoError(t, f.db.First(&user, id).Error)
	require.NotNil(t, user.OTP)
	assert.Equal(t, otp, *user.OTP)

	// The same code still logs in once signing works.
	token, err := f.svc.Verify(context.Background(), "ana@kos.id", otp)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestVerifyValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Verify(context.Background(), "", "123456")
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.Verify(context.Background(), "ana@kos.id", "")
	assert.True(t, domain.IsValidation(err))
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)
		for _, r := range otp {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

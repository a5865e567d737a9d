package account

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

	"simkos/internal/cooldown"
	"simkos/internal/domain"
	"simkos/internal/model"
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
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Room{}, &model.Tenant{}, &model.LedgerEntry{},
	))
	return db
}

type fixture struct {
	svc  *Service
	db   *gorm.DB
	mail *fakeSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	mail := &fakeSender{}
	svc := NewService(db, zap.NewNop(), mail, &fakeChecker{exists: true},
		cooldown.NewMemoryStore(), time.Minute, 5*time.Minute)
	return &fixture{svc: svc, db: db, mail: mail}
}

func seedUser(t *testing.T, db *gorm.DB, email string) uint {
	t.Helper()
	user := model.User{Email: email, NamaKos: "Kos Melati"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	id := seedUser(t, f.db, "ana@kos.id")

	user, err := f.svc.Profile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ana@kos.id", user.Email)
	assert.Equal(t, "Kos Melati", user.NamaKos)

	_, err = f.svc.Profile(context.Background(), 999)
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateNamaKos(t *testing.T) {
	f := newFixture(t)
	id := seedUser(t, f.db, "ana@kos.id")

	require.NoError(t, f.svc.UpdateNamaKos(context.Background(), id, "  Kos Mawar  "))

	var user model.User
	require.NoError(t, f.db.First(&user, id).Error)
	assert.Equal(t, "Kos Mawar", user.NamaKos)

	err := f.svc.UpdateNamaKos(context.Background(), id, "   ")
	assert.True(t, domain.IsValidation(err))

	err = f.svc.UpdateNamaKos(context.Background(), 999, "Kos Anggrek")
	assert.True(t, domain.IsNotFound(err))
}

func TestRequestEmailChange(t *testing.T) {
	f := newFixture(t)
	id := seedUser(t, f.db, "ana@kos.id")

	require.NoError(t, f.svc.RequestEmailChange(context.Background(), id, " Baru@Kos.id "))

	var user model.User
	require.NoError(t, f.db.First(&user, id).Error)
	require.NotNil(t, user.PendingEmail)
	assert.Equal(t, "baru@kos.id", *user.PendingEmail)
	require.NotNil(t, user.OTP)
	assert.NotNil(t, user.OTPExpires)

	require.Len(t, f.mail.to, 1)
	assert.Equal(t, "baru@kos.id", f.mail.to[0])
	assert.Equal(t, *user.OTP, f.mail.otps[0])
	// Address is still the old one until the OTP is confirmed.
	assert.Equal(t, "ana@kos.id", user.Email)
}

func TestRequestEmailChangeCooldown(t *testing.T) {
	f := newFixture(t)
	id := seedUser(t, f.db, "ana@kos.id")

	require.NoError(t, f.svc.RequestEmailChange(context.Background(), id, "baru@kos.id"))

	err := f.svc.RequestEmailChange(context.Background(), id, "lagi@kos.id")
	assert.True(t, domain.IsRateLimited(err))

	var rateErr *domain.RateLimitedError
	require.ErrorAs(t, err, &rateErr)
	assert.Greater(t, rateErr.RetryAfter, time.Duration(0))
}

func TestRequestEmailChangeReleasesCooldownOnFailure(t *testing.T) {
	f := newFixture(t)
	id := seedUser(t, f.db, "ana@kos.id")
	seedUser(t, f.db, "taken@kos.id")

	err := f.svc.RequestEmailChange(context.Background(), id, "taken@kos.id")
	assert.True(t, domain.IsConflict(err))

	// The duplicate failed the request, so the cooldown must not block
	// an immediate retry with a free address.
	require.NoError(t, f.svc.RequestEmailChange(context.Background(), id, "bebas@kos.id"))
}

func TestRequestEmailChangeSendFailure(t *testing.T) {
	f := newFixture(t)
	id := seedUser(t, f.db, "ana@kos.id")

	f.mail.err = errors.New("smtp down")
	err := f.svc.RequestEmailChange(context.Background(), id, "baru@kos.id")
	require.Error(t, err)

	f.mail.err = nil
	require.NoError(t, f.svc.RequestEmailChange(context.Background(), id, "baru@kos.id"))
}

func TestRequestEmailChangeValidation(t *testing.T) {
	f := newFixture(t)
	id := seedUser(t, f.db, "ana@kos.id")

	err := f.svc.RequestEmailChange(context.Background(), id, "")
	assert.True(t, domain.IsValidation(err))

	err = f.svc.RequestEmailChange(context.Background(), id, "not-an-email")
	assert.True(t, domain.IsValidation(err))

	f.svc.checker = &fakeChecker{exists: false}
	err = f.svc.RequestEmailChange(context.Background(), id, "baru@unknown.id")
	assert.True(t, domain.IsValidation(err))
}

func TestVerifyEmailChange(t *testing.T) {
	f := newFixture(t)
	id := seedUser(t, f.db, "ana@kos.id")

	require.NoError(t, f.svc.RequestEmailChange(context.Background(), id, "baru@kos.id"))
	otp := f.mail.otps[0]

	err := f.svc.VerifyEmailChange(context.Background(), id, "000000")
	assert.True(t, domain.IsValidation(err))

	require.NoError(t, f.svc.VerifyEmailChange(context.Background(), id, otp))

	var user model.User
	require.NoError(t, f.db.First(&user, id).Error)
	assert.Equal(t, "baru@kos.id", user.Email)
	assert.Nil(t, user.PendingEmail)
	assert.Nil(t, user.OTP)
	assert.Nil(t, user.OTPExpires)
}

func TestVerifyEmailChangeExpired(t *testing.T) {
	f := newFixture(t)
	id := seedUser(t, f.db, "ana@kos.id")

	require.NoError(t, f.svc.RequestEmailChange(context.Background(), id, "baru@kos.id"))
	otp := f.mail.otps[0]

	f.svc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	err := f.svc.VerifyEmailChange(context.Background(), id, otp)
	assert.True(t, domain.IsValidation(err))

	var user model.User
	require.NoError(t, f.db.First(&user, id).Error)
	assert.Equal(t, "ana@kos.id", user.Email)
}

func seedOwnedData(t *testing.T, db *gorm.DB, ownerID uint) {
	t.Helper()
	room := model.Room{UserID: ownerID, NomorKamar: "A1", Status: model.RoomOccupied}
	require.NoError(t, db.Create(&room).Error)
	tenant := model.Tenant{
		UserID:         ownerID,
		RoomID:         room.ID,
		Nama:           "Ana",
		TanggalCheckin: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:         model.TenantPaid,
	}
	require.NoError(t, db.Create(&tenant).Error)
	entry := model.LedgerEntry{
		UserID:  ownerID,
		Judul:   "Sewa Awal - Ana",
		Jumlah:  500000,
		Tanggal: tenant.TanggalCheckin,
		Kind:    model.EntryIncome,
	}
	require.NoError(t, db.Create(&entry).Error)
}

func countOwned(t *testing.T, db *gorm.DB, ownerID uint) (rooms, tenants, entries int64) {
	t.Helper()
	require.NoError(t, db.Model(&model.Room{}).Where("user_id = ?", ownerID).Count(&rooms).Error)
	require.NoError(t, db.Model(&model.Tenant{}).Where("user_id = ?", ownerID).Count(&tenants).Error)
	require.NoError(t, db.Model(&model.LedgerEntry{}).Where("user_id = ?", ownerID).Count(&entries).Error)
	return rooms, tenants, entries
}

func TestClearData(t *testing.T) {
	f := newFixture(t)
	id := seedUser(t, f.db, "ana@kos.id")
	other := seedUser(t, f.db, "budi@kos.id")
	seedOwnedData(t, f.db, id)
	seedOwnedData(t, f.db, other)

	require.NoError(t, f.svc.ClearData(context.Background(), id))

	rooms, tenants, entries := countOwned(t, f.db, id)
	assert.Zero(t, rooms)
	assert.Zero(t, tenants)
	assert.Zero(t, entries)

	// Account survives a data wipe.
	var user model.User
	require.NoError(t, f.db.First(&user, id).Error)

	rooms, tenants, entries = countOwned(t, f.db, other)
	assert.Equal(t, int64(1), rooms)
	assert.Equal(t, int64(1), tenants)
	assert.Equal(t, int64(1), entries)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	id := seedUser(t, f.db, "ana@kos.id")
	other := seedUser(t, f.db, "budi@kos.id")
	seedOwnedData(t, f.db, id)
	seedOwnedData(t, f.db, other)

	require.NoError(t, f.svc.DeleteAccount(context.Background(), id))

	var user model.User
	err := f.db.First(&user, id).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	rooms, tenants, entries := countOwned(t, f.db, id)
	assert.Zero(t, rooms)
	assert.Zero(t, tenants)
	assert.Zero(t, entries)

	require.NoError(t, f.db.First(&user, other).Error)
}

func TestDeleteAccountNotFound(t *testing.T) {
	f := newFixture(t)
	err := f.svc.DeleteAccount(context.Background(), 999)
	assert.True(t, domain.IsNotFound(err))
}

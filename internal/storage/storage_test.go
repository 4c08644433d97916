package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/mun-hub/munhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	s := New(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newRegistration(userID, munID string, status models.RegistrationStatus) *models.Registration {
	return &models.Registration{
		ID:                 uuid.New().String(),
		UserID:             userID,
		MUNID:              munID,
		CommitteeID:        uuid.New().String(),
		CountryPreferences: []string{"France", "Japan", "Brazil"},
		Status:             status,
		PaymentMethod:      models.PayLater,
		AmountDue:          100,
	}
}

func TestSaveUserUpsert(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	user := &models.User{
		Name:                  "Priya Sharma",
		Email:                 "priya@example.org",
		Country:               "India",
		Bio:                   "Debater and aspiring diplomat",
		Experience:            models.ExperienceIntermediate,
		AcceptedCodeOfConduct: true,
	}
	require.NoError(t, s.SaveUser(ctx, user))
	require.NotEmpty(t, user.ID)

	user.City = "Mumbai"
	require.NoError(t, s.SaveUser(ctx, user))

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", got.City)
	assert.Equal(t, "priya@example.org", got.Email)
}

func TestAddRegistrationRejectsDuplicate(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	userID := uuid.New().String()
	munID := uuid.New().String()

	require.NoError(t, s.AddRegistration(ctx, newRegistration(userID, munID, models.StatusPendingPayment)))

	err := s.AddRegistration(ctx, newRegistration(userID, munID, models.StatusPendingPayment))
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	// Same user, different conference is fine.
	require.NoError(t, s.AddRegistration(ctx, newRegistration(userID, uuid.New().String(), models.StatusConfirmed)))
}

func TestGetUserRegistrationsFiltersAndPreservesOrder(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	userID := uuid.New().String()
	otherID := uuid.New().String()

	first := newRegistration(userID, "mun-1", models.StatusConfirmed)
	first.CreatedAt = time.Now().Add(-2 * time.Hour)
	second := newRegistration(userID, "mun-2", models.StatusPendingPayment)
	second.CreatedAt = time.Now().Add(-time.Hour)
	other := newRegistration(otherID, "mun-1", models.StatusConfirmed)

	require.NoError(t, s.AddRegistration(ctx, first))
	require.NoError(t, s.AddRegistration(ctx, second))
	require.NoError(t, s.AddRegistration(ctx, other))

	regs, err := s.GetUserRegistrations(ctx, userID)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, first.ID, regs[0].ID)
	assert.Equal(t, second.ID, regs[1].ID)

	all, err := s.GetAllRegistrations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateRegistrationStatusGuardsTransitions(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	reg := newRegistration(uuid.New().String(), "mun-1", models.StatusPendingPayment)
	require.NoError(t, s.AddRegistration(ctx, reg))

	require.NoError(t, s.UpdateRegistrationStatus(ctx, reg.ID, models.StatusRejected, "Incomplete profile"))

	got, err := s.GetRegistration(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, "Incomplete profile", *got.RejectionReason)
	assert.Equal(t, reg.UserID, got.UserID)
	assert.Equal(t, reg.AmountDue, got.AmountDue)

	// Rejected is terminal.
	err = s.UpdateRegistrationStatus(ctx, reg.ID, models.StatusConfirmed, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectRequiresReason(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	reg := newRegistration(uuid.New().String(), "mun-1", models.StatusPendingInvoice)
	require.NoError(t, s.AddRegistration(ctx, reg))

	err := s.UpdateRegistrationStatus(ctx, reg.ID, models.StatusRejected, "")
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestWithdrawIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	reg := newRegistration(uuid.New().String(), "mun-1", models.StatusConfirmed)
	require.NoError(t, s.AddRegistration(ctx, reg))

	require.NoError(t, s.WithdrawRegistration(ctx, reg.ID))
	require.NoError(t, s.WithdrawRegistration(ctx, reg.ID))

	got, err := s.GetRegistration(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWithdrawn, got.Status)
}

func TestRecordPaymentAccumulatesAndConfirms(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	hold := time.Now().Add(72 * time.Hour)
	reg := newRegistration(uuid.New().String(), "mun-1", models.StatusPendingPayment)
	reg.HoldExpiresAt = &hold
	require.NoError(t, s.AddRegistration(ctx, reg))

	got, err := s.RecordPayment(ctx, reg.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, float64(40), got.AmountPaid)
	assert.Equal(t, models.StatusPendingPayment, got.Status)

	got, err = s.RecordPayment(ctx, reg.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, float64(100), got.AmountPaid)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Nil(t, got.HoldExpiresAt)
}

func TestRecordPaymentDoesNotResurrectTerminalStatus(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	reg := newRegistration(uuid.New().String(), "mun-1", models.StatusConfirmed)
	require.NoError(t, s.AddRegistration(ctx, reg))
	require.NoError(t, s.WithdrawRegistration(ctx, reg.ID))

	got, err := s.RecordPayment(ctx, reg.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, float64(150), got.AmountPaid)
	assert.Equal(t, models.StatusWithdrawn, got.Status)
}

func TestCountActiveRegistrations(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	committeeID := uuid.New().String()
	statuses := []models.RegistrationStatus{
		models.StatusConfirmed,
		models.StatusPendingPayment,
		models.StatusPendingInvoice,
		models.StatusWaitlisted,
		models.StatusRejected,
		models.StatusWithdrawn,
	}
	for _, status := range statuses {
		reg := newRegistration(uuid.New().String(), "mun-1", status)
		reg.CommitteeID = committeeID
		if status == models.StatusRejected {
			reason := "late"
			reg.RejectionReason = &reason
		}
		require.NoError(t, s.AddRegistration(ctx, reg))
	}

	count, err := s.CountActiveRegistrations(ctx, committeeID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestGetExpiredHolds(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := newRegistration(uuid.New().String(), "mun-1", models.StatusPendingPayment)
	expired.HoldExpiresAt = &past
	active := newRegistration(uuid.New().String(), "mun-2", models.StatusPendingPayment)
	active.HoldExpiresAt = &future
	invoice := newRegistration(uuid.New().String(), "mun-3", models.StatusPendingInvoice)

	require.NoError(t, s.AddRegistration(ctx, expired))
	require.NoError(t, s.AddRegistration(ctx, active))
	require.NoError(t, s.AddRegistration(ctx, invoice))

	regs, err := s.GetExpiredHolds(ctx, now)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, expired.ID, regs[0].ID)
}

func TestAssignCountryFlipsSlot(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	committeeID := uuid.New().String()
	reg := newRegistration(uuid.New().String(), "mun-1", models.StatusConfirmed)
	reg.CommitteeID = committeeID
	require.NoError(t, s.AddRegistration(ctx, reg))

	slot := &models.CountrySlot{
		ID:          uuid.New().String(),
		CommitteeID: committeeID,
		Country:     "France",
		Code:        "FR",
		Status:      models.SlotAvailable,
	}
	require.NoError(t, s.db.Create(slot).Error)

	require.NoError(t, s.AssignCountry(ctx, reg.ID, "France"))

	got, err := s.GetRegistration(ctx, reg.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedCountry)
	assert.Equal(t, "France", *got.AssignedCountry)

	slots, err := s.GetCountrySlots(ctx, committeeID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, models.SlotFilled, slots[0].Status)
	require.NotNil(t, slots[0].DelegateID)
	assert.Equal(t, reg.UserID, *slots[0].DelegateID)

	// A second delegate cannot take the same slot.
	other := newRegistration(uuid.New().String(), "mun-1", models.StatusConfirmed)
	other.CommitteeID = committeeID
	require.NoError(t, s.AddRegistration(ctx, other))
	assert.ErrorIs(t, s.AssignCountry(ctx, other.ID, "France"), ErrSlotUnavailable)
}

func TestAssignCountryReleasesPreviousSlot(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	committeeID := uuid.New().String()
	reg := newRegistration(uuid.New().String(), "mun-1", models.StatusConfirmed)
	reg.CommitteeID = committeeID
	require.NoError(t, s.AddRegistration(ctx, reg))

	for _, country := range []struct{ name, code string }{{"France", "FR"}, {"Japan", "JP"}} {
		require.NoError(t, s.db.Create(&models.CountrySlot{
			ID:          uuid.New().String(),
			CommitteeID: committeeID,
			Country:     country.name,
			Code:        country.code,
			Status:      models.SlotAvailable,
		}).Error)
	}

	require.NoError(t, s.AssignCountry(ctx, reg.ID, "France"))
	require.NoError(t, s.AssignCountry(ctx, reg.ID, "Japan"))

	slots, err := s.GetCountrySlots(ctx, committeeID)
	require.NoError(t, err)
	byCountry := map[string]models.CountrySlotStatus{}
	for _, slot := range slots {
		byCountry[slot.Country] = slot.Status
	}
	assert.Equal(t, models.SlotAvailable, byCountry["France"])
	assert.Equal(t, models.SlotFilled, byCountry["Japan"])
}

func TestGetPromoCodeIsCaseInsensitive(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.db.Create(&models.PromoCode{
		Code:     "EARLYBIRD",
		Type:     models.DiscountPercentage,
		Discount: 20,
		Active:   true,
	}).Error)

	promo, err := s.GetPromoCode(ctx, "earlybird")
	require.NoError(t, err)
	assert.Equal(t, "EARLYBIRD", promo.Code)
}

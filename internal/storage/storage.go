package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mun-hub/munhub/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyRegistered = errors.New("user already registered for this conference")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReasonRequired    = errors.New("rejection requires a reason")
	ErrSlotUnavailable   = errors.New("country slot is not available")
)

type Storage struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Registration{},
		&models.MUN{},
		&models.Committee{},
		&models.CountrySlot{},
		&models.PromoCode{},
		&models.Announcement{},
		&models.Certificate{},
		&models.Badge{},
		&models.LeaderboardEntry{},
	); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

func (s *Storage) SaveUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := s.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(user).
		Error; err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}

// AddRegistration appends a registration. A second registration of the same
// user for the same conference fails with ErrAlreadyRegistered.
func (s *Storage) AddRegistration(ctx context.Context, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.Registration{}).
			Where("user_id = ? AND mun_id = ?", reg.UserID, reg.MUNID).
			Count(&count).
			Error; err != nil {
			return fmt.Errorf("checking existing registration: %w", err)
		}
		if count > 0 {
			return ErrAlreadyRegistered
		}

		if err := tx.Create(reg).Error; err != nil {
			return fmt.Errorf("creating registration: %w", err)
		}
		return nil
	}); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return err
		}
		return fmt.Errorf("in tx: %w", err)
	}

	return nil
}

func (s *Storage) GetRegistration(ctx context.Context, id string) (*models.Registration, error) {
	var reg models.Registration
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&reg).Error; err != nil {
		return nil, fmt.Errorf("getting registration: %w", err)
	}
	return &reg, nil
}

func (s *Storage) GetUserRegistration(ctx context.Context, userID, munID string) (*models.Registration, error) {
	var reg models.Registration
	if err := s.db.
		WithContext(ctx).
		Where("user_id = ? AND mun_id = ?", userID, munID).
		First(&reg).
		Error; err != nil {
		return nil, fmt.Errorf("getting registration: %w", err)
	}
	return &reg, nil
}

func (s *Storage) GetAllRegistrations(ctx context.Context) ([]*models.Registration, error) {
	var result []*models.Registration
	if err := s.db.
		WithContext(ctx).
		Order("created_at").
		Find(&result).
		Error; err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	return result, nil
}

func (s *Storage) GetUserRegistrations(ctx context.Context, userID string) ([]*models.Registration, error) {
	var result []*models.Registration
	if err := s.db.
		WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&result).
		Error; err != nil {
		return nil, fmt.Errorf("listing user registrations: %w", err)
	}
	return result, nil
}

// UpdateRegistrationStatus applies a guarded transition. Re-applying the
// current status is a no-op, so withdraw stays idempotent. The previous
// rejection reason is retained when none is given.
func (s *Storage) UpdateRegistrationStatus(
	ctx context.Context,
	id string,
	status models.RegistrationStatus,
	reason string,
) error {
	if status == models.StatusRejected && reason == "" {
		return ErrReasonRequired
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg models.Registration
		if err := tx.Where("id = ?", id).First(&reg).Error; err != nil {
			return fmt.Errorf("getting registration: %w", err)
		}

		if reg.Status == status {
			return nil
		}
		if !reg.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reg.Status, status)
		}

		updates := map[string]any{"status": status}
		if reason != "" {
			updates["rejection_reason"] = reason
		}
		if err := tx.Model(&reg).Updates(updates).Error; err != nil {
			return fmt.Errorf("updating registration: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	return nil
}

// AssignCountry sets the delegate's country and marks the matching slot of
// the registration's committee as filled. Assigning over a filled slot held
// by another delegate fails with ErrSlotUnavailable.
func (s *Storage) AssignCountry(ctx context.Context, id, country string) error {
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg models.Registration
		if err := tx.Where("id = ?", id).First(&reg).Error; err != nil {
			return fmt.Errorf("getting registration: %w", err)
		}

		var slot models.CountrySlot
		err := tx.
			Where("committee_id = ? AND country = ?", reg.CommitteeID, country).
			First(&slot).
			Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Committee has no matrix row for this country; allow the
			// manual override but nothing to flip.
		case err != nil:
			return fmt.Errorf("getting country slot: %w", err)
		default:
			if slot.Status == models.SlotFilled && (slot.DelegateID == nil || *slot.DelegateID != reg.UserID) {
				return ErrSlotUnavailable
			}
			if err := tx.Model(&slot).Updates(map[string]any{
				"status":      models.SlotFilled,
				"delegate_id": reg.UserID,
			}).Error; err != nil {
				return fmt.Errorf("updating country slot: %w", err)
			}
		}

		// Release the previously assigned slot, if any.
		if reg.AssignedCountry != nil && *reg.AssignedCountry != country {
			if err := tx.Model(&models.CountrySlot{}).
				Where("committee_id = ? AND country = ? AND delegate_id = ?", reg.CommitteeID, *reg.AssignedCountry, reg.UserID).
				Updates(map[string]any{
					"status":      models.SlotAvailable,
					"delegate_id": nil,
				}).Error; err != nil {
				return fmt.Errorf("releasing country slot: %w", err)
			}
		}

		if err := tx.Model(&reg).Update("assigned_country", country).Error; err != nil {
			return fmt.Errorf("updating registration: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	return nil
}

// SetPositionPaper records the uploaded paper's reference. File bytes are
// not stored.
func (s *Storage) SetPositionPaper(ctx context.Context, id, name string, size int64) error {
	if err := s.db.
		WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"position_paper_name": name,
			"position_paper_size": size,
		}).
		Error; err != nil {
		return fmt.Errorf("updating position paper: %w", err)
	}
	return nil
}

func (s *Storage) WithdrawRegistration(ctx context.Context, id string) error {
	return s.UpdateRegistrationStatus(ctx, id, models.StatusWithdrawn, "")
}

// DeleteRegistration removes the row entirely. Only used to roll back a
// submission whose charge failed; lifecycle changes go through
// UpdateRegistrationStatus.
func (s *Storage) DeleteRegistration(ctx context.Context, id string) error {
	if err := s.db.
		WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Registration{}).
		Error; err != nil {
		return fmt.Errorf("deleting registration: %w", err)
	}
	return nil
}

// RecordPayment accumulates amountPaid and confirms the registration once the
// total covers amountDue. Payments against terminal registrations are kept
// for refund bookkeeping but never change the status.
func (s *Storage) RecordPayment(ctx context.Context, id string, amount float64) (*models.Registration, error) {
	var reg models.Registration
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&reg).Error; err != nil {
			return fmt.Errorf("getting registration: %w", err)
		}

		newPaid := reg.AmountPaid + amount
		updates := map[string]any{"amount_paid": newPaid}

		if newPaid >= reg.AmountDue && reg.Status.Payable() {
			updates["status"] = models.StatusConfirmed
			updates["hold_expires_at"] = nil
		} else if reg.Status.Terminal() {
			logrus.Warnf(
				"payment of %.2f recorded against %s registration %s",
				amount, reg.Status, reg.ID,
			)
		}

		if err := tx.Model(&reg).Updates(updates).Error; err != nil {
			return fmt.Errorf("updating registration: %w", err)
		}

		if err := tx.Where("id = ?", id).First(&reg).Error; err != nil {
			return fmt.Errorf("reloading registration: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &reg, nil
}

// CountActiveRegistrations counts the registrations holding a seat in the
// committee: confirmed plus both pending states.
func (s *Storage) CountActiveRegistrations(ctx context.Context, committeeID string) (int64, error) {
	var count int64
	if err := s.db.
		WithContext(ctx).
		Model(&models.Registration{}).
		Where("committee_id = ? AND status IN ?", committeeID, []models.RegistrationStatus{
			models.StatusConfirmed,
			models.StatusPendingPayment,
			models.StatusPendingInvoice,
		}).
		Count(&count).
		Error; err != nil {
		return 0, fmt.Errorf("counting registrations: %w", err)
	}
	return count, nil
}

// GetExpiredHolds returns pending_payment registrations whose hold lapsed
// before the given time.
func (s *Storage) GetExpiredHolds(ctx context.Context, now time.Time) ([]*models.Registration, error) {
	var result []*models.Registration
	if err := s.db.
		WithContext(ctx).
		Where("status = ? AND hold_expires_at IS NOT NULL AND hold_expires_at < ?", models.StatusPendingPayment, now).
		Limit(100).
		Find(&result).
		Error; err != nil {
		return nil, fmt.Errorf("getting expired holds: %w", err)
	}
	return result, nil
}

func (s *Storage) GetEvents(ctx context.Context) ([]*models.MUN, error) {
	var result []*models.MUN
	if err := s.db.
		WithContext(ctx).
		Preload("Committees").
		Order("start_date").
		Find(&result).
		Error; err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return result, nil
}

func (s *Storage) GetEvent(ctx context.Context, munID string) (*models.MUN, error) {
	var event models.MUN
	if err := s.db.
		WithContext(ctx).
		Preload("Committees").
		Where("id = ?", munID).
		First(&event).
		Error; err != nil {
		return nil, fmt.Errorf("getting event: %w", err)
	}
	return &event, nil
}

func (s *Storage) GetCommittee(ctx context.Context, committeeID string) (*models.Committee, error) {
	var committee models.Committee
	if err := s.db.WithContext(ctx).Where("id = ?", committeeID).First(&committee).Error; err != nil {
		return nil, fmt.Errorf("getting committee: %w", err)
	}
	return &committee, nil
}

func (s *Storage) GetCountrySlots(ctx context.Context, committeeID string) ([]*models.CountrySlot, error) {
	var result []*models.CountrySlot
	if err := s.db.
		WithContext(ctx).
		Where("committee_id = ?", committeeID).
		Order("country").
		Find(&result).
		Error; err != nil {
		return nil, fmt.Errorf("listing country slots: %w", err)
	}
	return result, nil
}

// GetUnassignedConfirmed returns confirmed registrations of the committee
// without a country, oldest first.
func (s *Storage) GetUnassignedConfirmed(ctx context.Context, committeeID string) ([]*models.Registration, error) {
	var result []*models.Registration
	if err := s.db.
		WithContext(ctx).
		Where("committee_id = ? AND status = ? AND assigned_country IS NULL", committeeID, models.StatusConfirmed).
		Order("created_at").
		Find(&result).
		Error; err != nil {
		return nil, fmt.Errorf("listing unassigned registrations: %w", err)
	}
	return result, nil
}

func (s *Storage) GetPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := s.db.
		WithContext(ctx).
		Where("upper(code) = upper(?)", code).
		First(&promo).
		Error; err != nil {
		return nil, fmt.Errorf("getting promo code: %w", err)
	}
	return &promo, nil
}

// GetLeaderboard returns the top delegates by XP.
func (s *Storage) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	var result []*models.LeaderboardEntry
	if err := s.db.
		WithContext(ctx).
		Order("xp DESC").
		Limit(limit).
		Find(&result).
		Error; err != nil {
		return nil, fmt.Errorf("listing leaderboard: %w", err)
	}
	return result, nil
}

func (s *Storage) GetUserCertificates(ctx context.Context, delegateID string) ([]*models.Certificate, error) {
	var result []*models.Certificate
	if err := s.db.
		WithContext(ctx).
		Where("delegate_id = ?", delegateID).
		Order("issued_at DESC").
		Find(&result).
		Error; err != nil {
		return nil, fmt.Errorf("listing certificates: %w", err)
	}
	return result, nil
}

func (s *Storage) GetUserBadges(ctx context.Context, delegateID string) ([]*models.Badge, error) {
	var result []*models.Badge
	if err := s.db.
		WithContext(ctx).
		Where("delegate_id = ?", delegateID).
		Order("name").
		Find(&result).
		Error; err != nil {
		return nil, fmt.Errorf("listing badges: %w", err)
	}
	return result, nil
}

func (s *Storage) GetAnnouncements(ctx context.Context, munID string) ([]*models.Announcement, error) {
	var result []*models.Announcement
	if err := s.db.
		WithContext(ctx).
		Where("mun_id = ?", munID).
		Order("created_at DESC").
		Limit(100).
		Find(&result).
		Error; err != nil {
		return nil, fmt.Errorf("listing announcements: %w", err)
	}
	return result, nil
}

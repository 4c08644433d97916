package models

import (
	"fmt"
	"time"
)

type RegistrationStatus string

const (
	StatusPendingPayment RegistrationStatus = "pending_payment"
	StatusPendingInvoice RegistrationStatus = "pending_invoice"
	StatusConfirmed      RegistrationStatus = "confirmed"
	StatusWaitlisted     RegistrationStatus = "waitlisted"
	StatusRejected       RegistrationStatus = "rejected"
	StatusWithdrawn      RegistrationStatus = "withdrawn"
)

type PaymentMethod string

const (
	PayNow   PaymentMethod = "pay_now"
	PayLater PaymentMethod = "pay_later"
	Invoice  PaymentMethod = "invoice"
)

var statusTransitions = map[RegistrationStatus][]RegistrationStatus{
	StatusPendingPayment: {StatusConfirmed, StatusRejected, StatusWithdrawn},
	StatusPendingInvoice: {StatusConfirmed, StatusRejected, StatusWithdrawn},
	StatusWaitlisted:     {StatusConfirmed, StatusPendingPayment, StatusRejected, StatusWithdrawn},
	StatusConfirmed:      {StatusRejected, StatusWithdrawn},
	StatusRejected:       {},
	StatusWithdrawn:      {},
}

// CanTransitionTo reports whether the status change is allowed. Rejected and
// withdrawn are terminal.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RegistrationStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// Payable reports whether an incoming payment may confirm the registration.
func (s RegistrationStatus) Payable() bool {
	switch s {
	case StatusPendingPayment, StatusPendingInvoice, StatusWaitlisted:
		return true
	}
	return false
}

// Registration binds a delegate to one committee of one conference.
// CountryPreferences holds exactly three ranked choices; AssignedCountry is
// set only by an organizer or the auto-assigner.
type Registration struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	UserID      string `gorm:"type:uuid;uniqueIndex:idx_user_mun"`
	MUNID       string `gorm:"column:mun_id;uniqueIndex:idx_user_mun"`
	CommitteeID string `gorm:"index"`

	CountryPreferences []string `gorm:"type:jsonb;serializer:json"`
	AssignedCountry    *string

	PortfolioText     string
	PositionPaperName *string
	PositionPaperSize int64

	Status        RegistrationStatus `gorm:"index"`
	PaymentMethod PaymentMethod
	HoldExpiresAt *time.Time `gorm:"index"`

	AmountDue  float64
	AmountPaid float64
	PromoCode  *string

	RejectionReason *string

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (r *Registration) String() string {
	return fmt.Sprintf("Registration(%s, user=%s, mun=%s, %s)", r.ID, r.UserID, r.MUNID, r.Status)
}

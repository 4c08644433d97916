// Package wizard sequences the five registration steps and derives the final
// registration record on submit.
package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mun-hub/munhub/internal/models"
)

type Step int

const (
	StepProfile Step = iota
	StepCommittee
	StepPortfolio
	StepPayment
	StepReview
)

var stepNames = map[Step]string{
	StepProfile:   "profile",
	StepCommittee: "committee",
	StepPortfolio: "portfolio",
	StepPayment:   "payment",
	StepReview:    "review",
}

func (s Step) String() string {
	return stepNames[s]
}

var (
	ErrWrongStep    = errors.New("payload does not match the current step")
	ErrNotAtReview  = errors.New("wizard has not reached the review step")
	ErrForwardJump  = errors.New("can only jump to an earlier step")
	ErrIncompletion = errors.New("wizard is missing a completed step")
)

type ProfilePayload struct {
	Name                  string                 `json:"name" validate:"required,min=2"`
	Email                 string                 `json:"email" validate:"required,email"`
	Country               string                 `json:"country" validate:"required"`
	City                  string                 `json:"city"`
	Institution           string                 `json:"institution" validate:"required"`
	Grade                 string                 `json:"grade"`
	Bio                   string                 `json:"bio" validate:"required,min=10,max=200"`
	Experience            models.ExperienceLevel `json:"experience" validate:"required,oneof=beginner intermediate advanced"`
	Phone                 string                 `json:"phone"`
	AcceptedCodeOfConduct bool                   `json:"accepted_code_of_conduct" validate:"required"`
}

type CommitteePayload struct {
	CommitteeID        string   `json:"committee_id" validate:"required"`
	CountryPreferences []string `json:"country_preferences" validate:"required,len=3,unique,dive,required"`
}

type PortfolioPayload struct {
	Text              string `json:"text" validate:"required,min=300,max=500"`
	PositionPaperName string `json:"position_paper_name"`
	PositionPaperSize int64  `json:"position_paper_size" validate:"gte=0"`
}

type PaymentPayload struct {
	Method    models.PaymentMethod `json:"method" validate:"required,oneof=pay_now pay_later invoice"`
	PromoCode string               `json:"promo_code"`
}

// Wizard accumulates step payloads for one (user, conference) pair. Next
// advances only when the payload validates; Jump allows the review screen's
// backward edit.
type Wizard struct {
	userID string
	munID  string

	step      Step
	profile   *ProfilePayload
	committee *CommitteePayload
	portfolio *PortfolioPayload
	payment   *PaymentPayload
}

var validate = validator.New()

// ValidateProfile checks a profile payload outside the wizard, for the
// standalone profile form.
func ValidateProfile(p *ProfilePayload) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("validating profile: %w", err)
	}
	return nil
}

func New(userID, munID string) *Wizard {
	return &Wizard{
		userID: userID,
		munID:  munID,
	}
}

func (w *Wizard) Step() Step {
	return w.step
}

func (w *Wizard) Profile() *ProfilePayload {
	return w.profile
}

// Next validates the payload for the current step, stores it and advances.
// The payload type must match the step.
func (w *Wizard) Next(payload any) error {
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("validating %s step: %w", w.step, err)
	}

	switch p := payload.(type) {
	case *ProfilePayload:
		if w.step != StepProfile {
			return fmt.Errorf("%w: got profile at %s", ErrWrongStep, w.step)
		}
		w.profile = p
	case *CommitteePayload:
		if w.step != StepCommittee {
			return fmt.Errorf("%w: got committee at %s", ErrWrongStep, w.step)
		}
		w.committee = p
	case *PortfolioPayload:
		if w.step != StepPortfolio {
			return fmt.Errorf("%w: got portfolio at %s", ErrWrongStep, w.step)
		}
		w.portfolio = p
	case *PaymentPayload:
		if w.step != StepPayment {
			return fmt.Errorf("%w: got payment at %s", ErrWrongStep, w.step)
		}
		w.payment = p
	default:
		return fmt.Errorf("%w: unknown payload %T", ErrWrongStep, payload)
	}

	if w.step < StepReview {
		w.step++
	}
	return nil
}

func (w *Wizard) Back() {
	if w.step > StepProfile {
		w.step--
	}
}

// Jump moves back to an earlier step for editing, as the review screen does.
func (w *Wizard) Jump(step Step) error {
	if step > w.step {
		return ErrForwardJump
	}
	w.step = step
	return nil
}

// Finalize derives the registration record. The amount due is always
// recomputed by the caller from the event fee and promo code at submit time;
// stale amounts carried through backward edits are never trusted.
//
// atCapacity overrides the payment-derived status: a full committee waitlists
// the registration and no money is taken for the seat.
func (w *Wizard) Finalize(amountDue float64, atCapacity bool, holdDuration time.Duration, now time.Time) (*models.Registration, error) {
	if w.step != StepReview {
		return nil, ErrNotAtReview
	}
	if w.profile == nil || w.committee == nil || w.portfolio == nil || w.payment == nil {
		return nil, ErrIncompletion
	}

	reg := &models.Registration{
		UserID:             w.userID,
		MUNID:              w.munID,
		CommitteeID:        w.committee.CommitteeID,
		CountryPreferences: w.committee.CountryPreferences,
		PortfolioText:      w.portfolio.Text,
		PaymentMethod:      w.payment.Method,
		AmountDue:          amountDue,
	}
	if w.portfolio.PositionPaperName != "" {
		reg.PositionPaperName = &w.portfolio.PositionPaperName
		reg.PositionPaperSize = w.portfolio.PositionPaperSize
	}
	if w.payment.PromoCode != "" {
		reg.PromoCode = &w.payment.PromoCode
	}

	if atCapacity {
		reg.Status = models.StatusWaitlisted
		return reg, nil
	}

	switch w.payment.Method {
	case models.PayNow:
		reg.Status = models.StatusConfirmed
		reg.AmountPaid = amountDue
	case models.PayLater:
		reg.Status = models.StatusPendingPayment
		expires := now.Add(holdDuration)
		reg.HoldExpiresAt = &expires
	case models.Invoice:
		reg.Status = models.StatusPendingInvoice
	}

	return reg, nil
}

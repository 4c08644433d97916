package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/mun-hub/munhub/internal/config"
	"github.com/mun-hub/munhub/internal/models"
	"github.com/mun-hub/munhub/internal/payment"
	"github.com/mun-hub/munhub/internal/pricing"
	"github.com/mun-hub/munhub/internal/storage"
	"github.com/mun-hub/munhub/internal/wizard"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maximum accepted position paper size, 10 MB
const maxPaperSize = 10 << 20

type Service struct {
	config    *config.Config
	storage   *storage.Storage
	processor payment.Processor
	pricing   *pricing.Calculator
	clock     clockwork.Clock
}

func NewService(cfg *config.Config, store *storage.Storage, processor payment.Processor, clock clockwork.Clock) *Service {
	return &Service{
		config:    cfg,
		storage:   store,
		processor: processor,
		pricing:   pricing.NewCalculator(store),
		clock:     clock,
	}
}

// errorResponse maps domain errors to status codes; everything unexpected is
// logged and reported as a 500.
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, storage.ErrAlreadyRegistered),
		errors.Is(err, storage.ErrInvalidTransition),
		errors.Is(err, storage.ErrSlotUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, storage.ErrReasonRequired),
		errors.Is(err, pricing.ErrPromoInvalid):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		logrus.Errorf("request failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func (s *Service) HandleSaveUser() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			ID string `json:"id"`
			wizard.ProfilePayload
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}

		if err := wizard.ValidateProfile(&req.ProfilePayload); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		user := userFromProfile(&req.ProfilePayload)
		user.ID = req.ID
		if err := s.storage.SaveUser(c.Request().Context(), user); err != nil {
			return errorResponse(c, err)
		}

		return c.JSON(http.StatusOK, user)
	}
}

func (s *Service) HandleGetEvents() echo.HandlerFunc {
	return func(c echo.Context) error {
		events, err := s.storage.GetEvents(c.Request().Context())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, events)
	}
}

func (s *Service) HandleGetEvent() echo.HandlerFunc {
	return func(c echo.Context) error {
		event, err := s.storage.GetEvent(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, event)
	}
}

func (s *Service) HandleGetAnnouncements() echo.HandlerFunc {
	return func(c echo.Context) error {
		feed, err := s.storage.GetAnnouncements(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, feed)
	}
}

const leaderboardSize = 10

// HandleGetLeaderboard returns the top delegates by XP. Rank is the position
// in the returned slice.
func (s *Service) HandleGetLeaderboard() echo.HandlerFunc {
	return func(c echo.Context) error {
		entries, err := s.storage.GetLeaderboard(c.Request().Context(), leaderboardSize)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, entries)
	}
}

func (s *Service) HandleGetUserCertificates() echo.HandlerFunc {
	return func(c echo.Context) error {
		certs, err := s.storage.GetUserCertificates(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, certs)
	}
}

func (s *Service) HandleGetUserBadges() echo.HandlerFunc {
	return func(c echo.Context) error {
		badges, err := s.storage.GetUserBadges(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, badges)
	}
}

type submitRegistrationRequest struct {
	UserID    string                   `json:"user_id"`
	Profile   *wizard.ProfilePayload   `json:"profile"`
	Committee *wizard.CommitteePayload `json:"committee"`
	Portfolio *wizard.PortfolioPayload `json:"portfolio"`
	Payment   *wizard.PaymentPayload   `json:"payment"`
}

// HandleSubmitRegistration runs the whole wizard server-side over the
// submitted step payloads and persists the derived registration.
func (s *Service) HandleSubmitRegistration() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		munID := c.Param("id")

		var req submitRegistrationRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		if req.UserID == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
		}
		if req.Profile == nil || req.Committee == nil || req.Portfolio == nil || req.Payment == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "all wizard steps are required"})
		}

		event, err := s.storage.GetEvent(ctx, munID)
		if err != nil {
			return errorResponse(c, err)
		}
		if !event.RegistrationOpen {
			return c.JSON(http.StatusConflict, echo.Map{"error": "registration is closed"})
		}

		// Check before the charge, not only at insert time.
		if _, err := s.storage.GetUserRegistration(ctx, req.UserID, munID); err == nil {
			return errorResponse(c, storage.ErrAlreadyRegistered)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, err)
		}

		w := wizard.New(req.UserID, munID)
		for _, step := range []any{req.Profile, req.Committee, req.Portfolio, req.Payment} {
			if err := w.Next(step); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
		}

		committee, err := s.storage.GetCommittee(ctx, req.Committee.CommitteeID)
		if err != nil {
			return errorResponse(c, err)
		}
		if committee.MUNID != munID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "committee does not belong to this conference"})
		}

		amountDue, _, err := s.pricing.Quote(ctx, event, req.Payment.PromoCode)
		if err != nil {
			return errorResponse(c, err)
		}

		active, err := s.storage.CountActiveRegistrations(ctx, committee.ID)
		if err != nil {
			return errorResponse(c, err)
		}
		atCapacity := active >= int64(committee.Capacity)

		reg, err := w.Finalize(amountDue, atCapacity, s.config.HoldDuration, s.clock.Now())
		if err != nil {
			return errorResponse(c, err)
		}
		reg.ID = uuid.New().String()

		if err := s.storage.SaveUser(ctx, userWithID(req.UserID, req.Profile)); err != nil {
			return errorResponse(c, err)
		}
		if err := s.storage.AddRegistration(ctx, reg); err != nil {
			return errorResponse(c, err)
		}

		// Charge only once the seat is actually held, so a failed insert
		// never leaves money taken. A failed charge releases the seat.
		if reg.Status == models.StatusConfirmed && reg.PaymentMethod == models.PayNow {
			if err := s.processor.Charge(ctx, reg.ID, amountDue, event.Currency); err != nil {
				logrus.Errorf("charge failed for registration %s: %v", reg.ID, err)
				if delErr := s.storage.DeleteRegistration(ctx, reg.ID); delErr != nil {
					logrus.Errorf("rolling back registration %s: %v", reg.ID, delErr)
				}
				return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment failed"})
			}
		}

		logrus.Infof("created %v", reg)
		return c.JSON(http.StatusCreated, reg)
	}
}

func (s *Service) HandleGetUserRegistrations() echo.HandlerFunc {
	return func(c echo.Context) error {
		regs, err := s.storage.GetUserRegistrations(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, regs)
	}
}

func (s *Service) HandleGetUserRegistration() echo.HandlerFunc {
	return func(c echo.Context) error {
		reg, err := s.storage.GetUserRegistration(c.Request().Context(), c.Param("id"), c.Param("munID"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, reg)
	}
}

func (s *Service) HandleWithdraw() echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := s.storage.WithdrawRegistration(c.Request().Context(), c.Param("id")); err != nil {
			return errorResponse(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (s *Service) HandleRecordPayment() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Amount float64 `json:"amount"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		if req.Amount <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
		}

		reg, err := s.storage.RecordPayment(c.Request().Context(), c.Param("id"), req.Amount)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, reg)
	}
}

// HandleUploadPaper accepts a PDF of at most 10MB and stores its reference.
func (s *Service) HandleUploadPaper() echo.HandlerFunc {
	return func(c echo.Context) error {
		file, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
		}

		if !isPDF(file.Filename) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "only PDF files are accepted"})
		}
		if file.Size > maxPaperSize {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "file exceeds the 10MB limit"})
		}

		ctx := c.Request().Context()
		if _, err := s.storage.GetRegistration(ctx, c.Param("id")); err != nil {
			return errorResponse(c, err)
		}
		if err := s.storage.SetPositionPaper(ctx, c.Param("id"), file.Filename, file.Size); err != nil {
			return errorResponse(c, err)
		}

		return c.JSON(http.StatusOK, echo.Map{"name": file.Filename, "size": file.Size})
	}
}

func (s *Service) HandleValidatePromo() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			MUNID string `json:"mun_id"`
			Code  string `json:"code"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}

		ctx := c.Request().Context()
		event, err := s.storage.GetEvent(ctx, req.MUNID)
		if err != nil {
			return errorResponse(c, err)
		}

		total, promo, err := s.pricing.Quote(ctx, event, req.Code)
		if err != nil {
			return errorResponse(c, err)
		}

		resp := echo.Map{"total": total}
		if promo != nil {
			resp["code"] = promo.Code
			resp["discount"] = event.Fee - total
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func userFromProfile(p *wizard.ProfilePayload) *models.User {
	return &models.User{
		Name:                  p.Name,
		Email:                 p.Email,
		Country:               p.Country,
		City:                  p.City,
		Institution:           p.Institution,
		Grade:                 p.Grade,
		Bio:                   p.Bio,
		Experience:            p.Experience,
		Phone:                 p.Phone,
		AcceptedCodeOfConduct: p.AcceptedCodeOfConduct,
	}
}

func userWithID(id string, p *wizard.ProfilePayload) *models.User {
	user := userFromProfile(p)
	user.ID = id
	return user
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

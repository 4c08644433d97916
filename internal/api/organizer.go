package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mun-hub/munhub/internal/allocator"
	"github.com/mun-hub/munhub/internal/models"
	"github.com/sirupsen/logrus"
)

// RequireOrganizer gates the organizer console behind a shared key. This is
// deliberately not user-level authentication.
func (s *Service) RequireOrganizer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get("X-Organizer-Key")
			if subtle.ConstantTimeCompare([]byte(key), []byte(s.config.OrganizerKey)) != 1 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "organizer key required"})
			}
			return next(c)
		}
	}
}

func (s *Service) HandleListRegistrations() echo.HandlerFunc {
	return func(c echo.Context) error {
		regs, err := s.storage.GetAllRegistrations(c.Request().Context())
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, regs)
	}
}

func (s *Service) HandleApprove() echo.HandlerFunc {
	return func(c echo.Context) error {
		err := s.storage.UpdateRegistrationStatus(
			c.Request().Context(),
			c.Param("id"),
			models.StatusConfirmed,
			"",
		)
		if err != nil {
			return errorResponse(c, err)
		}

		logrus.Infof("registration %s approved", c.Param("id"))
		return c.NoContent(http.StatusNoContent)
	}
}

func (s *Service) HandleReject() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Reason string `json:"reason"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}

		err := s.storage.UpdateRegistrationStatus(
			c.Request().Context(),
			c.Param("id"),
			models.StatusRejected,
			req.Reason,
		)
		if err != nil {
			return errorResponse(c, err)
		}

		logrus.Infof("registration %s rejected: %s", c.Param("id"), req.Reason)
		return c.NoContent(http.StatusNoContent)
	}
}

func (s *Service) HandleAssignCountry() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Country string `json:"country"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		if req.Country == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "country is required"})
		}

		if err := s.storage.AssignCountry(c.Request().Context(), c.Param("id"), req.Country); err != nil {
			return errorResponse(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (s *Service) HandleGetCountryMatrix() echo.HandlerFunc {
	return func(c echo.Context) error {
		slots, err := s.storage.GetCountrySlots(c.Request().Context(), c.Param("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(http.StatusOK, slots)
	}
}

// HandleAutoAssign pairs the committee's unassigned confirmed delegates with
// available countries, honoring each delegate's ranked preferences.
func (s *Service) HandleAutoAssign() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		committeeID := c.Param("id")

		slots, err := s.storage.GetCountrySlots(ctx, committeeID)
		if err != nil {
			return errorResponse(c, err)
		}
		regs, err := s.storage.GetUnassignedConfirmed(ctx, committeeID)
		if err != nil {
			return errorResponse(c, err)
		}

		pairs := allocator.AutoAssign(slots, regs)
		for _, pair := range pairs {
			if err := s.storage.AssignCountry(ctx, pair.RegistrationID, pair.Country); err != nil {
				return errorResponse(c, err)
			}
		}

		logrus.Infof("auto-assigned %d delegates in committee %s", len(pairs), committeeID)
		return c.JSON(http.StatusOK, echo.Map{"assigned": len(pairs)})
	}
}

// Package fixtures seeds a demo catalog of conferences, committees, country
// matrices and promo codes. Seeding is idempotent: existing rows are left
// untouched.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mun-hub/munhub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	globalSummitID = "6a6f1f9e-0001-4000-8000-000000000001"
	oxfordID       = "6a6f1f9e-0001-4000-8000-000000000002"

	unscID = "6a6f1f9e-0002-4000-8000-000000000001"
	whoID  = "6a6f1f9e-0002-4000-8000-000000000002"
	hscID  = "6a6f1f9e-0002-4000-8000-000000000003"

	demoDelegateID = "6a6f1f9e-0003-4000-8000-000000000001"
)

func Seed(ctx context.Context, db *gorm.DB) error {
	events := []*models.MUN{
		{
			ID:               globalSummitID,
			Name:             "Global Youth Summit MUN 2026",
			Host:             "Global Youth Alliance",
			Format:           models.FormatOffline,
			Location:         "UN Conference Centre",
			City:             "Geneva",
			Region:           "Europe",
			Description:      "Flagship summit gathering delegates from over forty countries.",
			Fee:              100,
			Currency:         "USD",
			StartDate:        time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
			EndDate:          time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
			RegistrationOpen: true,
			Tags:             []string{"beginner-friendly", "international"},
		},
		{
			ID:               oxfordID,
			Name:             "Oxford International MUN",
			Host:             "Oxford MUN Society",
			Format:           models.FormatHybrid,
			Location:         "Examination Schools",
			City:             "Oxford",
			Region:           "Europe",
			Description:      "Historic crisis committees with experienced chairs.",
			Fee:              150,
			Currency:         "GBP",
			StartDate:        time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
			EndDate:          time.Date(2026, 11, 22, 0, 0, 0, 0, time.UTC),
			RegistrationOpen: true,
			Tags:             []string{"crisis", "advanced"},
		},
	}

	committees := []*models.Committee{
		{
			ID:                 unscID,
			MUNID:              globalSummitID,
			Name:               "United Nations Security Council",
			Agenda:             "The situation in the South China Sea",
			Capacity:           15,
			BackgroundGuideURL: "https://example.org/guides/unsc.pdf",
		},
		{
			ID:                 whoID,
			MUNID:              globalSummitID,
			Name:               "World Health Organization",
			Agenda:             "Equitable access to pandemic countermeasures",
			Capacity:           30,
			BackgroundGuideURL: "https://example.org/guides/who.pdf",
		},
		{
			ID:                 hscID,
			MUNID:              oxfordID,
			Name:               "Historical Security Council 1962",
			Agenda:             "The Cuban Missile Crisis",
			Capacity:           15,
			BackgroundGuideURL: "https://example.org/guides/hsc.pdf",
		},
	}

	promos := []*models.PromoCode{
		{Code: "EARLYBIRD", Type: models.DiscountPercentage, Discount: 20, Active: true},
		{Code: "DELEGATE10", Type: models.DiscountFixed, Discount: 10, Active: true},
		{Code: "SUMMER2025", Type: models.DiscountPercentage, Discount: 15, Active: false},
	}

	announcements := []*models.Announcement{
		{
			ID:         uuid.New().String(),
			MUNID:      globalSummitID,
			Title:      "Background guides released",
			Message:    "All committee background guides are now available for download.",
			Author:     "Sarah Chen",
			AuthorRole: "Organizer",
		},
	}

	unlockedAt := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	certificates := []*models.Certificate{
		{
			ID:         "6a6f1f9e-0004-4000-8000-000000000001",
			DelegateID: demoDelegateID,
			MUNID:      oxfordID,
			MUNName:    "Oxford International MUN",
			Award:      models.AwardBestDelegate,
			Committee:  "Historical Security Council 1962",
			Template:   models.TemplateGoldLeaf,
			IssuedAt:   time.Date(2025, 11, 22, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:         "6a6f1f9e-0004-4000-8000-000000000002",
			DelegateID: demoDelegateID,
			MUNID:      globalSummitID,
			MUNName:    "Global Youth Summit MUN 2025",
			Award:      models.AwardOutstanding,
			Committee:  "World Health Organization",
			Template:   models.TemplateModern,
			IssuedAt:   time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	badges := []*models.Badge{
		{
			ID:          "6a6f1f9e-0005-4000-8000-000000000001",
			DelegateID:  demoDelegateID,
			Name:        "First MUN",
			Icon:        "🎯",
			Description: "Attended your first MUN",
			UnlockedAt:  &unlockedAt,
		},
		{
			ID:          "6a6f1f9e-0005-4000-8000-000000000002",
			DelegateID:  demoDelegateID,
			Name:        "Best Delegate",
			Icon:        "🏆",
			Description: "Won Best Delegate award",
			UnlockedAt:  &unlockedAt,
		},
		{
			ID:          "6a6f1f9e-0005-4000-8000-000000000003",
			DelegateID:  demoDelegateID,
			Name:        "Chair Certified",
			Icon:        "👨‍⚖️",
			Description: "Served as committee chair",
		},
	}

	leaderboard := []*models.LeaderboardEntry{
		{ID: "6a6f1f9e-0006-4000-8000-000000000001", Name: "Sarah Chen", Institution: "Oxford University", Country: "United Kingdom", XP: 8950, Badges: 4},
		{ID: "6a6f1f9e-0006-4000-8000-000000000002", Name: "Marcus Johnson", Institution: "Harvard University", Country: "United States", XP: 8420, Badges: 3},
		{ID: "6a6f1f9e-0006-4000-8000-000000000003", Name: "Priya Sharma", Institution: "National University of Singapore", Country: "Singapore", XP: 8180, Badges: 3},
		{ID: "6a6f1f9e-0006-4000-8000-000000000004", Name: "Alex Rivera", Institution: "Tec de Monterrey", Country: "Mexico", XP: 7420, Badges: 2},
		{ID: "6a6f1f9e-0006-4000-8000-000000000005", Name: "Yuki Tanaka", Institution: "Tokyo International School", Country: "Japan", XP: 7250, Badges: 2},
	}

	countrySlots := buildCountrySlots(committees)

	insert := func(name string, rows any) error {
		if err := db.
			WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(rows).
			Error; err != nil {
			return fmt.Errorf("seeding %s: %w", name, err)
		}
		return nil
	}

	if err := insert("events", events); err != nil {
		return err
	}
	if err := insert("committees", committees); err != nil {
		return err
	}
	if err := insert("country slots", countrySlots); err != nil {
		return err
	}
	if err := insert("promo codes", promos); err != nil {
		return err
	}
	if err := insert("announcements", announcements); err != nil {
		return err
	}
	if err := insert("certificates", certificates); err != nil {
		return err
	}
	if err := insert("badges", badges); err != nil {
		return err
	}
	if err := insert("leaderboard", leaderboard); err != nil {
		return err
	}

	return nil
}

var securityCouncilCountries = []struct{ name, code string }{
	{"United States", "US"},
	{"United Kingdom", "GB"},
	{"France", "FR"},
	{"Russia", "RU"},
	{"China", "CN"},
	{"India", "IN"},
	{"Brazil", "BR"},
	{"Germany", "DE"},
	{"Japan", "JP"},
	{"South Africa", "ZA"},
	{"Mexico", "MX"},
	{"Indonesia", "ID"},
	{"Turkey", "TR"},
	{"Egypt", "EG"},
	{"Argentina", "AR"},
}

func buildCountrySlots(committees []*models.Committee) []*models.CountrySlot {
	var slots []*models.CountrySlot
	for _, committee := range committees {
		for i, country := range securityCouncilCountries {
			if i >= committee.Capacity {
				break
			}
			slots = append(slots, &models.CountrySlot{
				ID:          uuid.New().String(),
				CommitteeID: committee.ID,
				Country:     country.name,
				Code:        country.code,
				Status:      models.SlotAvailable,
			})
		}
	}
	return slots
}

// Package allocator pairs unassigned delegates with available country slots.
package allocator

import "github.com/mun-hub/munhub/internal/models"

type Pair struct {
	RegistrationID string
	Country        string
}

// AutoAssign walks the unassigned registrations oldest first and gives each
// one the highest-ranked of its three preferences that is still available,
// falling back to the first available slot. Registrations left without any
// free slot are skipped.
func AutoAssign(slots []*models.CountrySlot, regs []*models.Registration) []Pair {
	free := make(map[string]bool, len(slots))
	order := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot.Status == models.SlotAvailable {
			free[slot.Country] = true
			order = append(order, slot.Country)
		}
	}

	var pairs []Pair
	for _, reg := range regs {
		if reg.AssignedCountry != nil {
			continue
		}

		country := pick(reg.CountryPreferences, free, order)
		if country == "" {
			continue
		}

		free[country] = false
		pairs = append(pairs, Pair{RegistrationID: reg.ID, Country: country})
	}

	return pairs
}

func pick(preferences []string, free map[string]bool, order []string) string {
	for _, want := range preferences {
		if free[want] {
			return want
		}
	}
	for _, country := range order {
		if free[country] {
			return country
		}
	}
	return ""
}

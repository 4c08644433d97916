package allocator

import (
	"testing"

	"github.com/mun-hub/munhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slots(countries ...string) []*models.CountrySlot {
	result := make([]*models.CountrySlot, 0, len(countries))
	for _, country := range countries {
		result = append(result, &models.CountrySlot{
			Country: country,
			Status:  models.SlotAvailable,
		})
	}
	return result
}

func reg(id string, prefs ...string) *models.Registration {
	return &models.Registration{ID: id, CountryPreferences: prefs}
}

func TestAutoAssignHonorsFirstPreference(t *testing.T) {
	pairs := AutoAssign(
		slots("France", "Japan", "Brazil"),
		[]*models.Registration{reg("r1", "Japan", "France", "Brazil")},
	)

	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{RegistrationID: "r1", Country: "Japan"}, pairs[0])
}

func TestAutoAssignFallsToLowerPreference(t *testing.T) {
	pairs := AutoAssign(
		slots("France", "Japan", "Brazil"),
		[]*models.Registration{
			reg("r1", "Japan", "France", "Brazil"),
			reg("r2", "Japan", "Brazil", "France"),
		},
	)

	require.Len(t, pairs, 2)
	assert.Equal(t, "Japan", pairs[0].Country)
	assert.Equal(t, "Brazil", pairs[1].Country)
}

func TestAutoAssignFallsBackToFirstAvailable(t *testing.T) {
	pairs := AutoAssign(
		slots("Germany", "Turkey"),
		[]*models.Registration{reg("r1", "Japan", "France", "Brazil")},
	)

	require.Len(t, pairs, 1)
	assert.Equal(t, "Germany", pairs[0].Country)
}

func TestAutoAssignSkipsAssignedAndExhausted(t *testing.T) {
	assigned := "France"
	regs := []*models.Registration{
		{ID: "r1", AssignedCountry: &assigned},
		reg("r2", "Japan", "France", "Brazil"),
		reg("r3", "Japan", "France", "Brazil"),
	}

	pairs := AutoAssign(slots("Japan"), regs)

	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{RegistrationID: "r2", Country: "Japan"}, pairs[0])
}

func TestAutoAssignIgnoresUnavailableSlots(t *testing.T) {
	all := slots("France", "Japan")
	all[0].Status = models.SlotReserved

	pairs := AutoAssign(all, []*models.Registration{reg("r1", "France", "Japan", "Brazil")})

	require.Len(t, pairs, 1)
	assert.Equal(t, "Japan", pairs[0].Country)
}

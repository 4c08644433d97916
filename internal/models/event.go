package models

import "time"

type EventFormat string

const (
	FormatOnline  EventFormat = "online"
	FormatOffline EventFormat = "offline"
	FormatHybrid  EventFormat = "hybrid"
)

// MUN is a conference listing. Committees are preloaded where the API needs
// them.
type MUN struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	Name             string
	Host             string
	Format           EventFormat
	Location         string
	City             string
	Region           string
	Description      string
	Fee              float64
	Currency         string
	StartDate        time.Time
	EndDate          time.Time
	RegistrationOpen bool
	Tags             []string `gorm:"type:jsonb;serializer:json"`

	Committees []Committee `gorm:"foreignKey:MUNID"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type Committee struct {
	ID                 string `gorm:"type:uuid;primaryKey"`
	MUNID              string `gorm:"column:mun_id;index"`
	Name               string
	Agenda             string
	Capacity           int
	BackgroundGuideURL string

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type CountrySlotStatus string

const (
	SlotAvailable  CountrySlotStatus = "available"
	SlotFilled     CountrySlotStatus = "filled"
	SlotWaitlisted CountrySlotStatus = "waitlisted"
	SlotReserved   CountrySlotStatus = "reserved"
)

// CountrySlot is one country seat in a committee's allocation matrix.
type CountrySlot struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	CommitteeID string `gorm:"index:idx_committee_country,unique"`
	Country     string `gorm:"index:idx_committee_country,unique"`
	Code        string

	Status     CountrySlotStatus
	DelegateID *string `gorm:"type:uuid"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type Announcement struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	MUNID      string `gorm:"column:mun_id;index"`
	Title      string
	Message    string
	Author     string
	AuthorRole string
	Committee  *string

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

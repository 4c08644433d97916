package models

import "time"

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// User is a delegate profile captured before the first registration.
type User struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string
	Email       string `gorm:"uniqueIndex"`
	Country     string
	City        string
	Institution string
	Grade       string
	Bio         string
	Experience  ExperienceLevel
	Phone       string

	AcceptedCodeOfConduct bool

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

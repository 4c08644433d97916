package models

import "time"

type AwardType string

const (
	AwardBestDelegate     AwardType = "Best Delegate"
	AwardOutstanding      AwardType = "Outstanding Delegate"
	AwardHighCommendation AwardType = "High Commendation"
	AwardSpecialMention   AwardType = "Special Mention"
)

type CertificateTemplate string

const (
	TemplateClassic  CertificateTemplate = "classic"
	TemplateModern   CertificateTemplate = "modern"
	TemplateGoldLeaf CertificateTemplate = "gold-leaf"
)

// Certificate records an award earned at a past conference.
type Certificate struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	DelegateID string `gorm:"type:uuid;index"`
	MUNID      string `gorm:"column:mun_id"`
	MUNName    string `gorm:"column:mun_name"`
	Award      AwardType
	Committee  string
	Template   CertificateTemplate
	IssuedAt   time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Badge is an achievement a delegate unlocks over time.
type Badge struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	DelegateID  string `gorm:"type:uuid;index"`
	Name        string
	Icon        string
	Description string
	UnlockedAt  *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// LeaderboardEntry is one row of the global delegate ranking. Rank is derived
// from the XP ordering, not stored.
type LeaderboardEntry struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string
	Institution string
	Country     string
	XP          int `gorm:"column:xp;index"`
	Badges      int

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

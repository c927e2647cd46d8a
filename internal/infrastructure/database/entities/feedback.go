package entities

import "time"

// Feedback is the persisted representation of a feedback submission.
type Feedback struct {
	ID        string    `gorm:"type:varchar(40);primaryKey"`
	Rating    int       `gorm:"not null;default:0"`
	Text      string    `gorm:"column:feedback;type:text"`
	Timestamp string    `gorm:"type:varchar(64)"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (Feedback) TableName() string {
	return "feedback"
}

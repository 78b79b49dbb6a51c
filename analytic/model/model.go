package model

import "time"

// ClickEvent is one persisted click, partitioned by the lowercase vanity
// code. ClickDatetime keeps the display-format timestamp stamped by the
// redirect service; CreatedAt is when the row landed here.
type ClickEvent struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Code          string    `gorm:"index" json:"code"`
	ClickDatetime string    `json:"clickDatetime"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

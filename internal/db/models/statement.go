package models

import "time"

// DelegateStatement is the signed self description a delegate publishes for one DAO.
type DelegateStatement struct {
	ID                      uint64    `gorm:"primaryKey" json:"-"`
	Address                 string    `gorm:"size:42;not null;uniqueIndex:idx_statement_address_slug" json:"address"`
	DAOSlug                 string    `gorm:"size:32;not null;uniqueIndex:idx_statement_address_slug" json:"daoSlug"`
	Signature               string    `gorm:"type:text" json:"signature"`
	MessageHash             string    `gorm:"size:66" json:"messageHash"`
	Payload                 string    `gorm:"type:text" json:"-"` // json, see statement.Payload
	TwitterHandle           string    `gorm:"size:255" json:"twitter"`
	DiscordHandle           string    `gorm:"size:255" json:"discord"`
	WarpcastHandle          string    `gorm:"size:255" json:"warpcast"`
	Email                   string    `gorm:"size:255" json:"-"`
	AgreeCodeOfConduct      bool      `json:"agreeCodeOfConduct"`
	AgreeDAOPrinciples      bool      `json:"agreeDaoPrinciples"`
	NotificationPreferences string    `gorm:"type:text" json:"-"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

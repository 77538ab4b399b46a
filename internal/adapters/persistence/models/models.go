package models

import (
	"time"
)

// Credential row keys; a session is stored as exactly these two rows
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
)

// SessionCredential represents session_credentials table
type SessionCredential struct {
	Name      string    `gorm:"primaryKey;size:32" json:"name"`
	Value     string    `gorm:"type:text;not null" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SessionCredential) TableName() string {
	return "session_credentials"
}

// All returns every model the session database needs
func All() []any {
	return []any{&SessionCredential{}}
}

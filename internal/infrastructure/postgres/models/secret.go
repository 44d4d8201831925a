package models

import "time"

type SecretModel struct {
	AccountCode  string `gorm:"primaryKey;size:64"`
	Value        string `gorm:"not null"`
	ExpiresIn    int64  `gorm:"not null"`
	CreatedAt    time.Time
	ExpirationAt time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

func (SecretModel) TableName() string {
	return "mypvit_secrets"
}

package models

import "time"

// User represents an operator account for authentication and the
// transaction ledger.
type User struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string    `gorm:"column:username;type:varchar(80);not null;uniqueIndex"`
	Email        string    `gorm:"column:email;type:varchar(120);not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null"`
	Role         string    `gorm:"column:role;type:varchar(50);not null;default:user"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string { return "users" }

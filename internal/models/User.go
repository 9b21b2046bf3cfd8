package models

import "gorm.io/gorm"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	gorm.Model
	UniversityID  uint   `json:"university_id" gorm:"index;not null"`
	Name          string `json:"name"`
	Email         string `json:"email" gorm:"uniqueIndex;not null"`
	Password      string `json:"-"`
	Role          string `json:"role" gorm:"not null"` // "student", "admin"
	WalletBalance int64  `json:"wallet_balance" gorm:"not null;default:0;check:chk_users_wallet_balance,wallet_balance >= 0"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

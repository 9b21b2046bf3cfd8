package models

import (
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// University is the tenant every stop, route, shuttle and user belongs to.
type University struct {
	gorm.Model
	Code        string         `json:"code" gorm:"uniqueIndex;not null"`
	Name        string         `json:"name"`
	Location    string         `json:"location"`
	Domain      string         `json:"domain" gorm:"not null"`
	AdminEmails pq.StringArray `json:"admin_emails" gorm:"type:text[]"`
}

// IsAdminEmail reports whether email is on the university's admin list.
func (u University) IsAdminEmail(email string) bool {
	for _, e := range u.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

// AcceptsEmail reports whether the email's domain matches the university domain.
func (u University) AcceptsEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	return strings.EqualFold(email[at+1:], u.Domain)
}

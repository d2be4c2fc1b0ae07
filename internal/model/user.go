package model

import "time"

// User is the authentication principal. The core trusts the user ID from
// the JWT and only ever touches the caller's own wallet.
type User struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username string `gorm:"type:varchar(100)" json:"username"`
	Email    string `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Password string `gorm:"type:varchar(255)" json:"-"`

	// NotificationToken is the push destination; insight jobs only
	// iterate users that have one.
	NotificationToken *string `gorm:"type:varchar(255)" json:"notification_token,omitempty"`
	Timezone          string  `gorm:"type:varchar(64);default:''" json:"timezone"`
}

func (User) TableName() string {
	return "users"
}

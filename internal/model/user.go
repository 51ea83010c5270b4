package model

import "time"

// User отправитель сообщений бота, ключ telegram_id
type User struct {
	TelegramID int64      `json:"telegram_id"`
	Username   *string    `json:"username"`
	FirstName  *string    `json:"first_name"`
	LastName   *string    `json:"last_name"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// NewUser пустые строки сохраняются как null
func NewUser(telegramID int64, username, firstName, lastName string) *User {
	return &User{
		TelegramID: telegramID,
		Username:   optional(username),
		FirstName:  optional(firstName),
		LastName:   optional(lastName),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

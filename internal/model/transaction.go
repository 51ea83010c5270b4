package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChatType тип чата, из которого пришла команда
type ChatType string

const (
	ChatPrivate ChatType = "private"
	ChatGroup   ChatType = "group"
)

// ChatTypeFromTelegram всё, что не личный чат, считается группой
func ChatTypeFromTelegram(chatType string) ChatType {
	if chatType == string(ChatPrivate) {
		return ChatPrivate
	}
	return ChatGroup
}

// Transaction запись о выполненном расчёте, не изменяется после создания
type Transaction struct {
	ID           string          `json:"id"`
	UserID       int64           `json:"user_id"`
	ChatType     ChatType        `json:"chat_type"`
	FromCurrency string          `json:"from_currency"`
	FromAmount   decimal.Decimal `json:"from_amount"`
	ToCurrency   string          `json:"to_currency"`
	ToAmount     decimal.Decimal `json:"to_amount"`
	CreatedAt    time.Time       `json:"created_at"`

	// Заполняется только при выборке с join на users
	User *UserSummary `json:"users,omitempty"`
}

// UserSummary поля пользователя, которые панель показывает рядом с транзакцией
type UserSummary struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// GenerateID генерирует новый UUID для транзакции, если он еще не установлен
func (t *Transaction) GenerateID() {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
}

package entity

import "time"

// Participant представляет зарегистрированного участника.
// Записи создаются внешним процессом регистрации; движок тестирования
// читает их для связывания попыток и построения таблицы результатов.
type Participant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TeamID      uint      `gorm:"not null;index" json:"team_id"`
	DisplayName string    `gorm:"size:100;not null" json:"display_name"`
	Email       string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	College     string    `gorm:"size:150;not null;default:''" json:"college,omitempty"`
	Department  string    `gorm:"size:100;not null;default:''" json:"department,omitempty"`
	IsAdmin     bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Participant) TableName() string {
	return "participants"
}

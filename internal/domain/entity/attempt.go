package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Статусы попытки. Машина состояний линейна: created -> submitted,
// submitted — терминальный статус, повторное прохождение не предусмотрено.
const (
	AttemptStatusCreated   = "created"
	AttemptStatusSubmitted = "submitted"
)

// UnansweredChoice - значение ответа для пропущенного вопроса
const UnansweredChoice = -1

// QuestionSnapshot — зафиксированная на момент старта попытки версия вопроса:
// перемешанные варианты и пересчитанный под них индекс правильного ответа.
// Снапшот неизменен после вставки; подсчёт баллов читает только его.
type QuestionSnapshot struct {
	QuestionID    uint     `json:"question_id"`
	Kind          string   `json:"kind"`
	Prompt        string   `json:"prompt"`
	CodeSnippet   string   `json:"code_snippet,omitempty"`
	CodeLanguage  string   `json:"code_language,omitempty"`
	Choices       []string `json:"choices"`
	CorrectChoice int      `json:"correct_choice"` // индекс в перемешанном порядке
	Marks         int      `json:"marks"`
}

// SnapshotArray - пользовательский тип для хранения снапшота попытки в JSONB
type SnapshotArray []QuestionSnapshot

// Scan реализует интерфейс sql.Scanner для SnapshotArray
func (s *SnapshotArray) Scan(value interface{}) error {
	if value == nil {
		*s = SnapshotArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*s = SnapshotArray{}
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Value реализует интерфейс driver.Valuer для SnapshotArray
func (s SnapshotArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// AnswerArray - пользовательский тип для хранения ответов участника в JSONB.
// Длина совпадает с длиной снапшота; -1 означает пропущенный вопрос.
type AnswerArray []int

// Scan реализует интерфейс sql.Scanner для AnswerArray
func (a *AnswerArray) Scan(value interface{}) error {
	if value == nil {
		*a = AnswerArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*a = AnswerArray{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Value реализует интерфейс driver.Valuer для AnswerArray
func (a AnswerArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Attempt представляет попытку участника пройти тест.
// Ограничение уникальности (participant_id, assessment_id) — единственная
// защита от гонки при одновременном старте: проигравший вставку переходит
// на путь возобновления и получает тот же снапшот.
type Attempt struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	PublicID         string        `gorm:"size:36;not null;uniqueIndex" json:"public_id"`
	ParticipantID    uint          `gorm:"not null;uniqueIndex:idx_participant_assessment" json:"participant_id"`
	AssessmentID     uint          `gorm:"not null;uniqueIndex:idx_participant_assessment" json:"assessment_id"`
	TeamID           uint          `gorm:"not null;index" json:"team_id"`
	ParticipantEmail string        `gorm:"size:100;not null" json:"participant_email"`
	Snapshot         SnapshotArray `gorm:"type:jsonb;not null" json:"-"` // Содержит ключи ответов, наружу не отдаётся
	Answers          AnswerArray   `gorm:"type:jsonb" json:"answers,omitempty"`
	Score            int           `gorm:"not null;default:0" json:"score"`
	TotalQuestions   int           `gorm:"not null" json:"total_questions"`
	ViolationCount   int           `gorm:"not null;default:0" json:"violation_count"`
	DurationSeconds  int           `gorm:"not null" json:"duration_seconds"`
	Status           string        `gorm:"size:20;not null;default:'created';index" json:"status"`
	StartedAt        time.Time     `gorm:"not null" json:"started_at"`
	SubmittedAt      *time.Time    `json:"submitted_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "attempts"
}

// IsSubmitted проверяет, завершена ли попытка
func (a *Attempt) IsSubmitted() bool {
	return a.Status == AttemptStatusSubmitted
}

// Deadline возвращает момент, после которого сдача считается просроченной
func (a *Attempt) Deadline(grace time.Duration) time.Time {
	return a.StartedAt.Add(time.Duration(a.DurationSeconds)*time.Second + grace)
}

package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Виды вопросов банка
const (
	QuestionKindMultipleChoice = "multiple_choice"
	QuestionKindCodeChallenge  = "code_challenge"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	// Обработка пустого массива байтов
	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос банка. Банк принадлежит подсистеме авторинга,
// движок тестирования только читает его при выборке вопросов для попытки.
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	AssessmentID  uint        `gorm:"not null;index" json:"assessment_id"`
	Kind          string      `gorm:"size:20;not null;default:'multiple_choice'" json:"kind"`
	Prompt        string      `gorm:"size:1000;not null" json:"prompt"`
	CodeSnippet   string      `gorm:"type:text;not null;default:''" json:"code_snippet,omitempty"`
	CodeLanguage  string      `gorm:"size:30;not null;default:''" json:"code_language,omitempty"`
	Choices       StringArray `gorm:"type:jsonb;not null" json:"choices"`
	CorrectChoice int         `gorm:"not null" json:"-"` // Скрыто от клиента
	Subject       string      `gorm:"size:50;not null;default:''" json:"subject,omitempty"`
	Difficulty    int         `gorm:"not null;default:0" json:"difficulty,omitempty"`
	Marks         int         `gorm:"not null;default:1" json:"marks"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsValidChoice проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidChoice(selected int) bool {
	return selected >= 0 && selected < len(q.Choices)
}

// ItemCore содержит поля, общие для всех видов вопросов банка.
type ItemCore struct {
	ID      uint
	Prompt  string
	Choices []string
	// CorrectChoice — индекс правильного варианта в исходном (неперемешанном) порядке.
	CorrectChoice int
	Marks         int
}

// BankItem — доменное представление вопроса банка: либо обычный вопрос с
// вариантами, либо вопрос по фрагменту кода. Общие поля вынесены в ItemCore.
type BankItem interface {
	Core() ItemCore
}

// MultipleChoiceItem — обычный вопрос с вариантами ответа.
type MultipleChoiceItem struct {
	ItemCore
}

// Core возвращает общие поля вопроса
func (i MultipleChoiceItem) Core() ItemCore { return i.ItemCore }

// CodeChallengeItem — вопрос по фрагменту кода с вариантами ответа.
type CodeChallengeItem struct {
	ItemCore
	Snippet  string
	Language string
}

// Core возвращает общие поля вопроса
func (i CodeChallengeItem) Core() ItemCore { return i.ItemCore }

// Item проецирует строку банка в доменный вид вопроса.
// Неизвестный Kind трактуется как multiple_choice.
func (q *Question) Item() BankItem {
	core := ItemCore{
		ID:            q.ID,
		Prompt:        q.Prompt,
		Choices:       append([]string(nil), q.Choices...),
		CorrectChoice: q.CorrectChoice,
		Marks:         q.Marks,
	}
	if q.Kind == QuestionKindCodeChallenge {
		return CodeChallengeItem{
			ItemCore: core,
			Snippet:  q.CodeSnippet,
			Language: q.CodeLanguage,
		}
	}
	return MultipleChoiceItem{ItemCore: core}
}

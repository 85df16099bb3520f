package repository

import (
	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// QuestionRepository определяет методы для чтения банка вопросов.
// Банк заполняется подсистемой авторинга; движок тестирования его не изменяет.
type QuestionRepository interface {
	GetByID(id uint) (*entity.Question, error)

	// SampleItems выбирает count случайных вопросов теста без повторений.
	// Если в пуле меньше count вопросов, возвращает весь пул.
	SampleItems(assessmentID uint, count int) ([]entity.Question, error)

	// CountByAssessment возвращает размер пула вопросов теста
	CountByAssessment(assessmentID uint) (int64, error)
}

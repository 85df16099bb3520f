package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// SampleItems выбирает count случайных вопросов теста без повторений.
// ORDER BY RANDOM() достаточно: пул вопросов одного теста измеряется
// десятками строк, выборка происходит один раз на попытку.
func (r *QuestionRepo) SampleItems(assessmentID uint, count int) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("assessment_id = ?", assessmentID).
		Order("RANDOM()").
		Limit(count).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CountByAssessment возвращает размер пула вопросов теста
func (r *QuestionRepo) CountByAssessment(assessmentID uint) (int64, error) {
	var total int64
	err := r.db.Model(&entity.Question{}).
		Where("assessment_id = ?", assessmentID).
		Count(&total).Error
	return total, err
}

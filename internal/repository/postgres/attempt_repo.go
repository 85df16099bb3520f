package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create вставляет новую попытку.
// Ограничение уникальности idx_participant_assessment — единственная защита от
// одновременного старта; 23505 переводится в ErrConflict, вызывающая сторона
// переходит на путь возобновления.
func (r *AttemptRepo) Create(attempt *entity.Attempt) error {
	err := r.db.Create(attempt).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: attempt already exists for participant #%d, assessment #%d",
				apperrors.ErrConflict, attempt.ParticipantID, attempt.AssessmentID)
		}
		return err
	}
	return nil
}

// GetByParticipantAndAssessment возвращает попытку участника в данном тесте
func (r *AttemptRepo) GetByParticipantAndAssessment(participantID, assessmentID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Where("participant_id = ? AND assessment_id = ?", participantID, assessmentID).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetByPublicID возвращает попытку по её внешнему идентификатору
func (r *AttemptRepo) GetByPublicID(publicID string) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Where("public_id = ?", publicID).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// Finalize атомарно переводит попытку created → submitted.
// Условие status = created в WHERE делает сдачу идемпотентной: при
// одновременных Submit ровно один UPDATE затрагивает строку, второй
// получает RowsAffected == 0 → ErrConflict. Частичное состояние
// (ответы без балла, балл без смены статуса) невозможно.
func (r *AttemptRepo) Finalize(attemptID uint, answers entity.AnswerArray, score int, violationCount int, submittedAt time.Time) error {
	result := r.db.Model(&entity.Attempt{}).
		Where("id = ? AND status = ?", attemptID, entity.AttemptStatusCreated).
		Updates(map[string]interface{}{
			"answers":         answers,
			"score":           score,
			"violation_count": violationCount,
			"submitted_at":    submittedAt,
			"status":          entity.AttemptStatusSubmitted,
		})

	if result.Error != nil {
		return fmt.Errorf("finalize attempt #%d failed: %w", attemptID, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: attempt #%d is not in created status", apperrors.ErrConflict, attemptID)
	}

	return nil
}

// GetLeaderboardRows возвращает сданные попытки, соединённые с профилями участников.
// Порядок: score DESC, submitted_at ASC (кто сдал раньше — выше), id ASC как
// стабильный финальный разделитель. Ранги проставляет сервис.
func (r *AttemptRepo) GetLeaderboardRows(assessmentID uint) ([]repository.LeaderboardRow, error) {
	var rows []repository.LeaderboardRow
	err := r.db.
		Table("attempts").
		Select(`attempts.team_id,
			participants.display_name,
			participants.college,
			participants.department,
			attempts.score,
			attempts.submitted_at`).
		Joins("JOIN participants ON participants.id = attempts.participant_id").
		Where("attempts.assessment_id = ? AND attempts.status = ?", assessmentID, entity.AttemptStatusSubmitted).
		Order("attempts.score DESC, attempts.submitted_at ASC, attempts.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

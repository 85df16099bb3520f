package repository

import (
	"time"

	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// LeaderboardRow — строка таблицы результатов, собирается из сданных попыток
// и профилей участников. Никогда не сохраняется, всегда вычисляется на лету.
type LeaderboardRow struct {
	Rank        int       `json:"rank"`
	TeamID      uint      `json:"team_id"`
	DisplayName string    `json:"display_name"`
	College     string    `json:"college,omitempty"`
	Department  string    `json:"department,omitempty"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// AttemptRepository определяет методы для работы с попытками
type AttemptRepository interface {
	// Create вставляет новую попытку. При нарушении уникальности
	// (participant_id, assessment_id) возвращает apperrors.ErrConflict.
	Create(attempt *entity.Attempt) error

	GetByParticipantAndAssessment(participantID, assessmentID uint) (*entity.Attempt, error)
	GetByPublicID(publicID string) (*entity.Attempt, error)

	// Finalize атомарно переводит попытку created -> submitted, записывая
	// ответы, балл, счётчик нарушений и время сдачи одним условным UPDATE.
	// Если строка уже не в статусе created, возвращает apperrors.ErrConflict.
	Finalize(attemptID uint, answers entity.AnswerArray, score int, violationCount int, submittedAt time.Time) error

	// GetLeaderboardRows возвращает сданные попытки, соединённые с профилями,
	// упорядоченные по score DESC, submitted_at ASC, id ASC. Ранги не проставлены.
	GetLeaderboardRows(assessmentID uint) ([]LeaderboardRow, error)
}

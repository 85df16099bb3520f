package service

import (
	"fmt"

	"github.com/yourusername/assessment-api/internal/domain/repository"
)

// LeaderboardService строит таблицу результатов теста.
// Таблица всегда вычисляется на лету из текущего набора сданных попыток:
// никакого кеширования, каждый вызов отражает актуальное состояние.
type LeaderboardService struct {
	attemptRepo repository.AttemptRepository
}

// NewLeaderboardService создает новый сервис таблицы результатов
func NewLeaderboardService(attemptRepo repository.AttemptRepository) *LeaderboardService {
	return &LeaderboardService{attemptRepo: attemptRepo}
}

// ComputeLeaderboard возвращает упорядоченные строки с проставленными рангами.
// Порядок задаёт репозиторий (score DESC, submitted_at ASC, id ASC);
// здесь только нумерация: ранги 1-базные, без разделения мест при равенстве —
// кто сдал раньше, тот выше.
func (s *LeaderboardService) ComputeLeaderboard(assessmentID uint) ([]repository.LeaderboardRow, error) {
	rows, err := s.attemptRepo.GetLeaderboardRows(assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard for assessment #%d: %w", assessmentID, err)
	}

	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows, nil
}

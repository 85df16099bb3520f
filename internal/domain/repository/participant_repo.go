package repository

import (
	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// ParticipantRepository определяет методы для чтения профилей участников.
// Записи создаются внешним процессом регистрации.
type ParticipantRepository interface {
	GetByID(id uint) (*entity.Participant, error)
	GetByEmail(email string) (*entity.Participant, error)
	GetByTeamID(teamID uint) ([]entity.Participant, error)
}

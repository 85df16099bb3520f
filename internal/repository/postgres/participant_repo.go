package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// ParticipantRepo реализует repository.ParticipantRepository
type ParticipantRepo struct {
	db *gorm.DB
}

// NewParticipantRepo создает новый репозиторий участников
func NewParticipantRepo(db *gorm.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

// GetByID возвращает участника по ID
func (r *ParticipantRepo) GetByID(id uint) (*entity.Participant, error) {
	var participant entity.Participant
	err := r.db.First(&participant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &participant, nil
}

// GetByEmail возвращает участника по email
func (r *ParticipantRepo) GetByEmail(email string) (*entity.Participant, error) {
	var participant entity.Participant
	err := r.db.Where("email = ?", email).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &participant, nil
}

// GetByTeamID возвращает всех участников команды
func (r *ParticipantRepo) GetByTeamID(teamID uint) ([]entity.Participant, error) {
	var participants []entity.Participant
	err := r.db.Where("team_id = ?", teamID).Order("id").Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

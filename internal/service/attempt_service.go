package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/assessment-api/internal/config"
	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
)

// AttemptQuestionView — вопрос в выдаче участнику. Индекс правильного
// ответа сюда не попадает никогда: ключ живёт только в снапшоте в базе.
type AttemptQuestionView struct {
	QuestionID   uint     `json:"question_id"`
	Kind         string   `json:"kind"`
	Prompt       string   `json:"prompt"`
	CodeSnippet  string   `json:"code_snippet,omitempty"`
	CodeLanguage string   `json:"code_language,omitempty"`
	Choices      []string `json:"choices"`
	Marks        int      `json:"marks"`
}

// AttemptView — представление попытки для участника: либо активная попытка
// с вопросами (status=created), либо терминальный результат (status=submitted).
type AttemptView struct {
	AttemptID       string                `json:"attempt_id"`
	Status          string                `json:"status"`
	DurationSeconds int                   `json:"duration_seconds"`
	StartedAt       time.Time             `json:"started_at"`
	Questions       []AttemptQuestionView `json:"questions,omitempty"`
	Score           *int                  `json:"score,omitempty"`
	TotalQuestions  int                   `json:"total_questions"`
	SubmittedAt     *time.Time            `json:"submitted_at,omitempty"`
}

// SubmitResult — итог сдачи попытки
type SubmitResult struct {
	AttemptID      string    `json:"attempt_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// AttemptService управляет жизненным циклом попытки:
// created → submitted, submitted — терминальное состояние, пересдачи нет.
type AttemptService struct {
	attemptRepo     repository.AttemptRepository
	participantRepo repository.ParticipantRepository
	cacheRepo       repository.CacheRepository
	snapshotBuilder *SnapshotBuilder
	emailService    EmailService
	cfg             config.AssessmentConfig
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	participantRepo repository.ParticipantRepository,
	cacheRepo repository.CacheRepository,
	snapshotBuilder *SnapshotBuilder,
	emailService EmailService,
	cfg config.AssessmentConfig,
) *AttemptService {
	return &AttemptService{
		attemptRepo:     attemptRepo,
		participantRepo: participantRepo,
		cacheRepo:       cacheRepo,
		snapshotBuilder: snapshotBuilder,
		emailService:    emailService,
		cfg:             cfg,
	}
}

// StartOrResume возвращает попытку участника в тесте, создавая её при
// первом обращении. Повторные вызовы идемпотентны: участник получает
// байт-в-байт тот же набор вопросов, что и при старте.
//
// Гонку одновременного старта разрешает ограничение уникальности
// (participant_id, assessment_id) в базе: проигравший вставку получает
// ErrConflict от репозитория и переходит на путь возобновления — снаружи
// оба вызова неотличимы.
func (s *AttemptService) StartOrResume(participantID uint, assessmentID uint) (*AttemptView, error) {
	existing, err := s.attemptRepo.GetByParticipantAndAssessment(participantID, assessmentID)
	if err == nil {
		return s.viewOf(existing), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up attempt: %w", err)
	}

	participant, err := s.participantRepo.GetByID(participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participant #%d: %w", participantID, err)
	}

	snapshot, err := s.snapshotBuilder.BuildSnapshot(assessmentID, s.cfg.QuestionsPerAttempt)
	if err != nil {
		return nil, err
	}
	if len(snapshot) == 0 {
		return nil, fmt.Errorf("%w: assessment #%d has no questions", apperrors.ErrNotFound, assessmentID)
	}

	attempt := &entity.Attempt{
		PublicID:         uuid.NewString(),
		ParticipantID:    participantID,
		AssessmentID:     assessmentID,
		TeamID:           participant.TeamID,
		ParticipantEmail: participant.Email,
		Snapshot:         snapshot,
		TotalQuestions:   len(snapshot),
		DurationSeconds:  s.cfg.DurationSeconds,
		Status:           entity.AttemptStatusCreated,
		StartedAt:        time.Now(),
	}

	if err := s.attemptRepo.Create(attempt); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Проиграли гонку старта: кто-то уже вставил попытку.
			// Читаем её и отдаём как обычное возобновление.
			log.Printf("[AttemptService] Проигрыш гонки старта: participant=%d assessment=%d, возобновляем", participantID, assessmentID)
			winner, getErr := s.attemptRepo.GetByParticipantAndAssessment(participantID, assessmentID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to recover attempt after creation race: %w", getErr)
			}
			return s.viewOf(winner), nil
		}
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	log.Printf("[AttemptService] Создана попытка %s: participant=%d assessment=%d questions=%d",
		attempt.PublicID, participantID, assessmentID, len(snapshot))

	view := s.viewOf(attempt)
	s.cacheView(participantID, assessmentID, view)
	return view, nil
}

// Submit принимает ответы участника и фиксирует результат.
// Перевод created → submitted, ответы, балл, счётчик нарушений и время
// сдачи пишутся одним условным UPDATE; повторная сдача получает ErrConflict,
// попытка, которая не была начата, — ErrNotFound.
func (s *AttemptService) Submit(participantID uint, assessmentID uint, answers []int, violationCount int) (*SubmitResult, error) {
	attempt, err := s.attemptRepo.GetByParticipantAndAssessment(participantID, assessmentID)
	if err != nil {
		return nil, err
	}

	if attempt.IsSubmitted() {
		return nil, fmt.Errorf("%w: attempt %s already submitted", apperrors.ErrConflict, attempt.PublicID)
	}

	if len(answers) != len(attempt.Snapshot) {
		return nil, fmt.Errorf("%w: expected %d answers, got %d",
			apperrors.ErrValidation, len(attempt.Snapshot), len(answers))
	}
	if violationCount < 0 {
		return nil, fmt.Errorf("%w: violation count cannot be negative", apperrors.ErrValidation)
	}

	now := time.Now()
	if s.cfg.EnforceDeadline {
		grace := time.Duration(s.cfg.DeadlineGraceSec) * time.Second
		if now.After(attempt.Deadline(grace)) {
			return nil, fmt.Errorf("%w: submission deadline passed for attempt %s",
				apperrors.ErrConflict, attempt.PublicID)
		}
	}

	// Балл считается ТОЛЬКО по снапшоту попытки: банк вопросов мог
	// измениться после старта, замороженная версия — единственный источник
	score := ScoreAnswers(attempt.Snapshot, answers)

	if err := s.attemptRepo.Finalize(attempt.ID, answers, score, violationCount, now); err != nil {
		return nil, err
	}

	s.invalidateCachedView(participantID, assessmentID)

	log.Printf("[AttemptService] Попытка %s сдана: score=%d/%d violations=%d",
		attempt.PublicID, score, len(attempt.Snapshot), violationCount)

	s.sendScoreConfirmation(attempt, score)

	return &SubmitResult{
		AttemptID:      attempt.PublicID,
		Score:          score,
		TotalQuestions: len(attempt.Snapshot),
		SubmittedAt:    now,
	}, nil
}

// GetAttemptView возвращает текущее состояние попытки участника без
// побочных эффектов: активная попытка или терминальный результат.
func (s *AttemptService) GetAttemptView(participantID uint, assessmentID uint) (*AttemptView, error) {
	attempt, err := s.attemptRepo.GetByParticipantAndAssessment(participantID, assessmentID)
	if err != nil {
		return nil, err
	}
	return s.viewOf(attempt), nil
}

// ScoreAnswers считает число совпадений ответа с ключом снапшота.
// Пропущенные (-1) и выходящие за диапазон ответы — просто неверные,
// они никогда не являются ошибкой.
func ScoreAnswers(snapshot entity.SnapshotArray, answers []int) int {
	score := 0
	for i := range snapshot {
		if answers[i] == snapshot[i].CorrectChoice {
			score++
		}
	}
	return score
}

// viewOf строит представление попытки для участника.
// Для активной попытки сначала пробуем кеш: снапшот неизменен после
// вставки, поэтому закешированная выдача всегда байт-в-байт совпадает
// с пересобранной из базы.
func (s *AttemptService) viewOf(attempt *entity.Attempt) *AttemptView {
	if attempt.IsSubmitted() {
		score := attempt.Score
		return &AttemptView{
			AttemptID:       attempt.PublicID,
			Status:          attempt.Status,
			DurationSeconds: attempt.DurationSeconds,
			StartedAt:       attempt.StartedAt,
			Score:           &score,
			TotalQuestions:  attempt.TotalQuestions,
			SubmittedAt:     attempt.SubmittedAt,
		}
	}

	if cached := s.cachedView(attempt.ParticipantID, attempt.AssessmentID); cached != nil {
		return cached
	}

	questions := make([]AttemptQuestionView, 0, len(attempt.Snapshot))
	for _, snap := range attempt.Snapshot {
		questions = append(questions, AttemptQuestionView{
			QuestionID:   snap.QuestionID,
			Kind:         snap.Kind,
			Prompt:       snap.Prompt,
			CodeSnippet:  snap.CodeSnippet,
			CodeLanguage: snap.CodeLanguage,
			Choices:      snap.Choices,
			Marks:        snap.Marks,
		})
	}

	view := &AttemptView{
		AttemptID:       attempt.PublicID,
		Status:          attempt.Status,
		DurationSeconds: attempt.DurationSeconds,
		StartedAt:       attempt.StartedAt,
		Questions:       questions,
		TotalQuestions:  attempt.TotalQuestions,
	}

	s.cacheView(attempt.ParticipantID, attempt.AssessmentID, view)
	return view
}

func attemptViewKey(participantID, assessmentID uint) string {
	return fmt.Sprintf("attempt:view:%d:%d", participantID, assessmentID)
}

// cacheView сохраняет выдачу активной попытки. Кеш — чистая оптимизация,
// ошибки Redis только логируются.
func (s *AttemptService) cacheView(participantID, assessmentID uint, view *AttemptView) {
	if s.cacheRepo == nil || s.cfg.AttemptCacheTTLSec <= 0 {
		return
	}
	ttl := time.Duration(s.cfg.AttemptCacheTTLSec) * time.Second
	if err := s.cacheRepo.SetJSON(attemptViewKey(participantID, assessmentID), view, ttl); err != nil {
		log.Printf("[AttemptService] Не удалось закешировать выдачу попытки: %v", err)
	}
}

func (s *AttemptService) cachedView(participantID, assessmentID uint) *AttemptView {
	if s.cacheRepo == nil || s.cfg.AttemptCacheTTLSec <= 0 {
		return nil
	}
	var view AttemptView
	err := s.cacheRepo.GetJSON(attemptViewKey(participantID, assessmentID), &view)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[AttemptService] Ошибка чтения кеша выдачи попытки: %v", err)
		}
		return nil
	}
	return &view
}

func (s *AttemptService) invalidateCachedView(participantID, assessmentID uint) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(attemptViewKey(participantID, assessmentID)); err != nil {
		log.Printf("[AttemptService] Не удалось инвалидировать кеш выдачи попытки: %v", err)
	}
}

// sendScoreConfirmation отправляет участнику письмо с результатом.
// Лучшее из возможного: сбой отправки не влияет на сдачу, SetNX-маркер
// в Redis защищает от повторной отправки при ретраях.
func (s *AttemptService) sendScoreConfirmation(attempt *entity.Attempt, score int) {
	if s.emailService == nil || attempt.ParticipantEmail == "" {
		return
	}

	idempotencyKey := fmt.Sprintf("attempt:score_email:%s", attempt.PublicID)
	if s.cacheRepo != nil {
		ok, err := s.cacheRepo.SetNX(idempotencyKey, "sent", 24*time.Hour)
		if err != nil {
			log.Printf("[AttemptService] SetNX для маркера письма не удался: %v", err)
		} else if !ok {
			return
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := s.emailService.SendScoreConfirmation(ctx, attempt.ParticipantEmail,
			score, len(attempt.Snapshot), idempotencyKey)
		if err != nil {
			log.Printf("[AttemptService] Не удалось отправить письмо с результатом для %s: %v",
				attempt.PublicID, err)
		}
	}()
}

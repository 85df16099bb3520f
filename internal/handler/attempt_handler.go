package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/handler/dto"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
	"github.com/yourusername/assessment-api/internal/service"
)

// AttemptHandler обрабатывает запросы жизненного цикла попытки
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// StartAttempt обрабатывает запрос на старт (или возобновление) попытки
// POST /api/assessments/:id/attempt
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	participantID := c.MustGet("participant_id").(uint)
	assessmentID := c.MustGet("assessmentID").(uint)

	view, err := h.attemptService.StartOrResume(participantID, assessmentID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	// Сданная попытка терминальна: вместо вопросов возвращаем результат
	if view.Status == entity.AttemptStatusSubmitted {
		c.JSON(http.StatusConflict, gin.H{
			"error":      "Attempt already submitted",
			"error_type": "already_submitted",
			"result":     view,
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitAttempt обрабатывает сдачу попытки
// POST /api/assessments/:id/submit
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	participantID := c.MustGet("participant_id").(uint)
	assessmentID := c.MustGet("assessmentID").(uint)

	var req dto.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	result, err := h.attemptService.Submit(participantID, assessmentID, req.Answers, req.ViolationCount)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyAttempt возвращает текущее состояние попытки участника
// GET /api/assessments/:id/my-attempt
func (h *AttemptHandler) GetMyAttempt(c *gin.Context) {
	participantID := c.MustGet("participant_id").(uint)
	assessmentID := c.MustGet("assessmentID").(uint)

	view, err := h.attemptService.GetAttemptView(participantID, assessmentID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// handleAttemptError преобразует ошибки сервисов в HTTP-ответы
func (h *AttemptHandler) handleAttemptError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in AttemptHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

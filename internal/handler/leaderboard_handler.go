package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/assessment-api/internal/domain/repository"
	apperrors "github.com/yourusername/assessment-api/internal/pkg/errors"
	"github.com/yourusername/assessment-api/internal/service"
)

// LeaderboardHandler обрабатывает запросы таблицы результатов
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

// NewLeaderboardHandler создает новый обработчик таблицы результатов
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GetLeaderboard возвращает таблицу результатов теста
// GET /api/assessments/:id/leaderboard
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	assessmentID := c.MustGet("assessmentID").(uint)

	rows, err := h.leaderboardService.ComputeLeaderboard(assessmentID)
	if err != nil {
		h.handleLeaderboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assessment_id": assessmentID,
		"count":         len(rows),
		"leaderboard":   rows,
	})
}

// ExportLeaderboard экспортирует таблицу результатов в CSV или Excel формате
// GET /api/assessments/:id/leaderboard/export?format=csv|xlsx
func (h *LeaderboardHandler) ExportLeaderboard(c *gin.Context) {
	assessmentID := c.MustGet("assessmentID").(uint)
	format := c.DefaultQuery("format", "csv")

	rows, err := h.leaderboardService.ComputeLeaderboard(assessmentID)
	if err != nil {
		h.handleLeaderboardError(c, err)
		return
	}

	filename := fmt.Sprintf("assessment_%d_leaderboard_%s", assessmentID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, rows, filename)
	default:
		h.exportCSV(c, rows, filename)
	}
}

// exportCSV экспортирует таблицу в CSV с правильным экранированием спецсимволов
func (h *LeaderboardHandler) exportCSV(c *gin.Context, rows []repository.LeaderboardRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Место", "Команда", "Участник", "Колледж", "Отделение", "Баллы", "Время сдачи"})

	for _, r := range rows {
		writer.Write([]string{
			strconv.Itoa(r.Rank),
			strconv.FormatUint(uint64(r.TeamID), 10),
			sanitizeForExcel(r.DisplayName),
			sanitizeForExcel(r.College),
			sanitizeForExcel(r.Department),
			strconv.Itoa(r.Score),
			r.SubmittedAt.Format(time.RFC3339),
		})
	}
}

// exportXLSX экспортирует таблицу в Excel с использованием StreamWriter
func (h *LeaderboardHandler) exportXLSX(c *gin.Context, rows []repository.LeaderboardRow, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[LeaderboardHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Место", "Команда", "Участник", "Колледж", "Отделение", "Баллы", "Время сдачи"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[LeaderboardHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		row := []interface{}{
			r.Rank,
			r.TeamID,
			sanitizeForExcel(r.DisplayName),
			sanitizeForExcel(r.College),
			sanitizeForExcel(r.Department),
			r.Score,
			r.SubmittedAt.Format(time.RFC3339),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[LeaderboardHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[LeaderboardHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[LeaderboardHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleLeaderboardError преобразует ошибки сервисов в HTTP-ответы
func (h *LeaderboardHandler) handleLeaderboardError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in LeaderboardHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

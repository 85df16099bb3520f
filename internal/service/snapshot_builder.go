package service

import (
	"fmt"
	"math/rand"

	"github.com/yourusername/assessment-api/internal/domain/entity"
	"github.com/yourusername/assessment-api/internal/domain/repository"
)

// SnapshotBuilder собирает зафиксированный набор вопросов для новой попытки:
// случайная выборка из пула, независимое перемешивание вариантов каждого
// вопроса и пересчёт индекса правильного ответа под новый порядок.
type SnapshotBuilder struct {
	questionRepo repository.QuestionRepository
}

// NewSnapshotBuilder создает новый сборщик снапшотов
func NewSnapshotBuilder(questionRepo repository.QuestionRepository) *SnapshotBuilder {
	return &SnapshotBuilder{questionRepo: questionRepo}
}

// BuildSnapshot выбирает count случайных вопросов теста и возвращает их
// снапшоты. Если пул меньше count, снапшот строится из всего пула.
func (b *SnapshotBuilder) BuildSnapshot(assessmentID uint, count int) (entity.SnapshotArray, error) {
	if count <= 0 {
		return nil, fmt.Errorf("snapshot question count must be positive, got %d", count)
	}

	questions, err := b.questionRepo.SampleItems(assessmentID, count)
	if err != nil {
		return nil, fmt.Errorf("failed to sample questions for assessment #%d: %w", assessmentID, err)
	}

	snapshot := make(entity.SnapshotArray, 0, len(questions))
	for i := range questions {
		snap, err := snapshotOf(questions[i].Item())
		if err != nil {
			return nil, fmt.Errorf("question #%d: %w", questions[i].ID, err)
		}
		snapshot = append(snapshot, snap)
	}
	return snapshot, nil
}

// snapshotOf перемешивает варианты вопроса и переносит ключ ответа на новую
// позицию. Ключ ищется по ЗНАЧЕНИЮ правильного варианта в перемешанном
// списке: сами тексты вариантов при перемешивании не меняются, поэтому
// значение однозначно определяет новую позицию.
func snapshotOf(item entity.BankItem) (entity.QuestionSnapshot, error) {
	core := item.Core()

	if core.CorrectChoice < 0 || core.CorrectChoice >= len(core.Choices) {
		return entity.QuestionSnapshot{}, fmt.Errorf("correct choice index %d out of range [0, %d)",
			core.CorrectChoice, len(core.Choices))
	}

	correctValue := core.Choices[core.CorrectChoice]

	shuffled := append([]string(nil), core.Choices...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	remapped := -1
	for i, choice := range shuffled {
		if choice == correctValue {
			remapped = i
			break
		}
	}
	if remapped == -1 {
		// Недостижимо: перемешивание не меняет множество значений
		return entity.QuestionSnapshot{}, fmt.Errorf("correct choice value lost during shuffle")
	}

	snap := entity.QuestionSnapshot{
		QuestionID:    core.ID,
		Kind:          entity.QuestionKindMultipleChoice,
		Prompt:        core.Prompt,
		Choices:       shuffled,
		CorrectChoice: remapped,
		Marks:         core.Marks,
	}

	if cc, ok := item.(entity.CodeChallengeItem); ok {
		snap.Kind = entity.QuestionKindCodeChallenge
		snap.CodeSnippet = cc.Snippet
		snap.CodeLanguage = cc.Language
	}

	return snap, nil
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/assessment-api/internal/domain/entity"
)

func TestBuildSnapshot_KeyFollowsCorrectValueAfterShuffle(t *testing.T) {
	// Перемешивание меняет порядок вариантов, но ключ всегда должен
	// указывать на исходное правильное значение. Повторяем много раз,
	// чтобы покрыть разные перестановки.
	questionRepo := new(MockQuestionRepository)
	builder := NewSnapshotBuilder(questionRepo)

	pool := []entity.Question{
		{
			ID:            1,
			Kind:          entity.QuestionKindMultipleChoice,
			Prompt:        "q",
			Choices:       entity.StringArray{"alpha", "beta", "gamma", "delta", "epsilon"},
			CorrectChoice: 2, // "gamma"
			Marks:         1,
		},
	}
	questionRepo.On("SampleItems", uint(1), 1).Return(pool, nil)

	for i := 0; i < 200; i++ {
		snapshot, err := builder.BuildSnapshot(1, 1)
		require.NoError(t, err)
		require.Len(t, snapshot, 1)

		snap := snapshot[0]
		require.Len(t, snap.Choices, 5)
		assert.Equal(t, "gamma", snap.Choices[snap.CorrectChoice])
		assert.ElementsMatch(t, []string{"alpha", "beta", "gamma", "delta", "epsilon"}, snap.Choices)
	}
}

func TestBuildSnapshot_DoesNotMutateBankRow(t *testing.T) {
	questionRepo := new(MockQuestionRepository)
	builder := NewSnapshotBuilder(questionRepo)

	original := entity.Question{
		ID:            1,
		Choices:       entity.StringArray{"a", "b", "c", "d"},
		CorrectChoice: 1,
	}
	questionRepo.On("SampleItems", uint(1), 1).Return([]entity.Question{original}, nil)

	_, err := builder.BuildSnapshot(1, 1)

	require.NoError(t, err)
	assert.Equal(t, entity.StringArray{"a", "b", "c", "d"}, original.Choices)
}

func TestBuildSnapshot_CarriesCodeChallengeFields(t *testing.T) {
	questionRepo := new(MockQuestionRepository)
	builder := NewSnapshotBuilder(questionRepo)

	pool := []entity.Question{
		{
			ID:            5,
			Kind:          entity.QuestionKindCodeChallenge,
			Prompt:        "Что выведет этот код?",
			CodeSnippet:   "print(2 ** 3)",
			CodeLanguage:  "python",
			Choices:       entity.StringArray{"6", "8", "9"},
			CorrectChoice: 1,
			Marks:         2,
		},
	}
	questionRepo.On("SampleItems", uint(1), 1).Return(pool, nil)

	snapshot, err := builder.BuildSnapshot(1, 1)

	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, entity.QuestionKindCodeChallenge, snapshot[0].Kind)
	assert.Equal(t, "print(2 ** 3)", snapshot[0].CodeSnippet)
	assert.Equal(t, "python", snapshot[0].CodeLanguage)
	assert.Equal(t, "8", snapshot[0].Choices[snapshot[0].CorrectChoice])
}

func TestBuildSnapshot_RejectsCorruptKey(t *testing.T) {
	questionRepo := new(MockQuestionRepository)
	builder := NewSnapshotBuilder(questionRepo)

	pool := []entity.Question{
		{ID: 1, Choices: entity.StringArray{"a", "b"}, CorrectChoice: 5},
	}
	questionRepo.On("SampleItems", uint(1), 1).Return(pool, nil)

	_, err := builder.BuildSnapshot(1, 1)

	assert.Error(t, err)
}

func TestBuildSnapshot_RejectsNonPositiveCount(t *testing.T) {
	builder := NewSnapshotBuilder(new(MockQuestionRepository))

	_, err := builder.BuildSnapshot(1, 0)

	assert.Error(t, err)
}

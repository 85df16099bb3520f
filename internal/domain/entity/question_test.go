package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_Item_MultipleChoice(t *testing.T) {
	// Arrange
	q := &Question{
		ID:            7,
		Kind:          QuestionKindMultipleChoice,
		Prompt:        "Столица Франции?",
		Choices:       StringArray{"Париж", "Лондон", "Берлин"},
		CorrectChoice: 0,
		Marks:         1,
	}

	// Act
	item := q.Item()

	// Assert
	mc, ok := item.(MultipleChoiceItem)
	require.True(t, ok, "ожидался MultipleChoiceItem")
	assert.Equal(t, uint(7), mc.Core().ID)
	assert.Equal(t, []string{"Париж", "Лондон", "Берлин"}, mc.Core().Choices)
	assert.Equal(t, 0, mc.Core().CorrectChoice)
}

func TestQuestion_Item_CodeChallenge(t *testing.T) {
	// Arrange
	q := &Question{
		ID:            9,
		Kind:          QuestionKindCodeChallenge,
		Prompt:        "Что выведет этот код?",
		CodeSnippet:   "fmt.Println(1 + 1)",
		CodeLanguage:  "go",
		Choices:       StringArray{"1", "2", "11"},
		CorrectChoice: 1,
		Marks:         2,
	}

	// Act
	item := q.Item()

	// Assert
	cc, ok := item.(CodeChallengeItem)
	require.True(t, ok, "ожидался CodeChallengeItem")
	assert.Equal(t, "fmt.Println(1 + 1)", cc.Snippet)
	assert.Equal(t, "go", cc.Language)
	assert.Equal(t, 1, cc.Core().CorrectChoice)
}

func TestQuestion_Item_UnknownKindFallsBackToMultipleChoice(t *testing.T) {
	q := &Question{ID: 1, Kind: "essay", Choices: StringArray{"a", "b"}}

	_, ok := q.Item().(MultipleChoiceItem)

	assert.True(t, ok, "неизвестный kind должен трактоваться как multiple_choice")
}

func TestQuestion_Item_CopiesChoices(t *testing.T) {
	// Снапшот перемешивает варианты на месте; проекция не должна
	// делить массив с строкой банка
	q := &Question{ID: 1, Choices: StringArray{"a", "b", "c"}}

	item := q.Item()
	item.Core().Choices[0] = "changed"

	assert.Equal(t, "a", q.Choices[0])
}

func TestQuestion_IsValidChoice(t *testing.T) {
	q := &Question{Choices: StringArray{"a", "b", "c"}}

	assert.True(t, q.IsValidChoice(0))
	assert.True(t, q.IsValidChoice(2))
	assert.False(t, q.IsValidChoice(3))
	assert.False(t, q.IsValidChoice(-1))
}

func TestStringArray_ScanNil(t *testing.T) {
	var arr StringArray

	err := arr.Scan(nil)

	require.NoError(t, err)
	assert.Empty(t, arr)
}

func TestStringArray_ValueEmptyIsJSONArray(t *testing.T) {
	v, err := StringArray{}.Value()

	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

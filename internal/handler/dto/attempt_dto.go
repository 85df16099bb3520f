package dto

// SubmitAttemptRequest представляет запрос на сдачу попытки.
// Answers — по одному элементу на вопрос выдачи, -1 для пропущенных.
// ViolationCount — счётчик нарушений, подсчитанный клиентом; сервер
// сохраняет его как есть, собственной детекции нет.
type SubmitAttemptRequest struct {
	Answers        []int `json:"answers" binding:"required"`
	ViolationCount int   `json:"violation_count" binding:"gte=0"`
}

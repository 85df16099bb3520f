package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен участника, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у участника недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных
	// (например, массив ответов неверной длины).
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния: попытка уже существует,
	// попытка уже сдана, нарушение ограничения уникальности при создании.
	ErrConflict = errors.New("resource state conflict")
)

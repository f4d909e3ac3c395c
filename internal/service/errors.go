// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrEmptyAllocation — запрос генерации не дал ни одного кода-кандидата.
	ErrEmptyAllocation = errors.New("запрос не содержит ни одного кода")
	// ErrAllAlreadyExist — все запрошенные коды уже существуют.
	ErrAllAlreadyExist = errors.New("все запрошенные коды уже существуют")
	// ErrStorageUnavailable — файловое хранилище (S3) недоступно.
	ErrStorageUnavailable = errors.New("файловое хранилище недоступно")
	// ErrInvalidCredentials — неверный email или пароль.
	ErrInvalidCredentials = errors.New("неверный email или пароль")
)

package models

import "errors"

var (
	// ErrInvalidPeriod — период некорректен или уже оплачен.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidTransition — переход запрещён автоматом состояний.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidCategory — неизвестная категория расхода.
	ErrInvalidCategory = errors.New("invalid expense category")
	// ErrInvalidAmount — сумма не положительна или не разбирается.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidEntry — запись учёта не прошла проверку (пустой заголовок, источник).
	ErrInvalidEntry = errors.New("invalid ledger entry")
	// ErrInvalidMember — не указан идентификатор участника.
	ErrInvalidMember = errors.New("invalid member id")
	// ErrNotFound — обязательство или запись не существует.
	ErrNotFound = errors.New("not found")
	// ErrStorageUnavailable — хранилище недоступно или не ответило вовремя.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrAuthorizationDenied — у действующего лица нет нужной возможности.
	ErrAuthorizationDenied = errors.New("authorization denied")
)

// Пакет service — бизнес-логика PanelHub: аутентификация, управление
// пользователями и конфигурациями, workflow провижининга панелей.
// Сервисы работают поверх репозиториев, клиента внешнего API и notifier;
// наружу отдают sentinel-ошибки, которые HTTP-слой переводит в статусы.
package service

import "errors"

var (
	// ErrNotFound — запрошенная запись не существует
	// (или скрыта от запрашивающего предикатом владельца).
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — нарушение уникальности.
	ErrConflict = errors.New("конфликт данных")
	// ErrValidation — некорректные или отсутствующие входные данные.
	ErrValidation = errors.New("некорректные данные")
	// ErrInvalidCredentials — неверное имя пользователя или пароль.
	// Одна ошибка на оба случая — не раскрываем, что именно не совпало.
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	// ErrPartialFailure — внешняя операция выполнена, но локальное
	// состояние разошлось. Компенсации нет, требуется вмешательство оператора.
	ErrPartialFailure = errors.New("частичный сбой: внешняя операция выполнена, локальное состояние расходится")
)

// Пакет policy — таблица правил авторизации PanelHub.
// Чистая доменная логика без внешних зависимостей: роль и тариф
// из Identity против запрошенного действия.
//
// Порядок проверки:
//  1. административные действия — только role=admin;
//  2. создание панели — только role=user, тип панели по тарифу;
//  3. удаление/просмотр панелей — владелец или admin (проверяется
//     предикатом выборки в репозитории, не здесь).
package policy

import (
	"errors"
	"fmt"

	"github.com/bigkaa/panelhub/internal/domain/model"
)

// ErrDenied — базовая ошибка отказа в доступе.
// Конкретные отказы оборачивают её через fmt.Errorf("%w: ...").
var ErrDenied = errors.New("доступ запрещён")

// allowedPanelTypes — какие типы панелей разрешены каждому тарифу.
// Зафиксированная таблица: reguler — только public,
// premium и eksklusif — public и private.
var allowedPanelTypes = map[string][]string{
	model.AccountTypeReguler:   {model.PanelTypePublic},
	model.AccountTypePremium:   {model.PanelTypePublic, model.PanelTypePrivate},
	model.AccountTypeEksklusif: {model.PanelTypePublic, model.PanelTypePrivate},
}

// RequireAdmin разрешает административные действия только администраторам
// (управление конфигами, пользователями, создание admin-панелей).
func RequireAdmin(id *model.Identity) error {
	if id == nil {
		return fmt.Errorf("%w: личность не определена", ErrDenied)
	}
	if !id.IsAdmin() {
		return fmt.Errorf("%w: требуется роль admin", ErrDenied)
	}
	return nil
}

// CanCreatePanel проверяет право на создание панели указанного типа.
// Панели создают только обычные пользователи (role=user); администраторы
// используют отдельный admin-канал. Тип панели ограничен тарифом.
func CanCreatePanel(id *model.Identity, panelType string) error {
	if id == nil {
		return fmt.Errorf("%w: личность не определена", ErrDenied)
	}
	if id.Role != model.RoleUser {
		return fmt.Errorf("%w: панели создают только пользователи", ErrDenied)
	}

	allowed, ok := allowedPanelTypes[id.AccountType]
	if !ok {
		return fmt.Errorf("%w: тариф %q не даёт права создавать панели", ErrDenied, id.AccountType)
	}
	for _, t := range allowed {
		if t == panelType {
			return nil
		}
	}
	return fmt.Errorf("%w: тариф %q не позволяет создавать панели типа %q", ErrDenied, id.AccountType, panelType)
}

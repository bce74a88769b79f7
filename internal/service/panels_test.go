package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bigkaa/panelhub/internal/domain/model"
	"github.com/bigkaa/panelhub/internal/domain/policy"
	"github.com/bigkaa/panelhub/internal/ptero"
)

// panelFixture — собранный PanelService с фейками.
type panelFixture struct {
	svc      *PanelService
	panels   *fakePanelRepo
	configs  *fakeConfigRepo
	ptero    *fakePtero
	notifier *fakeNotifier
}

func newPanelFixture(t *testing.T) *panelFixture {
	t.Helper()
	f := &panelFixture{
		panels:   newFakePanelRepo(),
		configs:  newFakeConfigRepo(),
		ptero:    &fakePtero{},
		notifier: &fakeNotifier{},
	}
	f.svc = NewPanelService(f.panels, f.configs, f.ptero, f.notifier, testLogger())
	return f
}

func validCreateParams() CreatePanelParams {
	return CreatePanelParams{
		Username:       "clienthost",
		RAM:            "1024",
		Disk:           "2048",
		CPU:            "100",
		HostingPackage: "basic",
		PanelType:      model.PanelTypePublic,
	}
}

// TestPanelCreate проверяет полный успешный workflow:
// ровно одна локальная запись, уведомление, ответ внешнего API как есть.
func TestPanelCreate(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	if err := f.configs.Create(ctx, testPublicConfig()); err != nil {
		t.Fatalf("Ошибка подготовки конфигурации: %v", err)
	}
	f.ptero.createResult = remoteCreateResult(t, 42, 7, "clienthost", "https://panel.example.com", "s3cret")

	owner := userIdentity("owner-1", "alice", model.AccountTypeReguler)
	result, err := f.svc.Create(ctx, owner, validCreateParams())
	if err != nil {
		t.Fatalf("Ошибка Create: %v", err)
	}

	if string(result.Raw) != string(f.ptero.createResult.Raw) {
		t.Error("ответ внешнего API должен возвращаться без изменений")
	}

	recs, _ := f.panels.ListByOwner(ctx, "")
	if len(recs) != 1 {
		t.Fatalf("ожидалась ровно 1 локальная запись, получено %d", len(recs))
	}
	rec := recs[0]
	if rec.OwnerID != "owner-1" || rec.IDServer != "42" || rec.IDUser != "7" || rec.PanelType != model.PanelTypePublic {
		t.Errorf("локальная запись заполнена неверно: %+v", rec)
	}

	if f.notifier.count() != 1 {
		t.Errorf("ожидалось 1 уведомление, получено %d", f.notifier.count())
	}
	f.notifier.mu.Lock()
	msg := f.notifier.messages[0]
	f.notifier.mu.Unlock()
	if !strings.Contains(msg, "s3cret") || !strings.Contains(msg, "alice") {
		t.Error("уведомление должно содержать учётные данные и оператора")
	}
}

// TestPanelCreate_MissingParams проверяет отказ без обращения к внешнему API.
func TestPanelCreate_MissingParams(t *testing.T) {
	f := newPanelFixture(t)

	p := validCreateParams()
	p.RAM = ""
	_, err := f.svc.Create(context.Background(), userIdentity("owner-1", "alice", model.AccountTypeReguler), p)

	if !errors.Is(err, ErrValidation) {
		t.Errorf("ожидался ErrValidation, получено: %v", err)
	}
	if f.ptero.createCalls != 0 {
		t.Error("при ошибке валидации внешний API не должен вызываться")
	}
}

// TestPanelCreate_PolicyDenied проверяет запрет по тарифу:
// reguler не создаёт private, записи и вызовы отсутствуют.
func TestPanelCreate_PolicyDenied(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	p := validCreateParams()
	p.PanelType = model.PanelTypePrivate
	_, err := f.svc.Create(ctx, userIdentity("owner-1", "alice", model.AccountTypeReguler), p)

	if !errors.Is(err, policy.ErrDenied) {
		t.Errorf("ожидался policy.ErrDenied, получено: %v", err)
	}
	if f.ptero.createCalls != 0 {
		t.Error("при отказе политики внешний API не должен вызываться")
	}
	recs, _ := f.panels.ListByOwner(ctx, "")
	if len(recs) != 0 {
		t.Errorf("при отказе не должно быть записей, получено %d", len(recs))
	}
}

// TestPanelCreate_AdminDenied проверяет, что администратор не создаёт
// пользовательские панели.
func TestPanelCreate_AdminDenied(t *testing.T) {
	f := newPanelFixture(t)

	_, err := f.svc.Create(context.Background(), adminIdentity(), validCreateParams())
	if !errors.Is(err, policy.ErrDenied) {
		t.Errorf("ожидался policy.ErrDenied, получено: %v", err)
	}
}

// TestPanelCreate_ConfigMissing проверяет отказ при ненастроенном типе.
func TestPanelCreate_ConfigMissing(t *testing.T) {
	f := newPanelFixture(t)

	_, err := f.svc.Create(context.Background(), userIdentity("owner-1", "alice", model.AccountTypeReguler), validCreateParams())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидался ErrNotFound, получено: %v", err)
	}
	if f.ptero.createCalls != 0 {
		t.Error("без конфигурации внешний API не должен вызываться")
	}
}

// TestPanelCreate_RemoteFailure проверяет отказ внешнего API:
// ошибка уходит наверх как есть, локальных записей и уведомлений нет.
func TestPanelCreate_RemoteFailure(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	if err := f.configs.Create(ctx, testPublicConfig()); err != nil {
		t.Fatalf("Ошибка подготовки конфигурации: %v", err)
	}
	f.ptero.createErr = &ptero.RemoteError{
		HTTPStatus: 502,
		Payload:    json.RawMessage(`{"status":false,"message":"Panel node offline"}`),
		Message:    "Panel node offline",
	}

	_, err := f.svc.Create(ctx, userIdentity("owner-1", "alice", model.AccountTypeReguler), validCreateParams())

	var remoteErr *ptero.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("ожидался RemoteError без изменений, получено: %v", err)
	}
	if remoteErr.HTTPStatus != 502 {
		t.Errorf("ожидался HTTPStatus=502, получен %d", remoteErr.HTTPStatus)
	}

	recs, _ := f.panels.ListByOwner(ctx, "")
	if len(recs) != 0 {
		t.Errorf("при отказе внешнего API записей быть не должно, получено %d", len(recs))
	}
	if f.notifier.count() != 0 {
		t.Error("при отказе внешнего API уведомлений быть не должно")
	}
}

// TestPanelCreate_LocalInsertFailure проверяет частичный сбой:
// панель создана на внешней стороне, запись не сохранилась.
func TestPanelCreate_LocalInsertFailure(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	if err := f.configs.Create(ctx, testPublicConfig()); err != nil {
		t.Fatalf("Ошибка подготовки конфигурации: %v", err)
	}
	f.ptero.createResult = remoteCreateResult(t, 42, 7, "clienthost", "https://panel.example.com", "s3cret")
	f.panels.failCreate = errors.New("соединение с БД потеряно")

	_, err := f.svc.Create(ctx, userIdentity("owner-1", "alice", model.AccountTypeReguler), validCreateParams())
	if !errors.Is(err, ErrPartialFailure) {
		t.Errorf("ожидался ErrPartialFailure, получено: %v", err)
	}
	if f.notifier.count() != 0 {
		t.Error("при частичном сбое уведомлений быть не должно")
	}
}

// TestPanelList_Scoping проверяет видимость: владелец — свои, admin — все.
func TestPanelList_Scoping(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	seed := []*model.UserPanel{
		{ID: "p1", OwnerID: "owner-a", IDServer: "101", PanelType: model.PanelTypePublic},
		{ID: "p2", OwnerID: "owner-a", IDServer: "102", PanelType: model.PanelTypePublic},
		{ID: "p3", OwnerID: "owner-b", IDServer: "201", PanelType: model.PanelTypePublic},
	}
	for _, p := range seed {
		if err := f.panels.Create(ctx, p); err != nil {
			t.Fatalf("Ошибка подготовки записи: %v", err)
		}
	}

	listA, err := f.svc.List(ctx, userIdentity("owner-a", "alice", model.AccountTypeReguler))
	if err != nil {
		t.Fatalf("Ошибка List: %v", err)
	}
	if len(listA) != 2 {
		t.Errorf("owner-a: ожидалось 2 панели, получено %d", len(listA))
	}

	listB, err := f.svc.List(ctx, userIdentity("owner-b", "bob", model.AccountTypePremium))
	if err != nil {
		t.Fatalf("Ошибка List: %v", err)
	}
	if len(listB) != 1 {
		t.Errorf("owner-b: ожидалась 1 панель, получено %d", len(listB))
	}

	all, err := f.svc.List(ctx, adminIdentity())
	if err != nil {
		t.Fatalf("Ошибка List: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("admin: ожидалось 3 панели, получено %d", len(all))
	}
}

// TestPanelDelete проверяет успешное удаление: внешний вызов и локальная запись.
func TestPanelDelete(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	if err := f.configs.Create(ctx, testPublicConfig()); err != nil {
		t.Fatalf("Ошибка подготовки конфигурации: %v", err)
	}
	if err := f.panels.Create(ctx, &model.UserPanel{
		ID: "p1", OwnerID: "owner-a", IDServer: "42", PanelType: model.PanelTypePublic,
	}); err != nil {
		t.Fatalf("Ошибка подготовки записи: %v", err)
	}

	if err := f.svc.Delete(ctx, userIdentity("owner-a", "alice", model.AccountTypeReguler), "42"); err != nil {
		t.Fatalf("Ошибка Delete: %v", err)
	}
	if f.ptero.deleteCalls != 1 {
		t.Errorf("ожидался 1 вызов внешнего удаления, получено %d", f.ptero.deleteCalls)
	}
	recs, _ := f.panels.ListByOwner(ctx, "")
	if len(recs) != 0 {
		t.Errorf("запись должна быть удалена, осталось %d", len(recs))
	}
}

// TestPanelDelete_NonOwner проверяет, что чужая панель выглядит отсутствующей
// и внешний API не вызывается.
func TestPanelDelete_NonOwner(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	if err := f.panels.Create(ctx, &model.UserPanel{
		ID: "p1", OwnerID: "owner-a", IDServer: "42", PanelType: model.PanelTypePublic,
	}); err != nil {
		t.Fatalf("Ошибка подготовки записи: %v", err)
	}

	err := f.svc.Delete(ctx, userIdentity("owner-b", "bob", model.AccountTypePremium), "42")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидался ErrNotFound, получено: %v", err)
	}
	if f.ptero.deleteCalls != 0 {
		t.Error("для чужой панели внешний API не должен вызываться")
	}
}

// TestPanelDelete_AdminAnyOwner проверяет, что администратор удаляет любую панель.
func TestPanelDelete_AdminAnyOwner(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	if err := f.configs.Create(ctx, testPublicConfig()); err != nil {
		t.Fatalf("Ошибка подготовки конфигурации: %v", err)
	}
	if err := f.panels.Create(ctx, &model.UserPanel{
		ID: "p1", OwnerID: "owner-a", IDServer: "42", PanelType: model.PanelTypePublic,
	}); err != nil {
		t.Fatalf("Ошибка подготовки записи: %v", err)
	}

	if err := f.svc.Delete(ctx, adminIdentity(), "42"); err != nil {
		t.Errorf("администратор должен удалять любую панель: %v", err)
	}
}

// TestPanelDelete_RemoteFailure проверяет, что при отказе внешнего API
// локальная запись остаётся нетронутой.
func TestPanelDelete_RemoteFailure(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	if err := f.configs.Create(ctx, testPublicConfig()); err != nil {
		t.Fatalf("Ошибка подготовки конфигурации: %v", err)
	}
	if err := f.panels.Create(ctx, &model.UserPanel{
		ID: "p1", OwnerID: "owner-a", IDServer: "42", PanelType: model.PanelTypePublic,
	}); err != nil {
		t.Fatalf("Ошибка подготовки записи: %v", err)
	}
	f.ptero.deleteErr = &ptero.RemoteError{HTTPStatus: 404, Message: "Server not found"}

	err := f.svc.Delete(ctx, userIdentity("owner-a", "alice", model.AccountTypeReguler), "42")

	var remoteErr *ptero.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("ожидался RemoteError, получено: %v", err)
	}
	recs, _ := f.panels.ListByOwner(ctx, "")
	if len(recs) != 1 {
		t.Errorf("при отказе внешнего API запись должна остаться, получено %d", len(recs))
	}
}

// TestPanelDelete_Race проверяет гонку двух удалений: запись исчезла между
// выборкой и локальным DELETE — после успеха внешней стороны это частичный
// сбой, а не тихий успех.
func TestPanelDelete_Race(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	if err := f.configs.Create(ctx, testPublicConfig()); err != nil {
		t.Fatalf("Ошибка подготовки конфигурации: %v", err)
	}
	if err := f.panels.Create(ctx, &model.UserPanel{
		ID: "p1", OwnerID: "owner-a", IDServer: "42", PanelType: model.PanelTypePublic,
	}); err != nil {
		t.Fatalf("Ошибка подготовки записи: %v", err)
	}

	// Конкурирующий запрос успел удалить запись: DELETE затронет 0 строк.
	f.panels.deleteReturnsZero = true

	err := f.svc.Delete(ctx, userIdentity("owner-a", "alice", model.AccountTypeReguler), "42")
	if !errors.Is(err, ErrPartialFailure) {
		t.Errorf("ожидался ErrPartialFailure, получено: %v", err)
	}
	if f.ptero.deleteCalls != 1 {
		t.Errorf("внешнее удаление должно было выполниться, вызовов: %d", f.ptero.deleteCalls)
	}
}

// TestPanelDelete_LocalDeleteError проверяет сбой БД после успеха внешней стороны.
func TestPanelDelete_LocalDeleteError(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	if err := f.configs.Create(ctx, testPublicConfig()); err != nil {
		t.Fatalf("Ошибка подготовки конфигурации: %v", err)
	}
	if err := f.panels.Create(ctx, &model.UserPanel{
		ID: "p1", OwnerID: "owner-a", IDServer: "42", PanelType: model.PanelTypePublic,
	}); err != nil {
		t.Fatalf("Ошибка подготовки записи: %v", err)
	}
	f.panels.failDelete = errors.New("соединение с БД потеряно")

	err := f.svc.Delete(ctx, userIdentity("owner-a", "alice", model.AccountTypeReguler), "42")
	if !errors.Is(err, ErrPartialFailure) {
		t.Errorf("ожидался ErrPartialFailure, получено: %v", err)
	}
}

// TestCreateAdmin проверяет создание админской панели и требование роли.
func TestCreateAdmin(t *testing.T) {
	f := newPanelFixture(t)
	ctx := context.Background()

	if err := f.configs.Create(ctx, testPublicConfig()); err != nil {
		t.Fatalf("Ошибка подготовки конфигурации: %v", err)
	}
	f.ptero.adminRaw = json.RawMessage(`{"status":true,"result":{"username":"root-admin","password":"adm1n"}}`)

	// Обычному пользователю — отказ без обращения к внешнему API.
	_, err := f.svc.CreateAdmin(ctx, userIdentity("owner-a", "alice", model.AccountTypeEksklusif), "root-admin")
	if !errors.Is(err, policy.ErrDenied) {
		t.Errorf("ожидался policy.ErrDenied, получено: %v", err)
	}
	if f.ptero.adminCalls != 0 {
		t.Error("при отказе политики внешний API не должен вызываться")
	}

	// Администратору — сырое тело ответа.
	raw, err := f.svc.CreateAdmin(ctx, adminIdentity(), "root-admin")
	if err != nil {
		t.Fatalf("Ошибка CreateAdmin: %v", err)
	}
	if string(raw) != string(f.ptero.adminRaw) {
		t.Error("ответ внешнего API должен возвращаться без изменений")
	}
}

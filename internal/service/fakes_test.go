package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bigkaa/panelhub/internal/domain/model"
	"github.com/bigkaa/panelhub/internal/ptero"
	"github.com/bigkaa/panelhub/internal/repository"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- In-memory фейки репозиториев ---

// fakeUserRepo — in-memory реализация UserRepository.
type fakeUserRepo struct {
	users map[string]*model.User // по ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return repository.ErrConflict
		}
	}
	cp := *u
	cp.CreatedAt = time.Now()
	r.users[u.ID] = &cp
	u.CreatedAt = cp.CreatedAt
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]*model.User, error) {
	var result []*model.User
	for _, u := range r.users {
		cp := *u
		result = append(result, &cp)
	}
	return result, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	existing, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, other := range r.users {
		if other.ID != u.ID && other.Username == u.Username {
			return repository.ErrConflict
		}
	}
	cp := *u
	cp.CreatedAt = existing.CreatedAt
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// fakeConfigRepo — in-memory реализация PanelConfigRepository.
type fakeConfigRepo struct {
	configs map[string]*model.PanelConfig // по type
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{configs: map[string]*model.PanelConfig{}}
}

func (r *fakeConfigRepo) Create(_ context.Context, c *model.PanelConfig) error {
	if _, ok := r.configs[c.Type]; ok {
		return repository.ErrConflict
	}
	cp := *c
	r.configs[c.Type] = &cp
	return nil
}

func (r *fakeConfigRepo) GetByType(_ context.Context, panelType string) (*model.PanelConfig, error) {
	c, ok := r.configs[panelType]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConfigRepo) List(_ context.Context) ([]*model.PanelConfig, error) {
	var result []*model.PanelConfig
	for _, c := range r.configs {
		cp := *c
		result = append(result, &cp)
	}
	return result, nil
}

func (r *fakeConfigRepo) Update(_ context.Context, c *model.PanelConfig) error {
	if _, ok := r.configs[c.Type]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	r.configs[c.Type] = &cp
	return nil
}

func (r *fakeConfigRepo) Delete(_ context.Context, panelType string) error {
	if _, ok := r.configs[panelType]; !ok {
		return repository.ErrNotFound
	}
	delete(r.configs, panelType)
	return nil
}

// fakePanelRepo — in-memory реализация UserPanelRepository.
// failCreate/failDelete/deleteReturnsZero — инъекция сбоев для сценариев
// частичного отказа.
type fakePanelRepo struct {
	panels            map[string]*model.UserPanel // по ID
	failCreate        error
	failDelete        error
	deleteReturnsZero bool
}

func newFakePanelRepo() *fakePanelRepo {
	return &fakePanelRepo{panels: map[string]*model.UserPanel{}}
}

func (r *fakePanelRepo) Create(_ context.Context, p *model.UserPanel) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	cp := *p
	cp.CreatedAt = time.Now()
	r.panels[p.ID] = &cp
	return nil
}

func (r *fakePanelRepo) GetByIDServer(_ context.Context, idServer, ownerID string) (*model.UserPanel, error) {
	for _, p := range r.panels {
		if p.IDServer == idServer && (ownerID == "" || p.OwnerID == ownerID) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePanelRepo) ListByOwner(_ context.Context, ownerID string) ([]*model.UserPanel, error) {
	var result []*model.UserPanel
	for _, p := range r.panels {
		if ownerID == "" || p.OwnerID == ownerID {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakePanelRepo) Delete(_ context.Context, id string) (int64, error) {
	if r.failDelete != nil {
		return 0, r.failDelete
	}
	if r.deleteReturnsZero {
		return 0, nil
	}
	if _, ok := r.panels[id]; !ok {
		return 0, nil
	}
	delete(r.panels, id)
	return 1, nil
}

// --- Фейк клиента внешнего API ---

// fakePtero — подмена PteroClient с инъекцией результата/ошибки.
type fakePtero struct {
	createResult *ptero.CreateResult
	createErr    error
	adminRaw     json.RawMessage
	adminErr     error
	deleteErr    error

	createCalls int
	adminCalls  int
	deleteCalls int
}

func (f *fakePtero) Create(_ context.Context, _ ptero.CreateParams) (*ptero.CreateResult, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakePtero) CreateAdmin(_ context.Context, _ string, _ *model.PanelConfig) (json.RawMessage, error) {
	f.adminCalls++
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	return f.adminRaw, nil
}

func (f *fakePtero) Delete(_ context.Context, _ string, _ *model.PanelConfig) error {
	f.deleteCalls++
	return f.deleteErr
}

// remoteCreateResult собирает успешный ответ внешнего API для тестов.
func remoteCreateResult(t *testing.T, idServer, idUser int, username, domain, password string) *ptero.CreateResult {
	t.Helper()
	raw := fmt.Sprintf(
		`{"status":true,"result":{"id_server":%d,"id_user":%d,"username":%q,"domain":%q,"password":%q}}`,
		idServer, idUser, username, domain, password,
	)
	result := &ptero.CreateResult{}
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		t.Fatalf("Ошибка сборки тестового ответа: %v", err)
	}
	result.Raw = json.RawMessage(raw)
	return result
}

// --- Фейк notifier ---

// fakeNotifier собирает отправленные сообщения.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// --- Общие тестовые данные ---

func testPublicConfig() *model.PanelConfig {
	return &model.PanelConfig{
		Type:   model.PanelTypePublic,
		Domain: "https://panel.example.com",
		PTLA:   "ptla_key",
		PTLC:   "ptlc_key",
		EggID:  "15",
		NestID: "5",
		Loc:    "1",
	}
}

func userIdentity(id, username, accountType string) *model.Identity {
	return &model.Identity{ID: id, Username: username, Role: model.RoleUser, AccountType: accountType}
}

func adminIdentity() *model.Identity {
	return &model.Identity{ID: "admin-id", Username: "root", Role: model.RoleAdmin, AccountType: model.AccountTypeAdmin}
}

// Пакет ptero — HTTP-клиент внешнего API провижининга (Pterodactyl-прокси).
// Операции: Create (создание панели), CreateAdmin (админская панель),
// Delete (удаление панели). API принимает параметры в query string и
// отвечает JSON вида {"status": bool, "message"?, "result"?}.
//
// Клиент не ретраит запросы: внешний API не идемпотентен, повторный
// вызов Create создаёт вторую панель.
package ptero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bigkaa/panelhub/internal/domain/model"
)

// RemoteError — отказ внешнего API: транспортная ошибка уже обёрнута
// обычным error, RemoteError несёт ответ удалённой стороны как есть,
// чтобы handler мог вернуть его клиенту без изменений.
type RemoteError struct {
	// HTTPStatus — статус-код внешнего API (0 — тело пришло с 2xx, но status:false).
	HTTPStatus int
	// Payload — сырое тело ответа внешнего API.
	Payload json.RawMessage
	// Message — сообщение из тела ответа, если удалось разобрать.
	Message string
}

// Error реализует интерфейс error.
func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("внешний API отказал (HTTP %d): %s", e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("внешний API отказал (HTTP %d)", e.HTTPStatus)
}

// CreateParams — параметры создания панели.
type CreateParams struct {
	// Username — имя пользователя на создаваемой панели.
	Username string
	// RAM, Disk, CPU — размеры ресурсов (строки, передаются как есть).
	RAM  string
	Disk string
	CPU  string
	// Config — конфигурация типа панели (egg/nest/loc/domain/ключи).
	Config *model.PanelConfig
}

// remoteID — идентификатор из ответа внешнего API.
// Разные инсталляции API отдают id то числом, то строкой
// ("id_server": 42 и "id_server": "42") — принимаем обе формы.
type remoteID string

// UnmarshalJSON принимает JSON-число или JSON-строку.
func (id *remoteID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = remoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = remoteID(n.String())
	return nil
}

// String возвращает идентификатор как строку.
func (id remoteID) String() string {
	return string(id)
}

// CreateResult — успешный ответ внешнего API на создание панели.
type CreateResult struct {
	// Status — флаг успеха из тела ответа (здесь всегда true).
	Status bool `json:"status"`
	// Result — данные созданной панели.
	Result struct {
		IDServer remoteID `json:"id_server"`
		IDUser   remoteID `json:"id_user"`
		Username string   `json:"username"`
		Domain   string   `json:"domain"`
		Password string   `json:"password"`
	} `json:"result"`

	// Raw — сырое тело ответа для передачи клиенту без изменений.
	Raw json.RawMessage `json:"-"`
}

// remoteEnvelope — минимальная форма любого ответа внешнего API.
type remoteEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// Client — HTTP-клиент внешнего API провижининга.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент внешнего API.
// baseURL — базовый URL без завершающего слэша
// (например, https://restapi.example.com/api/pterodactyl).
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "ptero_client")),
	}
}

// Create создаёт панель на внешней стороне.
// Любой не-2xx статус или тело со status:false → *RemoteError.
func (c *Client) Create(ctx context.Context, p CreateParams) (*CreateResult, error) {
	q := url.Values{}
	q.Set("username", p.Username)
	q.Set("ram", p.RAM)
	q.Set("disk", p.Disk)
	q.Set("cpu", p.CPU)
	q.Set("egg", p.Config.EggID)
	q.Set("nest", p.Config.NestID)
	q.Set("loc", p.Config.Loc)
	q.Set("domain", p.Config.Domain)
	q.Set("ptla", p.Config.PTLA)
	q.Set("ptlc", p.Config.PTLC)

	body, err := c.get(ctx, "/create", q)
	if err != nil {
		return nil, err
	}

	result := &CreateResult{}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("декодирование ответа создания панели: %w", err)
	}
	result.Raw = body

	c.logger.Info("Панель создана на внешней стороне",
		slog.String("id_server", result.Result.IDServer.String()),
		slog.String("username", result.Result.Username),
	)

	return result, nil
}

// CreateAdmin создаёт административную панель на внешней стороне.
// Возвращает сырое тело успешного ответа для передачи клиенту.
func (c *Client) CreateAdmin(ctx context.Context, username string, cfg *model.PanelConfig) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("domain", cfg.Domain)
	q.Set("ptla", cfg.PTLA)

	body, err := c.get(ctx, "/createadmin", q)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Админская панель создана на внешней стороне",
		slog.String("username", username),
	)

	return body, nil
}

// Delete удаляет панель на внешней стороне.
func (c *Client) Delete(ctx context.Context, idServer string, cfg *model.PanelConfig) error {
	q := url.Values{}
	q.Set("idserver", idServer)
	q.Set("domain", cfg.Domain)
	q.Set("ptla", cfg.PTLA)

	if _, err := c.get(ctx, "/delete", q); err != nil {
		return err
	}

	c.logger.Info("Панель удалена на внешней стороне",
		slog.String("id_server", idServer),
	)

	return nil
}

// ReadinessChecker — проверка доступности внешнего API для health endpoint.
type ReadinessChecker struct {
	baseURL string
	client  *http.Client
}

// NewReadinessChecker создаёт checker доступности внешнего API.
func NewReadinessChecker(baseURL string, timeout time.Duration) *ReadinessChecker {
	return &ReadinessChecker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// CheckReady проверяет доступность внешнего API.
// Любой HTTP-ответ считается признаком жизни: у API нет health endpoint,
// а коды 4xx на базовом URL означают, что узел отвечает.
func (c *ReadinessChecker) CheckReady() (status, message string) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.baseURL, nil)
	if err != nil {
		return "fail", "ошибка создания запроса: " + err.Error()
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "fail", fmt.Sprintf("внешний API недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "degraded", fmt.Sprintf("внешний API вернул статус %d", resp.StatusCode)
	}
	return "ok", fmt.Sprintf("внешний API отвечает (статус %d)", resp.StatusCode)
}

// get выполняет GET-запрос и применяет общий контракт ошибок:
// транспортная ошибка → error, не-2xx или status:false → *RemoteError.
func (c *Client) get(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	reqURL := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("создание запроса %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос %s к внешнему API: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("чтение ответа %s: %w", path, err)
	}

	var envelope remoteEnvelope
	// Тело может быть не-JSON (например, HTML от прокси) — тогда
	// ориентируемся только на статус-код.
	parseErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Внешний API вернул ошибку",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return nil, &RemoteError{
			HTTPStatus: resp.StatusCode,
			Payload:    body,
			Message:    envelope.Message,
		}
	}

	if parseErr != nil {
		return nil, fmt.Errorf("декодирование ответа %s: %w", path, parseErr)
	}

	if !envelope.Status {
		c.logger.Warn("Внешний API вернул status:false",
			slog.String("path", path),
			slog.String("message", envelope.Message),
		)
		return nil, &RemoteError{
			HTTPStatus: resp.StatusCode,
			Payload:    body,
			Message:    envelope.Message,
		}
	}

	return body, nil
}

// Пакет notify — отправка уведомлений о созданных панелях в webhook.
// Отправка fire-and-forget: выполняется в отдельной горутине с собственным
// таймаутом, ошибка доставки логируется (dead-letter лог) и никогда
// не влияет на результат основного запроса.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Notifier — интерфейс отправки уведомлений.
// Реализуется WebhookNotifier; в тестах подменяется фейком.
type Notifier interface {
	// Notify ставит сообщение в отправку и сразу возвращает управление.
	Notify(message string)
}

// WebhookNotifier отправляет уведомления POST-запросом в настроенный webhook.
type WebhookNotifier struct {
	webhookURL string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger

	// wg отслеживает незавершённые отправки для graceful shutdown.
	wg sync.WaitGroup
}

// New создаёт webhook-notifier.
// webhookURL — пустая строка выключает отправку (Notify становится no-op).
func New(webhookURL string, timeout time.Duration, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "notifier")),
	}
}

// Notify отправляет сообщение в webhook в отдельной горутине.
// Ошибки доставки только логируются — доставка не гарантируется,
// повторных попыток нет.
func (n *WebhookNotifier) Notify(message string) {
	if n.webhookURL == "" {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.send(ctx, message); err != nil {
			// Dead-letter лог: единственный след недоставленного уведомления.
			n.logger.Error("Уведомление не доставлено",
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Wait блокируется до завершения всех начатых отправок.
// Используется при graceful shutdown.
func (n *WebhookNotifier) Wait() {
	n.wg.Wait()
}

// send выполняет одиночный POST {"message": ...} в webhook.
func (n *WebhookNotifier) send(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return fmt.Errorf("сериализация уведомления: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("создание запроса уведомления: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("отправка уведомления: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook вернул статус %d", resp.StatusCode)
	}
	return nil
}

// PanelCreatedMessage форматирует уведомление о созданной панели.
// Выданные учётные данные экранируются для HTML-разметки получателя
// (Telegram parse_mode=HTML у исходного relay).
func PanelCreatedMessage(operator, hostingPackage, panelType, username, password, domain, idUser, idServer string) string {
	return fmt.Sprintf(`✅ <b>Panel Baru Dibuat!</b>
------------------------------
👤 Dibuat oleh: <b>%s</b>
📦 Paket: <b>%s</b>
⚙️ Tipe Panel: <b>%s</b>
------------------------------
Detail Akun:
👤 Username: <b>%s</b>
🔑 Password: <b>%s</b>
🔗 Domain: %s
------------------------------
ID User: %s
Server ID: %s`,
		html.EscapeString(operator),
		html.EscapeString(strings.ToUpper(hostingPackage)),
		html.EscapeString(strings.ToUpper(panelType)),
		html.EscapeString(username),
		html.EscapeString(password),
		html.EscapeString(domain),
		html.EscapeString(idUser),
		html.EscapeString(idServer),
	)
}

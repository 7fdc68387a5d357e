// Пакет events публикует события изменения товаров в NATS
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ProductsAdmin/internal/model"
)

// Conn описывает минимальный интерфейс NATS-подключения (*nats.Conn его реализует)
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher сериализует события в JSON и отправляет их в subject
type Publisher struct {
	conn    Conn
	subject string
	now     func() time.Time
}

// NewPublisher создаёт Publisher для заданного подключения и темы
func NewPublisher(conn Conn, subject string) *Publisher {
	return &Publisher{conn: conn, subject: subject, now: time.Now}
}

// Publish дополняет событие идентификатором и временем (если они не заданы) и отправляет его
func (p *Publisher) Publish(event model.ProductEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.conn.Publish(p.subject, data)
}

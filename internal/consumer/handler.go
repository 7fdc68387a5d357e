// Пакет consumer накапливает события товаров из NATS и пишет их в ClickHouse пакетами
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"ProductsAdmin/internal/model"
)

// ErrInvalidEvent возвращается для сообщения без типа или id товара
var ErrInvalidEvent = errors.New("invalid product event")

// Repo принимает пакеты событий
type Repo interface {
	BatchInsertEvents(ctx context.Context, events []model.ProductEvent) error
}

// Consumer буферизует события и отправляет их в Repo, когда набирается batchSize
type Consumer struct {
	repo      Repo
	batchSize int

	mu     sync.Mutex
	events []model.ProductEvent
}

// NewConsumer создаёт Consumer; batchSize < 1 трактуется как 1
func NewConsumer(repo Repo, batchSize int) *Consumer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Consumer{repo: repo, batchSize: batchSize, events: make([]model.ProductEvent, 0, batchSize)}
}

// HandleMessage обрабатывает сообщение NATS
// 1. Разбирает JSON в ProductEvent
// 2. Отбрасывает событие без типа или id товара
// 3. Добавляет в буфер и при достижении batchSize отправляет пакет
func (c *Consumer) HandleMessage(ctx context.Context, data []byte) error {
	var e model.ProductEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("failed to decode product event: %w", err)
	}
	if e.Type == "" || e.ProductID == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidEvent, string(data))
	}
	log.Printf("received product event %s %s for %d", e.EventID, e.Type, e.ProductID)

	c.mu.Lock()
	c.events = append(c.events, e)
	if len(c.events) < c.batchSize {
		c.mu.Unlock()
		return nil
	}
	batch := c.drainLocked()
	c.mu.Unlock()
	return c.repo.BatchInsertEvents(ctx, batch)
}

// Flush отправляет все накопленные события, если они есть
func (c *Consumer) Flush(ctx context.Context) error {
	c.mu.Lock()
	batch := c.drainLocked()
	c.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}
	return c.repo.BatchInsertEvents(ctx, batch)
}

// Pending возвращает число событий в буфере
func (c *Consumer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *Consumer) drainLocked() []model.ProductEvent {
	if len(c.events) == 0 {
		return nil
	}
	batch := make([]model.ProductEvent, len(c.events))
	copy(batch, c.events)
	c.events = c.events[:0]
	return batch
}

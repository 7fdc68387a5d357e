package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"ProductsAdmin/internal/model"
)

// ClickhouseRepo пишет журнал событий товаров в ClickHouse пакетами
type ClickhouseRepo struct {
	db *sql.DB
}

// NewClickhouseRepo создаёт новый репозиторий для ClickHouse
func NewClickhouseRepo(db *sql.DB) *ClickhouseRepo {
	return &ClickhouseRepo{db: db}
}

const insertEventQuery = `INSERT INTO product_events (EventId, EventType, ProductId, ArticalName, ArticalPrice, EventTime) VALUES (?, ?, ?, ?, ?, ?)`

// BatchInsertEvents записывает пакет событий в таблицу product_events.
// clickhouse-go собирает все Exec внутри транзакции в один блок.
// Отсутствующие поля записи пишутся нулевыми значениями.
func (r *ClickhouseRepo) BatchInsertEvents(ctx context.Context, events []model.ProductEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertEventQuery)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range events {
		var (
			name  string
			price float64
		)
		if e.Products != nil {
			if e.Products.ArticalName != nil {
				name = *e.Products.ArticalName
			}
			if e.Products.ArticalPrice != nil {
				price = *e.Products.ArticalPrice
			}
		}
		if _, err := stmt.ExecContext(ctx, e.EventID, e.Type, e.ProductID, name, price, e.OccurredAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert event %s: %w", e.EventID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	log.Printf("inserted %d product events into ClickHouse", len(events))
	return nil
}

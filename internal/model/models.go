package model

import (
	"errors"
	"time"
)

// ErrNotPersisted возвращается при попытке отправить новую (несохранённую) запись
// в операцию update/patch/delete
var ErrNotPersisted = errors.New("products: record has no id")

// ItemDeletedEvent — значение, с которым закрывается диалог удаления;
// список по нему понимает, что нужно перезапросить данные
const ItemDeletedEvent = "deleted"

// Типы событий, публикуемых после успешной записи
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = ItemDeletedEvent
)

// Products представляет запись товара (ресурс /api/products)
// ID == nil означает новую, ещё не сохранённую запись
type Products struct {
	ID           *int64   `json:"id"`
	ArticalName  *string  `json:"articalName,omitempty"`
	ArticalPrice *float64 `json:"articalPrice,omitempty"`
}

// PartialUpdateProducts — тело PATCH-запроса: id обязателен, остальные поля
// передаются только если заданы
type PartialUpdateProducts struct {
	ID           int64    `json:"id"`
	ArticalName  *string  `json:"articalName,omitempty"`
	ArticalPrice *float64 `json:"articalPrice,omitempty"`
}

// ProductEvent описывает событие изменения товара, публикуемое в NATS
type ProductEvent struct {
	EventID    string    `json:"eventId"`
	Type       string    `json:"type"`
	ProductID  int64     `json:"productId"`
	Products   *Products `json:"products,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// GetProductsIdentifier возвращает идентификатор записи.
// Единственное место, где определяется идентичность товара.
func GetProductsIdentifier(p Products) *int64 {
	return p.ID
}

// IsNew сообщает, что запись ещё не сохранена на сервере
func IsNew(p Products) bool {
	return GetProductsIdentifier(p) == nil
}

// CompareProducts сравнивает записи по идентификатору.
// Если одна из записей nil, записи равны только когда обе nil.
func CompareProducts(a, b *Products) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return sameID(GetProductsIdentifier(*a), GetProductsIdentifier(*b))
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

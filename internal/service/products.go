package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"ProductsAdmin/internal/model"
)

// Repo определяет удалённый доступ к товарам (REST API /api/products)
type Repo interface {
	Find(ctx context.Context, id int64) (*model.Products, error)
	Query(ctx context.Context, opts url.Values) ([]model.Products, int, error)
	Count(ctx context.Context, criteria url.Values) (int64, error)
	Create(ctx context.Context, p model.Products) (*model.Products, error)
	Update(ctx context.Context, p model.Products) (*model.Products, error)
	PartialUpdate(ctx context.Context, p model.PartialUpdateProducts) (*model.Products, error)
	Delete(ctx context.Context, id int64) error
}

// Cache определяет кэш ответов API (Redis)
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Invalidate(ctx context.Context, key string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Publisher отправляет события изменения товаров (NATS)
type Publisher interface {
	Publish(event model.ProductEvent) error
}

const (
	listPrefix  = "list:"
	countPrefix = "count:"
)

func itemKey(id int64) string { return fmt.Sprintf("item:%d", id) }

type freshReadKey struct{}

// WithFreshRead помечает контекст: Find идёт в API мимо кэша и обновляет кэш ответом.
// Используется перед записью, чтобы форма не строилась на устаревшей копии.
func WithFreshRead(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshReadKey{}, true)
}

// IsFreshRead сообщает, помечен ли контекст WithFreshRead
func IsFreshRead(ctx context.Context) bool {
	v, _ := ctx.Value(freshReadKey{}).(bool)
	return v
}

// listPage хранит закэшированную страницу списка
type listPage struct {
	Products []model.Products `json:"products"`
	Total    int              `json:"total"`
}

// ProductsService оборачивает удалённый клиент:
// - чтение через кэш Redis
// - инвалидирование кэша после записи
// - публикация событий после успешной записи
// Ошибки кэша и брокера не ломают пользовательскую операцию, они только логируются.
type ProductsService struct {
	repo      Repo
	cache     Cache
	publisher Publisher
	ttl       time.Duration
}

// NewProductsService создаёт сервис товаров
func NewProductsService(r Repo, c Cache, p Publisher, ttl time.Duration) *ProductsService {
	return &ProductsService{repo: r, cache: c, publisher: p, ttl: ttl}
}

// Find возвращает товар по id:
// 1. Пытается получить из кэша
// 2. При промахе запрашивает удалённый API
// 3. Кэширует найденную запись (пустой ответ не кэшируется)
// С WithFreshRead шаг 1 пропускается, а пустой ответ удаляет запись из кэша.
func (s *ProductsService) Find(ctx context.Context, id int64) (*model.Products, error) {
	key := itemKey(id)
	fresh := IsFreshRead(ctx)
	if !fresh {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var p model.Products
			if err := json.Unmarshal(data, &p); err == nil {
				return &p, nil
			}
		}
	}
	p, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		if fresh {
			if err := s.cache.Invalidate(ctx, key); err != nil {
				log.Printf("failed to invalidate cache key %s: %v", key, err)
			}
		}
		return nil, nil
	}
	s.store(ctx, key, p)
	return p, nil
}

// Query возвращает страницу списка и общее количество, кэшируя по набору параметров
func (s *ProductsService) Query(ctx context.Context, opts url.Values) ([]model.Products, int, error) {
	key := listPrefix + opts.Encode()
	if data, err := s.cache.Get(ctx, key); err == nil {
		var page listPage
		if err := json.Unmarshal(data, &page); err == nil {
			return page.Products, page.Total, nil
		}
	}
	list, total, err := s.repo.Query(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	s.store(ctx, key, listPage{Products: list, Total: total})
	return list, total, nil
}

// Count возвращает количество товаров по критериям
func (s *ProductsService) Count(ctx context.Context, criteria url.Values) (int64, error) {
	key := countPrefix + criteria.Encode()
	if data, err := s.cache.Get(ctx, key); err == nil {
		var n int64
		if err := json.Unmarshal(data, &n); err == nil {
			return n, nil
		}
	}
	n, err := s.repo.Count(ctx, criteria)
	if err != nil {
		return 0, err
	}
	s.store(ctx, key, n)
	return n, nil
}

// Create создаёт товар и публикует событие created
func (s *ProductsService) Create(ctx context.Context, p model.Products) (*model.Products, error) {
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, model.EventCreated, created)
	return created, nil
}

// Update заменяет товар и публикует событие updated
func (s *ProductsService) Update(ctx context.Context, p model.Products) (*model.Products, error) {
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, model.EventUpdated, updated)
	return updated, nil
}

// PartialUpdate обновляет заданные поля и публикует событие updated
func (s *ProductsService) PartialUpdate(ctx context.Context, p model.PartialUpdateProducts) (*model.Products, error) {
	updated, err := s.repo.PartialUpdate(ctx, p)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, model.EventUpdated, updated)
	return updated, nil
}

// Delete удаляет товар и публикует событие deleted
func (s *ProductsService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.publish(model.ProductEvent{Type: model.EventDeleted, ProductID: id})
	return nil
}

func (s *ProductsService) afterWrite(ctx context.Context, eventType string, p *model.Products) {
	id := model.GetProductsIdentifier(*p)
	if id == nil {
		log.Printf("products api returned a record without id after %s", eventType)
		_ = s.cache.InvalidatePrefix(ctx, listPrefix)
		return
	}
	s.invalidate(ctx, *id)
	s.publish(model.ProductEvent{Type: eventType, ProductID: *id, Products: p})
}

// invalidate сбрасывает запись и все закэшированные списки и счётчики
func (s *ProductsService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, itemKey(id)); err != nil {
		log.Printf("failed to invalidate cache for products %d: %v", id, err)
	}
	for _, prefix := range []string{listPrefix, countPrefix} {
		if err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
			log.Printf("failed to invalidate cache prefix %q: %v", prefix, err)
		}
	}
}

func (s *ProductsService) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		log.Printf("failed to cache %s: %v", key, err)
	}
}

func (s *ProductsService) publish(event model.ProductEvent) {
	if err := s.publisher.Publish(event); err != nil {
		log.Printf("failed to publish %s event for products %d: %v", event.Type, event.ProductID, err)
	}
}

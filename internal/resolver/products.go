// Пакет resolver загружает товар по параметру маршрута до построения представления
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ProductsAdmin/internal/model"
	"ProductsAdmin/internal/repository"
)

// ParamID задаёт имя параметра маршрута с идентификатором товара
const ParamID = "id"

// Finder ищет товар по id; (nil, nil) означает пустой ответ
type Finder interface {
	Find(ctx context.Context, id int64) (*model.Products, error)
}

// Navigator перенаправляет текущую навигацию
type Navigator interface {
	Navigate(path string)
}

// ProductsResolver выбирает запись для представлений просмотра и редактирования
type ProductsResolver struct {
	finder       Finder
	notFoundPath string
}

// NewProductsResolver создаёт резолвер; при отсутствии записи уводит на notFoundPath
func NewProductsResolver(f Finder, notFoundPath string) *ProductsResolver {
	return &ProductsResolver{finder: f, notFoundPath: notFoundPath}
}

// Resolve загружает запись по параметру id:
// 1. Без id возвращает (nil, true, nil) без обращения к API: это создание новой записи
// 2. С id запрашивает запись; если найдена, возвращает (запись, true, nil)
// 3. При пустом ответе или 404 перенаправляет на notFoundPath и (nil, false, nil)
// 4. Ошибку транспорта возвращает как (nil, false, err), её обрабатывает маршрутизатор
// proceed == false означает, что представление строить нельзя.
func (r *ProductsResolver) Resolve(ctx context.Context, params map[string]string, nav Navigator) (*model.Products, bool, error) {
	raw, ok := params[ParamID]
	if !ok || raw == "" {
		return nil, true, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		nav.Navigate(r.notFoundPath)
		return nil, false, nil
	}
	p, err := r.finder.Find(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		p, err = nil, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("resolve products %d: %w", id, err)
	}
	if p == nil {
		nav.Navigate(r.notFoundPath)
		return nil, false, nil
	}
	return p, true, nil
}

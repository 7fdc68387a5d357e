package controller

import (
	"context"
	"net/url"

	"ProductsAdmin/internal/collection"
	"ProductsAdmin/internal/model"
)

// QueryService возвращает страницу товаров и общее количество
type QueryService interface {
	Query(ctx context.Context, opts url.Values) ([]model.Products, int, error)
}

// ListController держит локальную коллекцию товаров и синхронизирует её с сервером
type ListController struct {
	Products   []model.Products
	TotalItems int
	IsLoading  bool

	service   QueryService
	lastQuery url.Values
}

// NewListController создаёт контроллер списка; query — параметры, с которыми
// список перезапрашивается по ItemDeletedEvent до первого Load
func NewListController(svc QueryService, query url.Values) *ListController {
	return &ListController{service: svc, lastQuery: query}
}

// Load запрашивает страницу и заменяет ею коллекцию
func (c *ListController) Load(ctx context.Context, opts url.Values) error {
	c.IsLoading = true
	defer func() { c.IsLoading = false }()

	list, total, err := c.service.Query(ctx, opts)
	if err != nil {
		return err
	}
	c.lastQuery = opts
	c.Products = list
	c.TotalItems = total
	return nil
}

// LoadMore запрашивает ещё одну страницу и добавляет из неё записи, которых нет локально
func (c *ListController) LoadMore(ctx context.Context, opts url.Values) error {
	c.IsLoading = true
	defer func() { c.IsLoading = false }()

	list, total, err := c.service.Query(ctx, opts)
	if err != nil {
		return err
	}
	c.Track(toPointers(list)...)
	c.TotalItems = total
	return nil
}

// Track добавляет в коллекцию записи, которых в ней ещё нет
func (c *ListController) Track(items ...*model.Products) {
	c.Products = collection.AddProductsToCollectionIfMissing(c.Products, items...)
}

// OnDialogClosed обрабатывает результат закрытого диалога:
// ItemDeletedEvent перезапрашивает последнюю страницу, сохранённая запись добавляется в коллекцию
func (c *ListController) OnDialogClosed(ctx context.Context, result interface{}) error {
	switch r := result.(type) {
	case string:
		if r == model.ItemDeletedEvent {
			return c.Load(ctx, c.lastQuery)
		}
	case *model.Products:
		c.Track(r)
	}
	return nil
}

func toPointers(list []model.Products) []*model.Products {
	out := make([]*model.Products, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out
}

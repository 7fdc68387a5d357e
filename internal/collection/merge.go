// Пакет collection содержит слияние локальных коллекций товаров с данными сервера
package collection

import "ProductsAdmin/internal/model"

// identity — ключ записи в коллекции; новые записи (id == nil) делят один ключ
type identity struct {
	isNew bool
	id    int64
}

func identityOf(p model.Products) identity {
	id := model.GetProductsIdentifier(p)
	if id == nil {
		return identity{isNew: true}
	}
	return identity{id: *id}
}

// AddProductsToCollectionIfMissing добавляет кандидатов, которых ещё нет в коллекции:
// 1. Отбрасывает nil-кандидатов
// 2. Если кандидатов не осталось, возвращает тот же срез без копирования
// 3. Принимает кандидата, только если его id нет ни в коллекции, ни среди уже принятых
// 4. Возвращает принятых кандидатов в порядке входа, а за ними исходную коллекцию
// Входные данные не изменяются.
func AddProductsToCollectionIfMissing(collection []model.Products, candidates ...*model.Products) []model.Products {
	present := make([]model.Products, 0, len(candidates))
	for _, c := range candidates {
		if c != nil {
			present = append(present, *c)
		}
	}
	if len(present) == 0 {
		return collection
	}

	seen := make(map[identity]struct{}, len(collection)+len(present))
	for _, p := range collection {
		seen[identityOf(p)] = struct{}{}
	}
	toAdd := make([]model.Products, 0, len(present))
	for _, p := range present {
		key := identityOf(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		toAdd = append(toAdd, p)
	}

	// новые элементы идут первыми
	result := make([]model.Products, 0, len(toAdd)+len(collection))
	result = append(result, toAdd...)
	return append(result, collection...)
}

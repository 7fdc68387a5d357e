// Пакет controller содержит контроллеры представлений товара: список, просмотр,
// редактирование и диалог удаления
package controller

// Modal — поверхность редактирования, которую контроллер закрывает по завершении.
// Close сообщает результат наверх, Dismiss закрывает без результата.
type Modal interface {
	Close(result interface{})
	Dismiss()
}

// Navigator перенаправляет навигацию на другой путь
type Navigator interface {
	Navigate(path string)
}

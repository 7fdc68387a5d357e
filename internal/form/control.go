package form

// Control хранит значение поля формы отдельно от признака редактируемости.
// Отключённый контрол участвует в значении формы, но не принимает пользовательский ввод.
type Control[T any] struct {
	value    T
	disabled bool
	required bool
	dirty    bool
}

// Value возвращает текущее значение, в том числе у отключённого контрола
func (c *Control[T]) Value() T { return c.value }

// Disabled сообщает, что поле не редактируется пользователем
func (c *Control[T]) Disabled() bool { return c.disabled }

// Required сообщает, что поле обязательно для заполнения
func (c *Control[T]) Required() bool { return c.required }

// Dirty сообщает, что пользователь менял значение после последнего сброса
func (c *Control[T]) Dirty() bool { return c.dirty }

// SetValue применяет пользовательский ввод. Для отключённого контрола ввод игнорируется
// и возвращается false.
func (c *Control[T]) SetValue(v T) bool {
	if c.disabled {
		return false
	}
	c.value = v
	c.dirty = true
	return true
}

func (c *Control[T]) reset(v T, disabled bool) {
	c.value = v
	c.disabled = disabled
	c.dirty = false
}

package controller

import (
	"context"
	"errors"

	"go.uber.org/atomic"

	"ProductsAdmin/internal/form"
	"ProductsAdmin/internal/model"
)

// ErrSaveInProgress возвращается при повторном сохранении до завершения предыдущего
var ErrSaveInProgress = errors.New("save already in progress")

// SaveService описывает операции записи для формы редактирования
type SaveService interface {
	Create(ctx context.Context, p model.Products) (*model.Products, error)
	Update(ctx context.Context, p model.Products) (*model.Products, error)
}

// UpdateController управляет формой создания и редактирования товара
type UpdateController struct {
	EditForm *form.ProductsForm
	Products *model.Products

	forms       *form.ProductsFormService
	service     SaveService
	modal       Modal
	isSaving    atomic.Bool
	onSaveError func(error)
}

// UpdateOption настраивает UpdateController
type UpdateOption func(*UpdateController)

// WithSaveErrorHook задаёт обработчик ошибки сохранения (по умолчанию ничего не делает)
func WithSaveErrorHook(fn func(error)) UpdateOption {
	return func(c *UpdateController) {
		if fn != nil {
			c.onSaveError = fn
		}
	}
}

// NewUpdateController создаёт контроллер с пустой формой новой записи
func NewUpdateController(svc SaveService, forms *form.ProductsFormService, modal Modal, opts ...UpdateOption) *UpdateController {
	c := &UpdateController{
		EditForm:    forms.CreateForm(nil),
		forms:       forms,
		service:     svc,
		modal:       modal,
		onSaveError: func(error) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init принимает запись из резолвера; nil оставляет форму новой записи
func (c *UpdateController) Init(p *model.Products) {
	c.Products = p
	if p != nil {
		c.forms.ResetForm(c.EditForm, *p)
	}
}

// IsSaving сообщает, что сохранение выполняется
func (c *UpdateController) IsSaving() bool {
	return c.isSaving.Load()
}

// PreviousState закрывает форму без сохранения
func (c *UpdateController) PreviousState() {
	c.modal.Dismiss()
}

// Save сохраняет значение формы:
// 1. Выставляет флаг сохранения (повторный вызов во время сохранения получает ErrSaveInProgress)
// 2. Читает запись из формы, включая отключённый id
// 3. С id вызывает Update, без id вызывает Create
// 4. При успехе закрывает форму с сохранённой записью
// 5. При ошибке вызывает обработчик ошибки сохранения
// Флаг сохранения сбрасывается на любом пути выхода.
func (c *UpdateController) Save(ctx context.Context) (*model.Products, error) {
	if !c.isSaving.CAS(false, true) {
		return nil, ErrSaveInProgress
	}
	defer c.isSaving.Store(false)

	products := c.forms.GetProducts(c.EditForm)
	var (
		saved *model.Products
		err   error
	)
	if !model.IsNew(products) {
		saved, err = c.service.Update(ctx, products)
	} else {
		saved, err = c.service.Create(ctx, products)
	}
	if err != nil {
		c.onSaveError(err)
		return nil, err
	}
	c.Products = saved
	c.modal.Close(saved)
	return saved, nil
}

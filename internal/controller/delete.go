package controller

import (
	"context"

	"ProductsAdmin/internal/model"
)

// DeleteService удаляет запись по id
type DeleteService interface {
	Delete(ctx context.Context, id int64) error
}

// DeleteDialog управляет диалогом подтверждения удаления
type DeleteDialog struct {
	Products *model.Products

	service DeleteService
	modal   Modal
}

// NewDeleteDialog создаёт диалог для записи p
func NewDeleteDialog(svc DeleteService, modal Modal, p *model.Products) *DeleteDialog {
	return &DeleteDialog{Products: p, service: svc, modal: modal}
}

// Cancel закрывает диалог без удаления
func (d *DeleteDialog) Cancel() {
	d.modal.Dismiss()
}

// ConfirmDelete удаляет запись и закрывает диалог с ItemDeletedEvent.
// Запись из списка локально не убирается: список перезапрашивает данные по событию.
func (d *DeleteDialog) ConfirmDelete(ctx context.Context, id int64) error {
	if err := d.service.Delete(ctx, id); err != nil {
		return err
	}
	d.modal.Close(model.ItemDeletedEvent)
	return nil
}

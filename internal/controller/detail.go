package controller

import "ProductsAdmin/internal/model"

// DetailController показывает загруженную резолвером запись
type DetailController struct {
	Products *model.Products

	nav      Navigator
	listPath string
}

// NewDetailController создаёт контроллер просмотра; listPath — куда возвращаться
func NewDetailController(p *model.Products, nav Navigator, listPath string) *DetailController {
	return &DetailController{Products: p, nav: nav, listPath: listPath}
}

// PreviousState возвращает к списку
func (c *DetailController) PreviousState() {
	c.nav.Navigate(c.listPath)
}

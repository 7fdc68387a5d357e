package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"ProductsAdmin/internal/controller"
	"ProductsAdmin/internal/form"
	"ProductsAdmin/internal/model"
	"ProductsAdmin/internal/repository"
	"ProductsAdmin/internal/resolver"
)

// ProductsService задаёт операции над товарами, которые нужны представлениям
type ProductsService interface {
	Find(ctx context.Context, id int64) (*model.Products, error)
	Query(ctx context.Context, opts url.Values) ([]model.Products, int, error)
	Count(ctx context.Context, criteria url.Values) (int64, error)
	Create(ctx context.Context, p model.Products) (*model.Products, error)
	Update(ctx context.Context, p model.Products) (*model.Products, error)
	PartialUpdate(ctx context.Context, p model.PartialUpdateProducts) (*model.Products, error)
	Delete(ctx context.Context, id int64) error
}

// Resolver загружает запись по параметрам маршрута до построения представления
type Resolver interface {
	Resolve(ctx context.Context, params map[string]string, nav resolver.Navigator) (*model.Products, bool, error)
}

// путь представления списка
const listPath = "/products"

// Handler содержит зависимости и реализует представления товаров поверх HTTP
type Handler struct {
	srv          ProductsService
	forms        *form.ProductsFormService
	resolver     Resolver
	notFoundPath string
}

// NewHandler создаёт новый HTTP Handler
func NewHandler(srv ProductsService, forms *form.ProductsFormService, res Resolver, notFoundPath string) *Handler {
	return &Handler{srv: srv, forms: forms, resolver: res, notFoundPath: notFoundPath}
}

// RegisterRoutes регистрирует маршруты представлений.
// Все маршруты /products проходят через резолвер записи.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.HandleFunc("/readyz", h.Readyz).Methods("GET")
	r.HandleFunc(h.notFoundPath, h.NotFound).Methods("GET")

	p := r.PathPrefix(listPath).Subrouter()
	p.Use(ResolveMiddleware(h.resolver))
	p.HandleFunc("", h.List).Methods("GET")
	p.HandleFunc("/more", h.LoadMore).Methods("GET")
	p.HandleFunc("/count", h.Count).Methods("GET")
	p.HandleFunc("/new", h.EditForm).Methods("GET")
	p.HandleFunc("/new", h.Save).Methods("POST")
	p.HandleFunc("/new/cancel", h.CancelEdit).Methods("POST")
	p.HandleFunc("/{id}", h.Patch).Methods("PATCH")
	p.HandleFunc("/{id}/view", h.Detail).Methods("GET")
	p.HandleFunc("/{id}/back", h.Back).Methods("GET")
	p.HandleFunc("/{id}/edit", h.EditForm).Methods("GET")
	p.HandleFunc("/{id}/edit", h.Save).Methods("POST")
	p.HandleFunc("/{id}/edit/cancel", h.CancelEdit).Methods("POST")
	p.HandleFunc("/{id}/delete", h.DeleteDialog).Methods("GET")
	p.HandleFunc("/{id}/delete", h.ConfirmDelete).Methods("POST")
	p.HandleFunc("/{id}/delete/cancel", h.CancelDelete).Methods("POST")
}

// ErrorResponse модель ошибки API
type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

// Коды ошибок в ErrorResponse
const (
	codeInvalidInput = 1
	codeValidation   = 2
	codeNotFound     = 3
	codeUpstream     = 4
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp)
}

// writeUpstreamError переводит ошибку удалённого API в HTTP-ответ:
// 404 в notFound, 4xx API с тем же статусом, остальное в 502
func writeUpstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, ErrorResponse{codeNotFound, "errors.common.notFound", map[string]interface{}{}})
		return
	}
	var apiErr *repository.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		writeError(w, apiErr.Status, ErrorResponse{codeUpstream, err.Error(), map[string]interface{}{"alert": apiErr.Alert}})
		return
	}
	writeError(w, http.StatusBadGateway, ErrorResponse{codeUpstream, err.Error(), map[string]interface{}{}})
}

// maxLoadMorePages ограничивает число страниц, которые LoadMore собирает за один запрос
const maxLoadMorePages = 20

// listQuery проверяет параметры списка и кодирует их обратно для API
func listQuery(r *http.Request) (repository.RequestOptions, url.Values, error) {
	opts, err := repository.ParseRequestOptions(r.URL.Query())
	if err != nil {
		return opts, nil, err
	}
	return opts, opts.Values(), nil
}

func writeList(w http.ResponseWriter, c *controller.ListController) {
	products := c.Products
	if products == nil {
		products = []model.Products{}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(c.TotalItems))
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": products, "total": c.TotalItems})
}

// List обрабатывает GET /products
// 1. Разбирает page, size, sort и критерии; некорректные page/size дают 400
// 2. Запрашивает страницу у API
// 3. Возвращает страницу и общее количество (также в X-Total-Count)
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	_, q, err := listQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{codeInvalidInput, err.Error(), map[string]interface{}{}})
		return
	}
	c := controller.NewListController(h.srv, q)
	if err := c.Load(r.Context(), q); err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeList(w, c)
}

// LoadMore обрабатывает GET /products/more?page=N: собирает страницы 0..N в одну
// коллекцию, записи, сдвинутые между страницами, не дублируются
func (h *Handler) LoadMore(w http.ResponseWriter, r *http.Request) {
	opts, _, err := listQuery(r)
	if err == nil && opts.Page >= maxLoadMorePages {
		err = fmt.Errorf("%w: page must be below %d", repository.ErrInvalidOptions, maxLoadMorePages)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{codeInvalidInput, err.Error(), map[string]interface{}{}})
		return
	}
	last := opts.Page
	opts.Page = 0
	c := controller.NewListController(h.srv, opts.Values())
	if err := c.Load(r.Context(), opts.Values()); err != nil {
		writeUpstreamError(w, err)
		return
	}
	for page := 1; page <= last; page++ {
		opts.Page = page
		if err := c.LoadMore(r.Context(), opts.Values()); err != nil {
			writeUpstreamError(w, err)
			return
		}
	}
	writeList(w, c)
}

// Count обрабатывает GET /products/count
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	_, q, err := listQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{codeInvalidInput, err.Error(), map[string]interface{}{}})
		return
	}
	n, err := h.srv.Count(r.Context(), q)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": n})
}

// Detail обрабатывает GET /products/{id}/view
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	p := ResolvedProducts(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": p, "back": listPath})
}

// Back обрабатывает GET /products/{id}/back: возврат из просмотра к списку (303)
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	c := controller.NewDetailController(ResolvedProducts(r.Context()), &redirectNavigator{w: w, r: r}, listPath)
	c.PreviousState()
}

// EditForm обрабатывает GET /products/new и GET /products/{id}/edit:
// возвращает форму, заполненную загруженной записью или значениями по умолчанию
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	c := controller.NewUpdateController(h.srv, h.forms, &httpModal{})
	c.Init(ResolvedProducts(r.Context()))
	writeJSON(w, http.StatusOK, newFormView(c.EditForm, nil))
}

// Save обрабатывает POST /products/new и POST /products/{id}/edit
// 1. Строит форму из загруженной записи и применяет ввод (JSON или form-urlencoded), id из ввода игнорируется
// 2. На невалидную форму отвечает 422 с ошибками по полям, сохранение не вызывается
// 3. Вызывает сохранение: update для записи с id, иначе create
// 4. Возвращает сохранённую запись и признак закрытия формы
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	modal := &httpModal{}
	c := controller.NewUpdateController(h.srv, h.forms, modal, controller.WithSaveErrorHook(func(err error) {
		log.Printf("failed to save products: %v", err)
	}))
	c.Init(ResolvedProducts(r.Context()))

	if err := h.bindInput(r, c.EditForm); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{codeInvalidInput, err.Error(), map[string]interface{}{}})
		return
	}
	if errs := h.forms.Validate(c.EditForm); errs != nil {
		writeError(w, http.StatusUnprocessableEntity, ErrorResponse{codeValidation, "validation failed", newFormView(c.EditForm, errs)})
		return
	}
	saved, err := c.Save(r.Context())
	if err != nil {
		if errors.Is(err, controller.ErrSaveInProgress) {
			writeError(w, http.StatusConflict, ErrorResponse{codeInvalidInput, err.Error(), map[string]interface{}{}})
			return
		}
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"closed": modal.closed, "products": saved})
}

// CancelEdit обрабатывает POST /products/new/cancel и POST /products/{id}/edit/cancel:
// форма закрывается без сохранения
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	modal := &httpModal{}
	c := controller.NewUpdateController(h.srv, h.forms, modal)
	c.Init(ResolvedProducts(r.Context()))
	c.PreviousState()
	writeJSON(w, http.StatusOK, map[string]interface{}{"closed": modal.closed, "dismissed": modal.dismissed})
}

func (h *Handler) bindInput(r *http.Request, f *form.ProductsForm) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return errors.New("invalid request body")
		}
		return h.forms.ApplyJSON(f, body)
	}
	if err := r.ParseForm(); err != nil {
		return errors.New("invalid request body")
	}
	return h.forms.Bind(f, r.PostForm)
}

// Patch обрабатывает PATCH /products/{id}: меняет только переданные поля.
// id берётся из загруженной записи, id в теле игнорируется.
// null не удаляет поле: поля обязательны, такой ввод получает 422.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	p := ResolvedProducts(r.Context())
	if p == nil || p.ID == nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{codeInvalidInput, "invalid id", map[string]interface{}{}})
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{codeInvalidInput, "invalid request body", map[string]interface{}{}})
		return
	}
	in, errs, err := h.forms.ParsePatch(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{codeInvalidInput, err.Error(), map[string]interface{}{}})
		return
	}
	if errs != nil {
		writeError(w, http.StatusUnprocessableEntity, ErrorResponse{codeValidation, "validation failed", errs})
		return
	}
	in.ID = *p.ID
	updated, err := h.srv.PartialUpdate(r.Context(), in)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// CancelDelete обрабатывает POST /products/{id}/delete/cancel: диалог закрывается без удаления
func (h *Handler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	modal := &httpModal{}
	d := controller.NewDeleteDialog(h.srv, modal, ResolvedProducts(r.Context()))
	d.Cancel()
	writeJSON(w, http.StatusOK, map[string]interface{}{"closed": modal.closed, "dismissed": modal.dismissed})
}

// DeleteDialog обрабатывает GET /products/{id}/delete: возвращает запись для подтверждения
func (h *Handler) DeleteDialog(w http.ResponseWriter, r *http.Request) {
	d := controller.NewDeleteDialog(h.srv, &httpModal{}, ResolvedProducts(r.Context()))
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": d.Products})
}

// ConfirmDelete обрабатывает POST /products/{id}/delete
// 1. Удаляет запись, загруженную резолвером
// 2. Диалог закрывается с ItemDeletedEvent
// 3. Список перезапрашивается с параметрами из query string и возвращается в ответе
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	p := ResolvedProducts(r.Context())
	if p == nil || p.ID == nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{codeInvalidInput, "invalid id", map[string]interface{}{}})
		return
	}
	modal := &httpModal{}
	d := controller.NewDeleteDialog(h.srv, modal, p)
	if err := d.ConfirmDelete(r.Context(), *p.ID); err != nil {
		writeUpstreamError(w, err)
		return
	}
	q := r.URL.Query()
	if _, v, err := listQuery(r); err == nil {
		q = v
	}
	list := controller.NewListController(h.srv, q)
	if err := list.OnDialogClosed(r.Context(), modal.result); err != nil {
		// запись уже удалена, ошибка обновления списка не отменяет результат
		log.Printf("failed to refresh products list after delete: %v", err)
	}
	products := list.Products
	if products == nil {
		products = []model.Products{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"closed":   modal.closed,
		"result":   modal.result,
		"products": products,
		"total":    list.TotalItems,
	})
}

// NotFound отвечает для отсутствующей записи
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, ErrorResponse{codeNotFound, "errors.common.notFound", map[string]interface{}{}})
}

// Healthz возвращает статус работы сервиса
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Readyz возвращает готовность сервиса
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

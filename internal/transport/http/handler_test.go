package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProductsAdmin/internal/form"
	"ProductsAdmin/internal/model"
	"ProductsAdmin/internal/repository"
	"ProductsAdmin/internal/resolver"
	"ProductsAdmin/internal/service"
)

// mockService реализует ProductsService для тестирования HTTP-хендлера.
// Поля-функции позволяют контролировать возвращаемые сервисом данные и ошибки;
// незаданная функция означает, что вызов в тесте не ожидается.
type mockService struct {
	FindFn   func(id int64) (*model.Products, error)
	QueryFn  func(opts url.Values) ([]model.Products, int, error)
	CountFn  func(criteria url.Values) (int64, error)
	CreateFn func(p model.Products) (*model.Products, error)
	UpdateFn func(p model.Products) (*model.Products, error)
	PatchFn  func(p model.PartialUpdateProducts) (*model.Products, error)
	DeleteFn func(id int64) error
}

func (m *mockService) Find(_ context.Context, id int64) (*model.Products, error) {
	return m.FindFn(id)
}
func (m *mockService) Query(_ context.Context, opts url.Values) ([]model.Products, int, error) {
	return m.QueryFn(opts)
}
func (m *mockService) Count(_ context.Context, criteria url.Values) (int64, error) {
	return m.CountFn(criteria)
}
func (m *mockService) Create(_ context.Context, p model.Products) (*model.Products, error) {
	return m.CreateFn(p)
}
func (m *mockService) Update(_ context.Context, p model.Products) (*model.Products, error) {
	return m.UpdateFn(p)
}
func (m *mockService) PartialUpdate(_ context.Context, p model.PartialUpdateProducts) (*model.Products, error) {
	return m.PatchFn(p)
}
func (m *mockService) Delete(_ context.Context, id int64) error {
	return m.DeleteFn(id)
}

func ptrInt64(v int64) *int64       { return &v }
func ptrString(v string) *string    { return &v }
func ptrFloat64(v float64) *float64 { return &v }

// newRouter собирает маршрутизатор с настоящим резолвером поверх мок-сервиса
func newRouter(ms *mockService) *mux.Router {
	h := NewHandler(ms, form.NewProductsFormService(), resolver.NewProductsResolver(ms, "/404"), "/404")
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func serve(r *mux.Router, req *http.Request) *httptest.ResponseRecorder {
	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, req)
	return rw
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// TestList_PassesQueryAndTotal проверяет передачу параметров в API и заголовок X-Total-Count
func TestList_PassesQueryAndTotal(t *testing.T) {
	ms := &mockService{
		QueryFn: func(opts url.Values) ([]model.Products, int, error) {
			assert.Equal(t, "1", opts.Get("page"))
			assert.Equal(t, "id,desc", opts.Get("sort"))
			return []model.Products{{ID: ptrInt64(1)}, {ID: ptrInt64(2)}}, 42, nil
		},
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products?page=1&sort=id,desc", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, "42", rw.Header().Get("X-Total-Count"))

	var resp struct {
		Products []model.Products `json:"products"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&resp))
	assert.Len(t, resp.Products, 2)
	assert.Equal(t, 42, resp.Total)
}

// TestList_UpstreamError проверяет, что ошибка API превращается в 502
func TestList_UpstreamError(t *testing.T) {
	ms := &mockService{
		QueryFn: func(url.Values) ([]model.Products, int, error) {
			return nil, 0, errors.New("connection refused")
		},
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products", nil))

	require.Equal(t, http.StatusBadGateway, rw.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&resp))
	assert.Equal(t, codeUpstream, resp.Code)
}

// TestCount_Success проверяет GET /products/count
func TestCount_Success(t *testing.T) {
	ms := &mockService{
		CountFn: func(criteria url.Values) (int64, error) {
			assert.Equal(t, "Alaska", criteria.Get("articalName.contains"))
			return 7, nil
		},
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products/count?articalName.contains=Alaska", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"count":7}`, rw.Body.String())
}

// TestDetail_Found проверяет, что представление получает запись из резолвера
func TestDetail_Found(t *testing.T) {
	ms := &mockService{
		FindFn: func(id int64) (*model.Products, error) {
			assert.Equal(t, int64(123), id)
			return &model.Products{ID: ptrInt64(123), ArticalName: ptrString("Chair")}, nil
		},
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products/123/view", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"products":{"id":123,"articalName":"Chair"},"back":"/products"}`, rw.Body.String())
}

// TestDetail_EmptyBodyRedirects проверяет перенаправление на /404 при пустом ответе
func TestDetail_EmptyBodyRedirects(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) { return nil, nil },
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products/999/view", nil))

	require.Equal(t, http.StatusSeeOther, rw.Code)
	assert.Equal(t, "/404", rw.Header().Get("Location"))
}

// TestDetail_NotFoundRedirects проверяет, что 404 API обрабатывается так же, как пустой ответ
func TestDetail_NotFoundRedirects(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) { return nil, repository.ErrNotFound },
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products/999/edit", nil))

	require.Equal(t, http.StatusSeeOther, rw.Code)
	assert.Equal(t, "/404", rw.Header().Get("Location"))
}

// TestDetail_InvalidIDRedirects проверяет, что нечисловой id не доходит до API
func TestDetail_InvalidIDRedirects(t *testing.T) {
	ms := &mockService{}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products/abc/view", nil))

	require.Equal(t, http.StatusSeeOther, rw.Code)
	assert.Equal(t, "/404", rw.Header().Get("Location"))
}

// TestDetail_ResolveError проверяет ответ на ошибку транспорта при загрузке записи
func TestDetail_ResolveError(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) {
			return nil, &repository.APIError{Status: http.StatusInternalServerError, Title: "boom"}
		},
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products/5/view", nil))

	assert.Equal(t, http.StatusBadGateway, rw.Code)
}

// TestEditForm_Existing проверяет, что форма заполнена записью, а id отключён
func TestEditForm_Existing(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) {
			return &model.Products{ID: ptrInt64(123), ArticalName: ptrString("Chair"), ArticalPrice: ptrFloat64(10)}, nil
		},
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products/123/edit", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	var view formView
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&view))
	require.Len(t, view.Fields, 3)
	assert.Equal(t, form.FieldID, view.Fields[0].Name)
	assert.Equal(t, float64(123), view.Fields[0].Value)
	assert.True(t, view.Fields[0].Disabled)
	assert.Equal(t, "Chair", view.Fields[1].Value)
	assert.False(t, view.Fields[1].Disabled)
	assert.True(t, view.Fields[1].Required)
}

// TestEditForm_New проверяет, что форма новой записи пуста и API не вызывается
func TestEditForm_New(t *testing.T) {
	rw := serve(newRouter(&mockService{}), httptest.NewRequest(http.MethodGet, "/products/new", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	var view formView
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&view))
	for _, f := range view.Fields {
		assert.Nil(t, f.Value, f.Name)
	}
	assert.True(t, view.Fields[0].Disabled)
}

// TestSave_CreatesNew проверяет, что форма без id сохраняется через create
func TestSave_CreatesNew(t *testing.T) {
	ms := &mockService{
		CreateFn: func(p model.Products) (*model.Products, error) {
			assert.Nil(t, p.ID)
			require.NotNil(t, p.ArticalName)
			assert.Equal(t, "Switchable Alaska", *p.ArticalName)
			require.NotNil(t, p.ArticalPrice)
			assert.Equal(t, 23782.0, *p.ArticalPrice)
			p.ID = ptrInt64(1)
			return &p, nil
		},
		UpdateFn: func(model.Products) (*model.Products, error) {
			t.Fatal("update не должен вызываться для новой записи")
			return nil, nil
		},
	}
	req := postForm("/products/new", url.Values{"articalName": {"Switchable Alaska"}, "articalPrice": {"23782"}})
	rw := serve(newRouter(ms), req)

	require.Equal(t, http.StatusOK, rw.Code)
	var resp struct {
		Closed   bool           `json:"closed"`
		Products model.Products `json:"products"`
	}
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&resp))
	assert.True(t, resp.Closed)
	require.NotNil(t, resp.Products.ID)
	assert.Equal(t, int64(1), *resp.Products.ID)
}

// TestSave_UpdatesExisting проверяет, что id берётся из загруженной записи, а не из ввода
func TestSave_UpdatesExisting(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) {
			return &model.Products{ID: ptrInt64(123), ArticalName: ptrString("Old"), ArticalPrice: ptrFloat64(1)}, nil
		},
		UpdateFn: func(p model.Products) (*model.Products, error) {
			require.NotNil(t, p.ID)
			assert.Equal(t, int64(123), *p.ID)
			assert.Equal(t, "New", *p.ArticalName)
			assert.Equal(t, 1.0, *p.ArticalPrice)
			return &p, nil
		},
	}
	body, _ := json.Marshal(map[string]interface{}{"id": 777, "articalName": "New"})
	req := httptest.NewRequest(http.MethodPost, "/products/123/edit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rw := serve(newRouter(ms), req)

	require.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), `"id":123`)
}

// TestSave_ValidationFailed проверяет 422 с ошибками по полям и отсутствие вызова сервиса
func TestSave_ValidationFailed(t *testing.T) {
	rw := serve(newRouter(&mockService{}), postForm("/products/new", url.Values{"articalName": {""}}))

	require.Equal(t, http.StatusUnprocessableEntity, rw.Code)
	var resp struct {
		Code    int      `json:"code"`
		Details formView `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&resp))
	assert.Equal(t, codeValidation, resp.Code)
	assert.False(t, resp.Details.Valid)
	assert.Equal(t, "required", resp.Details.Fields[1].Error)
	assert.Equal(t, "required", resp.Details.Fields[2].Error)
}

// TestSave_InvalidPrice проверяет 400 на нечисловую цену, NaN и бесконечность без вызова API
func TestSave_InvalidPrice(t *testing.T) {
	for _, price := range []string{"abc", "NaN", "Inf", "-Infinity"} {
		t.Run(price, func(t *testing.T) {
			ms := &mockService{
				CreateFn: func(model.Products) (*model.Products, error) {
					t.Fatal("create не должен вызываться")
					return nil, nil
				},
			}
			rw := serve(newRouter(ms), postForm("/products/new", url.Values{"articalName": {"A"}, "articalPrice": {price}}))

			require.Equal(t, http.StatusBadRequest, rw.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rw.Body).Decode(&resp))
			assert.Equal(t, codeInvalidInput, resp.Code)
		})
	}
}

// TestSave_JSONNullClearsField проверяет, что null в JSON очищает поле, как пустое значение формы
func TestSave_JSONNullClearsField(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) {
			return &model.Products{ID: ptrInt64(123), ArticalName: ptrString("Old"), ArticalPrice: ptrFloat64(1)}, nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/products/123/edit", strings.NewReader(`{"articalPrice":null}`))
	req.Header.Set("Content-Type", "application/json")
	rw := serve(newRouter(ms), req)

	require.Equal(t, http.StatusUnprocessableEntity, rw.Code)
	var resp struct {
		Details formView `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&resp))
	assert.Equal(t, "required", resp.Details.Fields[2].Error)
	assert.Empty(t, resp.Details.Fields[1].Error)
}

// TestCancelEdit проверяет закрытие формы без сохранения
func TestCancelEdit(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) { return &model.Products{ID: ptrInt64(3)}, nil },
	}
	r := newRouter(ms)
	for _, path := range []string{"/products/new/cancel", "/products/3/edit/cancel"} {
		rw := serve(r, httptest.NewRequest(http.MethodPost, path, nil))
		require.Equal(t, http.StatusOK, rw.Code, path)
		assert.JSONEq(t, `{"closed":false,"dismissed":true}`, rw.Body.String(), path)
	}
}

// TestSave_UpstreamClientError проверяет, что 4xx API передаётся с тем же статусом и alert
func TestSave_UpstreamClientError(t *testing.T) {
	ms := &mockService{
		CreateFn: func(model.Products) (*model.Products, error) {
			return nil, &repository.APIError{Status: http.StatusBadRequest, Title: "idexists", Alert: "error.idexists"}
		},
	}
	rw := serve(newRouter(ms), postForm("/products/new", url.Values{"articalName": {"A"}, "articalPrice": {"0"}}))

	require.Equal(t, http.StatusBadRequest, rw.Code)
	var resp struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&resp))
	assert.Equal(t, "error.idexists", resp.Details["alert"])
}

// TestPatch_UpdatesGivenFields проверяет частичное обновление с id из маршрута
func TestPatch_UpdatesGivenFields(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) { return &model.Products{ID: ptrInt64(5)}, nil },
		PatchFn: func(p model.PartialUpdateProducts) (*model.Products, error) {
			assert.Equal(t, int64(5), p.ID)
			assert.Nil(t, p.ArticalName)
			require.NotNil(t, p.ArticalPrice)
			assert.Equal(t, 9.5, *p.ArticalPrice)
			return &model.Products{ID: ptrInt64(5), ArticalName: ptrString("Chair"), ArticalPrice: p.ArticalPrice}, nil
		},
	}
	req := httptest.NewRequest(http.MethodPatch, "/products/5", strings.NewReader(`{"id":1,"articalPrice":9.5}`))
	rw := serve(newRouter(ms), req)

	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"id":5,"articalName":"Chair","articalPrice":9.5}`, rw.Body.String())
}

// TestPatch_EmptyNameRejected проверяет, что пустое имя не уходит в API
func TestPatch_EmptyNameRejected(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) { return &model.Products{ID: ptrInt64(5)}, nil },
	}
	req := httptest.NewRequest(http.MethodPatch, "/products/5", strings.NewReader(`{"articalName":""}`))
	rw := serve(newRouter(ms), req)

	assert.Equal(t, http.StatusUnprocessableEntity, rw.Code)
}

// TestPatch_NullRejected проверяет, что null не удаляет обязательное поле
func TestPatch_NullRejected(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) { return &model.Products{ID: ptrInt64(5)}, nil },
	}
	req := httptest.NewRequest(http.MethodPatch, "/products/5", strings.NewReader(`{"articalPrice":null}`))
	rw := serve(newRouter(ms), req)

	require.Equal(t, http.StatusUnprocessableEntity, rw.Code)
	assert.JSONEq(t, `{"code":2,"message":"validation failed","details":{"articalPrice":"required"}}`, rw.Body.String())
}

// TestDeleteDialog_ReturnsRecord проверяет GET /products/{id}/delete
func TestDeleteDialog_ReturnsRecord(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) { return &model.Products{ID: ptrInt64(9)}, nil },
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products/9/delete", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"products":{"id":9}}`, rw.Body.String())
}

// TestConfirmDelete_RefreshesList проверяет удаление, результат "deleted" и перезапрос списка
func TestConfirmDelete_RefreshesList(t *testing.T) {
	var deleted int64
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) { return &model.Products{ID: ptrInt64(9)}, nil },
		DeleteFn: func(id int64) error {
			deleted = id
			return nil
		},
		QueryFn: func(opts url.Values) ([]model.Products, int, error) {
			assert.Equal(t, "2", opts.Get("page"))
			return []model.Products{{ID: ptrInt64(1)}}, 1, nil
		},
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodPost, "/products/9/delete?page=2", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, int64(9), deleted)
	assert.JSONEq(t, `{"closed":true,"result":"deleted","products":[{"id":1}],"total":1}`, rw.Body.String())
}

// TestConfirmDelete_Error проверяет, что ошибка удаления не закрывает диалог
func TestConfirmDelete_Error(t *testing.T) {
	ms := &mockService{
		FindFn:   func(int64) (*model.Products, error) { return &model.Products{ID: ptrInt64(9)}, nil },
		DeleteFn: func(int64) error { return errors.New("boom") },
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodPost, "/products/9/delete", nil))

	assert.Equal(t, http.StatusBadGateway, rw.Code)
}

// TestCancelDelete проверяет закрытие диалога без удаления
func TestCancelDelete(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) { return &model.Products{ID: ptrInt64(9)}, nil },
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodPost, "/products/9/delete/cancel", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"closed":false,"dismissed":true}`, rw.Body.String())
}

// TestBack_RedirectsToList проверяет возврат из просмотра к списку
func TestBack_RedirectsToList(t *testing.T) {
	ms := &mockService{
		FindFn: func(int64) (*model.Products, error) { return &model.Products{ID: ptrInt64(9)}, nil },
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products/9/back", nil))

	require.Equal(t, http.StatusSeeOther, rw.Code)
	assert.Equal(t, "/products", rw.Header().Get("Location"))
}

// TestList_InvalidPage проверяет 400 на некорректную страницу без вызова API
func TestList_InvalidPage(t *testing.T) {
	r := newRouter(&mockService{})
	for _, path := range []string{"/products?page=abc", "/products/count?size=-1", "/products/more?page=x"} {
		rw := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, rw.Code, path)
	}
}

// TestLoadMore_MergesPages проверяет, что записи, сдвинутые между страницами, не дублируются
func TestLoadMore_MergesPages(t *testing.T) {
	pages := map[string][]model.Products{
		"":  {{ID: ptrInt64(3)}, {ID: ptrInt64(2)}},
		"1": {{ID: ptrInt64(2)}, {ID: ptrInt64(1)}},
	}
	var calls []string
	ms := &mockService{
		QueryFn: func(opts url.Values) ([]model.Products, int, error) {
			calls = append(calls, opts.Get("page"))
			assert.Equal(t, "2", opts.Get("size"))
			return pages[opts.Get("page")], 3, nil
		},
	}
	rw := serve(newRouter(ms), httptest.NewRequest(http.MethodGet, "/products/more?page=1&size=2", nil))

	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, []string{"", "1"}, calls)
	assert.Equal(t, "3", rw.Header().Get("X-Total-Count"))
	assert.JSONEq(t, `{"products":[{"id":1},{"id":3},{"id":2}],"total":3}`, rw.Body.String())
}

// TestLoadMore_PageLimit проверяет ограничение числа собираемых страниц
func TestLoadMore_PageLimit(t *testing.T) {
	rw := serve(newRouter(&mockService{}), httptest.NewRequest(http.MethodGet, "/products/more?page=20", nil))
	assert.Equal(t, http.StatusBadRequest, rw.Code)
}

// fakeResolver запоминает контекст, с которым его вызвали
type fakeResolver struct {
	fresh []bool
}

func (f *fakeResolver) Resolve(ctx context.Context, _ map[string]string, _ resolver.Navigator) (*model.Products, bool, error) {
	f.fresh = append(f.fresh, service.IsFreshRead(ctx))
	return &model.Products{ID: ptrInt64(1)}, true, nil
}

// TestResolveMiddleware_FreshReadForWrites проверяет, что изменяющие запросы читают запись мимо кэша
func TestResolveMiddleware_FreshReadForWrites(t *testing.T) {
	res := &fakeResolver{}
	h := ResolveMiddleware(res)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, ResolvedProducts(r.Context()))
	}))

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPatch} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, "/products/1/edit", nil))
	}
	assert.Equal(t, []bool{false, true, true}, res.fresh)
}

// TestNotFound проверяет представление /404
func TestNotFound(t *testing.T) {
	rw := serve(newRouter(&mockService{}), httptest.NewRequest(http.MethodGet, "/404", nil))

	require.Equal(t, http.StatusNotFound, rw.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&resp))
	assert.Equal(t, codeNotFound, resp.Code)
}

// TestHealthz проверяет эндпоинты /healthz и /readyz
func TestHealthz(t *testing.T) {
	r := newRouter(&mockService{})

	rw := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rw.Body.String())

	rw = serve(r, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rw.Body.String())
}

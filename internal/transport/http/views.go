package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"ProductsAdmin/internal/form"
	"ProductsAdmin/internal/model"
	"ProductsAdmin/internal/service"
)

type productsKey struct{}

// ResolvedProducts возвращает запись, загруженную резолвером (nil для новой записи)
func ResolvedProducts(ctx context.Context) *model.Products {
	p, _ := ctx.Value(productsKey{}).(*model.Products)
	return p
}

// ResolveMiddleware загружает запись по {id} до вызова обработчика представления.
// Если резолвер перенаправил навигацию, обработчик не вызывается.
// Для изменяющих запросов запись читается мимо кэша: сохранение и удаление
// не должны опираться на копию, устаревшую до REDIS_TTL.
func ResolveMiddleware(res Resolver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				ctx = service.WithFreshRead(ctx)
			}
			nav := &redirectNavigator{w: w, r: r}
			p, proceed, err := res.Resolve(ctx, mux.Vars(r), nav)
			if err != nil {
				log.Printf("failed to resolve %s: %v", r.URL.Path, err)
				writeUpstreamError(w, err)
				return
			}
			if !proceed {
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, productsKey{}, p)))
		})
	}
}

// redirectNavigator выполняет навигацию HTTP-редиректом 303
type redirectNavigator struct {
	w http.ResponseWriter
	r *http.Request
}

func (n *redirectNavigator) Navigate(path string) {
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
}

// httpModal запоминает, как контроллер закрыл форму или диалог в рамках одного запроса
type httpModal struct {
	closed    bool
	dismissed bool
	result    interface{}
}

func (m *httpModal) Close(result interface{}) {
	m.closed = true
	m.result = result
}

func (m *httpModal) Dismiss() { m.dismissed = true }

// fieldView описывает поле формы в ответе
type fieldView struct {
	Name     string      `json:"name"`
	Value    interface{} `json:"value"`
	Disabled bool        `json:"disabled"`
	Required bool        `json:"required"`
	Error    string      `json:"error,omitempty"`
}

// formView описывает форму товара в ответе
type formView struct {
	Fields []fieldView `json:"fields"`
	Valid  bool        `json:"valid"`
}

func newFormView(f *form.ProductsForm, errs form.Errors) formView {
	return formView{
		Fields: []fieldView{
			{Name: form.FieldID, Value: f.ID.Value(), Disabled: f.ID.Disabled(), Required: f.ID.Required(), Error: errs[form.FieldID]},
			{Name: form.FieldArticalName, Value: f.ArticalName.Value(), Disabled: f.ArticalName.Disabled(), Required: f.ArticalName.Required(), Error: errs[form.FieldArticalName]},
			{Name: form.FieldArticalPrice, Value: f.ArticalPrice.Value(), Disabled: f.ArticalPrice.Disabled(), Required: f.ArticalPrice.Required(), Error: errs[form.FieldArticalPrice]},
		},
		Valid: len(errs) == 0,
	}
}

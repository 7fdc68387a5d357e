package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"ProductsAdmin/internal/model"
)

// ErrNotFound возвращается, когда удалённый API ответил 404
var ErrNotFound = errors.New("record not found")

// APIError описывает неуспешный ответ удалённого API (тело problem+json и alert-заголовок)
type APIError struct {
	Status int
	Title  string
	Detail string
	Alert  string
}

func (e *APIError) Error() string {
	parts := make([]string, 0, 2)
	for _, v := range []string{e.Title, e.Detail} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	msg := strings.Join(parts, ": ")
	if msg == "" {
		msg = e.Alert
	}
	return fmt.Sprintf("products api: status %d: %s", e.Status, msg)
}

// RequestOptions собирает параметры запроса списка (пагинация, сортировка, фильтры).
// Критерии и сортировка не интерпретируются, они передаются в API как есть.
type RequestOptions struct {
	Page    int
	Size    int
	Sort    []string
	Filters map[string]string
}

// ErrInvalidOptions возвращается, когда page или size не являются неотрицательными числами
var ErrInvalidOptions = errors.New("invalid request options")

// ParseRequestOptions разбирает query string запроса списка: page и size проверяются,
// sort может повторяться, остальные ключи считаются критериями field.op=value
// (из повторяющихся критериев берётся первое значение)
func ParseRequestOptions(q url.Values) (RequestOptions, error) {
	var opts RequestOptions
	for k, vs := range q {
		if len(vs) == 0 {
			continue
		}
		switch k {
		case "page", "size":
			n, err := strconv.Atoi(vs[0])
			if err != nil || n < 0 {
				return RequestOptions{}, fmt.Errorf("%w: %s=%q", ErrInvalidOptions, k, vs[0])
			}
			if k == "page" {
				opts.Page = n
			} else {
				opts.Size = n
			}
		case "sort":
			opts.Sort = append([]string(nil), vs...)
		default:
			if opts.Filters == nil {
				opts.Filters = make(map[string]string)
			}
			opts.Filters[k] = vs[0]
		}
	}
	return opts, nil
}

// Values кодирует параметры в query string формата API: page, size, sort и field.op=value
func (o RequestOptions) Values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Size > 0 {
		v.Set("size", strconv.Itoa(o.Size))
	}
	for _, s := range o.Sort {
		v.Add("sort", s)
	}
	keys := make([]string, 0, len(o.Filters))
	for k := range o.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.Set(k, o.Filters[k])
	}
	return v
}

// ProductsClient реализует CRUD-доступ к ресурсу /api/products удалённого API
type ProductsClient struct {
	resourceURL string
	http        *http.Client
	token       string
}

// NewProductsClient создаёт клиента; baseURL — адрес API без /api/products,
// token (если задан) передаётся в заголовке Authorization
func NewProductsClient(baseURL string, httpClient *http.Client, token string) *ProductsClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ProductsClient{
		resourceURL: strings.TrimRight(baseURL, "/") + "/api/products",
		http:        httpClient,
		token:       token,
	}
}

// Find возвращает товар по id.
// Пустое тело ответа даёт (nil, nil), ответ 404 — ErrNotFound.
func (c *ProductsClient) Find(ctx context.Context, id int64) (*model.Products, error) {
	var p model.Products
	found, err := c.do(ctx, http.MethodGet, c.itemURL(id), "", nil, &p, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to find products %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

// Query возвращает страницу товаров и общее количество из заголовка X-Total-Count
func (c *ProductsClient) Query(ctx context.Context, opts url.Values) ([]model.Products, int, error) {
	u := c.resourceURL
	if len(opts) > 0 {
		u += "?" + opts.Encode()
	}
	var list []model.Products
	var header http.Header
	if _, err := c.do(ctx, http.MethodGet, u, "", nil, &list, &header); err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	total := len(list)
	if v := header.Get("X-Total-Count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			total = n
		}
	}
	return list, total, nil
}

// Count возвращает количество товаров, подходящих под критерии
func (c *ProductsClient) Count(ctx context.Context, criteria url.Values) (int64, error) {
	u := c.resourceURL + "/count"
	if len(criteria) > 0 {
		u += "?" + criteria.Encode()
	}
	var n int64
	if _, err := c.do(ctx, http.MethodGet, u, "", nil, &n, nil); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// Create отправляет новую запись; id назначает сервер
func (c *ProductsClient) Create(ctx context.Context, p model.Products) (*model.Products, error) {
	return c.write(ctx, http.MethodPost, c.resourceURL, "application/json", p)
}

// Update заменяет сохранённую запись целиком (PUT)
func (c *ProductsClient) Update(ctx context.Context, p model.Products) (*model.Products, error) {
	id := model.GetProductsIdentifier(p)
	if id == nil {
		return nil, model.ErrNotPersisted
	}
	return c.write(ctx, http.MethodPut, c.itemURL(*id), "application/json", p)
}

// PartialUpdate обновляет только заданные поля (PATCH, merge-patch)
func (c *ProductsClient) PartialUpdate(ctx context.Context, p model.PartialUpdateProducts) (*model.Products, error) {
	if p.ID == 0 {
		return nil, model.ErrNotPersisted
	}
	return c.write(ctx, http.MethodPatch, c.itemURL(p.ID), "application/merge-patch+json", p)
}

// Delete удаляет запись по id
func (c *ProductsClient) Delete(ctx context.Context, id int64) error {
	if _, err := c.do(ctx, http.MethodDelete, c.itemURL(id), "", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete products %d: %w", id, err)
	}
	return nil
}

func (c *ProductsClient) itemURL(id int64) string {
	return c.resourceURL + "/" + strconv.FormatInt(id, 10)
}

func (c *ProductsClient) write(ctx context.Context, method, u, contentType string, body interface{}) (*model.Products, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode products: %w", err)
	}
	var p model.Products
	found, err := c.do(ctx, method, u, contentType, data, &p, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to %s products: %w", strings.ToLower(method), err)
	}
	if !found {
		return nil, fmt.Errorf("failed to %s products: empty response body", strings.ToLower(method))
	}
	return &p, nil
}

// do выполняет запрос и декодирует тело в out.
// Возвращает false, если тело ответа пустое.
func (c *ProductsClient) do(ctx context.Context, method, u, contentType string, body []byte, out interface{}, header *http.Header) (bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	if header != nil {
		*header = resp.Header
	}
	if resp.StatusCode == http.StatusNotFound {
		return false, ErrNotFound
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, newAPIError(resp, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("invalid response body: %w", err)
	}
	return true, nil
}

func newAPIError(resp *http.Response, raw []byte) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &problem) == nil {
		apiErr.Title = problem.Title
		apiErr.Detail = problem.Detail
	}
	// alert-заголовок вида X-<app>-error
	for k, v := range resp.Header {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "x-") && strings.HasSuffix(lk, "-error") && len(v) > 0 {
			apiErr.Alert = v[0]
			break
		}
	}
	return apiErr
}

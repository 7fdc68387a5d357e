// Пакет form строит редактируемое представление товара и читает его обратно
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"ProductsAdmin/internal/model"
)

// Имена полей формы совпадают с JSON-именами записи
const (
	FieldID           = "id"
	FieldArticalName  = "articalName"
	FieldArticalPrice = "articalPrice"
)

// ErrInvalidInput возвращается, когда пользовательский ввод нельзя разобрать
var ErrInvalidInput = errors.New("invalid form input")

// ProductsForm — форма товара. Поле id всегда отключено: оно заполняется
// только из загруженной записи и не принимает пользовательский ввод.
type ProductsForm struct {
	ID           Control[*int64]
	ArticalName  Control[*string]
	ArticalPrice Control[*float64]
}

// Dirty сообщает, что пользователь менял хотя бы одно поле
func (f *ProductsForm) Dirty() bool {
	return f.ID.Dirty() || f.ArticalName.Dirty() || f.ArticalPrice.Dirty()
}

// Errors — ошибки валидации по именам полей (значение — нарушенное правило)
type Errors map[string]string

// productsInput — проверяемая проекция формы; пустая строка в имени не проходит required
type productsInput struct {
	ArticalName  string   `json:"articalName" validate:"required"`
	ArticalPrice *float64 `json:"articalPrice" validate:"required"`
}

// ProductsFormService создаёт, читает и сбрасывает формы товара
type ProductsFormService struct {
	validate *validator.Validate
}

// NewProductsFormService создаёт сервис форм с общим экземпляром валидатора
func NewProductsFormService() *ProductsFormService {
	v := validator.New()
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ProductsFormService{validate: v}
}

// FormDefaults возвращает значения формы для новой записи
func FormDefaults() model.Products {
	return model.Products{ID: nil}
}

// withDefaults накладывает запись поверх значений по умолчанию
func withDefaults(p *model.Products) model.Products {
	raw := FormDefaults()
	if p == nil {
		return raw
	}
	raw.ID = p.ID
	if p.ArticalName != nil {
		raw.ArticalName = p.ArticalName
	}
	if p.ArticalPrice != nil {
		raw.ArticalPrice = p.ArticalPrice
	}
	return raw
}

// CreateForm строит форму из записи (nil — новая запись).
// id отключён независимо от режима, articalName и articalPrice обязательны.
func (s *ProductsFormService) CreateForm(initial *model.Products) *ProductsForm {
	f := &ProductsForm{}
	f.ID.required = true
	f.ArticalName.required = true
	f.ArticalPrice.required = true
	s.apply(f, withDefaults(initial))
	return f
}

// GetProducts читает полное значение формы, включая отключённый id
func (s *ProductsFormService) GetProducts(f *ProductsForm) model.Products {
	return model.Products{
		ID:           f.ID.Value(),
		ArticalName:  f.ArticalName.Value(),
		ArticalPrice: f.ArticalPrice.Value(),
	}
}

// ResetForm переназначает все поля из записи и снова отключает id
func (s *ProductsFormService) ResetForm(f *ProductsForm, p model.Products) {
	s.apply(f, withDefaults(&p))
}

func (s *ProductsFormService) apply(f *ProductsForm, raw model.Products) {
	f.ID.reset(raw.ID, true)
	f.ArticalName.reset(raw.ArticalName, false)
	f.ArticalPrice.reset(raw.ArticalPrice, false)
}

// ApplyJSON применяет JSON-ввод: присутствующий ключ попадает в редактируемый
// контрол, null очищает поле так же, как пустое значение HTML-формы. Ключ id игнорируется.
func (s *ProductsFormService) ApplyJSON(f *ProductsForm, body []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if v, ok := raw[FieldArticalName]; ok {
		var name *string
		if err := json.Unmarshal(v, &name); err != nil {
			return fmt.Errorf("%w: %s is not a string", ErrInvalidInput, FieldArticalName)
		}
		f.ArticalName.SetValue(name)
	}
	if v, ok := raw[FieldArticalPrice]; ok {
		var price *float64
		if err := json.Unmarshal(v, &price); err != nil {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidInput, FieldArticalPrice)
		}
		if price != nil {
			if err := checkPrice(*price); err != nil {
				return err
			}
		}
		f.ArticalPrice.SetValue(price)
	}
	return nil
}

// ParsePatch разбирает тело частичного обновления. Отсутствующий ключ не меняет поле.
// Поля обязательны, поэтому null и пустое имя дают ошибку required, а не удаление поля.
// id из тела игнорируется, его задаёт вызывающий.
func (s *ProductsFormService) ParsePatch(body []byte) (model.PartialUpdateProducts, Errors, error) {
	var (
		out model.PartialUpdateProducts
		raw map[string]json.RawMessage
	)
	if err := json.Unmarshal(body, &raw); err != nil {
		return out, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	errs := Errors{}
	if v, ok := raw[FieldArticalName]; ok {
		if err := json.Unmarshal(v, &out.ArticalName); err != nil {
			return out, nil, fmt.Errorf("%w: %s is not a string", ErrInvalidInput, FieldArticalName)
		}
		if out.ArticalName == nil || *out.ArticalName == "" {
			errs[FieldArticalName] = "required"
		}
	}
	if v, ok := raw[FieldArticalPrice]; ok {
		if err := json.Unmarshal(v, &out.ArticalPrice); err != nil {
			return out, nil, fmt.Errorf("%w: %s is not a number", ErrInvalidInput, FieldArticalPrice)
		}
		if out.ArticalPrice == nil {
			errs[FieldArticalPrice] = "required"
		} else if err := checkPrice(*out.ArticalPrice); err != nil {
			return out, nil, err
		}
	}
	if len(errs) > 0 {
		return out, errs, nil
	}
	return out, nil, nil
}

// Bind применяет отправленные значения HTML-формы. Отсутствующий ключ оставляет поле
// без изменений, пустое значение очищает его. Ключ id игнорируется.
func (s *ProductsFormService) Bind(f *ProductsForm, values url.Values) error {
	if _, ok := values[FieldArticalName]; ok {
		name := values.Get(FieldArticalName)
		f.ArticalName.SetValue(&name)
	}
	if _, ok := values[FieldArticalPrice]; ok {
		raw := strings.TrimSpace(values.Get(FieldArticalPrice))
		if raw == "" {
			f.ArticalPrice.SetValue(nil)
			return nil
		}
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidInput, FieldArticalPrice)
		}
		if err := checkPrice(price); err != nil {
			return err
		}
		f.ArticalPrice.SetValue(&price)
	}
	return nil
}

// Validate проверяет правила required у редактируемых полей.
// Возвращает nil, если форма валидна.
func (s *ProductsFormService) Validate(f *ProductsForm) Errors {
	in := productsInput{ArticalPrice: f.ArticalPrice.Value()}
	if name := f.ArticalName.Value(); name != nil {
		in.ArticalName = *name
	}
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Errors{"": err.Error()}
	}
	out := make(Errors, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// checkPrice отклоняет NaN и бесконечности: strconv.ParseFloat их принимает, а JSON закодировать не может
func checkPrice(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, FieldArticalPrice)
	}
	return nil
}

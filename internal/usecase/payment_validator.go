package usecase

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"pix_checkout/internal/domain/entities"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DefaultMinimumAmount is the lowest PIX charge the provider accepts (R$ 1,49).
var DefaultMinimumAmount = decimal.RequireFromString("1.49")

// IPaymentValidator checks a PIX payload before any network call is made.
type IPaymentValidator interface {
	Validate(req entities.PaymentRequest) error
}

// PaymentValidator runs the ordered structural/semantic checks of a
// PaymentRequest. Only the first failing field is reported.
//
// Rules live in the `validate` tags of entities.PaymentRequest; the custom
// tags registered here are:
//   - pix_date:   calendar date string ("2006-01-02" or RFC 3339)
//   - min_amount: amount >= configured minimum
//   - cpf:        11 digits after normalization
//   - br_phone:   10 or 11 digits after normalization
//   - cep:        at least 8 digits after normalization
type PaymentValidator struct {
	validate  *validator.Validate
	minAmount decimal.Decimal
}

var _ IPaymentValidator = (*PaymentValidator)(nil)

func NewPaymentValidator(minAmount decimal.Decimal) *PaymentValidator {
	if !minAmount.IsPositive() {
		minAmount = DefaultMinimumAmount
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	pv := &PaymentValidator{validate: v, minAmount: minAmount}
	mustRegister(v, "pix_date", isPixDate)
	mustRegister(v, "min_amount", pv.isAboveMinimum)
	mustRegister(v, "cpf", digitsBetween(11, 11))
	mustRegister(v, "br_phone", digitsBetween(10, 11))
	mustRegister(v, "cep", digitsBetween(8, 0))
	return pv
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate returns nil or a *entities.ValidationError naming the first
// offending field.
func (p *PaymentValidator) Validate(req entities.PaymentRequest) error {
	err := p.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &entities.ValidationError{Field: "payload", Err: entities.ErrInvalidField}
	}

	first := fieldErrs[0]
	field := fieldPath(first.Namespace())
	switch {
	case field == "pix":
		return &entities.ValidationError{Field: "pix.expiresInDays", Err: entities.ErrMissingField}
	case itemFieldWrongType(req, field):
		return &entities.ValidationError{Field: field, Err: entities.ErrInvalidField}
	case field == "amount" && req.Amount != nil:
		return &entities.ValidationError{Field: field, Err: entities.ErrAmountBelowMinimum}
	case first.Tag() == "required" || (field == "items" && first.Tag() == "min"):
		return &entities.ValidationError{Field: field, Err: entities.ErrMissingField}
	default:
		return &entities.ValidationError{Field: field, Err: entities.ErrInvalidField}
	}
}

// MinimumAmount is the configured floor used by the min_amount rule.
func (p *PaymentValidator) MinimumAmount() decimal.Decimal {
	return p.minAmount
}

// fieldPath drops the root struct name from a validator namespace:
// "PaymentRequest.customer.address.city" -> "customer.address.city".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// itemFieldWrongType reports whether field ("items[2].quantity") was sent
// with a value of the wrong JSON type.
func itemFieldWrongType(req entities.PaymentRequest, field string) bool {
	rest, ok := strings.CutPrefix(field, "items[")
	if !ok {
		return false
	}
	idx, name, ok := strings.Cut(rest, "].")
	if !ok {
		return false
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(req.Items) {
		return false
	}
	return req.Items[i].WrongType(name)
}

func (p *PaymentValidator) isAboveMinimum(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Float64 {
		return false
	}
	return !decimal.NewFromFloat(fl.Field().Float()).LessThan(p.minAmount)
}

func isPixDate(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return false
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// digitsBetween builds a rule over the digit count of a string; max 0 means
// unbounded.
func digitsBetween(min, max int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		n := len(entities.DigitsOnly(fl.Field().String()))
		if n < min {
			return false
		}
		return max == 0 || n <= max
	}
}

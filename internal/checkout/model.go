package checkout

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/technova/internal/order"
)

type Step string

const (
	StepCart     Step = "cart"
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepSuccess  Step = "success"
)

func (s Step) String() string {
	return string(s)
}

var (
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrValidation        = errors.New("shipping details are invalid")
	ErrInvalidPayment    = errors.New("unsupported payment method")
)

// allowedTransitions lists the forward moves. Closing the drawer returns to
// StepCart from any step and is handled separately.
var allowedTransitions = map[Step]map[Step]bool{
	StepCart: {
		StepShipping: true,
	},
	StepShipping: {
		StepPayment: true,
	},
	StepPayment: {
		StepSuccess: true,
	},
	StepSuccess: {},
}

func CanTransition(from, to Step) bool {
	if to == StepCart {
		return true
	}
	return allowedTransitions[from][to]
}

type ShippingForm struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	Terms   bool   `json:"terms" validate:"required"`
	Privacy bool   `json:"privacy" validate:"required"`
}

func (f ShippingForm) trimmed() ShippingForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	return f
}

func (f ShippingForm) contact() order.Contact {
	return order.Contact{Name: f.Name, Email: f.Email, Phone: f.Phone, Address: f.Address}
}

// Session is the persisted state of one checkout drawer.
type Session struct {
	Step      Step              `json:"step"`
	Form      ShippingForm      `json:"form"`
	Errors    map[string]string `json:"errors"`
	LastOrder *order.Order      `json:"lastOrder,omitempty"`
}

func newSession() Session {
	return Session{Step: StepCart, Errors: map[string]string{}}
}

var fieldMessages = map[string]string{
	"name":    "Name is required",
	"email":   "Please enter a valid email address",
	"phone":   "Phone number is required",
	"address": "Address is required",
	"terms":   "You must accept the terms and conditions",
	"privacy": "You must accept the privacy policy",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateShipping returns one message per failing field, keyed by the
// field's JSON name. An empty map means the form is complete.
func validateShipping(v *validator.Validate, form ShippingForm) map[string]string {
	errs := map[string]string{}

	err := v.Struct(form)
	if err == nil {
		return errs
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["form"] = "Unable to validate form"
		return errs
	}

	for _, fe := range validationErrors {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		errs[fe.Field()] = msg
	}

	return errs
}

package validation

import "strings"

// CheckoutForm is the shipping form as submitted by the shopper.
type CheckoutForm struct {
	FirstName string `json:"firstName" form:"firstName" validate:"required,alphaname,min=3,max=50"`
	LastName  string `json:"lastName" form:"lastName" validate:"required,alphaname,min=2,max=50"`
	City      string `json:"city" form:"city" validate:"required,cityname,min=2"`
	State     string `json:"state" form:"state" validate:"required,alphaname,min=2"`
	Zip       string `json:"zip" form:"zip" validate:"required,pincode"`
	Phone     string `json:"phone" form:"phone" validate:"required,mobile"`
	Address   string `json:"address" form:"address" validate:"required,utf16min=3,streetaddress"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f CheckoutForm) Trimmed() CheckoutForm {
	return CheckoutForm{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		City:      strings.TrimSpace(f.City),
		State:     strings.TrimSpace(f.State),
		Zip:       strings.TrimSpace(f.Zip),
		Phone:     strings.TrimSpace(f.Phone),
		Address:   strings.TrimSpace(f.Address),
	}
}

// FullName is the name prefilled into the payment widget.
func (f CheckoutForm) FullName() string {
	return f.FirstName + " " + f.LastName
}

// Field names, in form order.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldCity      = "city"
	FieldState     = "state"
	FieldZip       = "zip"
	FieldPhone     = "phone"
	FieldAddress   = "address"
)

// Fields lists every checkout field in form order.
var Fields = []string{FieldFirstName, FieldLastName, FieldCity, FieldState, FieldZip, FieldPhone, FieldAddress}

// Result maps every field to its error message; "" means the field is valid.
type Result map[string]string

// Valid reports whether every message is empty.
func (r Result) Valid() bool {
	for _, msg := range r {
		if msg != "" {
			return false
		}
	}
	return true
}

// Errors returns only the failing fields.
func (r Result) Errors() map[string]string {
	out := map[string]string{}
	for field, msg := range r {
		if msg != "" {
			out[field] = msg
		}
	}
	return out
}

package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	validatorv10 "github.com/go-playground/validator/v10"
)

var (
	alphaNameRe     = regexp.MustCompile(`^[A-Za-z]+$`)
	cityNameRe      = regexp.MustCompile(`^[A-Za-z` + jsSpace + `]+$`)
	pinCodeRe       = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	mobileRe        = regexp.MustCompile(`^(0|91)?[6-9][0-9]{9}$`)
	streetAddressRe = regexp.MustCompile(`^[A-Za-z0-9` + jsSpace + `,#&()/.\-]+$`)
)

// jsSpace is the whitespace class browsers accept in form patterns: ASCII
// whitespace plus Unicode space separators, line/paragraph separators and BOM.
const jsSpace = `\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{FEFF}`

// messages holds the shopper-facing text per field and failing tag. min and
// max share the field's length message.
var messages = map[string]map[string]string{
	FieldFirstName: {
		"required":  "Please Enter Your First Name",
		"alphaname": "Name should only be an alphabet",
		"min":       "First name must be between 3 and 50 characters.",
		"max":       "First name must be between 3 and 50 characters.",
	},
	FieldLastName: {
		"required":  "Please Enter Your Last Name",
		"alphaname": "Name should only be an alphabet",
		"min":       "Last name must be between 2 and 50 characters.",
		"max":       "Last name must be between 2 and 50 characters.",
	},
	FieldCity: {
		"required": "Please Enter Your City Name",
		"cityname": "Invalid City Name.",
		"min":      "Invalid City Name",
	},
	FieldState: {
		"required":  "Please Enter Your State",
		"alphaname": "Invalid State Name.",
		"min":       "Invalid State Name",
	},
	FieldZip: {
		"required": "Please Enter Your Zip Code",
		"pincode":  "Invalid Zip Code",
	},
	FieldPhone: {
		"required": "Please Enter your Phone Number.",
		"mobile":   "Invalid Phone Number",
	},
	FieldAddress: {
		"required":      "Please Enter Your Address.",
		"utf16min":      "Invalid Address",
		"streetaddress": "Invalid characters in the address",
	},
}

// New returns a validator with the checkout tags registered. Field names in
// errors are the json names of the form.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, re := range map[string]*regexp.Regexp{
		"alphaname":     alphaNameRe,
		"cityname":      cityNameRe,
		"pincode":       pinCodeRe,
		"mobile":        mobileRe,
		"streetaddress": streetAddressRe,
	} {
		re := re
		mustRegister(v, tag, func(fl validatorv10.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}
	mustRegister(v, "utf16min", utf16Min)

	return v
}

func mustRegister(v *validatorv10.Validate, tag string, fn validatorv10.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// utf16Min checks a minimum length counted in UTF-16 code units, the way
// browser form fields measure length.
func utf16Min(fl validatorv10.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(utf16.Encode([]rune(fl.Field().String()))) >= n
}

// Checker evaluates checkout forms.
type Checker struct {
	v *validatorv10.Validate
}

func NewChecker() *Checker {
	return &Checker{v: New()}
}

// Check trims the form and evaluates every field. Each field reports its
// first failing rule; one field failing never hides another's message.
func (c *Checker) Check(form CheckoutForm) Result {
	res := Result{}
	for _, f := range Fields {
		res[f] = ""
	}

	err := c.v.Struct(form.Trimmed())
	if err == nil {
		return res
	}
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		// only reachable on programmer error (non-struct input)
		for _, f := range Fields {
			res[f] = err.Error()
		}
		return res
	}
	for _, fe := range ve {
		res[fe.Field()] = messageFor(fe.Field(), fe.Tag())
	}
	return res
}

func messageFor(field, tag string) string {
	if msg, ok := messages[field][tag]; ok {
		return msg
	}
	return "Invalid " + field
}

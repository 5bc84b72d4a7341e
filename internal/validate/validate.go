// Package validate checks user supplied values against the fixed set of
// format rules used by the account forms.
package validate

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"uk.co.dudmesh.emprendenet/internal/model"
)

type Rule string

const (
	RuleNumericID   Rule = "numeric-id"
	RuleUserName    Rule = "user-name"
	RulePassword    Rule = "password"
	RuleProfileInfo Rule = "profile-info"
)

// Result is the outcome of checking one value.
type Result int

const (
	Absent Result = iota
	Invalid
	Valid
)

func (r Result) OK() bool {
	return r == Valid
}

// ReservedNames can never be registered.
var ReservedNames = []string{"Usuario desconocido", "Unknown user", "Admin"}

var patterns = map[Rule]*regexp.Regexp{
	RuleNumericID:   regexp.MustCompile(`^[0-9]{1,16}$`),
	RuleUserName:    regexp.MustCompile(`^[\p{L}\p{N}_ -]{4,20}$`),
	RulePassword:    regexp.MustCompile(`^[\p{L}\p{N}_!@"#$%&\\/()=?¡+\[\]{}<>ºª€·,.;:-]{4,20}$`),
	RuleProfileInfo: regexp.MustCompile(`^[\p{L}\p{N}_,.;: -]{2,20}$`),
}

// Check validates value against rule. A nil value is Absent and a bool is
// passed through as Valid or Invalid, anything else is formatted as text and
// matched.
func Check(value any, rule Rule) (Result, error) {
	pattern, ok := patterns[rule]
	if !ok {
		return Invalid, fmt.Errorf("%w: %s", model.ErrorInvalidRule, rule)
	}

	var text string
	switch v := value.(type) {
	case nil:
		return Absent, nil
	case bool:
		if v {
			return Valid, nil
		}
		return Invalid, nil
	case string:
		text = v
	case []byte:
		text = string(v)
	case fmt.Stringer:
		text = v.String()
	default:
		text = fmt.Sprint(v)
	}

	if rule == RuleUserName && isReserved(text) {
		return Invalid, nil
	}
	if !pattern.MatchString(text) {
		return Invalid, nil
	}
	return Valid, nil
}

// Is reports whether value is Valid for rule. It panics on an unknown rule.
func Is(value any, rule Rule) bool {
	result, err := Check(value, rule)
	if err != nil {
		panic(err)
	}
	return result.OK()
}

func isReserved(name string) bool {
	for _, reserved := range ReservedNames {
		if name == reserved {
			return true
		}
	}
	return false
}

var tags = map[string]Rule{
	"numericid":   RuleNumericID,
	"username":    RuleUserName,
	"password":    RulePassword,
	"profileinfo": RuleProfileInfo,
}

// New returns a struct validator that understands the rules as tags:
// numericid, username, password and profileinfo.
func New() *validator.Validate {
	v := validator.New()
	for tag, rule := range tags {
		rule := rule
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return Is(fl.Field().Interface(), rule)
		})
		if err != nil {
			panic(fmt.Sprintf("registering validation %s: %v", tag, err))
		}
	}
	return v
}

package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/gophfarm/internal/common"
)

var (
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	typeRe  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*(\(\s*[0-9]+\s*(,\s*[0-9]+\s*)?\))?$`)
)

// ValidateIdentifier checks a table or column name before it is interpolated
// into generated SQL.
func ValidateIdentifier(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("%w: %q", common.ErrInvalidIdentifier, name)
	}
	return nil
}

// Quote validates name and wraps it in double quotes.
func Quote(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", err
	}
	return `"` + name + `"`, nil
}

// MustQuote is Quote for identifiers fixed at compile time.
func MustQuote(name string) string {
	q, err := Quote(name)
	if err != nil {
		panic(err)
	}
	return q
}

func validateType(t string) error {
	if t == "" || typeRe.MatchString(t) {
		return nil
	}
	return fmt.Errorf("%w: column type %q", common.ErrorValidation, t)
}

func validateModifiers(m string) error {
	for _, bad := range []string{";", "--", "/*"} {
		if strings.Contains(m, bad) {
			return fmt.Errorf("%w: column modifiers %q", common.ErrorValidation, m)
		}
	}
	return nil
}

// normType is the comparison key for declared types: trimmed, upper-cased,
// otherwise literal. INT and INTEGER are different types here.
func normType(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

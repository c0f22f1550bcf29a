// Package validate checks raw wizard answers against named rules.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Rule names a validation rule. Unknown rules accept every input.
type Rule string

const (
	RuleNone        Rule = ""
	RuleName        Rule = "name"
	RuleAge         Rule = "age"
	RuleMobile      Rule = "mobile"
	RuleText        Rule = "text"
	RuleLettersOnly Rule = "lettersOnly"
)

// Accepted age range, inclusive. Reports are only taken from adults.
const (
	MinAge = 18
	MaxAge = 99
)

const maxTextLength = 500

var (
	namePattern        = regexp.MustCompile(`^[A-Za-z\s]{2,50}$`)
	agePattern         = regexp.MustCompile(`^\d{1,3}$`)
	mobilePattern      = regexp.MustCompile(`^\d{10}$`)
	lettersOnlyPattern = regexp.MustCompile(`^[A-Za-z\s.,!?]{2,500}$`)
)

// Input reports whether input satisfies rule.
func Input(input string, rule Rule) bool {
	switch rule {
	case RuleName:
		return namePattern.MatchString(input)
	case RuleAge:
		if !agePattern.MatchString(input) {
			return false
		}
		age, err := strconv.Atoi(input)
		return err == nil && age >= MinAge && age <= MaxAge
	case RuleMobile:
		return mobilePattern.MatchString(input)
	case RuleText:
		n := utf8.RuneCountInString(strings.TrimSpace(input))
		return n > 0 && n <= maxTextLength
	case RuleLettersOnly:
		return lettersOnlyPattern.MatchString(input)
	case RuleNone:
		return true
	default:
		return true
	}
}

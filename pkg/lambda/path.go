package lambda

import "strings"

// normalizeRule ensures rule starts with "/" and, when trailing is set, ends with one.
func normalizeRule(rule string, trailing bool) string {
	if !strings.HasPrefix(rule, "/") {
		rule = "/" + rule
	}
	if trailing && !strings.HasSuffix(rule, "/") {
		rule += "/"
	}
	return rule
}

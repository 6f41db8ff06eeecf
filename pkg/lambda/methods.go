package lambda

import "strings"

// MethodSet is a fixed, ordered set of HTTP method names
type MethodSet []string

var (
	// HTTP11IdempotentMethods are the idempotent methods of HTTP/1.1 without PATCH
	HTTP11IdempotentMethods = MethodSet{"GET", "PUT", "DELETE", "HEAD", "OPTIONS"}

	// IdempotentMethodsWithPatch also treats PATCH as a query-string method
	IdempotentMethodsWithPatch = MethodSet{"GET", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
)

// Contains reports whether method is in the set, ignoring case
func (s MethodSet) Contains(method string) bool {
	for _, m := range s {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

package lambda

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Convention selects how method, rule and parameters are read from an event
type Convention string

const (
	// ConventionEventRoute reads "method" and "route" from the event
	ConventionEventRoute Convention = "event-route"
	// ConventionFunctionName derives method and route from the function name, e.g. get_users
	ConventionFunctionName Convention = "function-name"
	// ConventionGateway reads API Gateway proxy fields and JSON-encodes the body
	ConventionGateway Convention = "gateway"
)

// ParseConvention maps a configuration value to a Convention
func ParseConvention(name string) (Convention, error) {
	c := Convention(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := extractors[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownConvention, name)
	}
	return c, nil
}

func (c Convention) String() string {
	return string(c)
}

// extractor turns a platform invocation into a dispatcher request
type extractor func(inv PlatformInvocation, idempotent MethodSet) (*Request, error)

var extractors = map[Convention]extractor{
	ConventionEventRoute:   extractEventRoute,
	ConventionFunctionName: extractFunctionName,
	ConventionGateway:      extractGateway,
}

func extractEventRoute(inv PlatformInvocation, idempotent MethodSet) (*Request, error) {
	method, err := stringField(inv.Event, "method")
	if err != nil {
		return nil, err
	}
	rule, err := stringField(inv.Event, "route")
	if err != nil {
		return nil, err
	}
	return eventRequest(method, rule, inv.Event, idempotent), nil
}

func extractFunctionName(inv PlatformInvocation, idempotent MethodSet) (*Request, error) {
	name := inv.Context.FunctionName
	if name == "" {
		return nil, &InvocationError{Op: "extract", Field: "function_name", Err: ErrMissingField}
	}
	method, route, _ := strings.Cut(name, "_")
	rule := strings.ReplaceAll(route, "_", "/")
	return eventRequest(method, rule, inv.Event, idempotent), nil
}

// eventRequest sends the whole event as query string or form payload
func eventRequest(method, rule string, event Event, idempotent MethodSet) *Request {
	req := &Request{
		Method: strings.ToLower(method),
		Path:   normalizeRule(rule, true),
	}
	values := formValues(event)
	if idempotent.Contains(method) {
		req.Query = values
	} else {
		req.Body = []byte(values.Encode())
		req.ContentType = "application/x-www-form-urlencoded"
	}
	return req
}

func extractGateway(inv PlatformInvocation, idempotent MethodSet) (*Request, error) {
	method, err := stringField(inv.Event, "httpMethod")
	if err != nil {
		return nil, err
	}
	rule, err := stringField(inv.Event, "path")
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method: strings.ToLower(method),
		Path:   normalizeRule(rule, false),
		Header: gatewayHeaders(inv),
	}

	if idempotent.Contains(method) {
		if params, ok := inv.Event["queryStringParameters"].(map[string]interface{}); ok {
			req.Query = formValues(params)
		} else if params, ok := inv.Event["queryStringParameters"].(map[string]string); ok {
			req.Query = url.Values{}
			for k, v := range params {
				req.Query.Set(k, v)
			}
		}
		return req, nil
	}

	raw, ok := inv.Event["body"]
	if !ok || raw == nil {
		return nil, missingField("body")
	}
	text, ok := raw.(string)
	if !ok {
		return nil, &InvocationError{Op: "extract", Field: "body", Err: fmt.Errorf("expected string, got %T", raw)}
	}

	var payload interface{}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req.Body = body
	req.ContentType = "application/json"
	return req, nil
}

// gatewayHeaders forwards event headers and tags the request with the runtime's request id
func gatewayHeaders(inv PlatformInvocation) http.Header {
	header := http.Header{}
	switch h := inv.Event["headers"].(type) {
	case map[string]interface{}:
		for k, v := range h {
			header.Set(k, scalarText(v))
		}
	case map[string]string:
		for k, v := range h {
			header.Set(k, v)
		}
	}
	if inv.Context.RequestID != "" && header.Get("X-Request-ID") == "" {
		header.Set("X-Request-ID", inv.Context.RequestID)
	}
	return header
}

func stringField(event Event, key string) (string, error) {
	v, ok := event[key]
	if !ok || v == nil {
		return "", missingField(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", &InvocationError{Op: "extract", Field: key, Err: fmt.Errorf("expected string, got %T", v)}
	}
	return s, nil
}

// formValues flattens a mapping into url.Values. Lists become repeated keys and
// nested mappings are sent as JSON text.
func formValues(m map[string]interface{}) url.Values {
	values := url.Values{}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := m[k].(type) {
		case nil:
			values.Add(k, "")
		case string:
			values.Add(k, v)
		case []interface{}:
			for _, item := range v {
				values.Add(k, scalarText(item))
			}
		case []string:
			for _, item := range v {
				values.Add(k, item)
			}
		default:
			values.Add(k, scalarText(v))
		}
	}
	return values
}

func scalarText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

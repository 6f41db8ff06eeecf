package lambda

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/shopspring/decimal"
)

// Envelope is a structured response for platform-native delivery.
// Body always holds a "message" key.
type Envelope struct {
	Body            map[string]interface{}
	Headers         map[string]string
	StatusCode      int
	IsBase64Encoded bool
}

// EnvelopeOption customizes a new Envelope
type EnvelopeOption func(*Envelope)

// WithStatusCode sets the status code
func WithStatusCode(code int) EnvelopeOption {
	return func(e *Envelope) { e.StatusCode = code }
}

// WithHeaders sets the response headers
func WithHeaders(headers map[string]string) EnvelopeOption {
	return func(e *Envelope) { e.Headers = headers }
}

// WithBase64Encoding marks the body as base64 encoded
func WithBase64Encoding(encoded bool) EnvelopeOption {
	return func(e *Envelope) { e.IsBase64Encoded = encoded }
}

// NewEnvelope creates an envelope around body with a 200 status
func NewEnvelope(body map[string]interface{}, opts ...EnvelopeOption) *Envelope {
	copied := make(map[string]interface{}, len(body)+1)
	for k, v := range body {
		copied[k] = v
	}
	if _, ok := copied["message"]; !ok {
		copied["message"] = ""
	}

	e := &Envelope{
		Body:       copied,
		Headers:    map[string]string{},
		StatusCode: http.StatusOK,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Headers == nil {
		e.Headers = map[string]string{}
	}
	return e
}

// EnvelopeFromResponse wraps a dispatcher response whose body is a JSON object
func EnvelopeFromResponse(resp *Response) (*Envelope, error) {
	var body map[string]interface{}
	if len(resp.Body) > 0 {
		if err := resp.DecodeJSON(&body); err != nil {
			return nil, err
		}
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return NewEnvelope(body, WithStatusCode(resp.StatusCode), WithHeaders(headers)), nil
}

// Message returns Body["message"] as a string
func (e *Envelope) Message() string {
	s, _ := e.Body["message"].(string)
	return s
}

// SetMessage writes Body["message"]
func (e *Envelope) SetMessage(message string) {
	if e.Body == nil {
		e.Body = map[string]interface{}{}
	}
	e.Body["message"] = message
}

// Encode produces the platform result mapping. body and isBase64Encoded are
// JSON text; headers and statusCode stay native.
func (e *Envelope) Encode() (map[string]interface{}, error) {
	body, err := json.Marshal(encodable(e.Body))
	if err != nil {
		return nil, err
	}
	flag, err := json.Marshal(e.IsBase64Encoded)
	if err != nil {
		return nil, err
	}

	headers := e.Headers
	if headers == nil {
		headers = map[string]string{}
	}

	return map[string]interface{}{
		"body":            string(body),
		"headers":         headers,
		"statusCode":      e.StatusCode,
		"isBase64Encoded": string(flag),
	}, nil
}

// MarshalJSON renders a nested envelope as its plain mapping
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.plain())
}

// plain renders the envelope as a mapping for nesting inside another body
func (e *Envelope) plain() map[string]interface{} {
	return map[string]interface{}{
		"body":              encodable(e.Body),
		"headers":           e.Headers,
		"status_code":       e.StatusCode,
		"is_base64_encoded": e.IsBase64Encoded,
	}
}

// encodable rewrites values the JSON encoder would not render as strings.
// Nested envelopes marshal themselves.
func encodable(v interface{}) interface{} {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.String()
	case *decimal.Decimal:
		if t == nil {
			return nil
		}
		return t.String()
	case *big.Float:
		if t == nil {
			return nil
		}
		return t.Text('f', -1)
	case *big.Rat:
		if t == nil {
			return nil
		}
		return t.RatString()
	case json.Number:
		return t.String()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = encodable(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = encodable(item)
		}
		return out
	default:
		return v
	}
}

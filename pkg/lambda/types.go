package lambda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

// Event is the untyped payload delivered with a platform invocation
type Event map[string]interface{}

// InvocationContext carries the platform metadata of one invocation
type InvocationContext struct {
	RequestID    string
	FunctionName string
}

// IsPlatform reports whether the context carries a platform marker
func (c InvocationContext) IsPlatform() bool {
	return c.RequestID != "" || c.FunctionName != ""
}

// ContextFromLambda reads invocation metadata from a runtime-supplied context
func ContextFromLambda(ctx context.Context) InvocationContext {
	ic := InvocationContext{FunctionName: lambdacontext.FunctionName}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		ic.RequestID = lc.AwsRequestID
	}
	return ic
}

// Invocation is either a NativeCall or a PlatformInvocation
type Invocation interface {
	invocation()
}

// NativeCall is a request that already arrived through the dispatcher's own entry point
type NativeCall struct {
	Writer  http.ResponseWriter
	Request *http.Request
}

// PlatformInvocation is an event delivered by the serverless runtime
type PlatformInvocation struct {
	Event   Event
	Context InvocationContext
}

func (NativeCall) invocation()         {}
func (PlatformInvocation) invocation() {}

// Request is the dispatcher-facing form of a platform invocation
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string
}

// Response is the materialized result of a simulated request
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Text returns the body as a string
func (r *Response) Text() string {
	return string(r.Body)
}

// Data returns the raw body bytes
func (r *Response) Data() []byte {
	return r.Body
}

// DecodeJSON decodes the body into v
func (r *Response) DecodeJSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

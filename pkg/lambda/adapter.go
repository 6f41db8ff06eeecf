package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Config holds adapter options
type Config struct {
	Convention   Convention
	Idempotent   MethodSet
	MaxRedirects int
	// Envelope makes gateway invocations return an encoded Envelope instead of the decoded body
	Envelope bool
	Logger   *logrus.Logger
}

// DefaultConfig returns the gateway convention with HTTP/1.1 idempotent methods
func DefaultConfig() *Config {
	return &Config{
		Convention:   ConventionGateway,
		Idempotent:   HTTP11IdempotentMethods,
		MaxRedirects: DefaultMaxRedirects,
		Logger:       logrus.StandardLogger(),
	}
}

// Adapter translates platform invocations into simulated requests against a wrapped dispatcher
type Adapter struct {
	handler http.Handler
	config  *Config
	extract extractor
}

// NewAdapter wraps handler. A nil config selects DefaultConfig.
func NewAdapter(handler http.Handler, config *Config) (*Adapter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Convention == "" {
		config.Convention = ConventionGateway
	}
	if config.Idempotent == nil {
		config.Idempotent = HTTP11IdempotentMethods
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	extract, ok := extractors[config.Convention]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConvention, config.Convention)
	}

	return &Adapter{
		handler: handler,
		config:  config,
		extract: extract,
	}, nil
}

// Convention returns the active convention
func (a *Adapter) Convention() Convention {
	return a.config.Convention
}

// ServeHTTP lets the adapter stand in for the dispatcher on a native server
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = a.Invoke(r.Context(), NativeCall{Writer: w, Request: r})
}

// HandleEvent is the runtime entry point for lambda.Start
func (a *Adapter) HandleEvent(ctx context.Context, event map[string]interface{}) (interface{}, error) {
	ic := ContextFromLambda(ctx)
	if !ic.IsPlatform() {
		return nil, ErrNotPlatformInvocation
	}
	return a.Invoke(ctx, PlatformInvocation{Event: event, Context: ic})
}

// Invoke dispatches one invocation. Native calls pass through to the dispatcher
// and return nil; platform invocations return text, a decoded JSON value, or an
// encoded envelope depending on the convention.
func (a *Adapter) Invoke(ctx context.Context, inv Invocation) (interface{}, error) {
	switch call := inv.(type) {
	case NativeCall:
		a.handler.ServeHTTP(call.Writer, call.Request)
		return nil, nil
	case *NativeCall:
		a.handler.ServeHTTP(call.Writer, call.Request)
		return nil, nil
	case PlatformInvocation:
		return a.invokePlatform(ctx, call)
	case *PlatformInvocation:
		return a.invokePlatform(ctx, *call)
	default:
		return nil, fmt.Errorf("unsupported invocation type %T", inv)
	}
}

func (a *Adapter) invokePlatform(ctx context.Context, inv PlatformInvocation) (interface{}, error) {
	req, err := a.extract(inv, a.config.Idempotent)
	if err != nil {
		return nil, err
	}

	logger := a.config.Logger.WithFields(logrus.Fields{
		"convention": a.config.Convention,
		"method":     req.Method,
		"rule":       req.Path,
		"request_id": inv.Context.RequestID,
	})
	logger.Debug("Dispatching invocation")

	resp, err := a.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.WithField("status_code", resp.StatusCode).Debug("Invocation dispatched")

	if a.config.Convention != ConventionGateway {
		return resp.Text(), nil
	}

	if a.config.Envelope {
		envelope, err := EnvelopeFromResponse(resp)
		if err != nil {
			return nil, err
		}
		return envelope.Encode()
	}

	var decoded interface{}
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// Dispatch sends req through a client scoped to this call
func (a *Adapter) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	var resp *Response
	err := WithClient(ctx, a.handler, func(client *Client) error {
		client.SetMaxRedirects(a.config.MaxRedirects)

		var err error
		resp, err = client.Do(req.Method, req.Path, RequestOptions{
			FollowRedirects: true,
			Query:           req.Query,
			Body:            req.Body,
			ContentType:     req.ContentType,
			Header:          req.Header,
		})
		return err
	})
	return resp, err
}

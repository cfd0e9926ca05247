// File: internal/plugin/payload/payload.go

// Package payload builds exploitation payloads for detectors. A generated
// payload carries its own execution validator: either an in-band regular
// expression over response data, or an out-of-band check against the
// callback server.
package payload

import (
	"context"
	"fmt"
	"regexp"
)

// Validator confirms whether a payload actually executed on the target.
type Validator interface {
	// IsExecuted checks for payload execution. data is optional in-band
	// response data; out-of-band validators ignore it.
	IsExecuted(ctx context.Context, data []byte) (bool, error)
}

// Payload is one generated, ready-to-send payload bound to its secret and
// validator.
type Payload struct {
	value              string
	validator          Validator
	usesCallbackServer bool
	config             Config
}

// String returns the payload text to send to the target.
func (p *Payload) String() string {
	return p.value
}

// UsesCallbackServer reports whether execution is confirmed out-of-band.
func (p *Payload) UsesCallbackServer() bool {
	return p.usesCallbackServer
}

// Config returns the request this payload was generated for.
func (p *Payload) Config() Config {
	return p.config
}

// CheckIfExecuted runs the payload's validator. For in-band payloads data is
// the response body to match; for callback payloads it is ignored and the
// callback server is polled instead.
func (p *Payload) CheckIfExecuted(ctx context.Context, data []byte) (bool, error) {
	return p.validator.IsExecuted(ctx, data)
}

// regexValidator confirms execution by matching response data.
type regexValidator struct {
	re *regexp.Regexp
}

func newRegexValidator(pattern string) (*regexValidator, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling validation regex: %w", err)
	}
	return &regexValidator{re: re}, nil
}

func (v *regexValidator) IsExecuted(_ context.Context, data []byte) (bool, error) {
	if data == nil {
		return false, fmt.Errorf("regex validation requires response data")
	}
	return v.re.Match(data), nil
}

// oobValidator confirms execution by polling the callback server for
// interactions recorded under the payload secret.
type oobValidator struct {
	client CallbackClient
	secret string
}

func (v *oobValidator) IsExecuted(ctx context.Context, _ []byte) (bool, error) {
	return v.client.HasOOBLog(ctx, v.secret), nil
}

// Copyright (c) 2026 The perseverance Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package perseverance

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jartysiewicz/perseverance/backoff"
	"go.uber.org/zap"
)

// Policy defines how retriable failures within its scope are retried.
// It contains the backoff strategy, the selector deciding which
// failures it is willing to handle, and the per-loop backoff state.
type Policy struct {
	opts policyOptions

	mu       sync.Mutex
	backoffs map[Token]backoff.Backoff
}

// NewPolicy creates a new retry Policy that can be established as a
// scope with WithPolicy or WithRetry.
func NewPolicy(opts ...PolicyOption) *Policy {
	policyOpts := defaultPolicyOpts
	for _, opt := range opts {
		opt.apply(&policyOpts)
	}
	return &Policy{opts: policyOpts}
}

var defaultStrategy = mustProgressive()

func mustProgressive() backoff.Strategy {
	strategy, err := backoff.NewProgressive()
	if err != nil {
		panic(err)
	}
	return strategy
}

var defaultPolicyOpts = policyOptions{
	strategy: defaultStrategy,
	selector: nil,
	logFunc:  defaultLogFunc,
	logger:   zap.NewNop(),
}

func defaultLogFunc(err error, delay time.Duration) {
	fmt.Fprintf(os.Stdout, "%v, retrying in %.1f seconds...\n", err, delay.Seconds())
}

type policyOptions struct {
	// strategy is the backoff strategy that supplies the delay before
	// every retry handled by this policy.
	strategy backoff.Strategy

	// selector decides whether this policy is willing to handle a
	// wrapped failure. nil matches unconditionally.
	selector func(error) bool

	// logFunc is invoked once per retry, before the delay.
	logFunc func(err error, delay time.Duration)

	// logger additionally records each retry at debug level.
	logger *zap.Logger
}

// PolicyOption customizes the behavior of a retry policy.
type PolicyOption interface {
	apply(*policyOptions)
}

type policyOptionFunc func(*policyOptions)

func (f policyOptionFunc) apply(opts *policyOptions) { f(opts) }

// BackoffStrategy sets the backoff strategy that supplies the delay
// before each retry handled by this policy.
//
// Defaults to a progressive backoff with defaults.
func BackoffStrategy(strategy backoff.Strategy) PolicyOption {
	return policyOptionFunc(func(opts *policyOptions) {
		if strategy != nil {
			opts.strategy = strategy
		}
	})
}

// Select restricts the policy to wrapped failures the predicate
// accepts. A policy without a selector handles every wrapped failure
// that reaches it.
func Select(predicate func(error) bool) PolicyOption {
	return policyOptionFunc(func(opts *policyOptions) {
		opts.selector = predicate
	})
}

// SelectTag restricts the policy to failures raised by Retriable
// blocks carrying the given tag. It only matches wrappers that keep
// *Failure in the error chain, so a custom wrapper that discards it
// will not be selected by tag.
func SelectTag(tag string) PolicyOption {
	return Select(tagPredicate(tag))
}

func tagPredicate(tag string) func(error) bool {
	return func(err error) bool {
		var f *Failure
		return errors.As(err, &f) && f.Tag == tag
	}
}

// LogFunc sets the callback invoked once per retry, before the delay.
//
// The default prints "<failure>, retrying in <seconds> seconds..." to
// stdout with the delay in seconds to one decimal.
func LogFunc(fn func(err error, delay time.Duration)) PolicyOption {
	return policyOptionFunc(func(opts *policyOptions) {
		if fn != nil {
			opts.logFunc = fn
		}
	})
}

// Logger sets a zap Logger that will record retry decisions at debug
// level in addition to the LogFunc callback.
func Logger(logger *zap.Logger) PolicyOption {
	return policyOptionFunc(func(opts *policyOptions) {
		if logger != nil {
			opts.logger = logger
		}
	})
}

// matches reports whether the policy is willing to handle the wrapped
// failure.
func (p *Policy) matches(wrapped error) bool {
	if p.opts.selector == nil {
		return true
	}
	return p.opts.selector(wrapped)
}

// backoffFor returns the backoff instance for the given loop token,
// creating it on first use. Every attempt of one Retriable loop sees
// the same instance, so strategies with internal state keep counting
// across retries.
func (p *Policy) backoffFor(tok Token) backoff.Backoff {
	p.mu.Lock()
	defer p.mu.Unlock()
	if boff, ok := p.backoffs[tok]; ok {
		return boff
	}
	if p.backoffs == nil {
		p.backoffs = make(map[Token]backoff.Backoff)
	}
	boff := p.opts.strategy.Backoff()
	p.backoffs[tok] = boff
	return boff
}

// forget drops the backoff state for a loop that has exited.
func (p *Policy) forget(tok Token) {
	p.mu.Lock()
	delete(p.backoffs, tok)
	p.mu.Unlock()
}

// log announces a retry through the LogFunc callback and the zap
// logger.
func (p *Policy) log(wrapped error, delay time.Duration, attempt uint) {
	p.opts.logFunc(wrapped, delay)
	if ce := p.opts.logger.Check(zap.DebugLevel, "retrying"); ce != nil {
		ce.Write(
			zap.Error(wrapped),
			zap.Duration("delay", delay),
			zap.Uint("attempt", attempt),
		)
	}
}

// derive returns a policy sharing this policy's configuration but
// owning fresh backoff state, with the given predicate required in
// addition to any configured selector. Used when a provider
// establishes its registered policies as scopes.
func (p *Policy) derive(predicate func(error) bool) *Policy {
	opts := p.opts
	if predicate != nil {
		if base := opts.selector; base != nil {
			opts.selector = func(err error) bool {
				return predicate(err) && base(err)
			}
		} else {
			opts.selector = predicate
		}
	}
	return &Policy{opts: opts}
}

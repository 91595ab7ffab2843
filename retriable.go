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
	"context"
	"time"

	"github.com/uber-go/tally"
)

// retriableOptions enumerates the options for a Retriable block.
type retriableOptions struct {
	// catch is the set of failure kinds the block reacts to. Kinds
	// outside the set propagate immediately, unmodified.
	catch map[Kind]struct{}

	// tag is the label attached to the default wrapped failure.
	tag string

	// wrapper replaces the default *Failure wrapper entirely.
	wrapper Wrapper

	// meter records retry metrics to tally.
	meter tally.Scope
}

var defaultCatch = map[Kind]struct{}{KindIO: {}}

var defaultRetriableOpts = retriableOptions{
	catch: defaultCatch,
	meter: tally.NoopScope,
}

// RetriableOption customizes the behavior of a Retriable block.
type RetriableOption interface {
	apply(*retriableOptions)
}

type retriableOptionFunc func(*retriableOptions)

func (f retriableOptionFunc) apply(opts *retriableOptions) { f(opts) }

// Catch replaces the set of failure kinds the block reacts to.
//
// Defaults to KindIO alone.
func Catch(kinds ...Kind) RetriableOption {
	return retriableOptionFunc(func(opts *retriableOptions) {
		catch := make(map[Kind]struct{}, len(kinds))
		for _, kind := range kinds {
			catch[kind] = struct{}{}
		}
		opts.catch = catch
	})
}

// Tag labels the failures of this block so that scopes established
// with SelectTag can route them to a dedicated policy. Ignored when a
// custom wrapper is set.
func Tag(tag string) RetriableOption {
	return retriableOptionFunc(func(opts *retriableOptions) {
		opts.tag = tag
	})
}

// ExWrapper replaces the default *Failure wrapper. The wrapper's
// output is what selectors and log callbacks observe, and what the
// block returns when a policy's strategy gives up. Overrides Tag.
func ExWrapper(wrapper Wrapper) RetriableOption {
	return retriableOptionFunc(func(opts *retriableOptions) {
		opts.wrapper = wrapper
	})
}

// Meter sets a tally scope that will record the block's retry metrics:
//
//   - "retry_calls": one per attempt of the body
//   - "retries": one per retry performed after a failed attempt
//   - "retry_successes": one when the body finally returns nil
//   - "retry_failures": one when the block gives up, tagged
//     error=unmatched|unhandled|exhausted with the failure taxonomy
func Meter(scope tally.Scope) RetriableOption {
	return retriableOptionFunc(func(opts *retriableOptions) {
		if scope != nil {
			opts.meter = scope
		}
	})
}

func (o retriableOptions) wrap(err error, tok Token) error {
	if o.wrapper != nil {
		return o.wrapper(err, tok)
	}
	return &Failure{Err: err, Tag: o.tag, tok: tok}
}

// decision classifies how a retriable loop ended.
type decision int

const (
	// decideSuccess: the body returned nil.
	decideSuccess decision = iota
	// decideUnmatched: the body failed with a kind outside the catch
	// set; the original error propagates untouched.
	decideUnmatched
	// decideUnhandled: no active policy accepted the wrapped failure;
	// the original error propagates, the wrapper stays invisible.
	decideUnhandled
	// decideExhausted: a policy matched but its strategy gave up; the
	// wrapped failure propagates.
	decideExhausted
)

// Retriable marks body as retriable and runs it. The body itself never
// decides retry policy: on a failure whose kind is in the catch set,
// the block wraps the failure and offers it to the retry scopes active
// on ctx, innermost first. The first policy whose selector accepts
// supplies a delay; the block logs, sleeps, and runs the body again.
//
// If no scope accepts, the original error is returned as if no retry
// machinery existed. If the accepting policy's strategy returns
// backoff.Stop, the wrapped failure is returned instead, signaling a
// deliberate, policy-driven give-up. Failures of kinds outside the
// catch set return immediately, unmodified.
//
// A delay never starts if the context deadline would expire before it
// ends; the block gives up with the wrapped failure instead. Retried
// bodies run more than once, so they must be idempotent or otherwise
// safe to repeat.
func Retriable(ctx context.Context, body func(context.Context) error, opts ...RetriableOption) error {
	options := defaultRetriableOpts
	for _, opt := range opts {
		opt.apply(&options)
	}
	obs := newObserver(options.meter)

	tok := nextToken()
	stack := scopes(ctx)
	defer forgetAll(stack, tok)

	for attempt := uint(1); ; attempt++ {
		obs.call()
		err := body(ctx)
		if err == nil {
			obs.done(decideSuccess)
			return nil
		}

		if _, ok := options.catch[KindOf(err)]; !ok {
			obs.done(decideUnmatched)
			return err
		}

		wrapped := options.wrap(err, tok)
		policy := match(stack, wrapped)
		if policy == nil {
			obs.done(decideUnhandled)
			return err
		}

		delay := policy.backoffFor(tok).Duration(attempt)
		if delay < 0 {
			obs.done(decideExhausted)
			return wrapped
		}
		if _, ctxWillTimeout := timeLeft(ctx, delay); ctxWillTimeout {
			obs.done(decideExhausted)
			return wrapped
		}

		policy.log(wrapped, delay, attempt)
		obs.retry()
		time.Sleep(delay)
	}
}

// timeLeft returns the amount of time left in the context or the "max"
// duration passed in. It also returns a boolean indicating whether the
// context will timeout within that window.
func timeLeft(ctx context.Context, max time.Duration) (timeleft time.Duration, ctxWillTimeout bool) {
	ctxDeadline, ok := ctx.Deadline()
	if !ok {
		return max, false
	}
	now := time.Now()
	if ctxDeadline.After(now.Add(max)) {
		return max, false
	}
	return ctxDeadline.Sub(now), true
}

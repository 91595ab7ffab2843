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

package backoff

import (
	"errors"
	"time"

	"go.uber.org/multierr"
)

// constantOptions are the configuration options for a constant backoff.
type constantOptions struct {
	delay       time.Duration
	maxAttempts uint
}

func (c constantOptions) validate() (err error) {
	if c.delay < 0 {
		err = multierr.Append(err, errors.New("invalid delay for constant backoff, need greater than or equal to zero"))
	}
	return err
}

// Constant is a backoff strategy that waits the same delay before every
// attempt, optionally capped to a maximum number of attempts.
// It is a stateless implementation and is safe to use concurrently.
type Constant struct {
	opts constantOptions
}

// NewConstant returns a new constant backoff strategy.
func NewConstant(delay time.Duration, opts ...ConstantOption) (*Constant, error) {
	options := constantOptions{delay: delay}
	for _, opt := range opts {
		opt.applyConstant(&options)
	}

	if err := options.validate(); err != nil {
		return nil, err
	}

	return &Constant{
		opts: options,
	}, nil
}

// Backoff returns a backoff instance for a single retry loop.
func (c *Constant) Backoff() Backoff {
	return constantBackoff{opts: c.opts}
}

type constantBackoff struct {
	opts constantOptions
}

// Duration takes an attempt number and returns the duration the caller
// should wait, or Stop once the attempt limit is exceeded.
func (b constantBackoff) Duration(attempt uint) time.Duration {
	if b.opts.maxAttempts > 0 && attempt > b.opts.maxAttempts {
		return Stop
	}
	return b.opts.delay
}

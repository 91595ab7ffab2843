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

// progressiveOptions are the configuration options for a progressive
// backoff.
type progressiveOptions struct {
	first        time.Duration
	stableLength uint
	multiplier   int64
	maxDelay     time.Duration
	maxAttempts  uint
}

func (p progressiveOptions) validate() (err error) {
	if p.first <= 0 {
		err = multierr.Append(err, errors.New("invalid first delay for progressive backoff, need greater than zero"))
	}
	if p.multiplier < 1 {
		err = multierr.Append(err, errors.New("invalid multiplier for progressive backoff, need greater than or equal to one"))
	}
	if p.maxDelay < p.first {
		err = multierr.Append(err, errors.New("progressive max delay must be greater than or equal to the first delay"))
	}
	return err
}

var defaultProgressiveOpts = progressiveOptions{
	first:        500 * time.Millisecond,
	stableLength: 3,
	multiplier:   2,
	maxDelay:     time.Minute,
}

type progressiveOptionFunc func(*progressiveOptions)

func (f progressiveOptionFunc) applyProgressive(opts *progressiveOptions) { f(opts) }

// FirstDelay sets the delay used for every attempt within the stable
// length, and the base of the growth beyond it.
func FirstDelay(t time.Duration) ProgressiveOption {
	return progressiveOptionFunc(func(options *progressiveOptions) {
		options.first = t
	})
}

// StableLength sets the number of leading attempts that wait exactly
// the first delay before growth kicks in.
func StableLength(n uint) ProgressiveOption {
	return progressiveOptionFunc(func(options *progressiveOptions) {
		options.stableLength = n
	})
}

// Multiplier sets the integer growth factor applied per attempt beyond
// the stable length.
func Multiplier(m int64) ProgressiveOption {
	return progressiveOptionFunc(func(options *progressiveOptions) {
		options.multiplier = m
	})
}

// MaxDelay sets the absolute max delay that will ever be returned.
func MaxDelay(t time.Duration) ProgressiveOption {
	return progressiveOptionFunc(func(options *progressiveOptions) {
		options.maxDelay = t
	})
}

// Progressive is a backoff strategy that waits a fixed delay for the
// first few attempts and then grows the delay geometrically up to a
// cap. The growth is exact integer arithmetic, there is no jitter:
// with first=1s, stable length 4, multiplier 2 and max 10s the delays
// for attempts 1..8 are 1s 1s 1s 1s 2s 4s 8s 10s.
// It is a stateless implementation and is safe to use concurrently.
type Progressive struct {
	opts progressiveOptions
}

// NewProgressive returns a new progressive backoff strategy.
// Defaults: first delay 500ms, stable length 3, multiplier 2, max
// delay one minute, no attempt limit.
func NewProgressive(opts ...ProgressiveOption) (*Progressive, error) {
	options := defaultProgressiveOpts
	for _, opt := range opts {
		opt.applyProgressive(&options)
	}

	if err := options.validate(); err != nil {
		return nil, err
	}

	return &Progressive{
		opts: options,
	}, nil
}

// Backoff returns a backoff instance for a single retry loop.
func (p *Progressive) Backoff() Backoff {
	return progressiveBackoff{opts: p.opts}
}

type progressiveBackoff struct {
	opts progressiveOptions
}

// Duration takes an attempt number and returns the duration the caller
// should wait, or Stop once the attempt limit is exceeded.
func (b progressiveBackoff) Duration(attempt uint) time.Duration {
	o := b.opts
	if o.maxAttempts > 0 && attempt > o.maxAttempts {
		return Stop
	}
	if attempt <= o.stableLength {
		return o.first
	}

	delay := o.first
	for i := o.stableLength; i < attempt; i++ {
		delay *= time.Duration(o.multiplier)
		// an overflowed product goes non-positive
		if delay >= o.maxDelay || delay <= 0 {
			return o.maxDelay
		}
	}
	return delay
}

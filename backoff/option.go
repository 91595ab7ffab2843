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

// ConstantOption defines options that can be applied to a constant
// backoff strategy.
type ConstantOption interface {
	applyConstant(*constantOptions)
}

// ProgressiveOption defines options that can be applied to a
// progressive backoff strategy.
type ProgressiveOption interface {
	applyProgressive(*progressiveOptions)
}

// Option is an option accepted by every built-in strategy.
type Option interface {
	ConstantOption
	ProgressiveOption
}

type maxAttemptsOption uint

func (m maxAttemptsOption) applyConstant(opts *constantOptions) {
	opts.maxAttempts = uint(m)
}

func (m maxAttemptsOption) applyProgressive(opts *progressiveOptions) {
	opts.maxAttempts = uint(m)
}

// MaxAttempts caps the total number of attempts: Duration returns Stop
// for any attempt beyond n. Zero, the default, means no limit.
func MaxAttempts(n uint) Option {
	return maxAttemptsOption(n)
}

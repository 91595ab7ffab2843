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

	"go.uber.org/atomic"
)

// Token identifies one active Retriable loop. A fresh token is minted
// when a Retriable block is entered, not per attempt, so a policy can
// hold on to one backoff instance for the whole life of that loop and
// keep its attempt accounting intact across retries.
type Token uint64

var lastToken atomic.Uint64

func nextToken() Token {
	return Token(lastToken.Inc())
}

// Failure is the wrapped form of a caught error, as produced by the
// default wrapper of Retriable. It is what policy selectors and log
// callbacks see, and what Retriable returns when a matched policy's
// strategy gives up.
type Failure struct {
	// Err is the original error raised by the retriable body.
	Err error

	// Tag is the label given to the Retriable block, if any.
	Tag string

	tok Token
}

var _ error = (*Failure)(nil)

func (f *Failure) Error() string {
	if f.Tag != "" {
		return fmt.Sprintf("retriable failure (tag %q): %v", f.Tag, f.Err)
	}
	return fmt.Sprintf("retriable failure: %v", f.Err)
}

// Unwrap returns the original error.
func (f *Failure) Unwrap() error { return f.Err }

// Token returns the identity of the Retriable loop that produced this
// failure.
func (f *Failure) Token() Token { return f.tok }

// AsFailure returns the *Failure in err's chain, if any.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	ok := errors.As(err, &f)
	return f, ok
}

// Wrapper produces the failure handed to policy selectors and log
// callbacks in place of the default *Failure. The returned error may
// be any shape; backoff state stays keyed by the token minted at loop
// entry no matter what the wrapper returns.
type Wrapper func(err error, tok Token) error

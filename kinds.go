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
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
)

// Kind classifies a failure for catch-set matching in Retriable.
// Retriable only ever reacts to failures whose kind is in its catch
// set; everything else propagates untouched.
type Kind int

const (
	// KindUnknown is the classification of errors that carry no
	// explicit kind and match no built-in classification rule.
	KindUnknown Kind = iota

	// KindIO means a local or remote input/output operation failed.
	// This is the default catch set of Retriable.
	KindIO

	// KindTimeout means an operation gave up waiting. Deadline errors
	// and timing-out net errors classify as this kind.
	KindTimeout

	// KindUnavailable means a collaborator is currently unavailable.
	// This is most likely a transient condition, which can be
	// corrected by retrying with a backoff.
	KindUnavailable

	// KindInternal means an invariant expected by the failing code was
	// broken. Reserved for serious errors.
	KindInternal
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindIO:
		return "io"
	case KindTimeout:
		return "timeout"
	case KindUnavailable:
		return "unavailable"
	case KindInternal:
		return "internal"
	default:
		return strconv.Itoa(int(k))
	}
}

type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }

func (e *kindError) Unwrap() error { return e.err }

// WrapKind tags err with an explicit kind. Wrapping nil returns nil.
// The tag wins over any built-in classification rule in KindOf.
func WrapKind(err error, kind Kind) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// IOErrorf returns a new error classified as KindIO.
func IOErrorf(format string, args ...interface{}) error {
	return WrapKind(fmt.Errorf(format, args...), KindIO)
}

// TimeoutErrorf returns a new error classified as KindTimeout.
func TimeoutErrorf(format string, args ...interface{}) error {
	return WrapKind(fmt.Errorf(format, args...), KindTimeout)
}

// UnavailableErrorf returns a new error classified as KindUnavailable.
func UnavailableErrorf(format string, args ...interface{}) error {
	return WrapKind(fmt.Errorf(format, args...), KindUnavailable)
}

// InternalErrorf returns a new error classified as KindInternal.
func InternalErrorf(format string, args ...interface{}) error {
	return WrapKind(fmt.Errorf(format, args...), KindInternal)
}

// KindOf returns the classification of err.
//
// If the error:
//   - is nil, returns KindUnknown
//   - carries an explicit kind (WrapKind or the *Errorf helpers),
//     returns that kind
//   - is a standard library io, os, or net error, returns KindIO or
//     KindTimeout as appropriate
//
// Otherwise, returns KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}

	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return KindTimeout
		}
		return KindIO
	}

	var perr *os.PathError
	var lerr *os.LinkError
	var serr *os.SyscallError
	if errors.As(err, &perr) || errors.As(err, &lerr) || errors.As(err, &serr) {
		return KindIO
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) {
		return KindIO
	}

	return KindUnknown
}

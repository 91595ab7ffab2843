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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureError(t *testing.T) {
	boom := errors.New("boom")
	assert.EqualError(t, &Failure{Err: boom}, "retriable failure: boom")
	assert.EqualError(t, &Failure{Err: boom, Tag: "download"}, `retriable failure (tag "download"): boom`)
}

func TestFailureUnwrap(t *testing.T) {
	boom := errors.New("boom")
	f := &Failure{Err: boom, tok: nextToken()}
	assert.True(t, errors.Is(f, boom))
	assert.Equal(t, boom, errors.Unwrap(f))
}

func TestAsFailure(t *testing.T) {
	f := &Failure{Err: errors.New("boom"), Tag: "t", tok: nextToken()}

	got, ok := AsFailure(fmt.Errorf("outer: %w", f))
	require.True(t, ok)
	assert.Equal(t, f, got)
	assert.Equal(t, f.Token(), got.Token())

	_, ok = AsFailure(errors.New("boom"))
	assert.False(t, ok)
}

func TestTokensAreUnique(t *testing.T) {
	seen := make(map[Token]struct{})
	for i := 0; i < 1000; i++ {
		tok := nextToken()
		_, dup := seen[tok]
		require.False(t, dup, "token %d minted twice", tok)
		seen[tok] = struct{}{}
	}
}

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

import "github.com/uber-go/tally"

// observer records the outcomes of one Retriable block to tally.
type observer struct {
	callCounter    tally.Counter
	retryCounter   tally.Counter
	successCounter tally.Counter

	unmatchedErrorCounter tally.Counter
	unhandledErrorCounter tally.Counter
	exhaustedErrorCounter tally.Counter
}

func newObserver(scope tally.Scope) *observer {
	unmatchedErrScope := scope.Tagged(map[string]string{"error": "unmatched"})
	unhandledErrScope := scope.Tagged(map[string]string{"error": "unhandled"})
	exhaustedErrScope := scope.Tagged(map[string]string{"error": "exhausted"})
	return &observer{
		callCounter:           scope.Counter("retry_calls"),
		retryCounter:          scope.Counter("retries"),
		successCounter:        scope.Counter("retry_successes"),
		unmatchedErrorCounter: unmatchedErrScope.Counter("retry_failures"),
		unhandledErrorCounter: unhandledErrScope.Counter("retry_failures"),
		exhaustedErrorCounter: exhaustedErrScope.Counter("retry_failures"),
	}
}

func (o *observer) call() {
	o.callCounter.Inc(1)
}

func (o *observer) retry() {
	o.retryCounter.Inc(1)
}

func (o *observer) done(d decision) {
	switch d {
	case decideSuccess:
		o.successCounter.Inc(1)
	case decideUnmatched:
		o.unmatchedErrorCounter.Inc(1)
	case decideUnhandled:
		o.unhandledErrorCounter.Inc(1)
	case decideExhausted:
		o.exhaustedErrorCounter.Inc(1)
	}
}

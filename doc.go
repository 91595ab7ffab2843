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

// Package perseverance decouples marking an operation as retriable
// from deciding its retry policy.
//
// Low-level code wraps an operation in Retriable, stating only that
// this kind of failure is survivable. High-level code, which alone
// knows the cost and urgency tradeoffs, establishes retry scopes with
// WithRetry or WithPolicy that decide whether, how often, and with
// what backoff a retriable failure is actually retried. The two meet
// over a stack of active scopes carried by the context: a caught
// failure is offered to the scopes innermost first, and the first
// policy whose selector accepts supplies the delay.
//
// Usage
//
// A utility function marks its flaky I/O as retriable:
//
//	func fetch(ctx context.Context, name string) ([]byte, error) {
//		return perseverance.RetriableResult(ctx, func(ctx context.Context) ([]byte, error) {
//			return download(ctx, name)
//		}, perseverance.Tag("download"))
//	}
//
// An application decides the policy for everything underneath it:
//
//	err := perseverance.WithRetry(ctx, func(ctx context.Context) error {
//		data, err := fetch(ctx, "report.csv")
//		// ...
//		return err
//	}, perseverance.SelectTag("download"))
//
// Without an enclosing scope the failure of fetch surfaces unchanged,
// as if no retry machinery existed.
//
// This is a dumb retrier: it performs no I/O of its own, knows nothing
// about circuit breaking or distributed coordination, and makes no
// exactly-once promise. Bodies it retries must be idempotent or
// otherwise safe to repeat.
//
// Configuration
//
// Policies can also be built from configuration, typically decoded
// from YAML into a map[string]interface{} first:
//
//	var data map[string]interface{}
//	err := yaml.Unmarshal(rawConfig, &data)
//	provider, err := perseverance.NewProviderFromConfig(data)
//	ctx = perseverance.WithProvider(ctx, provider)
//
// The configuration accepts the top-level attributes policies,
// default, and overrides:
//
//	policies:
//	  aggressive:
//	    backoff:
//	      constant:
//	        delay: 100ms
//	        maxAttempts: 5
//	  patient:
//	    backoff:
//	      progressive:
//	        first: 1s
//	        stableLength: 4
//	        multiplier: 2
//	        maxDelay: 1m
//	default: patient
//	overrides:
//	  - tag: download
//	    with: aggressive
//
// This establishes the patient policy for every retriable failure and
// routes blocks tagged "download" to the aggressive one.
package perseverance

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

import "context"

type scopeKey struct{}

// scopeNode is one entry of the retry scope stack. The stack is a
// parent-linked list carried by the context: walking from the node
// held by a context to the root visits the currently active scopes
// innermost first. A caller that keeps its pre-entry context keeps its
// pre-entry stack, so exiting a scope on any path, including a panic,
// restores the stack by construction.
type scopeNode struct {
	policy *Policy
	parent *scopeNode
}

// WithPolicy returns a context with the policy established as the
// innermost retry scope. Retriable blocks run with the returned
// context will offer their caught failures to this policy before any
// policy established further out.
func WithPolicy(ctx context.Context, policy *Policy) context.Context {
	if policy == nil {
		return ctx
	}
	parent, _ := ctx.Value(scopeKey{}).(*scopeNode)
	return context.WithValue(ctx, scopeKey{}, &scopeNode{policy: policy, parent: parent})
}

// WithRetry establishes a retry scope around body and returns body's
// result unchanged. The policy built from opts exists for exactly the
// dynamic extent of body: code called (transitively) with the context
// body receives sees it, the caller's context never does.
func WithRetry(ctx context.Context, body func(context.Context) error, opts ...PolicyOption) error {
	return body(WithPolicy(ctx, NewPolicy(opts...)))
}

// scopes returns the innermost scope node of the context, or nil.
func scopes(ctx context.Context) *scopeNode {
	node, _ := ctx.Value(scopeKey{}).(*scopeNode)
	return node
}

// match walks the scope stack innermost first and returns the first
// policy willing to handle the wrapped failure.
func match(node *scopeNode, wrapped error) *Policy {
	for n := node; n != nil; n = n.parent {
		if n.policy.matches(wrapped) {
			return n.policy
		}
	}
	return nil
}

// forgetAll drops the backoff state of an exited loop from every
// policy on the stack.
func forgetAll(node *scopeNode, tok Token) {
	for n := node; n != nil; n = n.parent {
		n.policy.forget(tok)
	}
}

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

// TagPolicyProvider keeps a registry of two types of Policies with
// ordered precedence:
//
//  1. Policies that should be applied to Retriable blocks carrying a
//     specific tag.
//  2. A default policy that applies when no tag matches.
type TagPolicyProvider struct {
	tagToPolicy   map[string]*Policy
	defaultPolicy *Policy
}

// NewTagPolicyProvider creates a new TagPolicyProvider.
func NewTagPolicyProvider() *TagPolicyProvider {
	return &TagPolicyProvider{
		tagToPolicy:   make(map[string]*Policy),
		defaultPolicy: nil,
	}
}

// RegisterTag specifies the retry policy for failures raised by
// Retriable blocks carrying the given tag.
func (tpp *TagPolicyProvider) RegisterTag(tag string, pol *Policy) {
	tpp.tagToPolicy[tag] = pol
}

// SetDefault specifies the default retry Policy that will be used if
// no tag policy matches.
func (tpp *TagPolicyProvider) SetDefault(pol *Policy) {
	tpp.defaultPolicy = pol
}

// Policy returns the policy registered for the tag, or the default.
func (tpp *TagPolicyProvider) Policy(tag string) *Policy {
	if pol, ok := tpp.tagToPolicy[tag]; ok {
		return pol
	}
	return tpp.defaultPolicy
}

// WithProvider establishes one retry scope per registered policy: the
// default policy outermost, then one tag-selected scope per registered
// tag. Each established scope owns fresh backoff state, so a provider
// may safely back any number of concurrent call chains. Tag scopes
// carry disjoint selectors, so their relative order does not matter.
func WithProvider(ctx context.Context, provider *TagPolicyProvider) context.Context {
	if provider == nil {
		return ctx
	}
	if provider.defaultPolicy != nil {
		ctx = WithPolicy(ctx, provider.defaultPolicy.derive(nil))
	}
	for tag, pol := range provider.tagToPolicy {
		ctx = WithPolicy(ctx, pol.derive(tagPredicate(tag)))
	}
	return ctx
}

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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func decodeYAML(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(raw), &data))
	return data
}

func TestNewProviderFromConfig(t *testing.T) {
	type testStruct struct {
		msg string

		giveYAML string

		wantTags    []string
		wantDefault bool
		wantErrors  []string
	}
	tests := []testStruct{
		{
			msg: "full config",
			giveYAML: `
policies:
  aggressive:
    backoff:
      constant:
        delay: 100ms
        maxAttempts: 5
  patient:
    backoff:
      progressive:
        first: 1s
        stableLength: 4
        multiplier: 2
        maxDelay: 10s
default: patient
overrides:
  - tag: download
    with: aggressive
`,
			wantTags:    []string{"download"},
			wantDefault: true,
		},
		{
			msg: "policies without default",
			giveYAML: `
policies:
  aggressive:
    backoff:
      constant:
        delay: 100ms
overrides:
  - tag: download
    with: aggressive
`,
			wantTags: []string{"download"},
		},
		{
			msg: "invalid default reference",
			giveYAML: `
policies:
  aggressive:
    backoff:
      constant:
        delay: 100ms
default: missing
`,
			wantErrors: []string{
				`invalid default retry policy: "missing"`,
			},
		},
		{
			msg: "invalid override reference",
			giveYAML: `
policies:
  aggressive:
    backoff:
      constant:
        delay: 100ms
overrides:
  - tag: download
    with: missing
`,
			wantErrors: []string{
				`invalid retry policy: "missing"`,
			},
		},
		{
			msg: "override without tag",
			giveYAML: `
policies:
  aggressive:
    backoff:
      constant:
        delay: 100ms
overrides:
  - with: aggressive
`,
			wantErrors: []string{
				`did not specify a tag for retry policy override: "aggressive"`,
			},
		},
		{
			msg: "both strategies in one backoff",
			giveYAML: `
policies:
  confused:
    backoff:
      constant:
        delay: 100ms
      progressive:
        first: 1s
`,
			wantErrors: []string{
				"cannot configure both constant and progressive backoff",
			},
		},
		{
			msg: "invalid strategy parameters",
			giveYAML: `
policies:
  broken:
    backoff:
      progressive:
        first: 1s
        maxDelay: 1ms
`,
			wantErrors: []string{
				"progressive max delay must be greater than or equal to the first delay",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			provider, err := NewProviderFromConfig(decodeYAML(t, tt.giveYAML))
			if len(tt.wantErrors) > 0 {
				require.Error(t, err)
				for _, wantError := range tt.wantErrors {
					assert.Contains(t, err.Error(), wantError)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, provider)

			for _, tag := range tt.wantTags {
				assert.NotNil(t, provider.Policy(tag), "expected a policy for tag %q", tag)
			}
			if tt.wantDefault {
				assert.NotNil(t, provider.Policy("no-such-tag"))
			} else {
				assert.Nil(t, provider.Policy("no-such-tag"))
			}
		})
	}
}

func TestNewPolicyFromConfig(t *testing.T) {
	data := decodeYAML(t, `
backoff:
  progressive:
    first: 1s
    stableLength: 4
    multiplier: 2
    maxDelay: 10s
`)

	log := &retryLog{}
	pol, err := NewPolicyFromConfig(data, LogFunc(log.fn))
	require.NoError(t, err)

	boff := pol.backoffFor(nextToken())
	want := []time.Duration{
		time.Second, time.Second, time.Second, time.Second,
		2 * time.Second, 4 * time.Second, 8 * time.Second,
		10 * time.Second, 10 * time.Second, 10 * time.Second,
	}
	for i, wantDelay := range want {
		assert.Equal(t, wantDelay, boff.Duration(uint(i+1)), "attempt %d", i+1)
	}
}

func TestConfiguredProviderRetries(t *testing.T) {
	data := decodeYAML(t, `
policies:
  twice:
    backoff:
      constant:
        delay: 0s
        maxAttempts: 2
default: twice
`)

	provider, err := NewProviderFromConfig(data)
	require.NoError(t, err)
	ctx := WithProvider(context.Background(), provider)

	body, runs := failNTimes(10, IOErrorf("read failed"))
	retryErr := Retriable(ctx, body)

	_, wrapped := AsFailure(retryErr)
	assert.True(t, wrapped)
	assert.Equal(t, 3, *runs, "two retries after the initial attempt")
}

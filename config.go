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
	"time"

	"github.com/jartysiewicz/perseverance/backoff"
	"github.com/uber-go/mapdecode"
	"go.uber.org/multierr"
)

const _tagName = "config"

func decodeInto(dst interface{}, src interface{}) error {
	return mapdecode.Decode(dst, src, mapdecode.TagName(_tagName))
}

// ConstantConfig defines how to construct a constant backoff strategy.
type ConstantConfig struct {
	// Delay is the delay waited before every retry.
	Delay time.Duration `config:"delay"`

	// MaxAttempts caps the total number of attempts. Zero means no
	// limit.
	MaxAttempts uint `config:"maxAttempts"`
}

// ProgressiveConfig defines how to construct a progressive backoff
// strategy. Zero-valued fields keep the strategy's defaults.
type ProgressiveConfig struct {
	// First is the delay used within the stable length and the base of
	// the growth beyond it.
	First time.Duration `config:"first"`

	// StableLength is the number of leading attempts that wait exactly
	// the first delay.
	StableLength uint `config:"stableLength"`

	// Multiplier is the integer growth factor per attempt beyond the
	// stable length.
	Multiplier int64 `config:"multiplier"`

	// MaxDelay is the absolute max delay ever waited.
	MaxDelay time.Duration `config:"maxDelay"`

	// MaxAttempts caps the total number of attempts. Zero means no
	// limit.
	MaxAttempts uint `config:"maxAttempts"`
}

// BackoffConfig selects and configures exactly one backoff strategy.
type BackoffConfig struct {
	Constant    *ConstantConfig    `config:"constant"`
	Progressive *ProgressiveConfig `config:"progressive"`
}

// Strategy builds the configured backoff strategy. An empty config
// yields a progressive backoff with defaults.
func (c BackoffConfig) Strategy() (backoff.Strategy, error) {
	switch {
	case c.Constant != nil && c.Progressive != nil:
		return nil, errors.New("cannot configure both constant and progressive backoff")
	case c.Constant != nil:
		var opts []backoff.ConstantOption
		if c.Constant.MaxAttempts > 0 {
			opts = append(opts, backoff.MaxAttempts(c.Constant.MaxAttempts))
		}
		return backoff.NewConstant(c.Constant.Delay, opts...)
	case c.Progressive != nil:
		var opts []backoff.ProgressiveOption
		if c.Progressive.First > 0 {
			opts = append(opts, backoff.FirstDelay(c.Progressive.First))
		}
		if c.Progressive.StableLength > 0 {
			opts = append(opts, backoff.StableLength(c.Progressive.StableLength))
		}
		if c.Progressive.Multiplier > 0 {
			opts = append(opts, backoff.Multiplier(c.Progressive.Multiplier))
		}
		if c.Progressive.MaxDelay > 0 {
			opts = append(opts, backoff.MaxDelay(c.Progressive.MaxDelay))
		}
		if c.Progressive.MaxAttempts > 0 {
			opts = append(opts, backoff.MaxAttempts(c.Progressive.MaxAttempts))
		}
		return backoff.NewProgressive(opts...)
	default:
		return backoff.NewProgressive()
	}
}

// PolicyConfig defines how to construct a retry Policy.
type PolicyConfig struct {
	// Backoff defines the backoff strategy of the policy.
	Backoff BackoffConfig `config:"backoff"`
}

func (p PolicyConfig) policy() (*Policy, error) {
	strategy, err := p.Backoff.Strategy()
	if err != nil {
		return nil, err
	}
	return NewPolicy(BackoffStrategy(strategy)), nil
}

// PolicyOverrideConfig routes failures carrying a tag to a named
// policy in the ProviderConfig.
type PolicyOverrideConfig struct {
	// Tag is the Retriable block label the override applies to.
	Tag string `config:"tag"`

	// WithPolicy specifies the policy name to use for the override. It
	// MUST reference an existing policy.
	WithPolicy string `config:"with"`
}

// ProviderConfig is a definition of how to create a TagPolicyProvider.
type ProviderConfig struct {
	// NameToPolicies is a map of names to policy configs which can be
	// referenced later.
	NameToPolicies map[string]PolicyConfig `config:"policies"`

	// Default is the name of the default policy that will be used.
	Default string `config:"default"`

	// PolicyOverrides route failures tagged by Retriable blocks to
	// specific policies.
	PolicyOverrides []PolicyOverrideConfig `config:"overrides"`
}

// NewProviderFromConfig creates a TagPolicyProvider from a decodable
// source, typically a map[string]interface{} parsed from YAML.
func NewProviderFromConfig(src interface{}) (*TagPolicyProvider, error) {
	var cfg ProviderConfig
	if err := decodeInto(&cfg, src); err != nil {
		return nil, err
	}

	nameToPolicy, err := cfg.getPolicies()
	if err != nil {
		return nil, err
	}

	return cfg.getProvider(nameToPolicy)
}

// NewPolicyFromConfig creates a single Policy from a decodable source,
// optionally extended with further options (selector, log callback).
func NewPolicyFromConfig(src interface{}, opts ...PolicyOption) (*Policy, error) {
	var cfg PolicyConfig
	if err := decodeInto(&cfg, src); err != nil {
		return nil, err
	}
	strategy, err := cfg.Backoff.Strategy()
	if err != nil {
		return nil, err
	}
	return NewPolicy(append([]PolicyOption{BackoffStrategy(strategy)}, opts...)...), nil
}

func (cfg ProviderConfig) getPolicies() (map[string]*Policy, error) {
	var errs error
	nameToPolicyMap := make(map[string]*Policy, len(cfg.NameToPolicies))
	for name, policyConfig := range cfg.NameToPolicies {
		policy, err := policyConfig.policy()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		nameToPolicyMap[name] = policy
	}
	return nameToPolicyMap, errs
}

func (cfg ProviderConfig) getProvider(nameToPolicy map[string]*Policy) (*TagPolicyProvider, error) {
	provider := NewTagPolicyProvider()

	var errs error
	if cfg.Default != "" {
		if defaultPol, ok := nameToPolicy[cfg.Default]; ok {
			provider.SetDefault(defaultPol)
		} else {
			errs = multierr.Append(errs, fmt.Errorf("invalid default retry policy: %q, possibilities are: %v", cfg.Default, policyNames(nameToPolicy)))
		}
	}

	for _, override := range cfg.PolicyOverrides {
		pol, ok := nameToPolicy[override.WithPolicy]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("invalid retry policy: %q, possibilities are: %v", override.WithPolicy, policyNames(nameToPolicy)))
			continue
		}

		if override.Tag == "" {
			errs = multierr.Append(errs, fmt.Errorf("did not specify a tag for retry policy override: %q", override.WithPolicy))
			continue
		}

		provider.RegisterTag(override.Tag, pol)
	}

	if errs != nil {
		return nil, errs
	}
	return provider, nil
}

func policyNames(nameToPolicy map[string]*Policy) []string {
	ks := make([]string, 0, len(nameToPolicy))
	for k := range nameToPolicy {
		ks = append(ks, k)
	}
	return ks
}

// Package provider validates BYOK credential formats per provider.
//
// The registry is table-driven: each provider maps to a validation
// predicate, and unknown providers fall back to a generic rule. New
// providers are added by registering a spec at construction time; the
// registry is immutable afterwards and safe for unsynchronized
// concurrent reads.
package provider

import (
	"regexp"
	"sort"
	"strings"

	"github.com/adoptai/zapi/internal/domain"
)

// Tier distinguishes the level of validation a provider receives.
type Tier string

const (
	// TierPrimary providers have full, strict key validation.
	TierPrimary Tier = "primary"
	// TierExtended providers have basic format checks only.
	TierExtended Tier = "extended"
)

// Spec is one provider's validation rule.
type Spec struct {
	Name string
	Tier Tier
	// Validate returns a human-readable reason when the key format is
	// invalid, or "" when it is acceptable.
	Validate func(key string) string
}

// Registry maps provider names to validation rules.
type Registry struct {
	specs    map[string]Spec
	fallback Spec
}

// keyCharset restricts keys to the characters real provider keys use.
var keyCharset = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// New builds a registry with the built-in rules plus any extras.
// Extras with a known name override the built-in rule.
func New(extras ...Spec) *Registry {
	r := &Registry{
		specs: make(map[string]Spec),
		fallback: Spec{
			Name: "generic",
			Tier: TierExtended,
			Validate: func(key string) string {
				if len(key) < 8 {
					return "keys must be at least 8 characters long"
				}
				return ""
			},
		},
	}
	for _, s := range builtins() {
		r.specs[s.Name] = s
	}
	for _, s := range extras {
		r.specs[strings.ToLower(s.Name)] = s
	}
	return r
}

func builtins() []Spec {
	return []Spec{
		{
			Name: "anthropic",
			Tier: TierPrimary,
			Validate: func(key string) string {
				const prefix = "sk-ant-"
				if !strings.HasPrefix(key, prefix) {
					return "keys must start with 'sk-ant-'"
				}
				if len(key) < len(prefix)+12 {
					return "keys must carry at least 12 characters after the 'sk-ant-' prefix"
				}
				return ""
			},
		},
		{
			Name: "openai",
			Tier: TierExtended,
			Validate: func(key string) string {
				if !strings.HasPrefix(key, "sk-") {
					return "keys must start with 'sk-'"
				}
				return ""
			},
		},
		{
			Name: "google",
			Tier: TierExtended,
			Validate: func(key string) string {
				if len(key) < 20 {
					return "keys must be at least 20 characters long"
				}
				return ""
			},
		},
		{
			Name: "cohere",
			Tier: TierExtended,
			Validate: func(key string) string {
				if len(key) < 20 {
					return "keys must be at least 20 characters long"
				}
				return ""
			},
		},
		{
			Name: "huggingface",
			Tier: TierExtended,
			Validate: func(key string) string {
				if !strings.HasPrefix(key, "hf_") {
					return "keys must start with 'hf_'"
				}
				return ""
			},
		},
	}
}

// Validate checks a key against the provider's rule, falling back to
// the generic rule for unregistered providers. Provider names are
// case-insensitive.
func (r *Registry) Validate(providerName, key string) error {
	name := strings.ToLower(strings.TrimSpace(providerName))
	if name == "" {
		return domain.ErrKeyFormat(providerName, "provider name cannot be empty")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrKeyFormat(name, "key cannot be empty")
	}

	spec, known := r.specs[name]
	if !known {
		spec = r.fallback
	}

	if reason := spec.Validate(key); reason != "" {
		return domain.ErrKeyFormat(name, reason)
	}

	// Registered providers additionally get the shared checks: a
	// floor on length and a charset restriction.
	if known {
		if len(key) < 10 {
			return domain.ErrKeyFormat(name, "keys must be at least 10 characters long")
		}
		if !keyCharset.MatchString(key) {
			return domain.ErrKeyFormat(name, "key contains invalid characters")
		}
	}

	return nil
}

// Lookup returns the spec for a provider name, when registered.
func (r *Registry) Lookup(providerName string) (Spec, bool) {
	s, ok := r.specs[strings.ToLower(strings.TrimSpace(providerName))]
	return s, ok
}

// Providers lists the registered provider names, sorted.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
)

// Mask replaces the values of sensitive keys.
const Mask = "***"

type piiMiddleware struct {
	next     ports.AttributeStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of keys matching the patterns
// before they reach the store. Masking is one-way: loads return the masked value.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.AttributeStore) ports.AttributeStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Set(ctx context.Context, key string, doc domain.Attributes) error {
	// The executor still holds doc; mask a copy.
	cloned := domain.CopyMap(doc)
	maskMap(cloned, m.patterns)
	return m.next.Set(ctx, key, cloned)
}

func (m *piiMiddleware) Get(ctx context.Context, key string) (domain.Attributes, error) {
	return m.next.Get(ctx, key)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

// Helpers

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			m[k] = Mask
			continue
		}

		switch tv := v.(type) {
		case map[string]any:
			maskMap(tv, patterns)
		case domain.Attributes:
			maskMap(tv, patterns)
		case []any:
			for _, item := range tv {
				switch sub := item.(type) {
				case map[string]any:
					maskMap(sub, patterns)
				case domain.Attributes:
					maskMap(sub, patterns)
				}
			}
		}
	}
}

func matchesAny(k string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(k) {
			return true
		}
	}
	return false
}

// Package classify maps field names to privacy classification tags.
//
// The registries are read-only after construction and may be shared
// across concurrent anonymization runs without synchronization.
package classify

// Class is the privacy classification of a field name.
type Class int

// Classification tags, strongest handling first.
const (
	// Identifying fields are deleted outright from anonymized output.
	Identifying Class = iota
	// Sensitive fields survive with their value replaced by a mask.
	Sensitive
	// Neutral fields pass through untouched.
	Neutral
)

// String returns the tag name used in logs and audit output.
func (c Class) String() string {
	switch c {
	case Identifying:
		return "identifying"
	case Sensitive:
		return "sensitive"
	default:
		return "neutral"
	}
}

// Registry holds the identifying and sensitive field sets. A field may
// appear in both sets; classification then reports Identifying, because
// removal is a strictly stronger guarantee than masking. The precedence
// is structural: Classify consults the identifying set first.
type Registry struct {
	identifying map[string]struct{}
	sensitive   map[string]struct{}
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithIdentifyingFields replaces the identifying field set.
func WithIdentifyingFields(fields []string) Option {
	return func(r *Registry) {
		r.identifying = toSet(fields)
	}
}

// WithSensitiveFields replaces the sensitive field set.
func WithSensitiveFields(fields []string) Option {
	return func(r *Registry) {
		r.sensitive = toSet(fields)
	}
}

// Default field sets for the coaching domain. Team and school names are
// identifying here: combined with city-level data they pinpoint rosters.
var (
	defaultIdentifying = []string{
		"firstName",
		"lastName",
		"email",
		"phone",
		"address",
		"playerNames",
		"coachNames",
		"teamNames",
		"schoolNames",
		"parentEmail",
		"parentPhone",
		"emergencyContact",
	}

	// parentEmail, parentPhone and emergencyContact are also identifying;
	// removal takes precedence, so they never reach the masking stage in
	// the default registry.
	defaultSensitive = []string{
		"medicalInfo",
		"insuranceInfo",
		"allergies",
		"medications",
		"conditions",
		"emergencyContact",
		"parentEmail",
		"parentPhone",
	}
)

// NewRegistry creates a Registry with the coaching-domain defaults,
// then applies opts.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		identifying: toSet(defaultIdentifying),
		sensitive:   toSet(defaultSensitive),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Classify returns the classification for field. Fields absent from
// both sets are Neutral.
func (r *Registry) Classify(field string) Class {
	if _, ok := r.identifying[field]; ok {
		return Identifying
	}
	if _, ok := r.sensitive[field]; ok {
		return Sensitive
	}
	return Neutral
}

// Overlap returns the fields present in both sets. These are handled
// as identifying; the list exists so callers can log the precedence
// decision at startup instead of leaving it implicit.
func (r *Registry) Overlap() []string {
	var both []string
	for f := range r.sensitive {
		if _, ok := r.identifying[f]; ok {
			both = append(both, f)
		}
	}
	return both
}

// IdentifyingCount returns the size of the identifying set.
func (r *Registry) IdentifyingCount() int { return len(r.identifying) }

// SensitiveCount returns the size of the sensitive set.
func (r *Registry) SensitiveCount() int { return len(r.sensitive) }

func toSet(fields []string) map[string]struct{} {
	s := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

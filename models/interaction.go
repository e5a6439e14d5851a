package models

// InteractionProperties is the descriptive metadata of an interaction. None of
// the flags is checked against the roles of the endpoints.
type InteractionProperties struct {
	// Timeout is set when the caller bounds the interaction with a timeout
	Timeout bool `json:"timeout" yaml:"timeout"`

	// CircuitBreaker is set when the interaction goes through a circuit breaker
	CircuitBreaker bool `json:"circuit_breaker" yaml:"circuit_breaker"`

	// DynamicDiscovery is set when the target is located via service discovery
	DynamicDiscovery bool `json:"dynamic_discovery" yaml:"dynamic_discovery"`
}

// InteractionOption configures the properties of a new interaction.
type InteractionOption func(*InteractionProperties)

// WithTimeout marks the interaction as guarded by a timeout.
func WithTimeout(enabled bool) InteractionOption {
	return func(p *InteractionProperties) { p.Timeout = enabled }
}

// WithCircuitBreaker marks the interaction as guarded by a circuit breaker.
func WithCircuitBreaker(enabled bool) InteractionOption {
	return func(p *InteractionProperties) { p.CircuitBreaker = enabled }
}

// WithDynamicDiscovery marks the target as dynamically discovered.
func WithDynamicDiscovery(enabled bool) InteractionOption {
	return func(p *InteractionProperties) { p.DynamicDiscovery = enabled }
}

// WithProperties copies a whole property set onto the interaction.
func WithProperties(props InteractionProperties) InteractionOption {
	return func(p *InteractionProperties) { *p = props }
}

// InteractsWith is a directed "interacts with" relationship. It can only be
// created by Node.AddInteraction, so every instance has passed the policy.
// Identity is the pointer: two interactions between the same pair are
// distinct relationships.
type InteractsWith struct {
	source     *Node
	target     *Node
	properties InteractionProperties
}

func newInteractsWith(source, target *Node, opts []InteractionOption) *InteractsWith {
	rel := &InteractsWith{source: source, target: target}
	for _, opt := range opts {
		opt(&rel.properties)
	}
	return rel
}

// Source returns the node that initiates the interaction.
func (r *InteractsWith) Source() *Node {
	return r.source
}

// Target returns the node being called.
func (r *InteractsWith) Target() *Node {
	return r.target
}

// Properties returns a copy of the interaction metadata.
func (r *InteractsWith) Properties() InteractionProperties {
	return r.properties
}

// SetTimeout sets the timeout flag.
func (r *InteractsWith) SetTimeout(enabled bool) {
	r.properties.Timeout = enabled
}

// SetCircuitBreaker sets the circuit breaker flag.
func (r *InteractsWith) SetCircuitBreaker(enabled bool) {
	r.properties.CircuitBreaker = enabled
}

// SetDynamicDiscovery sets the dynamic discovery flag.
func (r *InteractsWith) SetDynamicDiscovery(enabled bool) {
	r.properties.DynamicDiscovery = enabled
}

func (r *InteractsWith) String() string {
	return endpointName(r.source) + " -> " + endpointName(r.target)
}

// endpointName tolerates the zero InteractsWith, which has no endpoints.
func endpointName(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Name()
}

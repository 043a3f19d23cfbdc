package policy

import "fmt"

// Constructor builds a Rule from a configuration DOM element (§6, §9
// "tagged-variant enum... plus an open registration map"). config is left
// as interface{} here (typically an *etree.Element) so this package does
// not need to import etree just to describe the registry shape; concrete
// constructors type-assert it.
type Constructor func(config interface{}) (Rule, error)

// Registry maps a rule's "type" tag (§4.1 "Every rule declares its type
// tag; the engine registry builds rules by tag") to its Constructor.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns a Registry pre-populated with every built-in rule tag
// from the §4.1 rule catalog table.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.Register("MessageFlow", func(interface{}) (Rule, error) { return &MessageFlowRule{}, nil })
	r.Register("Conditions", func(interface{}) (Rule, error) { return &ConditionsRule{}, nil })
	r.Register("Audience", func(interface{}) (Rule, error) { return &AudienceRule{}, nil })
	r.Register("Ignore", func(interface{}) (Rule, error) { return &IgnoreRule{}, nil })
	r.Register("Bearer", func(interface{}) (Rule, error) { return &BearerRule{}, nil })
	r.Register("ClientCertAuth", func(interface{}) (Rule, error) { return &ClientCertAuthRule{}, nil })
	r.Register("XMLSigning", func(interface{}) (Rule, error) { return &XMLSigningRule{}, nil })
	r.Register("SimpleSigning", func(interface{}) (Rule, error) { return &SimpleSigningRule{}, nil })
	r.Register("NullSecurity", func(interface{}) (Rule, error) { return &NullSecurityRule{}, nil })
	r.Register("SAML1BrowserSSO", func(interface{}) (Rule, error) { return &SAML1BrowserSSORule{}, nil })
	r.Register("DelegationRestriction", func(interface{}) (Rule, error) { return &DelegationRestrictionRule{}, nil })
	return r
}

// Register adds or replaces the constructor for tag, allowing third-party
// rule plugins to register themselves (§6).
func (r *Registry) Register(tag string, c Constructor) {
	r.constructors[tag] = c
}

// Build constructs the rule registered under tag.
func (r *Registry) Build(tag string, config interface{}) (Rule, error) {
	c, ok := r.constructors[tag]
	if !ok {
		return nil, fmt.Errorf("policy: no rule registered for type %q", tag)
	}
	return c(config)
}

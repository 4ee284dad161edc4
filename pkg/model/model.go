// Package model defines the reconciler's core vocabulary: roles, scope
// modes, property direction, and the candidate/connection shapes the
// matchmaker and connection writer operate on.
package model

import "fmt"

// Role is one of the two sides of a capability.
type Role string

const (
	Provider Role = "provider"
	Consumer Role = "consumer"
)

// Opposite returns the other role.
func (r Role) Opposite() Role {
	if r == Provider {
		return Consumer
	}
	return Provider
}

// ParseRole converts a raw key segment into a Role, the zero value
// reporting ok=false for anything else (the classifier ignores those keys).
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case Provider, Consumer:
		return Role(s), true
	}
	return "", false
}

// Mode is the matchmaker's scope policy for a network.
type Mode string

const (
	AllSystems Mode = "allsystems"
	BySystem   Mode = "bysystem"
)

// ParseMode converts a raw orchestrator value into a Mode. Networks whose
// orchestrator value does not parse are skipped by the matchmaker (§4.5).
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case AllSystems, BySystem:
		return Mode(s), true
	}
	return "", false
}

// Direction states which role owns a property: the owner is the only
// side allowed to write it, and its writes are propagated to the
// opposite side.
type Direction int

const (
	// DirectionUndefined is the zero value: ownership not resolved. No
	// function in this package returns a Direction; ResolveOpposite reports
	// a non-owning write with ok=false instead.
	DirectionUndefined Direction = iota
	ProviderOwns
	ConsumerOwns
)

// ProviderFlagOwns reports whether a profile property's raw "provider"
// flag ("yes"/anything else) means providers own the property.
func ProviderFlagOwns(flag string) bool {
	return flag == "yes"
}

// ResolveOpposite computes the opposite role a property write should be
// propagated to, given the role that performed the write and the
// profile's provider-ownership flag for that property. It returns
// (_, false) when the write did not originate from the owning side —
// callers must then no-op (§4.7).
func ResolveOpposite(role Role, providerFlag string) (Role, bool) {
	owns := ProviderFlagOwns(providerFlag)
	switch {
	case role == Provider && owns:
		return Consumer, true
	case role == Consumer && !owns:
		return Provider, true
	default:
		return "", false
	}
}

// Capability identifies a (network, node, context, role, profile) tuple.
type Capability struct {
	Network string
	Node    string
	Context string
	Role    Role
	Profile string
}

// Endpoint returns the capability's endpoint prefix:
// cns/{network}/nodes/{node}/contexts/{context}.
func (c Capability) Endpoint() string {
	return fmt.Sprintf("cns/%s/nodes/%s/contexts/%s", c.Network, c.Node, c.Context)
}

// CapabilityPrefix returns cns/{network}/nodes/{node}/contexts/{context}/{role}/{profile}.
func (c Capability) CapabilityPrefix() string {
	return fmt.Sprintf("%s/%s/%s", c.Endpoint(), c.Role, c.Profile)
}

// Candidate is a provider/consumer pair produced by the matchmaker, sharing
// profile and version, awaiting materialisation by the connection writer.
type Candidate struct {
	ProviderEndpoint string // cns/{network}/nodes/{node}/contexts/{ctx}
	ConsumerEndpoint string
	Profile          string
	Version          string
}

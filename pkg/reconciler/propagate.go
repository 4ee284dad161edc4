package reconciler

import (
	"context"
	"fmt"

	"github.com/cnscp/cns-orchestrator/pkg/keyspace"
	"github.com/cnscp/cns-orchestrator/pkg/log"
	"github.com/cnscp/cns-orchestrator/pkg/model"
)

// propagate handles a write to a capability-level property
// (cns/.../{role}/{profile}/properties/{p}): if the write came from the
// owning side, write the value to the same-named connection-level property
// of every connection of this capability (§4.7); the opposite endpoint is
// then reached through update() when those writes come back via the watch.
// propagate is not a no-op: it resolves mode and ownership on every call,
// and with no connections yet there is simply nothing to write (§9).
func (e *Engine) propagate(ctx context.Context, key, value string) {
	parts := keyspace.Split(key)
	if len(parts) != 10 || parts[8] != "properties" {
		return
	}

	network, node, ctxName := parts[1], parts[3], parts[5]
	role, ok := model.ParseRole(parts[6])
	if !ok {
		return
	}
	profile, propName := parts[7], parts[9]

	if !e.modeRecognised(network) {
		return
	}

	capability := model.Capability{Network: network, Node: node, Context: ctxName, Role: role, Profile: profile}
	opposite, ok := e.resolveOpposite(network, capability.CapabilityPrefix(), role, propName)
	if !ok {
		return
	}

	ns := capability.CapabilityPrefix()
	pattern := ns + "/connections/*/" + string(opposite)
	for k := range keyspace.Filter(e.cache.Snapshot(), pattern) {
		id := keyspace.Split(k)[9]
		target := ns + "/connections/" + id + "/properties/" + propName
		if err := e.store.Put(ctx, target, value); err != nil {
			log.WithKey(target).Error("failed to propagate property: ", err)
		}
	}
}

// update handles a write to a connection-level property
// (cns/.../{role}/{profile}/connections/{id}/properties/{p}): if it came
// from the owning side, push the value to the matching property on the
// opposite connection endpoint (§4.7).
func (e *Engine) update(ctx context.Context, key, value string) {
	parts := keyspace.Split(key)
	if len(parts) != 12 || parts[8] != "connections" || parts[10] != "properties" {
		return
	}

	network, node, ctxName := parts[1], parts[3], parts[5]
	role, ok := model.ParseRole(parts[6])
	if !ok {
		return
	}
	profile, id, propName := parts[7], parts[9], parts[11]

	if !e.modeRecognised(network) {
		return
	}

	capability := model.Capability{Network: network, Node: node, Context: ctxName, Role: role, Profile: profile}
	ns := capability.CapabilityPrefix()

	opposite, ok := e.resolveOpposite(network, ns, role, propName)
	if !ok {
		return
	}

	oppositeEndpoint, ok := e.cache.Get(ns + "/connections/" + id + "/" + string(opposite))
	if !ok {
		return
	}

	target := oppositeEndpoint + "/" + string(opposite) + "/" + profile + "/connections/" + id + "/properties/" + propName
	if err := e.store.Put(ctx, target, value); err != nil {
		log.WithKey(target).Error("failed to update connection property: ", err)
	}
}

// modeRecognised reports whether network's orchestrator value parses to a
// known scope mode — propagate/update no-op otherwise (§9).
func (e *Engine) modeRecognised(network string) bool {
	modeRaw, ok := e.cache.Get("cns/" + network + "/orchestrator")
	if !ok {
		return false
	}
	_, ok = model.ParseMode(modeRaw)
	return ok
}

// resolveOpposite looks up the capability's profile version and that
// version's provider-ownership flag for propName, then asks model for the
// direction this write should propagate in.
func (e *Engine) resolveOpposite(network, capabilityPrefix string, role model.Role, propName string) (model.Role, bool) {
	version, ok := e.cache.Get(capabilityPrefix + "/version")
	if !ok {
		return "", false
	}

	flagKey := fmt.Sprintf("cns/%s/profiles/%s/versions/version%s/properties/%s/provider", network, profileFromPrefix(capabilityPrefix), version, propName)
	flag, ok := e.cache.Get(flagKey)
	if !ok {
		return "", false
	}

	return model.ResolveOpposite(role, flag)
}

// profileFromPrefix extracts the profile name from a capability prefix
// (cns/{network}/nodes/{node}/contexts/{ctx}/{role}/{profile}).
func profileFromPrefix(prefix string) string {
	parts := keyspace.Split(prefix)
	return parts[len(parts)-1]
}

package reconciler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cnscp/cns-orchestrator/pkg/keyspace"
	"github.com/cnscp/cns-orchestrator/pkg/log"
	"github.com/cnscp/cns-orchestrator/pkg/model"
	"github.com/cnscp/cns-orchestrator/pkg/summary"
)

// build runs one full matchmaker + connection-writer pass over a cache
// snapshot (§4.5). It never overlaps with another build() because the
// caller (Run's event loop) only ever invokes it from the single goroutine.
func (e *Engine) build(ctx context.Context) {
	start := time.Now()
	snapshot := e.cache.Snapshot()

	networks := networkNames(snapshot)
	var candidates []model.Candidate
	for _, n := range networks {
		candidates = append(candidates, e.candidatesForNetwork(snapshot, n)...)
	}

	written, errCount := e.writeConnections(ctx, snapshot, candidates)

	summary.NewBuildReport().
		WithNetworks(len(networks)).
		WithCandidates(len(candidates)).
		WithConnections(written).
		WithErrors(errCount).
		WithDuration(time.Since(start)).
		Log()
}

// networkNames returns every network with a "name" key, sorted for
// deterministic iteration order across passes.
func networkNames(snapshot map[string]string) []string {
	named := keyspace.Filter(snapshot, "cns/*/name")
	var out []string
	for k := range named {
		out = append(out, keyspace.Split(k)[1])
	}
	sort.Strings(out)
	return out
}

// candidatesForNetwork enumerates every provider capability in network and
// matches it against consumers per the network's scope mode (§4.5).
// Networks whose orchestrator value does not parse to a known mode are
// skipped entirely (§9).
func (e *Engine) candidatesForNetwork(snapshot map[string]string, network string) []model.Candidate {
	modeRaw, ok := snapshot["cns/"+network+"/orchestrator"]
	if !ok {
		return nil
	}
	mode, ok := model.ParseMode(modeRaw)
	if !ok {
		log.WithNetwork(network).WithField("orchestrator", modeRaw).Warn("unrecognised scope mode, skipping network")
		return nil
	}

	pattern := fmt.Sprintf("cns/%s/nodes/*/contexts/*/provider/*/version", network)
	providers := keyspace.Filter(snapshot, pattern)

	var providerKeys []string
	for k := range providers {
		providerKeys = append(providerKeys, k)
	}
	sort.Strings(providerKeys)

	var candidates []model.Candidate
	for _, pk := range providerKeys {
		parts := keyspace.Split(pk)
		node, ctxName, profile, version := parts[3], parts[5], parts[7], providers[pk]

		capability := model.Capability{Network: network, Node: node, Context: ctxName, Role: model.Provider, Profile: profile}
		candidates = append(candidates, e.matchConsumers(snapshot, mode, network, capability.Endpoint(), ctxName, profile, version)...)
	}
	return candidates
}

// matchConsumers finds every consumer with a matching context, profile, and
// version for one provider capability, searching either the provider's own
// network (bysystem) or every network (allsystems) (§4.5, §9).
func (e *Engine) matchConsumers(snapshot map[string]string, mode model.Mode, network, providerEndpoint, ctxName, profile, version string) []model.Candidate {
	switch mode {
	case model.BySystem:
		return e.matchConsumersInNetwork(snapshot, network, providerEndpoint, ctxName, profile, version)
	case model.AllSystems:
		var out []model.Candidate
		for _, n := range networkNames(snapshot) {
			out = append(out, e.matchConsumersInNetwork(snapshot, n, providerEndpoint, ctxName, profile, version)...)
		}
		return out
	default:
		return nil
	}
}

func (e *Engine) matchConsumersInNetwork(snapshot map[string]string, network, providerEndpoint, ctxName, profile, version string) []model.Candidate {
	pattern := fmt.Sprintf("cns/%s/nodes/*/contexts/%s/consumer/%s/version", network, ctxName, profile)
	consumers := keyspace.Filter(snapshot, pattern)

	var keys []string
	for k := range consumers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []model.Candidate
	for _, k := range keys {
		if consumers[k] != version {
			continue
		}
		parts := keyspace.Split(k)
		node := parts[3]
		capability := model.Capability{Network: network, Node: node, Context: ctxName, Role: model.Consumer, Profile: profile}
		out = append(out, model.Candidate{
			ProviderEndpoint: providerEndpoint,
			ConsumerEndpoint: capability.Endpoint(),
			Profile:          profile,
			Version:          version,
		})
	}
	return out
}

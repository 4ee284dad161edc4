package reconciler

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/cnscp/cns-orchestrator/pkg/keyspace"
	"github.com/cnscp/cns-orchestrator/pkg/log"
	"github.com/cnscp/cns-orchestrator/pkg/model"
)

// writeConnections materialises every candidate as a doubly-linked
// connection, idempotently, and returns how many writes succeeded and how
// many failed (§4.6).
func (e *Engine) writeConnections(ctx context.Context, snapshot map[string]string, candidates []model.Candidate) (written, failed int) {
	for _, c := range candidates {
		ok, err := e.writeConnection(ctx, snapshot, c)
		if err != nil {
			log.WithField("provider", c.ProviderEndpoint).WithField("consumer", c.ConsumerEndpoint).Error("failed to write connection: ", err)
			failed++
			continue
		}
		if ok {
			written++
		}
	}
	return written, failed
}

// writeConnection materialises one candidate. If a connection already
// links this provider and consumer on the given profile, re-running build()
// is a no-op for that side — writeConnection only fills in whichever side
// (provider, consumer, or both) is missing, preserving the existing id
// (§4.6, I4).
func (e *Engine) writeConnection(ctx context.Context, snapshot map[string]string, c model.Candidate) (bool, error) {
	id, needProvider := findConnectionID(snapshot, c.ProviderEndpoint, model.Provider, c.Profile, c.ConsumerEndpoint)
	consumerID, needConsumer := findConnectionID(snapshot, c.ConsumerEndpoint, model.Consumer, c.Profile, c.ProviderEndpoint)
	// A consumer-side match takes precedence if both sides already exist
	// with (improbably) different ids — mirrors the reference algorithm's
	// sequential id assignment.
	if !needConsumer {
		id = consumerID
	}

	if !needProvider && !needConsumer {
		return false, nil
	}
	if id == "" {
		id = uuid.NewString()
	}

	defaults := mergeDefaults(snapshot, c)

	if needProvider {
		if err := e.writeSide(ctx, c.ProviderEndpoint, model.Provider, c.Profile, id, c.ConsumerEndpoint, defaults); err != nil {
			return false, err
		}
	}
	if needConsumer {
		if err := e.writeSide(ctx, c.ConsumerEndpoint, model.Consumer, c.Profile, id, c.ProviderEndpoint, defaults); err != nil {
			return false, err
		}
	}
	return true, nil
}

// findConnectionID looks for an existing connection from endpoint/role/profile
// pointing at oppositeEndpoint, returning its id if found. needsWrite=true
// means the side still needs to be written (no such connection exists yet).
func findConnectionID(snapshot map[string]string, endpoint string, role model.Role, profile, oppositeEndpoint string) (id string, needsWrite bool) {
	pattern := endpoint + "/" + string(role) + "/" + profile + "/connections/*/" + string(role.Opposite())
	matches := keyspace.Filter(snapshot, pattern)

	var keys []string
	for k := range matches {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if matches[k] == oppositeEndpoint {
			return keyspace.Split(k)[9], false
		}
	}
	return "", true
}

// writeSide writes the forward link and default properties for one side of
// a connection.
func (e *Engine) writeSide(ctx context.Context, endpoint string, role model.Role, profile, id, oppositeEndpoint string, defaults map[string]string) error {
	base := endpoint + "/" + string(role) + "/" + profile + "/connections/" + id
	if err := e.store.Put(ctx, base+"/"+string(role.Opposite()), oppositeEndpoint); err != nil {
		return err
	}
	for name, value := range defaults {
		if err := e.store.Put(ctx, base+"/properties/"+name, value); err != nil {
			return err
		}
	}
	return nil
}

// mergeDefaults collects the default properties for a connection: provider
// defaults first, then consumer defaults overriding on name collision
// (§4.6).
func mergeDefaults(snapshot map[string]string, c model.Candidate) map[string]string {
	out := map[string]string{}
	for name, value := range capabilityProperties(snapshot, c.ProviderEndpoint, model.Provider, c.Profile) {
		out[name] = value
	}
	for name, value := range capabilityProperties(snapshot, c.ConsumerEndpoint, model.Consumer, c.Profile) {
		out[name] = value
	}
	return out
}

func capabilityProperties(snapshot map[string]string, endpoint string, role model.Role, profile string) map[string]string {
	pattern := endpoint + "/" + string(role) + "/" + profile + "/properties/*"
	matches := keyspace.Filter(snapshot, pattern)
	out := make(map[string]string, len(matches))
	for k, v := range matches {
		out[keyspace.Split(k)[9]] = v
	}
	return out
}

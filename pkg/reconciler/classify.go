package reconciler

import (
	"github.com/cnscp/cns-orchestrator/pkg/keyspace"
	"github.com/cnscp/cns-orchestrator/pkg/model"
)

// action is the dispatch outcome for a single put event (§4.3).
type action int

const (
	actionNone action = iota
	actionRebuild
	actionPropagate
	actionUpdate
)

// classify maps a key to the dispatch table in §4.3. Delete events never
// reach this function — the engine only logs deletes.
func classify(key string) action {
	if !keyspace.InScope(key) {
		return actionNone
	}

	parts := keyspace.Split(key)
	if len(parts) < 3 {
		return actionNone
	}

	switch parts[2] {
	case "orchestrator", "profiles":
		return actionRebuild
	case "nodes":
		return classifyNodeKey(parts)
	default:
		return actionNone
	}
}

// classifyNodeKey handles cns/{network}/nodes/{node}/contexts/{ctx}/{role}/...
func classifyNodeKey(parts []string) action {
	if len(parts) < 9 || parts[4] != "contexts" {
		return actionNone
	}
	if _, ok := model.ParseRole(parts[6]); !ok {
		return actionNone
	}

	switch parts[8] {
	case "version", "scope":
		return actionRebuild
	case "properties":
		if len(parts) != 10 {
			return actionNone
		}
		return actionPropagate
	case "connections":
		if len(parts) >= 11 && parts[10] == "properties" {
			return actionUpdate
		}
		return actionNone
	default:
		return actionNone
	}
}

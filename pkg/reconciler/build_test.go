package reconciler

import (
	"context"
	"testing"

	"github.com/cnscp/cns-orchestrator/pkg/cache"
	"github.com/cnscp/cns-orchestrator/pkg/keyspace"
	"github.com/cnscp/cns-orchestrator/pkg/store"
)

func newTestEngine(seed map[string]string) (*Engine, *store.FakeClient) {
	fake := store.NewFake()
	fake.Seed(seed)
	c := cache.New()
	c.LoadAll(seed)
	return New(fake, c), fake
}

// S1: new pair under bysystem produces a doubly linked connection.
func TestBuildNewPairBySystem(t *testing.T) {
	seed := map[string]string{
		"cns/N/name":                                        "N",
		"cns/N/orchestrator":                                 "bysystem",
		"cns/N/nodes/A/contexts/X/provider/p1/version":       "1",
		"cns/N/nodes/B/contexts/X/consumer/p1/version":       "1",
	}
	e, fake := newTestEngine(seed)
	e.build(context.Background())

	providerConns := filterKeys(t, fake, "cns/N/nodes/A/contexts/X/provider/p1/connections/*/consumer")
	if len(providerConns) != 1 {
		t.Fatalf("expected one provider-side connection, got %d", len(providerConns))
	}
	var id, consumerValue string
	for k, v := range providerConns {
		id = idFromConnectionKey(k)
		consumerValue = v
	}
	if consumerValue != "cns/N/nodes/B/contexts/X" {
		t.Errorf("provider connection points at %q", consumerValue)
	}

	consumerKey := "cns/N/nodes/B/contexts/X/consumer/p1/connections/" + id + "/provider"
	got, ok, err := fake.Get(context.Background(), consumerKey)
	if err != nil || !ok {
		t.Fatalf("expected symmetric consumer record at %s, ok=%v err=%v", consumerKey, ok, err)
	}
	if got != "cns/N/nodes/A/contexts/X" {
		t.Errorf("consumer connection points at %q", got)
	}
}

// S2: mismatched context produces no connection.
func TestBuildContextMismatch(t *testing.T) {
	seed := map[string]string{
		"cns/N/name":                                  "N",
		"cns/N/orchestrator":                           "bysystem",
		"cns/N/nodes/A/contexts/X/provider/p1/version": "1",
		"cns/N/nodes/B/contexts/Y/consumer/p1/version": "1",
	}
	e, fake := newTestEngine(seed)
	e.build(context.Background())

	if conns := filterKeys(t, fake, "cns/N/nodes/A/contexts/X/provider/p1/connections/*/consumer"); len(conns) != 0 {
		t.Errorf("expected no connections, got %v", conns)
	}
}

// S3: allsystems mode matches across networks.
func TestBuildAllSystemsCrossNetwork(t *testing.T) {
	seed := map[string]string{
		"cns/N/name":                                  "N",
		"cns/N/orchestrator":                           "allsystems",
		"cns/M/name":                                   "M",
		"cns/N/nodes/A/contexts/X/provider/p1/version": "1",
		"cns/M/nodes/B/contexts/X/consumer/p1/version": "1",
	}
	e, fake := newTestEngine(seed)
	e.build(context.Background())

	providerConns := filterKeys(t, fake, "cns/N/nodes/A/contexts/X/provider/p1/connections/*/consumer")
	if len(providerConns) != 1 {
		t.Fatalf("expected cross-network connection, got %d", len(providerConns))
	}
	for _, v := range providerConns {
		if v != "cns/M/nodes/B/contexts/X" {
			t.Errorf("connection points at %q, want cns/M/nodes/B/contexts/X", v)
		}
	}
}

// S4: default property merge, consumer overrides provider on collision.
func TestBuildDefaultPropertyMerge(t *testing.T) {
	seed := map[string]string{
		"cns/N/name":                                  "N",
		"cns/N/orchestrator":                           "bysystem",
		"cns/N/nodes/A/contexts/X/provider/p1/version": "1",
		"cns/N/nodes/A/contexts/X/provider/p1/properties/a": "p1",
		"cns/N/nodes/A/contexts/X/provider/p1/properties/b": "p2",
		"cns/N/nodes/B/contexts/X/consumer/p1/version": "1",
		"cns/N/nodes/B/contexts/X/consumer/p1/properties/b": "c2",
		"cns/N/nodes/B/contexts/X/consumer/p1/properties/c": "c3",
	}
	e, fake := newTestEngine(seed)
	e.build(context.Background())

	providerConns := filterKeys(t, fake, "cns/N/nodes/A/contexts/X/provider/p1/connections/*/consumer")
	var id string
	for k := range providerConns {
		id = idFromConnectionKey(k)
	}
	if id == "" {
		t.Fatal("no connection created")
	}

	want := map[string]string{"a": "p1", "b": "c2", "c": "c3"}
	for name, expected := range want {
		key := "cns/N/nodes/A/contexts/X/provider/p1/connections/" + id + "/properties/" + name
		got, ok, err := fake.Get(context.Background(), key)
		if err != nil || !ok || got != expected {
			t.Errorf("property %s = %q, ok=%v, want %q", name, got, ok, expected)
		}
	}
}

// I4: running build() twice with no intervening mutation writes nothing new.
func TestBuildIdempotent(t *testing.T) {
	seed := map[string]string{
		"cns/N/name":                                  "N",
		"cns/N/orchestrator":                           "bysystem",
		"cns/N/nodes/A/contexts/X/provider/p1/version": "1",
		"cns/N/nodes/B/contexts/X/consumer/p1/version": "1",
	}
	e, fake := newTestEngine(seed)
	e.build(context.Background())

	firstConns := filterKeys(t, fake, "cns/N/nodes/A/contexts/X/provider/p1/connections/*/consumer")
	var id string
	for k := range firstConns {
		id = idFromConnectionKey(k)
	}

	e.cache.LoadAll(mustAll(t, fake))
	e.build(context.Background())

	secondConns := filterKeys(t, fake, "cns/N/nodes/A/contexts/X/provider/p1/connections/*/consumer")
	if len(secondConns) != 1 {
		t.Fatalf("expected still exactly one connection, got %d", len(secondConns))
	}
	for k := range secondConns {
		if idFromConnectionKey(k) != id {
			t.Errorf("build() reran with a new id: %s", k)
		}
	}
}

func filterKeys(t *testing.T, fake *store.FakeClient, pattern string) map[string]string {
	t.Helper()
	return keyspace.Filter(mustAll(t, fake), pattern)
}

func mustAll(t *testing.T, fake *store.FakeClient) map[string]string {
	t.Helper()
	all, err := fake.All(context.Background(), "cns")
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	return all
}

func idFromConnectionKey(key string) string {
	return keyspace.Split(key)[9]
}

package reconciler

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		key  string
		want action
	}{
		{"cns/N/orchestrator", actionRebuild},
		{"cns/N/profiles/p1/versions/version1/properties/x/provider", actionRebuild},
		{"cns/N/nodes/A/contexts/X/provider/p1/version", actionRebuild},
		{"cns/N/nodes/A/contexts/X/consumer/p1/scope", actionRebuild},
		{"cns/N/nodes/A/contexts/X/provider/p1/properties/x", actionPropagate},
		{"cns/N/nodes/A/contexts/X/provider/p1/connections/id1/properties/x", actionUpdate},
		{"cns/N/nodes/A/contexts/X/provider/p1/connections/id1/consumer", actionNone},
		{"cns/N/nodes/A/name", actionNone},
		{"cns/N/name", actionNone},
		{"other/N/name", actionNone},
		{"cns", actionNone},
		{"cns/N/nodes/A/contexts/X/badrole/p1/version", actionNone},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := classify(tt.key); got != tt.want {
				t.Errorf("classify(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

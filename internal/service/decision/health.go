package decision

// HealthStatus is the result of Health(), reported to the transport
// collaborator per §6.
type HealthStatus struct {
	Status     string
	Components map[string]string
}

// ReadyStatus is the result of Ready(), reported to the transport
// collaborator per §6.
type ReadyStatus struct {
	Status       string
	Dependencies map[string]string
}

// Health reports whether the decision core's dependencies are usable. A
// degraded rule engine (no loaded configuration) still allows pattern
// matching to run, so it is reported per-component rather than failing
// the whole check.
func (s *Service) Health() HealthStatus {
	components := map[string]string{
		"pattern_matcher": "healthy",
		"rule_engine":     "healthy",
	}

	status := "healthy"
	if ic, ok := s.rules.(interface{ IsInitialized() bool }); ok && !ic.IsInitialized() {
		components["rule_engine"] = "degraded"
		status = "degraded"
	}

	return HealthStatus{Status: status, Components: components}
}

// Ready reports whether the orchestrator is ready to accept decisions: a
// rule configuration must be loaded, since evaluate_rules otherwise fails.
func (s *Service) Ready() ReadyStatus {
	deps := map[string]string{"rule_config": "ready"}
	status := "ready"

	if ic, ok := s.rules.(interface{ IsInitialized() bool }); ok && !ic.IsInitialized() {
		deps["rule_config"] = "not_ready"
		status = "not_ready"
	}

	return ReadyStatus{Status: status, Dependencies: deps}
}

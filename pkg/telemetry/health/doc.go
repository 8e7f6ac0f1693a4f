// Package health provides liveness, readiness and version endpoints for the
// long-running cardvault process.
//
// Readiness aggregates named checks that run concurrently with a per-check
// timeout. The run command registers:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("archive_store", health.StoreCheck(store))
//	checker.RegisterCheck("scheduler", health.RunnerCheck("scheduler", scheduler))
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, health.NewVersionInfo(version, commit, buildTime))
//
// /ready answers 503 while any check is unhealthy.
package health

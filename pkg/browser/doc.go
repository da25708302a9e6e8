// Package browser resolves a controllable Chrome/Chromium instance reachable
// through a local remote-debugging (CDP) endpoint.
//
// The package supports four connection strategies, selected by Mode:
//
//  1. Own: attach to a browser that is already running with remote debugging
//     enabled. No process is spawned or owned.
//  2. Fresh: spawn a dedicated browser process with a known debugging port and
//     an isolated user-data directory; the resulting handle owns the process
//     and is responsible for terminating it.
//  3. Managed: do nothing; the downstream automation library launches and
//     manages its own browser.
//  4. Auto: probe for an existing endpoint and rewrite itself into Own or
//     Fresh before any stateful action.
//
// # Acquisition flow
//
//	negotiator := browser.NewNegotiator(logger)
//	handle, err := negotiator.Acquire(ctx, browser.Options{
//	    Mode: browser.ModeAuto,
//	    Port: 9222,
//	})
//	if err != nil {
//	    return err
//	}
//	defer handle.Cleanup(false)
//
// Liveness of a candidate endpoint is established by a single bounded HTTP
// request to its /json/version metadata path; any transport error or
// unexpected body shape means "not alive" and is never surfaced as an error.
// Launch failures against the primary user-data directory are retried exactly
// once with a freshly suffixed directory to isolate from a corrupted profile
// lock; a second failure is fatal and reports both attempts.
//
// A handle owns a process only in Fresh mode. Cleanup terminates the owned
// process gracefully, escalates to a forced kill after a bounded grace
// period, and never fails the caller's shutdown sequence.
package browser

// Package clientauth implements client-credentials authentication and token
// issuance for machine clients: opaque identifier/secret verification, signed
// time-bounded access tokens, and asynchronous authentication events.
//
// Credential verification:
//   - ClientCredential records carry a bcrypt secret digest and an active
//     flag, persisted via Bun. The verifier always performs a hash comparison
//     (against a constant placeholder digest when the record is missing) and
//     collapses every failure into the same generic outcome so callers cannot
//     enumerate valid client identifiers or distinguish inactive accounts.
//
// Token issuance and validation:
//   - TokenService signs HS256 access tokens against a KeyRing. The key ring
//     keeps the current signing key plus one retired key, so validators keep
//     accepting recently issued tokens across a rotation. Expiry checks apply
//     a configurable clock-skew leeway.
//
// Event publishing:
//   - EventPublisher emits AuthEvent records best-effort. The redis streams
//     implementation bounds each publish with a timeout and counts failures
//     instead of blocking or silently dropping, so authentication never waits
//     on the event stream.
//
// Auther composes the three into the request flow: verify, issue, publish.
package clientauth

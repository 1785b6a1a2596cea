// Package auth authenticates api callers.
//
// Two kinds of credentials are accepted as a bearer token:
//   - an access token (HS256 JWT) handed out after a Sign-In with Ethereum login
//   - a static api key "<id>.<secret>" of an enabled api user
//
// # Sign-In with Ethereum
//
// A client fetches a nonce, lets the wallet sign an EIP-4361 message that
// carries it and posts message and signature to the verify endpoint.
// The signature is checked as an EOA signature first (EIP-191). When that
// fails and the address holds code, the contract is asked through EIP-1271
// isValidSignature. Nonces live in the key/value storage and are single use.
//
// # Scopes
//
// Every principal carries scopes. A SIWE login always grants reader:public and
// adds badgeholder when the address is a citizen of the tenant. Api users get
// reader:public plus the scopes stored with them.
//
// Example usage:
//
//	svc := auth.NewService(db, cfg.Auth, storage, chains)
//
//	api.Post("/retrofunding/rounds/:roundId/ballots/:address/submit",
//	    svc.RequireAuth(),
//	    auth.RequireScope(auth.ScopeBadgeholder),
//	    handler,
//	)
package auth

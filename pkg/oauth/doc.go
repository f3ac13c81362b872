// Package oauth implements the OAuth2 authorization-code login used by the
// catalog for Reddit, GitHub and Google.
//
// A Registry holds one Provider record per provider: endpoints, client
// credentials, scope, and how the user-info response and revoke call look.
// A Flow drives every provider through the same four steps:
//
//	authURL, err := flow.BeginLogin(ctx, sess, "github")       // redirect the browser here
//	id, err := flow.HandleCallback(ctx, sess, "github", state, code)
//	err = flow.EndLogin(ctx, sess, "github")                    // revoke and forget
//
// State, token and identity are kept in the caller's Session under the keys
// returned by StateKey, TokenKey and ProviderIDKey plus KeyUserID, KeyUsername,
// KeyPicture and KeyProvider. Only a successful callback or a confirmed
// revocation changes them; every other outcome leaves the session as it was,
// except that a matching state is consumed before the token exchange.
//
// Errors are sentinels to be matched with errors.Is. Connection failures are
// joined with ErrProviderUnreachable, and HTTPStatus maps any of them to the
// status code the web layer should return.
package oauth

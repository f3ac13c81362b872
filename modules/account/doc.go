// Package account serves login and logout through OAuth providers.
//
// Login pages, provider redirects and callbacks are mounted under /login,
// logout under /logout. The handlers drive an oauth.Flow and move the
// browser session between anonymous and authenticated with session.Manager.
package account

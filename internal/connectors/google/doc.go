// Package google provides shared glue for Google APIs: the oauth2
// TokenSource adapter over the session controller, the userinfo fetch, and
// the request rate limiter used by the Calendar client.
package google

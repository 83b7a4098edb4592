// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The AuthService here is the OAuth session controller: it owns the
// authorization flow, the token lifecycle, and the authenticated request
// path. Everything else in the application reaches Google through it.
package services

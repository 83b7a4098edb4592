// Package domain defines the core business entities for Restwell.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TokenSet: The OAuth credential set guarding Google Calendar access
//   - AuthPhase: The logical state of the authorization flow
//   - OAuthApp: OAuth application (client) configuration
//   - Activity: A wellness activity with a derived category
//   - SuggestedSlot: A proposed self-care slot
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

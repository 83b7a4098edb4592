// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TokenStore: Session-scoped credential persistence
//   - TokenEndpoint: OAuth code exchange and token refresh
//   - CallbackListener / ListenerFactory: Local redirect surface
//   - BrowserOpener: Launches the consent page
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ActivityStore: Wellness activity log (history commands disabled)
//   - SchedulerStore: Background task state (scheduler disabled)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven

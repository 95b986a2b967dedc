// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines whether it is
// enabled and how it registers its routes.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager struct holds the registry of available features. It handles:
//   - Registration of features via Register()
//   - Loading of enabled features via LoadAll()
//
// The series and export features are registered this way by the start command.
package loader

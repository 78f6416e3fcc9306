// Package loader registers HTTP features on the Fiber application.
//
// A feature owns its routes and reports whether configuration enabled it:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Manager loads registered features in registration order. Disabled features
// are skipped with an info entry; the first Load error aborts LoadAll and is
// returned wrapped with the feature name. A disabled feature may still run
// background work, as the catalog does, since only its routes are withheld.
package loader

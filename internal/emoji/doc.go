// Package emoji provides the static emoji sentiment prior table.
//
// The default table is embedded from default_priors.yaml. A replacement file with the same
// schema can be loaded at startup. Tables are read-only after construction and safe for
// concurrent use.
package emoji

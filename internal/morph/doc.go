// Package morph turns a role's compiled declaration into an abstract,
// interface-shaped contract.
//
// The pass visits the type node first and then snapshots of its custom
// attributes, properties, fields, events and methods. It never edits the graph
// itself: attribute changes, removals and body clears are scheduled on the
// run's mutation context and only happen at commit. Decisions read the
// pre-morph declaration, so a second run over a committed role plans nothing.
package morph

// Package model defines the shared value types of the curation core: the
// update descriptors produced by every mutating operation, and the Model
// interface through which a Session receives a dataset's initial state.
//
// The package is import-free within the module except for core, so every
// other package (clustering, metadata, history, dataset, the root facade)
// can exchange these types without cycles.
package model

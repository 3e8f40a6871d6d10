// Package aggregate decides the outcome of one in-flight operation from the
// peer responses collected so far. It provides the threshold classifier,
// the verdict type it produces, and the single-assignment result handle the
// caller observes.
package aggregate

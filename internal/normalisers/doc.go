// Package normalisers provides implementations of the Normaliser interface
// for the supported upload formats. Each normaliser knows how to extract a
// single text string from one file type.
//
// Normalisers are registered with the Registry at startup.
package normalisers

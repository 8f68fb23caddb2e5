// Package normalisers provides implementations of the Normaliser interface
// for the supported upload formats. Each normaliser knows how to extract
// plain text from one document type.
//
// Normalisers are registered with a Registry, which implements
// driven.TextExtractor and dispatches on the file extension.
package normalisers

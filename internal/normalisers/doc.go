// Package normalisers renders README sources as plain text for terminals.
//
// READMEs are mostly Markdown with embedded HTML, so PlainText runs the
// Markdown normaliser first and strips the remaining tags afterwards.
package normalisers

// Package html extracts readable text from HTML, both whole documents and
// the fragments embedded in Markdown READMEs.
package html

// Package catalog loads match candidates from a file and keeps them current.
//
// Two file formats are understood. YAML files (.yaml, .yml) hold a sequence
// whose entries are either plain strings or mappings with "text" and an
// optional "data" value:
//
//	- apple
//	- text: banana
//	  data: {sku: 42}
//
// Any other file is read as text with one candidate per line. Blank lines
// and lines starting with '#' are skipped.
//
// Watch reloads the catalog when the file changes on disk. A reload that
// fails leaves the previous items in place.
package catalog

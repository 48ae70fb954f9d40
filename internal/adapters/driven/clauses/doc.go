// Package clauses provides ClauseDictionary implementations.
//
// The file dictionary reads a title to body mapping from JSON, YAML or
// TOML, selected by extension. Both a plain mapping and a list of
// {title, body} entries are accepted. A missing file is an empty
// dictionary.
package clauses

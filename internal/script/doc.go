// Package script runs user-supplied Lua normalisers.
//
// A script defines a global function normalize(s) returning a string. The
// matcher calls it on the query and on every candidate before scoring, so a
// script can strip prefixes, expand abbreviations or drop noise words:
//
//	function normalize(s)
//	  s = string.gsub(s, "^the%s+", "")
//	  return s
//	end
//
// Scripts run in a restricted state: only the base, table, string and math
// libraries are available, and the functions that load code (dofile,
// loadfile, load, loadstring, require, module) are removed. Each call is
// bounded by a timeout.
package script

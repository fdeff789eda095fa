// Package match provides edit-distance name scoring used to suggest the
// member or variant a mismatched name most likely refers to.
//
// Key functions:
//   - Levenshtein: computes edit distance between strings
//   - NameScore: case and separator insensitive similarity
//   - Suggest: ranks candidate names above a threshold
package match

// Package language maps the engine's numeric language identifiers to display
// names and codes.
//
// Localized strings store each variant under a packed ID: language ID times
// two, plus one when the line is voiced by a feminine speaker. DecodeID and
// EncodeID convert between the packed form and (language, gender) pairs.
package language

// Package recommend suggests a shoe size for a catalog entry from the user's
// own history of owned shoes and their fit feedback.
//
// The engine is a pure function over in-memory data. It has no state, does no
// I/O and never fails: when the history holds nothing useful it reports the
// Unknown sentinel with zero confidence.
//
// Tiers, first match wins:
//
//	exact  brand and model match, fit perfect     -> that record's size, 0.9
//	brand  brand matches, fit perfect             -> mean size (1 decimal), 0.7
//	none                                          -> "Unknown", 0
//
// Matching is case-insensitive. Sizes that do not parse as numbers are left
// out of the brand-tier mean. The mean is rounded half away from zero on the
// decimal value, so 1.45 gives "1.5"; rounding the nearest binary float, as
// JavaScript's toFixed(1) does, would give "1.4".
//
// By default the brand tier averages raw values from every size system. An
// Engine built with PolicySameSystem only averages records recorded in the
// requested system. Values are filtered, never converted.
package recommend

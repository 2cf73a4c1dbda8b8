// Package classify derives the drawing classification from the filename,
// the file size and the text stage summary.
//
// All rules are fixed heuristics. The drawing type comes from filename
// keywords, the style from room counts and labels, and the complexity tier
// from a score mixing text regions, rooms and file size. The conversion time
// estimate multiplies a 25 second base by one factor per signal and is capped
// at three minutes.
package classify

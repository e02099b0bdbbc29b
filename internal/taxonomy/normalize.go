// Package taxonomy holds the pure algorithms shared by every taxonomy type:
// tree construction, sibling reordering and name canonicalization.
package taxonomy

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// orthography unifies Arabic spelling variants that editors and imported
// spreadsheets use interchangeably.
var orthography = strings.NewReplacer(
	"أ", "ا",
	"إ", "ا",
	"آ", "ا",
	"ٱ", "ا",
	"ة", "ه",
	"ى", "ي",
	// Hamza and madda marks left uncomposed after NFC would recompose with
	// the bare alef on a second pass.
	"\u0653", "",
	"\u0654", "",
	"\u0655", "",
)

// minSubstringMatch is the shortest canonical form allowed to match by
// containment. Shorter names only match exactly.
const minSubstringMatch = 3

// Normalize returns the canonical form of text used for comparison. The
// result of Normalize is a fixed point: Normalize(Normalize(s)) == Normalize(s).
// Invalid UTF-8 is replaced with U+FFFD first.
func Normalize(text string) string {
	s := norm.NFC.String(strings.ToValidUTF8(text, "\uFFFD"))
	s = orthography.Replace(s)
	// Stripping a hamza mark can leave a base letter next to a mark it
	// composes with, so compose again.
	s = norm.NFC.String(s)
	return strings.TrimSpace(s)
}

// Match reports whether two names refer to the same entry: equal canonical
// forms, or one canonical form containing the other when the shorter one is
// longer than minSubstringMatch runes.
func Match(a, b string) bool {
	return matchCanonical(Normalize(a), Normalize(b))
}

func matchCanonical(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	shorter, longer := a, b
	if utf8.RuneCountInString(shorter) > utf8.RuneCountInString(longer) {
		shorter, longer = longer, shorter
	}
	if utf8.RuneCountInString(shorter) <= minSubstringMatch {
		return false
	}
	return strings.Contains(longer, shorter)
}

// MatchCanonical is Match for inputs that are already canonical.
func MatchCanonical(a, b string) bool {
	return matchCanonical(a, b)
}

package voting

import "golang.org/x/text/unicode/norm"

// Emoji constants are defined from Unicode code points, never from pasted
// literal bytes: mis-encoded emoji literals have historically broken raw-byte
// comparisons. Every comparison goes through Normalize.
const (
	// PersonEmoji (U+1F9D1) marks human presence.
	PersonEmoji = "\U0001F9D1"
	// FaceEmoji (U+1F600) is emitted by the face analyzer.
	FaceEmoji = "\U0001F600"
	// NSFWEmoji (U+1F51E) is emitted by the content moderation analyzer.
	NSFWEmoji = "\U0001F51E"
	// TextEmoji (U+1F4DD) marks extracted text.
	TextEmoji = "\U0001F4DD"
)

// DefaultConfidence backs votes whose prediction reported no confidence,
// including caption word mappings.
const DefaultConfidence = 0.75

// Normalize returns the NFC form of an emoji string so variation-selector
// and ZWJ-sequence differences don't split voting groups.
func Normalize(emoji string) string {
	return norm.NFC.String(emoji)
}

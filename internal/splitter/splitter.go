package splitter

// Part size limits per SMS segment. A message that fits one segment gets
// the full segment; concatenated messages lose 7 septets (6 octets) per
// segment to the user-data header that carries the part sequence.
const (
	SingleSegmentGSM  = 160
	MultiSegmentGSM   = 153
	SingleSegmentUCS2 = 70
	MultiSegmentUCS2  = 67
)

const gsmBasicChars = "@£$¥èéùìòÇ\nØø\rÅåΔ_ΦΓΛΩΠΨΣΘΞÆæßÉ !\"#¤%&'()*+,-./0123456789:;<=>?" +
	"¡ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÑÜ§¿abcdefghijklmnopqrstuvwxyzäöñüà"

const gsmExtendedChars = "^{}\\[~]|€"

var (
	gsmBasic    = map[rune]struct{}{}
	gsmExtended = map[rune]struct{}{}
)

func init() {
	for _, r := range gsmBasicChars {
		gsmBasic[r] = struct{}{}
	}
	for _, r := range gsmExtendedChars {
		gsmExtended[r] = struct{}{}
	}
}

// PartSplitter divides message text into transport-sized part payloads.
// Encoding is chosen per message: GSM 7-bit when every rune fits the GSM
// 03.38 alphabet, UCS-2 otherwise.
type PartSplitter struct{}

func New() *PartSplitter {
	return &PartSplitter{}
}

func (s *PartSplitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	if isGSM(text) {
		return splitBySeptets(text)
	}
	return splitByRunes(text, SingleSegmentUCS2, MultiSegmentUCS2)
}

func isGSM(text string) bool {
	for _, r := range text {
		if _, ok := gsmBasic[r]; ok {
			continue
		}
		if _, ok := gsmExtended[r]; ok {
			continue
		}
		return false
	}
	return true
}

// septets is the GSM 7-bit cost of one rune: extension-table characters
// are escaped and cost two.
func septets(r rune) int {
	if _, ok := gsmExtended[r]; ok {
		return 2
	}
	return 1
}

func splitBySeptets(text string) []string {
	total := 0
	for _, r := range text {
		total += septets(r)
	}
	if total <= SingleSegmentGSM {
		return []string{text}
	}

	var parts []string
	var cur []rune
	used := 0
	for _, r := range text {
		cost := septets(r)
		if used+cost > MultiSegmentGSM {
			parts = append(parts, string(cur))
			cur = cur[:0]
			used = 0
		}
		cur = append(cur, r)
		used += cost
	}
	if len(cur) > 0 {
		parts = append(parts, string(cur))
	}
	return parts
}

func splitByRunes(text string, single, multi int) []string {
	runes := []rune(text)
	if len(runes) <= single {
		return []string{text}
	}

	parts := make([]string, 0, (len(runes)+multi-1)/multi)
	for start := 0; start < len(runes); start += multi {
		end := start + multi
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

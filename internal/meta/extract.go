package meta

import (
	"html"
	"regexp"
	"strings"
)

// Extractor turns raw page markup into deck records. Extraction is best
// effort; markup it does not recognize yields no records.
type Extractor interface {
	Extract(markup string) []DeckRecord
}

// maxRecords caps how many decks are taken from a single page.
const maxRecords = 50

// GoldfishExtractor understands the MTGGoldfish metagame page.
//
// Tile layout (as of 2024):
//
//	<div class='archetype-tile' id='28086'>
//	  <div class='archetype-tile-title'>
//	    <a href="/archetype/...">Deck Name</a>
//	  </div>
//	  <div class='archetype-tile-statistic metagame-percentage'>
//	    <div class='archetype-tile-statistic-value'>
//	      21.3%
//	    </div>
//	  </div>
//	</div>
type GoldfishExtractor struct{}

var (
	tilePattern = regexp.MustCompile(`(?s)<div[^>]*class=['"][^'"]*archetype-tile-title[^'"]*['"][^>]*>.*?<a[^>]*href=['"]([^'"]*)['"][^>]*>([^<]+)</a>.*?<div[^>]*class=['"][^'"]*archetype-tile-statistic-value[^'"]*['"][^>]*>\s*([^<]*?)\s*</div>`)

	tablePattern = regexp.MustCompile(`(?s)<tr[^>]*>.*?<a[^>]*href="(/archetype/[^"#]+)[^"]*"[^>]*>([^<]+)</a>.*?<td[^>]*>\s*(\d+\.?\d*\s*%)\s*</td>`)
)

// Extract implements Extractor. Records keep page order, which the site
// sorts by descending share.
func (GoldfishExtractor) Extract(markup string) []DeckRecord {
	matches := tilePattern.FindAllStringSubmatch(markup, -1)
	if len(matches) == 0 {
		matches = tablePattern.FindAllStringSubmatch(markup, -1)
	}

	records := make([]DeckRecord, 0, len(matches))
	for _, match := range matches {
		if len(match) < 4 {
			continue
		}

		name := strings.TrimSpace(html.UnescapeString(match[2]))
		if name == "" {
			continue
		}

		records = append(records, DeckRecord{
			Name:      name,
			URL:       strings.TrimSpace(match[1]),
			MetaShare: ShareValue(strings.TrimSpace(match[3])),
		})

		if len(records) >= maxRecords {
			break
		}
	}

	return records
}

// colorWords maps deck-name words to color letters.
var colorWords = []struct {
	word   string
	colors string
}{
	{"five-color", "WUBRG"}, {"5-color", "WUBRG"}, {"5c", "WUBRG"},
	{"glint", "UBRG"}, {"dune", "WBRG"}, {"ink", "WURG"}, {"witch", "WUBG"}, {"yore", "WUBR"},
	{"esper", "WUB"}, {"grixis", "UBR"}, {"jund", "BRG"}, {"naya", "WRG"}, {"bant", "WUG"},
	{"abzan", "WBG"}, {"jeskai", "WUR"}, {"sultai", "UBG"}, {"mardu", "WBR"}, {"temur", "URG"},
	{"azorius", "WU"}, {"dimir", "UB"}, {"rakdos", "BR"}, {"gruul", "RG"}, {"selesnya", "WG"},
	{"orzhov", "WB"}, {"izzet", "UR"}, {"golgari", "BG"}, {"boros", "WR"}, {"simic", "UG"},
	{"white", "W"}, {"blue", "U"}, {"black", "B"}, {"red", "R"}, {"green", "G"},
}

// ColorsFromName guesses a deck's colors from guild, shard and color words in
// its name. The first matching word wins; it returns "" when nothing matches.
func ColorsFromName(name string) string {
	lower := strings.ToLower(name)
	for _, cw := range colorWords {
		if containsWord(lower, cw.word) {
			return cw.colors
		}
	}
	return ""
}

func containsWord(s, word string) bool {
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == '(' || r == ')'
	}) {
		if field == word {
			return true
		}
	}
	// hyphenated words like "five-color"
	return strings.Contains(word, "-") && strings.Contains(s, word)
}

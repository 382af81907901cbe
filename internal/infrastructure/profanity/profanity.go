package profanity

import (
	"embed"
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"sync"
)

var (
	defaultFilter *Filter
	once          sync.Once
)

//go:embed words.json
var jsonData embed.FS

func loadBannedWords() []string {
	data, err := jsonData.ReadFile("words.json")
	if err != nil {
		log.Fatalf("Failed to read embedded file: %s", err)
	}

	var bannedWords []string
	if err := json.Unmarshal(data, &bannedWords); err != nil {
		log.Fatalf("Failed to unmarshal JSON: %s", err)
	}
	return bannedWords
}

// Filter screens player display names against the embedded banned-word
// list. Accents and common leetspeak substitutions are folded first so
// trivial obfuscation does not slip through.
type Filter struct {
	regex *regexp.Regexp
}

func NewFilter() *Filter {
	once.Do(func() {
		defaultFilter = &Filter{regex: buildMasterRegex()}
	})
	return defaultFilter
}

func (f *Filter) Contains(text string) bool {
	if text == "" {
		return false
	}
	return f.regex.MatchString(normalizeText(text))
}

func normalizeText(text string) string {
	s := strings.ToLower(text)
	s = strings.Map(func(r rune) rune {
		switch r {
		case 'á', 'à', 'â', 'ä', 'ã':
			return 'a'
		case 'é', 'è', 'ê', 'ë':
			return 'e'
		case 'í', 'ì', 'î', 'ï':
			return 'i'
		case 'ó', 'ò', 'ô', 'ö', 'õ':
			return 'o'
		case 'ú', 'ù', 'û', 'ü':
			return 'u'
		case 'ñ':
			return 'n'
		default:
			return r
		}
	}, s)

	s = strings.NewReplacer(
		"@", "a", "4", "a",
		"3", "e",
		"1", "i", "!", "i", "|", "i",
		"0", "o",
		"$", "s", "5", "s",
		"7", "t",
	).Replace(s)

	return regexp.MustCompile(`[\s_.\-*/\\|]+`).ReplaceAllString(s, " ")
}

func buildMasterRegex() *regexp.Regexp {
	patterns := make([]string, 0, 32)
	for _, base := range loadBannedWords() {
		patterns = append(patterns, regexp.QuoteMeta(strings.ToLower(base)))
	}

	expression := `(?:^|\W)(` + strings.Join(patterns, "|") + `)(?:$|\W)`
	return regexp.MustCompile(expression)
}

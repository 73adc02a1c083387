// Package textnorm normalises titles and URLs into plain lower-case tokens
// for topic modelling and lexical relevance.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	nonAlnum     = regexp.MustCompile(`[^a-z0-9\s]+`)
	multiSpace   = regexp.MustCompile(`\s+`)
	accentFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize lower-cases text, folds accents, removes URLs and replaces every
// non-alphanumeric run with a single space.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	folded, _, err := transform.String(accentFolder, text)
	if err != nil {
		folded = text
	}
	s := strings.ToLower(folded)
	s = urlPattern.ReplaceAllString(s, " ")
	s = nonAlnum.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokens returns the normalised words of text, dropping stop words and
// tokens shorter than two characters.
func Tokens(text string) []string {
	fields := strings.Fields(Normalize(text))
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || IsStopWord(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// IsStopWord reports whether w is an English stop word or a URL fragment
// that carries no topical meaning.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

var stopWords = func() map[string]struct{} {
	words := strings.Fields(`
a about above after again against all almost alone along already also although always am among
an and another any anyhow anyone anything anyway anywhere are around as at back be became because
become becomes been before beforehand behind being below beside besides between beyond both but by
can cannot could did do does doing done down due during each either else elsewhere enough etc even
ever every everyone everything everywhere except few for former formerly from further get give go
had has have having he hence her here hers herself him himself his how however i ie if in indeed
into is it its itself just keep last latter least less made many may me meanwhile might mine more
moreover most mostly much must my myself namely neither never nevertheless next no nobody none nor
not nothing now nowhere of off often on once one only onto or other others otherwise our ours
ourselves out over own part per perhaps please put rather re same see seem seemed seeming seems
several she should show since so some somehow someone something sometime sometimes somewhere still
such take than that the their theirs them themselves then thence there thereafter thereby therefore
therein thereupon these they this those though through throughout thru thus to together too toward
towards under until up upon us very via was we well were what whatever when whence whenever where
whereafter whereas whereby wherein whereupon wherever whether which while whither who whoever whole
whom whose why will with within without would yet you your yours yourself yourselves
http https www com org net html htm php aspx index`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/bytebank/bytebank-backend/internal/domain"
)

// categoryKeywords maps each expense category to the description keywords
// that suggest it. Order matters: the first category with a match wins.
var categoryKeywords = []struct {
	category domain.Category
	keywords []string
}{
	{domain.CategoryAlimentacao, []string{
		"mercado", "supermercado", "ifood", "comida", "alimentação",
		"restaurante", "padaria", "lanche", "cafe",
	}},
	{domain.CategoryMoradia, []string{
		"aluguel", "condominio", "condomínio", "luz", "energia",
		"agua", "água", "internet", "gas", "gás",
	}},
	{domain.CategoryLazer, []string{
		"cinema", "netflix", "spotify", "show", "viagem", "bar", "jogo",
	}},
	{domain.CategoryTransporte, []string{
		"uber", "99", "taxi", "táxi", "gasolina", "combustivel",
		"combustível", "metro", "metrô", "onibus", "ônibus",
	}},
}

// Keyword suggests expense categories by keyword matching over the
// normalized description. It implements domain.Classifier and is stateless,
// so a single instance can be shared freely.
type Keyword struct {
	table []entry
}

type entry struct {
	category domain.Category
	keywords []string
}

// NewKeyword builds the classifier with its keyword table pre-normalized
func NewKeyword() *Keyword {
	k := &Keyword{}
	for _, row := range categoryKeywords {
		e := entry{category: row.category}
		for _, w := range row.keywords {
			e.keywords = append(e.keywords, normalize(w))
		}
		k.table = append(k.table, e)
	}
	return k
}

// Suggest returns the first category whose keyword list matches the
// description, or false when nothing matches.
func (k *Keyword) Suggest(description string) (domain.Category, bool) {
	text := normalize(description)
	if text == "" {
		return "", false
	}
	for _, e := range k.table {
		for _, w := range e.keywords {
			if strings.Contains(text, w) {
				return e.category, true
			}
		}
	}
	return "", false
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalize case-folds and strips diacritics so "Condomínio" matches
// "condominio" and vice versa.
func normalize(s string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return folded
}

package services

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// stopwords are dropped before scoring.
var stopwords = func() map[string]struct{} {
	words := []string{
		// English
		"about", "after", "all", "also", "an", "and", "any", "are", "as", "at",
		"be", "been", "before", "but", "by", "can", "could", "do", "does", "each",
		"for", "from", "had", "has", "have", "he", "her", "his", "how", "if",
		"in", "into", "is", "it", "its", "may", "more", "most", "no", "not",
		"of", "on", "one", "only", "or", "other", "our", "out", "over", "she",
		"should", "so", "some", "such", "than", "that", "the", "their", "them",
		"then", "there", "these", "they", "this", "those", "through", "to", "two",
		"under", "up", "use", "used", "using", "was", "we", "were", "what", "when",
		"where", "which", "while", "who", "will", "with", "would", "you", "your",
		// Chinese
		"可以", "如果", "因为", "所以", "虽然", "但是", "然而", "因此", "并且", "或者",
		"一个", "一种", "一些", "这个", "那个", "什么", "怎么", "如何", "进行", "通过",
		"根据", "按照", "由于", "例如", "比如", "我们", "他们", "它们", "这些", "那些",
		"的是", "是一", "在于", "就是", "还是", "以及", "其中", "之间", "已经", "没有",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// KeywordExtractor scores terms across a set of texts with TF-IDF and
// raw frequency. Latin-script words of two or more letters and
// bigrams of ideographic runs are the candidate terms.
type KeywordExtractor struct{}

// NewKeywordExtractor creates a keyword extractor.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Tokenize returns the candidate terms of text in order.
func (e *KeywordExtractor) Tokenize(text string) []string {
	var tokens []string
	var word []rune
	var han []rune

	flushWord := func() {
		if len(word) >= 2 {
			tokens = appendTerm(tokens, string(word))
		}
		word = word[:0]
	}
	flushHan := func() {
		for i := 0; i+1 < len(han); i++ {
			tokens = appendTerm(tokens, string(han[i:i+2]))
		}
		han = han[:0]
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flushWord()
			han = append(han, r)
		case unicode.IsLetter(r):
			flushHan()
			word = append(word, unicode.ToLower(r))
		default:
			flushWord()
			flushHan()
		}
	}
	flushWord()
	flushHan()
	return tokens
}

func appendTerm(tokens []string, term string) []string {
	if _, stop := stopwords[term]; stop {
		return tokens
	}
	return append(tokens, term)
}

// TFIDF returns terms ranked by their TF-IDF weight averaged over texts.
// Each text's vector is L2-normalised and the IDF is smoothed, so a term
// present in every text still scores above zero.
func (e *KeywordExtractor) TFIDF(texts []string, n int) []domain.Keyword {
	var docs []map[string]int
	for _, t := range texts {
		counts := make(map[string]int)
		for _, tok := range e.Tokenize(t) {
			counts[tok]++
		}
		if len(counts) > 0 {
			docs = append(docs, counts)
		}
	}
	if len(docs) == 0 {
		return nil
	}

	df := make(map[string]int)
	for _, counts := range docs {
		for term := range counts {
			df[term]++
		}
	}
	total := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, d := range df {
		idf[term] = math.Log((1+total)/(1+float64(d))) + 1
	}

	sums := make(map[string]float64, len(df))
	for _, counts := range docs {
		weights := make(map[string]float64, len(counts))
		var norm float64
		for term, c := range counts {
			w := float64(c) * idf[term]
			weights[term] = w
			norm += w * w
		}
		norm = math.Sqrt(norm)
		for term, w := range weights {
			sums[term] += w / norm
		}
	}

	keywords := make([]domain.Keyword, 0, len(sums))
	for term, s := range sums {
		keywords = append(keywords, domain.Keyword{Term: term, Score: s / total})
	}
	return topKeywords(keywords, n)
}

// Frequent returns terms ranked by raw count, scored as a share of all
// tokens.
func (e *KeywordExtractor) Frequent(texts []string, n int) []domain.Keyword {
	counts := make(map[string]int)
	var total int
	for _, t := range texts {
		for _, tok := range e.Tokenize(t) {
			counts[tok]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	keywords := make([]domain.Keyword, 0, len(counts))
	for term, c := range counts {
		keywords = append(keywords, domain.Keyword{Term: term, Score: float64(c) / float64(total)})
	}
	return topKeywords(keywords, n)
}

// Keywords merges the TF-IDF ranking with the frequency ranking, TF-IDF
// terms first, and returns at most n distinct terms.
func (e *KeywordExtractor) Keywords(texts []string, n int) []domain.Keyword {
	if n <= 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var merged []domain.Keyword
	for _, list := range [][]domain.Keyword{e.TFIDF(texts, n), e.Frequent(texts, n)} {
		for _, k := range list {
			if _, ok := seen[k.Term]; ok {
				continue
			}
			seen[k.Term] = struct{}{}
			merged = append(merged, k)
			if len(merged) == n {
				return merged
			}
		}
	}
	return merged
}

// TrendingTopics returns the terms of Keywords.
func (e *KeywordExtractor) TrendingTopics(texts []string, n int) []string {
	keywords := e.Keywords(texts, n)
	terms := make([]string, len(keywords))
	for i, k := range keywords {
		terms[i] = k.Term
	}
	return terms
}

func topKeywords(keywords []domain.Keyword, n int) []domain.Keyword {
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Score != keywords[j].Score {
			return keywords[i].Score > keywords[j].Score
		}
		return strings.Compare(keywords[i].Term, keywords[j].Term) < 0
	})
	if n > 0 && len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}

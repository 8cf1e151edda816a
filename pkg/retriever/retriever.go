package retriever

import (
	"regexp"
	"sort"
	"strings"

	"github.com/asknotes/asknotes/internal/models"
)

// DefaultTopK is the default evidence-set size per question.
const DefaultTopK = 6

// FallbackPolicy controls what happens when keyword scoring selects
// nothing.
type FallbackPolicy string

const (
	// FallbackStrict reports insufficient context when no chunk scores
	// above zero.
	FallbackStrict FallbackPolicy = "strict"
	// FallbackLenient falls back to the first K chunks in document
	// order so the grounding step always has some context.
	FallbackLenient FallbackPolicy = "lenient"
)

type RetrieverConfig struct {
	TopK          int
	MinKeywordLen int
	Fallback      FallbackPolicy
}

// Retriever selects the evidence set for a question by keyword scoring.
type Retriever struct {
	config RetrieverConfig
}

// Result is the outcome of one retrieval call. InsufficientContext is
// an expected, user-visible outcome, not a fault.
type Result struct {
	TopChunks           []models.ScoredChunk
	InsufficientContext bool
}

func NewWithConfig(config RetrieverConfig) Retriever {
	if config.TopK <= 0 {
		config.TopK = DefaultTopK
	}
	if config.MinKeywordLen <= 0 {
		config.MinKeywordLen = DefaultMinKeywordLen
	}
	if config.Fallback == "" {
		config.Fallback = FallbackStrict
	}
	return Retriever{config: config}
}

// Retrieve scores every chunk against the question's keywords and
// returns the top-K with a positive score. It never returns an error.
func (r *Retriever) Retrieve(question string, chunks []models.Chunk) Result {
	if len(chunks) == 0 {
		return Result{InsufficientContext: true}
	}

	keywords := extractKeywords(question, r.config.MinKeywordLen)
	if len(keywords) == 0 {
		return r.fallback(chunks)
	}

	scored := make([]models.ScoredChunk, len(chunks))
	for i, chunk := range chunks {
		scored[i] = models.ScoredChunk{
			Chunk: chunk,
			Score: scoreChunk(chunk.Text, keywords),
		}
	}

	// Stable sort keeps ties in insertion order for reproducibility.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	var top []models.ScoredChunk
	for _, sc := range scored {
		if sc.Score <= 0 || len(top) == r.config.TopK {
			break
		}
		top = append(top, sc)
	}

	if len(top) == 0 {
		return r.fallback(chunks)
	}
	return Result{TopChunks: top}
}

func (r *Retriever) fallback(chunks []models.Chunk) Result {
	if r.config.Fallback != FallbackLenient {
		return Result{InsufficientContext: true}
	}
	k := r.config.TopK
	if k > len(chunks) {
		k = len(chunks)
	}
	top := make([]models.ScoredChunk, k)
	for i := 0; i < k; i++ {
		top[i] = models.ScoredChunk{Chunk: chunks[i]}
	}
	return Result{TopChunks: top}
}

// scoreChunk accumulates, per keyword, a substring-containment bonus
// plus the count of whole-word matches. Substring matching favors
// recall, whole-word matching favors precision; no length
// normalization is applied since chunks are size-capped.
func scoreChunk(text string, keywords []string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			score += 2
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			// Keyword is not a valid regex fragment: keep the
			// substring bonus, skip the whole-word bonus.
			continue
		}
		score += len(re.FindAllStringIndex(lower, -1))
	}
	return score
}

package complexity

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/routeforge/gateway/internal/lru"
	"github.com/routeforge/gateway/types"
)

// technicalTerms is the closed vocabulary checked against the
// lower-cased prompt via substring containment (multi-word terms like
// "machine learning" are matched as phrases, not single words).
var technicalTerms = []string{
	"algorithm", "api", "authentication", "backend", "database", "encryption",
	"framework", "frontend", "http", "json", "microservices", "oauth",
	"protocol", "query", "schema", "sdk", "sql", "ssl", "tls", "webhook",
	"docker", "kubernetes", "aws", "azure", "gcp", "rest", "graphql",
	"websocket", "redis", "postgresql", "mongodb", "elasticsearch",
	"machine learning", "ai", "neural network", "tensorflow", "pytorch",
	"deployment", "ci/cd", "git", "version control", "testing", "unit test",
	"integration test", "load balancing", "scaling", "monitoring", "logging",
}

var (
	stepIndicators       = []string{"step", "first", "second", "then", "next", "finally", "1.", "2.", "3."}
	creativeIndicators   = []string{"creative", "story", "imagine", "write a", "compose", "narrative"}
	analyticalIndicators = []string{"analyze", "compare", "evaluate", "assess", "examine", "investigate"}
	codeIndicators       = []string{"code", "function", "class", "program", "script", "algorithm"}
	reasoningIndicators  = []string{"why", "how", "explain", "reason", "logic", "because"}
)

var (
	reCodeBlock = regexp.MustCompile("```[\\s\\S]*?```")
	reURL       = regexp.MustCompile(`https?://[^\s]+`)
	reSentence  = regexp.MustCompile(`[.!?]+`)
)

// Analyzer scores prompts against the configured weights, saturations,
// and tier thresholds, caching results in memory keyed by a hash of the
// prompt.
type Analyzer struct {
	cfg   Config
	cache *lru.Cache[types.ComplexityScore]
}

// New creates an Analyzer. A zero Config is replaced with DefaultConfig.
func New(cfg Config) *Analyzer {
	if cfg.Weights == (Weights{}) {
		cfg = DefaultConfig()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 2000
	}
	return &Analyzer{cfg: cfg, cache: lru.New[types.ComplexityScore](size, 0)}
}

// Analyze scores prompt, consulting the in-memory result cache first.
func (a *Analyzer) Analyze(prompt string) types.ComplexityScore {
	key := hashPrompt(prompt)
	if cached, ok := a.cache.Get(key); ok {
		return cached
	}

	score := a.analyze(prompt)
	a.cache.Set(key, score)
	return score
}

// ClearCache empties the in-memory analysis cache.
func (a *Analyzer) ClearCache() {
	a.cache.Clear()
}

func hashPrompt(prompt string) string {
	sum := md5.Sum([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

func (a *Analyzer) analyze(prompt string) types.ComplexityScore {
	lower := strings.ToLower(prompt)

	wordCount := len(strings.Fields(prompt))
	charCount := len(prompt)
	sentenceCount := len(reSentence.Split(prompt, -1))
	codeBlocks := len(reCodeBlock.FindAllString(prompt, -1))
	urls := len(reURL.FindAllString(prompt, -1))
	technicalHits := countContains(lower, technicalTerms)

	factors := a.computeFactors(lower, wordCount, technicalHits, codeBlocks)
	overall := a.overallScore(factors)
	tier := a.tier(overall)

	estimatedTokens := charCount / 4
	estimatedCost := float64(estimatedTokens) / 1000 * a.cfg.CostBaselineUSDPer1K

	return types.ComplexityScore{
		Score:               overall,
		Tier:                tier,
		Factors:             factors,
		CharCount:           charCount,
		WordCount:           wordCount,
		SentenceCount:       sentenceCount,
		URLCount:            urls,
		CodeBlockCount:      codeBlocks,
		EstimatedTokens:     estimatedTokens,
		EstimatedCostUSD:    estimatedCost,
		RecommendedProvider: recommendedProviderTag(tier),
	}
}

func (a *Analyzer) computeFactors(lower string, wordCount, technicalHits, codeBlocks int) types.FactorScores {
	s := a.cfg.Saturations
	return types.FactorScores{
		Length:         saturate(float64(wordCount), s.LengthWords),
		TechnicalTerms: saturate(float64(technicalHits), s.TechnicalTermHits),
		MultiStep:      saturate(float64(countContains(lower, stepIndicators)), s.MultiStepHits),
		Creative:       saturate(float64(countContains(lower, creativeIndicators)), s.CreativeHits),
		Analytical:     saturate(float64(countContains(lower, analyticalIndicators)), s.AnalyticalHits),
		CodeGeneration: saturate(float64(countContains(lower, codeIndicators)+codeBlocks), s.CodeGenerationHits),
		Reasoning:      saturate(float64(countContains(lower, reasoningIndicators)), s.ReasoningHits),
	}
}

func (a *Analyzer) overallScore(f types.FactorScores) float64 {
	w := a.cfg.Weights
	totalWeight := w.Length + w.TechnicalTerms + w.MultiStep + w.Creative + w.Analytical + w.CodeGeneration + w.Reasoning
	if totalWeight <= 0 {
		return 0
	}
	weighted := f.Length*w.Length + f.TechnicalTerms*w.TechnicalTerms + f.MultiStep*w.MultiStep +
		f.Creative*w.Creative + f.Analytical*w.Analytical + f.CodeGeneration*w.CodeGeneration + f.Reasoning*w.Reasoning
	return weighted / totalWeight
}

func (a *Analyzer) tier(score float64) types.ComplexityTier {
	t := a.cfg.Thresholds
	switch {
	case score <= t.Simple:
		return types.ComplexitySimple
	case score <= t.Moderate:
		return types.ComplexityModerate
	case score <= t.Complex:
		return types.ComplexityComplex
	default:
		return types.ComplexityVeryComplex
	}
}

// recommendedProviderTag returns the generic provider-selection tag
// (see types.ProviderConfig.HasTag) a default-routed request of this
// tier should prefer, not a hardcoded vendor name: provider lineups are
// data-driven, so the analyzer only ever speaks in tags.
func recommendedProviderTag(tier types.ComplexityTier) string {
	switch tier {
	case types.ComplexitySimple:
		return "fast"
	case types.ComplexityModerate:
		return "balanced"
	default:
		return "capable"
	}
}

func saturate(count, saturation float64) float64 {
	if saturation <= 0 {
		return 0
	}
	v := count / saturation
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

func countContains(lower string, indicators []string) int {
	count := 0
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			count++
		}
	}
	return count
}

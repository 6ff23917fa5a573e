package optimizer

import (
	"regexp"
	"strings"
)

// redundantPhrases are politeness/filler phrases elided in step 1,
// word-boundary matched, case-insensitive.
var redundantPhrases = []string{
	"please", "kindly", "if you could", "would you mind",
	"i would like you to", "i want you to", "can you",
	"i need you to", "i would appreciate if", "it would be great if",
}

var redundantPhrasePatterns = compilePhrasePatterns(redundantPhrases, `\b`, `\b`)

// contextMarkers are background/context asides dropped in step 3, along
// with any trailing comma or whitespace.
var contextMarkers = []string{
	"as you know", "as mentioned", "as stated", "as discussed",
	"previously", "earlier", "before", "in the past",
}

var contextMarkerPatterns = compilePhrasePatterns(contextMarkers, `\b`, `[,\s]*`)

type simplification struct {
	pattern     *regexp.Regexp
	replacement string
}

// simplifications maps long connectives to short equivalents, applied in
// step 2. Order does not affect the result since the patterns are
// disjoint word matches.
var simplifications = []simplification{
	{regexp.MustCompile(`(?i)\bconsequently\b`), "so"},
	{regexp.MustCompile(`(?i)\bnevertheless\b`), "but"},
	{regexp.MustCompile(`(?i)\bnonetheless\b`), "but"},
	{regexp.MustCompile(`(?i)\bmoreover\b`), "also"},
	{regexp.MustCompile(`(?i)\bfurthermore\b`), "also"},
	{regexp.MustCompile(`(?i)\badditionally\b`), "also"},
	{regexp.MustCompile(`(?i)\bhowever\b`), "but"},
	{regexp.MustCompile(`(?i)\bthus\b`), "so"},
	{regexp.MustCompile(`(?i)\btherefore\b`), "so"},
	{regexp.MustCompile(`(?i)\bhence\b`), "so"},
	{regexp.MustCompile(`(?i)\baccordingly\b`), "so"},
	{regexp.MustCompile(`(?i)\bultimately\b`), "finally"},
	{regexp.MustCompile(`(?i)\bessentially\b`), "basically"},
	{regexp.MustCompile(`(?i)\bfundamentally\b`), "basically"},
	{regexp.MustCompile(`(?i)\bprimarily\b`), "mainly"},
	{regexp.MustCompile(`(?i)\binitially\b`), "first"},
	{regexp.MustCompile(`(?i)\bsubsequently\b`), "then"},
	{regexp.MustCompile(`(?i)\bpreviously\b`), "before"},
}

var (
	reRepeatBang    = regexp.MustCompile(`[!]{2,}`)
	reRepeatQuest   = regexp.MustCompile(`[?]{2,}`)
	reRepeatDot     = regexp.MustCompile(`[.]{2,}`)
	reWhitespace    = regexp.MustCompile(`\s+`)
	reParens        = regexp.MustCompile(`\([^)]*\)`)
	reBrackets      = regexp.MustCompile(`\[[^\]]*\]`)
	reSpaceBeforePunct = regexp.MustCompile(`\s+([,.!?])`)
	reSentenceSplit = regexp.MustCompile(`[.!?]+`)
	rePoliteOpener  = regexp.MustCompile(`(?i)\b(please|kindly|can you|would you)\b`)
)

func compilePhrasePatterns(phrases []string, leftBoundary, rightBoundary string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(phrases))
	for i, phrase := range phrases {
		patterns[i] = regexp.MustCompile(`(?i)` + leftBoundary + regexp.QuoteMeta(phrase) + rightBoundary)
	}
	return patterns
}

// qualityGuardThreshold is the maximum fraction of the original token
// estimate that may be discarded before the aggressive transformation is
// abandoned in favor of a conservative one.
const qualityGuardThreshold = 0.7

// Stats summarizes the effect of one Optimize call.
type Stats struct {
	OriginalTokens     int
	OptimizedTokens    int
	TokensSaved        int
	ReductionPercent   float64
	TargetAchieved     bool
	OriginalLength     int
	OptimizedLength    int
	LengthReduction    int
}

// EstimateTokens approximates a token count as characters/4, floored.
// This is the estimator used throughout the routing core for budgeting
// and routing decisions; truth-up happens from the provider's reported
// usage after the call completes.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Optimize canonicalizes a prompt: it is pure, has no I/O, and is
// idempotent (Optimize(Optimize(p)) == Optimize(p)).
func Optimize(prompt string) string {
	aggressive := applyAggressive(prompt)

	originalTokens := EstimateTokens(prompt)
	if originalTokens == 0 {
		return aggressive
	}
	optimizedTokens := EstimateTokens(aggressive)
	reduction := float64(originalTokens-optimizedTokens) / float64(originalTokens)
	if reduction > qualityGuardThreshold {
		return applyConservative(prompt)
	}
	return aggressive
}

// OptimizeWithStats runs Optimize and returns the optimization
// statistics alongside the result, mirroring the source's
// get_optimization_stats.
func OptimizeWithStats(prompt string) (string, Stats) {
	optimized := Optimize(prompt)
	return optimized, computeStats(prompt, optimized)
}

func computeStats(original, optimized string) Stats {
	originalTokens := EstimateTokens(original)
	optimizedTokens := EstimateTokens(optimized)

	var reductionPercent float64
	if originalTokens > 0 {
		reductionPercent = float64(originalTokens-optimizedTokens) / float64(originalTokens) * 100
	}

	return Stats{
		OriginalTokens:   originalTokens,
		OptimizedTokens:  optimizedTokens,
		TokensSaved:      originalTokens - optimizedTokens,
		ReductionPercent: reductionPercent,
		TargetAchieved:   reductionPercent >= 50.0,
		OriginalLength:   len(original),
		OptimizedLength:  len(optimized),
		LengthReduction:  len(original) - len(optimized),
	}
}

// applyAggressive runs all five transformations in order.
func applyAggressive(prompt string) string {
	s := elideCourtesy(prompt)
	s = simplifyLanguage(s)
	s = removeContextMarkers(s)
	s = normalizeWhitespaceAndPunctuation(s)
	s = compressInstructions(s)
	return s
}

// applyConservative runs only steps 1 and 4, the safe subset used when
// the aggressive transformation would strip too much meaning.
func applyConservative(prompt string) string {
	s := elideCourtesy(prompt)
	s = normalizeWhitespaceAndPunctuation(s)
	return s
}

// elideCourtesy implements transformation 1: remove a closed list of
// politeness/filler phrases.
func elideCourtesy(s string) string {
	for _, pattern := range redundantPhrasePatterns {
		s = pattern.ReplaceAllString(s, "")
	}
	return s
}

// simplifyLanguage implements transformation 2: replace long connectives
// with short equivalents.
func simplifyLanguage(s string) string {
	for _, r := range simplifications {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// removeContextMarkers implements transformation 3: drop background
// asides and parenthetical/bracketed content.
func removeContextMarkers(s string) string {
	for _, pattern := range contextMarkerPatterns {
		s = pattern.ReplaceAllString(s, "")
	}
	s = reParens.ReplaceAllString(s, "")
	s = reBrackets.ReplaceAllString(s, "")
	return s
}

// normalizeWhitespaceAndPunctuation implements transformation 4: collapse
// whitespace and repeated terminal punctuation, normalize curly quotes,
// and trim.
func normalizeWhitespaceAndPunctuation(s string) string {
	s = reRepeatBang.ReplaceAllString(s, "!")
	s = reRepeatQuest.ReplaceAllString(s, "?")
	s = reRepeatDot.ReplaceAllString(s, ".")
	s = reSpaceBeforePunct.ReplaceAllString(s, "$1")
	s = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	).Replace(s)
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// compressInstructions implements transformation 5: split on sentence
// terminators, strip polite openers per sentence, and keep only the
// first clause when more than two are coordinated by "and".
func compressInstructions(s string) string {
	sentences := reSentenceSplit.Split(s, -1)
	compressed := make([]string, 0, len(sentences))

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if rePoliteOpener.MatchString(sentence) {
			sentence = rePoliteOpener.ReplaceAllString(sentence, "")
			sentence = strings.TrimSpace(sentence)
		}

		if strings.Contains(strings.ToLower(sentence), " and ") {
			parts := strings.Split(sentence, " and ")
			if len(parts) > 2 {
				sentence = parts[0]
			}
		}

		if sentence != "" {
			compressed = append(compressed, sentence)
		}
	}

	if len(compressed) == 0 {
		return ""
	}
	return strings.Join(compressed, ". ") + "."
}

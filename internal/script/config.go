package script

// Config controls the generation pipeline.
type Config struct {
	// MaxAttempts bounds full generate-parse-validate cycles before
	// giving up with a GenerationError.
	MaxAttempts int

	// MaxTokens is the token budget for one model response.
	MaxTokens int

	// Temperature controls model output randomness (0.0-1.0).
	Temperature float64

	// Language and Tone are stamped into document metadata.
	Language string
	Tone     string

	// WordsPerSecond is the assumed narration rate for the duration
	// estimate heuristic.
	WordsPerSecond float64

	// SectionPause is the assumed pause, in seconds, between sections.
	SectionPause float64

	// AllowExtraSections relaxes the validator's unknown-section check.
	// Useful if the vendor starts decorating responses.
	AllowExtraSections bool
}

// DefaultConfig returns the recommended pipeline settings.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		MaxTokens:      2000,
		Temperature:    0.7,
		Language:       "en-US",
		Tone:           "elementary",
		WordsPerSecond: 4.0,
		SectionPause:   0.5,
	}
}

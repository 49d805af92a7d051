package script

// Document is a validated teaching script: a short narrated lesson with
// an intro, an explanation, one multiple-choice practice question, and
// a summary. Documents are produced by the Generator and only exist in
// typed form after validation has passed.
type Document struct {
	Metadata    Metadata    `json:"metadata"`
	Intro       Section     `json:"intro"`
	Explanation Section     `json:"explanation"`
	PracticeMCQ PracticeMCQ `json:"practice_mcq"`
	Summary     Section     `json:"summary"`
}

// Metadata describes the document as a whole. Version is the schema
// version the document conforms to; Topic echoes the user's input
// verbatim. DurationEstimate is a heuristic, in seconds — not measured
// audio length.
type Metadata struct {
	Version          string  `json:"version"`
	Language         string  `json:"language"`
	Tone             string  `json:"tone"`
	Topic            string  `json:"topic"`
	DurationEstimate float64 `json:"duration_estimate"`

	// Set by the narration renderer after audio synthesis.
	AudioGenerated bool     `json:"audio_generated,omitempty"`
	VoiceUsed      string   `json:"voice_used,omitempty"`
	AudioFiles     []string `json:"audio_files,omitempty"`
}

// Section is a narration-bearing part of the script.
type Section struct {
	Title     string `json:"title"`
	Narration string `json:"narration"`

	// AudioNarration is the basename of the rendered mp3, if any.
	AudioNarration string `json:"audio_narration,omitempty"`
}

// PracticeMCQ is the multiple-choice practice question. Options always
// holds exactly 4 distinct entries and CorrectAnswer indexes into it.
type PracticeMCQ struct {
	Title         string   `json:"title"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`

	AudioQuestion    string `json:"audio_question,omitempty"`
	AudioExplanation string `json:"audio_explanation,omitempty"`
}

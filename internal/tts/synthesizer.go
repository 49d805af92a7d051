// Package tts turns teaching-script narration text into spoken audio.
package tts

import "context"

// Synthesizer converts text into audio bytes.
type Synthesizer interface {
	// Synthesize renders text as spoken audio in the given voice and
	// returns the encoded audio bytes (MP3).
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
}

// Voice is a named narration voice.
type Voice string

// Available narration voices.
const (
	VoiceAlloy   Voice = "alloy"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceShimmer Voice = "shimmer"
)

// DefaultVoice is used when no voice is requested.
const DefaultVoice = VoiceNova

// Voices lists every supported voice.
func Voices() []Voice {
	return []Voice{VoiceAlloy, VoiceEcho, VoiceFable, VoiceOnyx, VoiceNova, VoiceShimmer}
}

// ResolveVoice maps a user-supplied voice name to a supported voice.
// Empty or unknown names fall back to DefaultVoice.
func ResolveVoice(name string) Voice {
	for _, v := range Voices() {
		if string(v) == name {
			return v
		}
	}
	return DefaultVoice
}

package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/abhisek/eduscript/internal/script"
)

// Renderer synthesizes narration audio for every spoken part of a
// teaching script and annotates the document with the file names.
type Renderer struct {
	synth  Synthesizer
	outDir string
	log    *zap.SugaredLogger
}

// NewRenderer builds a Renderer writing mp3 files under outDir.
func NewRenderer(synth Synthesizer, outDir string, log *zap.SugaredLogger) *Renderer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Renderer{synth: synth, outDir: outDir, log: log}
}

// segment is one narration unit to synthesize. The attach func records
// the rendered file's basename on the document.
type segment struct {
	name   string
	text   string
	attach func(doc *script.Document, basename string)
}

func segments(doc *script.Document) []segment {
	return []segment{
		{"intro_narration", doc.Intro.Narration,
			func(d *script.Document, b string) { d.Intro.AudioNarration = b }},
		{"explanation_narration", doc.Explanation.Narration,
			func(d *script.Document, b string) { d.Explanation.AudioNarration = b }},
		{"practice_mcq_question", doc.PracticeMCQ.Question,
			func(d *script.Document, b string) { d.PracticeMCQ.AudioQuestion = b }},
		{"practice_mcq_explanation", doc.PracticeMCQ.Explanation,
			func(d *script.Document, b string) { d.PracticeMCQ.AudioExplanation = b }},
		{"summary_narration", doc.Summary.Narration,
			func(d *script.Document, b string) { d.Summary.AudioNarration = b }},
	}
}

// RenderScript synthesizes audio for each narrated part of doc, writes
// the mp3 files under the output directory, and annotates doc with the
// basenames plus voice metadata. A section that fails to synthesize is
// logged and skipped; the remaining sections still render. An error is
// returned only when no section could be rendered at all.
func (r *Renderer) RenderScript(ctx context.Context, scriptID string, doc *script.Document, voice Voice) error {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}

	segs := segments(doc)
	var rendered []string
	var lastErr error

	for _, seg := range segs {
		if err := ctx.Err(); err != nil {
			return err
		}

		audio, err := r.synth.Synthesize(ctx, seg.text, voice)
		if err != nil {
			r.log.Warnw("narration synthesis failed", "script", scriptID, "segment", seg.name, "err", err)
			lastErr = err
			continue
		}

		basename := fmt.Sprintf("%s_%s.mp3", scriptID, seg.name)
		if err := os.WriteFile(filepath.Join(r.outDir, basename), audio, 0o644); err != nil {
			r.log.Warnw("write narration file failed", "script", scriptID, "segment", seg.name, "err", err)
			lastErr = err
			continue
		}

		seg.attach(doc, basename)
		rendered = append(rendered, basename)
	}

	if len(rendered) == 0 {
		return fmt.Errorf("no narration rendered: %w", lastErr)
	}

	doc.Metadata.AudioGenerated = true
	doc.Metadata.VoiceUsed = string(voice)
	doc.Metadata.AudioFiles = rendered
	return nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/eduscript/internal/config"
	"github.com/abhisek/eduscript/internal/llm"
	"github.com/abhisek/eduscript/internal/script"
	"github.com/abhisek/eduscript/internal/store"
	"github.com/abhisek/eduscript/internal/tts"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a teaching script for a topic",
	Long:  "Generates a validated teaching script for the given topic and prints it as JSON. With --audio, narration mp3 files are rendered alongside.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, args[0])
	},
}

func init() {
	generateCmd.Flags().Bool("audio", false, "Render narration audio for the script")
	generateCmd.Flags().String("voice", "", "Narration voice (alloy, echo, fable, onyx, nova, shimmer)")
	generateCmd.Flags().String("audio-dir", "audio", "Directory for rendered mp3 files")
	generateCmd.Flags().String("out", "", "Write the script JSON to a file instead of stdout")
}

func runGenerate(cmd *cobra.Command, topic string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, s.EventRepo())
	if err != nil {
		return fmt.Errorf("init model provider: %w", err)
	}

	doc, err := script.New(provider, script.DefaultConfig()).Generate(ctx, topic)
	if err != nil {
		return fmt.Errorf("generate script: %w", err)
	}

	if withAudio, _ := cmd.Flags().GetBool("audio"); withAudio {
		voiceName, _ := cmd.Flags().GetString("voice")
		voice := tts.ResolveVoice(voiceName)

		key := cfg.LLM.OpenAI.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		synth, err := tts.NewOpenAISynthesizer(key)
		if err != nil {
			return fmt.Errorf("init speech synthesizer: %w", err)
		}

		audioDir, _ := cmd.Flags().GetString("audio-dir")
		renderer := tts.NewRenderer(synth, audioDir, zap.NewNop().Sugar())
		if err := renderer.RenderScript(ctx, uuid.NewString(), doc, voice); err != nil {
			return fmt.Errorf("render narration: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Rendered %d narration files in %s\n", len(doc.Metadata.AudioFiles), audioDir)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode script: %w", err)
	}

	if path, _ := cmd.Flags().GetString("out"); path != "" {
		return os.WriteFile(path, append(out, '\n'), 0o644)
	}
	fmt.Println(string(out))
	return nil
}

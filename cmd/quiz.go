package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/config"
	"github.com/abhisek/quizcraft/internal/document"
	"github.com/abhisek/quizcraft/internal/llm"
	"github.com/abhisek/quizcraft/internal/quizgen"
	"github.com/abhisek/quizcraft/internal/session"
	"github.com/abhisek/quizcraft/internal/store"
)

var optionLabels = []string{"A", "B", "C", "D"}

var quizCmd = &cobra.Command{
	Use:   "quiz <file>",
	Short: "Generate a quiz from a document and take it",
	Long: `Chunks and indexes the given document (.txt, .md, or .pdf), generates
multiple-choice questions grounded in its content, and runs an
interactive answer loop in the terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		questions, _ := cmd.Flags().GetInt("questions")
		configPath, _ := cmd.Flags().GetString("config")

		appCfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		llmCfg, ok := llm.DiscoverConfig()
		if !ok {
			return fmt.Errorf("no LLM API key found; set OPENAI_API_KEY, GEMINI_API_KEY, or ANTHROPIC_API_KEY")
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

		logger := newLogger()
		ctx := context.Background()

		provider, err := llm.NewProvider(ctx, llmCfg, s.EventRepo(), logger)
		if err != nil {
			return fmt.Errorf("create LLM provider: %w", err)
		}
		embedder, err := llm.NewEmbedder(ctx, llmCfg)
		if err != nil {
			return fmt.Errorf("create embedder: %w", err)
		}

		genCfg := quizgen.DefaultConfig()
		genCfg.Temperature = appCfg.Generation.Temperature
		generator := quizgen.New(provider, genCfg)

		svc := session.NewService(generator, embedder, appCfg.SessionConfig(), logger)

		doc, err := document.LoadFile(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Indexing %s (%d characters)...\n", doc.Name, doc.Len())
		if err := svc.Upload(ctx, doc); err != nil {
			return err
		}
		fmt.Printf("Indexed %d chunks.\n\n", svc.Session().ChunkCount())

		fmt.Printf("Generating %d questions...\n\n", questions)
		items, err := svc.GenerateQuiz(ctx, topic, questions)
		if err != nil {
			return err
		}

		return runQuizLoop(ctx, svc, s.EventRepo(), len(items))
	},
}

// runQuizLoop asks each question once, reading answers from stdin.
func runQuizLoop(ctx context.Context, svc *session.Service, events store.EventRepo, count int) error {
	reader := bufio.NewScanner(os.Stdin)
	sessionID := svc.Session().ID()

	for i := 0; i < count; i++ {
		item, err := svc.NextQuizItem()
		if err != nil {
			return err
		}

		fmt.Printf("Question %d/%d: %s\n", i+1, count, item.Question)
		for j, opt := range item.Options {
			fmt.Printf("  %s) %s\n", optionLabels[j], opt)
		}

		selected := promptAnswer(reader)
		if selected < 0 {
			fmt.Println("\nQuiz aborted.")
			break
		}

		record, err := svc.SubmitAnswer(item.ID, selected)
		if err != nil {
			return err
		}

		if record.Correct {
			fmt.Println("Correct!")
		} else {
			fmt.Printf("Incorrect. The answer is %s) %s.\n",
				optionLabels[item.CorrectIndex], item.Options[item.CorrectIndex])
		}
		fmt.Printf("%s\n\n", item.Explanation)

		err = events.AppendAnswer(ctx, store.AnswerEventData{
			SessionID:     sessionID,
			ItemID:        item.ID,
			Question:      item.Question,
			SelectedIndex: record.SelectedIndex,
			CorrectIndex:  item.CorrectIndex,
			Correct:       record.Correct,
		})
		if err != nil {
			// Persistence is best-effort; the quiz keeps going.
			fmt.Fprintf(os.Stderr, "warning: could not record answer: %v\n", err)
		}
	}

	correct, total := svc.Session().Score()
	fmt.Printf("Score: %d/%d\n", correct, total)
	return nil
}

// promptAnswer reads an answer (A-D, case-insensitive, or 1-4) from the
// scanner. Returns -1 on EOF or "q".
func promptAnswer(reader *bufio.Scanner) int {
	for {
		fmt.Print("Your answer (A-D, q to quit): ")
		if !reader.Scan() {
			return -1
		}
		in := strings.TrimSpace(strings.ToUpper(reader.Text()))
		switch in {
		case "Q":
			return -1
		case "1", "2", "3", "4":
			return int(in[0] - '1')
		case "A", "B", "C", "D":
			return int(in[0] - 'A')
		}
		fmt.Println("Please answer A, B, C, or D.")
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if lv, err := zerolog.ParseLevel(os.Getenv("QUIZCRAFT_LOG")); err == nil && lv != zerolog.NoLevel {
		level = lv
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func init() {
	quizCmd.Flags().StringP("topic", "t", "", "Topic to focus the questions on")
	quizCmd.Flags().IntP("questions", "n", 5, "Number of questions to generate")
	quizCmd.Flags().StringP("config", "c", "quizcraft.yaml", "Path to yaml config file")
}

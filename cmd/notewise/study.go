package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"notewise/internal/domain"
	"notewise/internal/dto"
	"notewise/internal/service"
	"notewise/internal/util"

	"github.com/spf13/cobra"
)

// withApp builds the app for the duration of one command.
func withApp(opts *globalOptions, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := opts.newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if opts.refresh {
			cmd.SetContext(service.WithFreshResult(cmd.Context()))
		}
		return run(cmd, a, args)
	}
}

// loadDocument returns the text of a PDF, or the content of a plain text
// or markdown file as is.
func (a *app) loadDocument(ctx context.Context, path string) (*dto.ExtractTextResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil, domain.NewInvalidInputError("The file is empty")
		}
		return &dto.ExtractTextResponse{PDFText: text}, nil
	}

	return a.flows.ExtractText(ctx, dto.ExtractTextRequest{
		PDFDataURI: util.BuildDataURI("application/pdf", data),
	})
}

func (a *app) documentText(ctx context.Context, path string) (string, error) {
	doc, err := a.loadDocument(ctx, path)
	if err != nil {
		return "", err
	}
	return doc.PDFText, nil
}

func extractCmd(opts *globalOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Print the text of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			doc, err := a.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if doc.PageCount > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d pages\n", doc.PageCount)
			}
			if out != "" {
				return os.WriteFile(out, []byte(doc.PDFText+"\n"), 0644)
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc.PDFText)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the text to a file instead of stdout")
	return cmd
}

func summarizeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <pdf>",
		Short: "Summarize a document",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			text, err := a.documentText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp, err := a.flows.Summarize(cmd.Context(), dto.SummarizeRequest{PDFText: text})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Summary)
			return nil
		}),
	}
}

func quizCmd(opts *globalOptions) *cobra.Command {
	var questions int
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "quiz <pdf>",
		Short: "Take a multiple-choice quiz on a document",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			text, err := a.documentText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp, err := a.flows.GenerateQuiz(cmd.Context(), dto.GenerateQuizRequest{PDFText: text, NumberOfQuestions: questions})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printOnly {
				printQuiz(out, resp.Quiz, true)
				return nil
			}

			started := time.Now()
			answers := askQuiz(cmd.InOrStdin(), out, resp.Quiz)
			result, err := a.flows.ScoreQuiz(cmd.Context(), dto.ScoreQuizRequest{Quiz: resp.Quiz, Answers: answers})
			if err != nil {
				return err
			}
			result.DurationSeconds = int64(time.Since(started).Seconds())
			printResult(out, resp.Quiz, result)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&questions, "questions", "n", 5, "number of questions (1-20)")
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the quiz with answers instead of asking")
	return cmd
}

func printQuiz(w io.Writer, quiz []domain.QuizItem, withAnswers bool) {
	for i, item := range quiz {
		fmt.Fprintf(w, "%d. %s\n", i+1, item.Question)
		for j, opt := range item.Options {
			fmt.Fprintf(w, "   %c) %s\n", 'A'+j, opt)
		}
		if withAnswers {
			fmt.Fprintf(w, "   Answer: %s\n", item.Answer)
		}
		fmt.Fprintln(w)
	}
}

// askQuiz reads one answer per question. A blank line skips the question.
func askQuiz(r io.Reader, w io.Writer, quiz []domain.QuizItem) map[string]string {
	scanner := bufio.NewScanner(r)
	answers := make(map[string]string, len(quiz))
	for i, item := range quiz {
		printQuiz(w, []domain.QuizItem{item}, false)
		fmt.Fprint(w, "Your answer: ")
		if !scanner.Scan() {
			fmt.Fprintln(w)
			break
		}
		if choice, ok := parseChoice(scanner.Text(), item.Options); ok {
			answers[fmt.Sprint(i)] = choice
		}
		fmt.Fprintln(w)
	}
	return answers
}

// parseChoice accepts an option letter (a, B) or the option text itself.
func parseChoice(input string, options []string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if len(input) == 1 {
		idx := int(strings.ToUpper(input)[0] - 'A')
		if idx >= 0 && idx < len(options) {
			return options[idx], true
		}
	}
	for _, opt := range options {
		if strings.EqualFold(opt, input) {
			return opt, true
		}
	}
	return input, true
}

func printResult(w io.Writer, quiz []domain.QuizItem, result *domain.QuizResult) {
	fmt.Fprintf(w, "Score: %d/%d (%d%%) in %ds\n", result.Score, result.Total, result.Percentage(), result.DurationSeconds)
	for _, idx := range result.Incorrect {
		if idx < len(quiz) {
			fmt.Fprintf(w, "  %d. %s -> %s\n", idx+1, quiz[idx].Question, quiz[idx].Answer)
		}
	}
	if len(result.ReviewTopics) > 0 {
		fmt.Fprintf(w, "Review: %s\n", strings.Join(result.ReviewTopics, ", "))
	}
}

func flashcardsCmd(opts *globalOptions) *cobra.Command {
	var export string
	cmd := &cobra.Command{
		Use:   "flashcards <pdf>",
		Short: "Generate flashcards from a document",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			text, err := a.documentText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp, err := a.flows.GenerateFlashcards(cmd.Context(), dto.GenerateFlashcardsRequest{PDFText: text})
			if err != nil {
				return err
			}

			if export == "" {
				for i, card := range resp.Flashcards {
					fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n   %s\n\n", i+1, card.Front, card.Back)
				}
				return nil
			}

			format := strings.TrimPrefix(strings.ToLower(filepath.Ext(export)), ".")
			file, err := a.exporter.ExportFlashcards(resp.Flashcards, format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(export, file.Data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d flashcards to %s\n", len(resp.Flashcards), export)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&export, "export", "e", "", "write the cards to a .xlsx or .csv file")
	return cmd
}

func notesCmd(opts *globalOptions) *cobra.Command {
	var length, out string
	var save bool
	cmd := &cobra.Command{
		Use:   "notes <pdf>",
		Short: "Generate markdown study notes",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			noteLength, err := domain.ParseNoteLength(length)
			if err != nil {
				return domain.ValidationErrors{domain.NewInvalidFormatError("length", length)}
			}
			text, err := a.documentText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp, err := a.flows.GenerateNotes(cmd.Context(), dto.GenerateNotesRequest{PDFText: text, NoteLength: string(noteLength)})
			if err != nil {
				return err
			}

			if out == "" && !save {
				fmt.Fprintln(cmd.OutOrStdout(), resp.Notes)
				return nil
			}
			file := a.exporter.ExportNotes(resp.Notes, noteLength)
			if out == "" {
				out = file.Name
			}
			if err := os.WriteFile(out, file.Data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote notes to %s\n", out)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&length, "length", "l", "short", "note length: short|long")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the notes to this file")
	cmd.Flags().BoolVar(&save, "save", false, "write the notes to smart-notes-<length>.md")
	return cmd
}

func askCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <pdf> <question...>",
		Short: "Ask one question about a document",
		Args:  cobra.MinimumNArgs(2),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			text, err := a.documentText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp, err := a.flows.AskQuestion(cmd.Context(), dto.AskQuestionRequest{
				PDFContent: text,
				Question:   strings.Join(args[1:], " "),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Answer)
			return nil
		}),
	}
}

func chatCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <pdf>",
		Short: "Chat about a document. Type exit to leave",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			text, err := a.documentText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return chatLoop(cmd.Context(), a, text, cmd.InOrStdin(), cmd.OutOrStdout())
		}),
	}
}

// chatLoop keeps the conversation in memory. A failed turn is reported and
// left out of the history.
func chatLoop(ctx context.Context, a *app, text string, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	var history []dto.ChatTurn
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		resp, err := a.flows.Chat(ctx, dto.ChatRequest{PDFContent: text, UserInput: input, History: history})
		if err != nil {
			if domain.IsCode(err, domain.CodeLLMOverloaded) {
				fmt.Fprintln(w, describeError(err, false))
				continue
			}
			return err
		}
		fmt.Fprintln(w, resp.AIResponse)
		history = append(history,
			dto.ChatTurn{Role: string(domain.ChatRoleUser), Content: input},
			dto.ChatTurn{Role: string(domain.ChatRoleAI), Content: resp.AIResponse},
		)
	}
}

func videosCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "videos <pdf>",
		Short: "Suggest videos related to a document",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			text, err := a.documentText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp, err := a.flows.SuggestVideos(cmd.Context(), dto.SuggestVideosRequest{PDFContent: text})
			if err != nil {
				return err
			}
			if len(resp.VideoSuggestions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No videos found.")
				return nil
			}
			for _, v := range resp.VideoSuggestions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n  %s\n  %s\n\n", v.Title, v.URL, v.Description)
			}
			return nil
		}),
	}
}

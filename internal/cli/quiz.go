package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/basket/internal/quiz"
	"github.com/mesh-intelligence/basket/pkg/types"
)

func newQuizCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quiz",
		Short: "Take the Earth quiz; answers are read from stdin",
		Long: `Quiz asks each question in turn. Answer with the option number or its
text. Each question takes one answer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuiz(cmd, quiz.NewSession(quiz.Bank()))
		},
	}
}

func runQuiz(cmd *cobra.Command, s *quiz.Session) error {
	w := out(cmd)
	in := bufio.NewScanner(cmd.InOrStdin())

	for !s.Done() {
		q, _ := s.Current()
		fmt.Fprintf(w, "\nQuestion %d of %d: %s\n", s.Index()+1, s.Len(), q.Text)
		for i, opt := range q.Options {
			fmt.Fprintf(w, "  %d) %s\n", i+1, opt)
		}

		for !s.Answered() {
			fmt.Fprint(w, "> ")
			if !in.Scan() {
				fmt.Fprintf(w, "\nQuiz stopped. Score: %d / %d\n", s.Score(), s.Len())
				return in.Err()
			}
			correct, answer, err := s.Answer(resolveOption(q, in.Text()))
			if errors.Is(err, types.ErrUnknownOption) {
				fmt.Fprintln(w, "Pick one of the listed options.")
				continue
			}
			if err != nil {
				return err
			}
			if correct {
				fmt.Fprintln(w, "Correct!")
			} else {
				fmt.Fprintf(w, "Wrong. The answer is %s.\n", answer)
			}
		}
		if err := s.Next(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nQuiz Completed! Your Score: %d / %d\n", s.Score(), s.Len())
	return nil
}

// resolveOption maps a 1-based option number to its text. Anything else is
// matched case-insensitively against the options.
func resolveOption(q quiz.Question, input string) string {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1]
	}
	for _, opt := range q.Options {
		if strings.EqualFold(opt, input) {
			return opt
		}
	}
	return input
}

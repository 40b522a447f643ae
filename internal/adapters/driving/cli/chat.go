package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/shopdesk/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question session",
	Long: `Reads questions from standard input and answers each one in a single
conversation, so follow-ups such as "how much is it?" refer to the last
product discussed.

Commands:
  /reset   forget the current product and history
  /quit    leave the session

Prompt templates are reloaded when their files change.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	startPromptWatcher(ctx)

	conversationID := "chat-" + uuid.NewString()
	in := cmd.InOrStdin()
	interactive := isTerminal(in)

	if interactive {
		cmd.Println("Ask about our products, prices or policies. Type /quit to leave.")
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			cmd.Print("> ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			assistantService.Reset(conversationID)
			cmd.Println("Conversation reset.")
			continue
		}

		answer, err := assistantService.Ask(ctx, conversationID, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cmd.Printf("Error: %v\n", err)
			continue
		}
		cmd.Println(answer.Text)
		cmd.Println()
	}

	return scanner.Err()
}

// startPromptWatcher reloads prompt templates until ctx ends.
func startPromptWatcher(ctx context.Context) {
	if promptWatcher == nil {
		return
	}
	go func() {
		if err := promptWatcher.Watch(ctx); err != nil {
			logger.Warn("prompt reload disabled: %v", err)
		}
	}()
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

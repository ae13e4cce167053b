package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verdevalley/concierge/internal/bus"
	"github.com/verdevalley/concierge/internal/config"
	"github.com/verdevalley/concierge/internal/dependency"
)

var (
	chatMessage string
	chatUserID  int64
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the concierge from the terminal",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
	chatCmd.Flags().Int64Var(&chatUserID, "user", 0, "User id to converse as (default: local test user)")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

// localTestUserID keeps terminal sessions out of real guests' windows.
const localTestUserID = 1

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(false)

	container, err := dependency.New(cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	userID := chatUserID
	if userID == 0 {
		userID = localTestUserID
	}

	ctx := context.Background()
	send := func(text string) error {
		reply, err := container.AgentLoop().ProcessDirect(ctx, bus.InboundMessage{
			Channel:      "cli",
			UserID:       userID,
			ChatID:       userID,
			Text:         text,
			LanguageCode: "en",
		})
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	}

	if chatMessage != "" {
		return send(chatMessage)
	}

	fmt.Printf("%s Chatting with the concierge (type 'exit' to quit)\n", logo)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if exitCommands[strings.ToLower(text)] {
			break
		}
		if err := send(text); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command.
//
// Interactive Commands (during chat):
//   /new                Start a new chat
//   /list               List saved chats
//   /open ID            Switch to a saved chat
//   /delete [ID]        Delete a chat (default: the open one)
//   /title TEXT         Rename the open chat (empty clears)
//   /help, /h           Show available commands
//   /quit, /q           Exit chat
//   Ctrl+D              Exit chat

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/conversation"
	"github.com/ATreeShine/GEMINI-AGENT/internal/index"
	"github.com/ATreeShine/GEMINI-AGENT/internal/storage"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var chatID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat. Input history is kept between sessions and
lines starting with "/" are commands; type /help to list them.`,
		Example: `  gemini-agent chat
  gemini-agent chat --chat 1718000000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			session := newChatSession(a.svc, a.index, cmd.OutOrStdout())
			return runChat(cmd.Context(), session, chatID)
		},
	}

	cmd.Flags().StringVar(&chatID, "chat", "", "open this chat on start")
	return cmd
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI that persists history in historyFile.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history, owner read/write only.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// historyPath returns the per-user history file location.
func historyPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "gemini-agent", "chat_history")
}

// =============================================================================
// SESSION STATE
// =============================================================================

// chatSession holds the state of an interactive chat and executes its
// input lines.
type chatSession struct {
	svc    *conversation.Service
	index  *index.Index
	out    io.Writer
	chatID string // empty until the first turn of a new chat
	render func(string) string
}

func newChatSession(svc *conversation.Service, idx *index.Index, out io.Writer) *chatSession {
	return &chatSession{
		svc:    svc,
		index:  idx,
		out:    out,
		render: replyRenderer(detectTerminal(out)),
	}
}

// runChat drives the read loop until /quit, EOF or ctx cancellation.
func runChat(ctx context.Context, s *chatSession, openID string) error {
	input := NewChatCLI(historyPath())
	defer input.Close()

	fmt.Fprintln(s.out, TitleStyle.Render("gemini-agent chat"))
	fmt.Fprintln(s.out, DimStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Fprintln(s.out)

	if openID != "" {
		s.handle(ctx, "/open "+openID)
	}

	for ctx.Err() == nil {
		line, err := input.ReadInput(s.prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(s.out, DimStyle.Render("(use /quit or Ctrl+D to exit)"))
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to read input")
		}
		if s.handle(ctx, line) {
			return nil
		}
	}
	return nil
}

func (s *chatSession) prompt() string {
	if s.chatID == "" {
		return "new> "
	}
	return s.chatID + "> "
}

// handle executes one input line and reports whether the session should end.
func (s *chatSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		s.send(ctx, line)
		return false
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/quit", "/q", "/exit":
		return true
	case "/help", "/h", "/?":
		s.help()
	case "/new":
		s.chatID = ""
		fmt.Fprintln(s.out, SuccessStyle.Render("Started a new chat."))
	case "/list", "/ls":
		s.list(ctx)
	case "/open":
		s.open(ctx, arg)
	case "/delete", "/rm":
		s.delete(ctx, arg)
	case "/title":
		s.title(ctx, arg)
	default:
		s.warn(fmt.Sprintf("Unknown command %s. Type /help for commands.", name))
	}
	return false
}

// =============================================================================
// ACTIONS
// =============================================================================

func (s *chatSession) send(ctx context.Context, message string) {
	result, err := s.svc.Send(ctx, conversation.SendRequest{Message: message, ChatID: s.chatID})
	if err != nil {
		s.fail(err)
		return
	}
	s.chatID = result.ChatID

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.render(result.Message))
	fmt.Fprintln(s.out)
}

func (s *chatSession) list(ctx context.Context) {
	summaries, err := s.index.List(ctx)
	if err != nil {
		s.fail(err)
		return
	}
	writeSummaryTable(s.out, summaries)
}

func (s *chatSession) open(ctx context.Context, id string) {
	if id == "" {
		s.warn("Usage: /open ID")
		return
	}
	c, err := s.svc.Get(ctx, id)
	if err != nil {
		s.fail(err)
		return
	}
	if len(c.Messages) == 0 {
		s.warn("No saved chat " + id + ".")
		return
	}

	s.chatID = c.ID
	fmt.Fprintln(s.out, TitleStyle.Render(chat.DeriveTitle(c)))
	for _, m := range c.Messages {
		fmt.Fprintln(s.out)
		label := UserStyle.Render(m.Role.DisplayName())
		content := m.Content
		if m.Role == chat.RoleAssistant {
			label = AssistantStyle.Render(m.Role.DisplayName())
			content = s.render(content)
		}
		fmt.Fprintf(s.out, "%s\n%s\n", label, content)
	}
	fmt.Fprintln(s.out)
}

func (s *chatSession) delete(ctx context.Context, id string) {
	if id == "" {
		id = s.chatID
	}
	if id == "" {
		s.warn("Usage: /delete ID (no chat is open)")
		return
	}

	err := s.svc.Delete(ctx, id)
	if errors.Is(err, storage.ErrChatNotFound) {
		s.warn("No saved chat " + id + ".")
		return
	}
	if err != nil {
		s.fail(err)
		return
	}
	if id == s.chatID {
		s.chatID = ""
	}
	fmt.Fprintln(s.out, SuccessStyle.Render("Deleted chat "+id+"."))
}

func (s *chatSession) title(ctx context.Context, title string) {
	if s.chatID == "" {
		s.warn("No chat is open. Send a message first.")
		return
	}
	c, err := s.svc.UpdateTitle(ctx, s.chatID, title)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintln(s.out, SuccessStyle.Render("Title: "+chat.DeriveTitle(c)))
}

func (s *chatSession) help() {
	rows := [][2]string{
		{"/new", "Start a new chat"},
		{"/list", "List saved chats"},
		{"/open ID", "Switch to a saved chat"},
		{"/delete [ID]", "Delete a chat (default: the open one)"},
		{"/title TEXT", "Rename the open chat (empty clears)"},
		{"/help", "Show this help"},
		{"/quit", "Exit"},
	}
	for _, r := range rows {
		fmt.Fprintf(s.out, "  %s %s\n", RenderLabel(r[0]), r[1])
	}
}

func (s *chatSession) warn(msg string) {
	fmt.Fprintln(s.out, WarningStyle.Render(msg))
}

func (s *chatSession) fail(err error) {
	var ve *conversation.ValidationError
	if errors.As(err, &ve) {
		s.warn(ve.Message)
		return
	}
	fmt.Fprintln(s.out, ErrorStyle.Render("Error: "+err.Error()))
}

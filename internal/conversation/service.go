// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/export"
	"github.com/ATreeShine/GEMINI-AGENT/internal/responder"
	"github.com/ATreeShine/GEMINI-AGENT/internal/storage"
)

// DefaultResponderTimeout bounds the wait for a reply when Options leaves it unset.
const DefaultResponderTimeout = 60 * time.Second

// Store is the persistence the service needs.
type Store interface {
	Load(id string) (storage.LoadResult, error)
	Save(id string, c *chat.Chat) error
	Delete(id string) error
}

// Options configures a Service.
type Options struct {
	// Defaults fill settings that neither the turn nor the chat provide.
	Defaults chat.Settings

	// ResponderTimeout bounds the wait for each reply.
	ResponderTimeout time.Duration

	// ExportDir receives files written by Export.
	ExportDir string

	// IDs mints new chat ids. Defaults to a fresh wall-clock generator.
	IDs *chat.IDGenerator

	// Now stamps messages. Defaults to time.Now.
	Now func() time.Time

	Logger *zap.Logger
}

// SendRequest is one user turn.
type SendRequest struct {
	Message  string
	ChatID   string         // empty starts a new chat
	Settings *chat.Settings // per-turn override, not persisted
}

// SendResult is the settled state of a turn.
type SendResult struct {
	ChatID   string
	Message  string // assistant content, or the error-turn text
	Messages []chat.Message
}

// Service runs turns and chat mutations.
type Service struct {
	store     Store
	responder responder.Responder
	locks     *KeyedLock

	defaults  chat.Settings
	timeout   time.Duration
	exportDir string
	ids       *chat.IDGenerator
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates a service over store and r.
func NewService(store Store, r responder.Responder, opts Options) *Service {
	s := &Service{
		store:     store,
		responder: r,
		locks:     NewKeyedLock(),
		defaults:  opts.Defaults.Clone(),
		timeout:   opts.ResponderTimeout,
		exportDir: opts.ExportDir,
		ids:       opts.IDs,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultResponderTimeout
	}
	if s.ids == nil {
		s.ids = chat.NewIDGenerator()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("conversation")
	return s
}

// Defaults returns a copy of the service-level default settings.
func (s *Service) Defaults() chat.Settings {
	return s.defaults.Clone()
}

// Responder returns the responder used for turns.
func (s *Service) Responder() responder.Responder {
	return s.responder
}

// =============================================================================
// TURNS
// =============================================================================

// Send runs one turn: the user message and the assistant reply are appended
// and persisted together. A responder failure is recorded as an assistant
// message starting with ErrorTurnPrefix and is not returned as an error.
func (s *Service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, &ValidationError{Field: "message", Message: "Message is required"}
	}

	id := req.ChatID
	if id == "" {
		id = s.ids.Next()
	} else if err := chat.ValidateID(id); err != nil {
		return nil, &ValidationError{Field: "chatId", Message: err.Error()}
	}
	if req.Settings != nil {
		if err := validateSettings(*req.Settings); err != nil {
			return nil, err
		}
	}

	release, err := s.locks.Acquire(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "waiting for chat")
	}
	defer release()

	// a caller that goes away must not leave a half-finished turn
	ctx = context.WithoutCancel(ctx)

	res, err := s.store.Load(id)
	if err != nil {
		s.logger.Error("load failed", zap.String("chat_id", id), zap.Error(err))
		return nil, err
	}
	c := res.Chat
	if res.Found() {
		s.ids.Observe(id)
	}

	c.Append(chat.Message{Role: chat.RoleUser, Content: req.Message, Timestamp: s.now().UnixMilli()})

	effective := chat.Effective(req.Settings, c.Settings, &s.defaults)

	reply, rerr := s.respond(ctx, c.Clone().Messages, effective)
	if rerr != nil {
		s.logger.Warn("responder failed", zap.String("chat_id", id), zap.Error(rerr))
		reply = ErrorTurnPrefix + failureReason(rerr)
	}
	c.Append(chat.Message{Role: chat.RoleAssistant, Content: reply, Timestamp: s.now().UnixMilli()})

	if err := s.store.Save(id, c); err != nil {
		s.logger.Error("save failed", zap.String("chat_id", id), zap.Error(err))
		return nil, err
	}

	return &SendResult{
		ChatID:   id,
		Message:  reply,
		Messages: c.Clone().Messages,
	}, nil
}

type outcome struct {
	text string
	err  error
}

// respond calls the responder and stops waiting at the deadline even when
// the responder ignores its context.
func (s *Service) respond(ctx context.Context, history []chat.Message, settings chat.Settings) (string, error) {
	if s.responder == nil {
		return "", &responder.Error{Message: responder.UnconfiguredMessage}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: errors.Errorf("responder panic: %v", r)}
			}
		}()
		text, err := s.responder.Respond(ctx, history, settings)
		done <- outcome{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", errors.Errorf("no response within %s", s.timeout)
	}
}

// failureReason is the human-readable part of a responder failure.
func failureReason(err error) string {
	var rerr *responder.Error
	if errors.As(err, &rerr) {
		if rerr.Cause != nil {
			return rerr.Message + ": " + rerr.Cause.Error()
		}
		return rerr.Message
	}
	return err.Error()
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// Get returns the chat, or an empty chat when none is stored under id.
func (s *Service) Get(ctx context.Context, id string) (*chat.Chat, error) {
	var out *chat.Chat
	err := s.withChat(ctx, id, func(res storage.LoadResult) error {
		out = res.Chat.Clone()
		return nil
	})
	return out, err
}

// Delete removes the chat. Returns storage.ErrChatNotFound when absent.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := chat.ValidateID(id); err != nil {
		return &ValidationError{Field: "chatId", Message: err.Error()}
	}
	release, err := s.locks.Acquire(ctx, id)
	if err != nil {
		return errors.Wrap(err, "waiting for chat")
	}
	defer release()

	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.logger.Info("chat deleted", zap.String("chat_id", id))
	return nil
}

// UpdateSettings replaces the stored settings of a chat. Unknown ids are
// created with no messages.
func (s *Service) UpdateSettings(ctx context.Context, id string, settings chat.Settings) (*chat.Chat, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(c *chat.Chat) {
		cloned := settings.Clone()
		if cloned.IsZero() {
			c.Settings = nil
			return
		}
		c.Settings = &cloned
	})
}

// UpdateTitle sets the chat title. An empty title clears it so the listing
// derives one again.
func (s *Service) UpdateTitle(ctx context.Context, id, title string) (*chat.Chat, error) {
	title = strings.TrimSpace(title)
	return s.mutate(ctx, id, func(c *chat.Chat) {
		c.Title = title
	})
}

// Export writes the chat in the named format to the export directory and
// returns the file path. Returns storage.ErrChatNotFound for unknown chats.
func (s *Service) Export(ctx context.Context, id, format string) (string, error) {
	exp, ok := export.ForFormat(format)
	if !ok {
		return "", &ValidationError{Field: "format", Message: fmt.Sprintf("unsupported export format %q", format)}
	}

	var path string
	err := s.withChat(ctx, id, func(res storage.LoadResult) error {
		if res.Fresh() {
			return storage.ErrChatNotFound
		}
		p, err := export.ExportToFile(res.Chat, exp, s.exportDir, s.now())
		if err != nil {
			return err
		}
		path = p
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("chat exported", zap.String("chat_id", id), zap.String("path", path))
	return path, nil
}

// withChat loads id under its lock and passes the result to fn.
func (s *Service) withChat(ctx context.Context, id string, fn func(storage.LoadResult) error) error {
	if err := chat.ValidateID(id); err != nil {
		return &ValidationError{Field: "chatId", Message: err.Error()}
	}
	release, err := s.locks.Acquire(ctx, id)
	if err != nil {
		return errors.Wrap(err, "waiting for chat")
	}
	defer release()

	res, err := s.store.Load(id)
	if err != nil {
		return err
	}
	return fn(res)
}

// mutate applies fn to the chat under its lock and saves the result.
func (s *Service) mutate(ctx context.Context, id string, fn func(*chat.Chat)) (*chat.Chat, error) {
	var out *chat.Chat
	err := s.withChat(ctx, id, func(res storage.LoadResult) error {
		fn(res.Chat)
		if err := s.store.Save(id, res.Chat); err != nil {
			return err
		}
		out = res.Chat.Clone()
		return nil
	})
	return out, err
}

func validateSettings(st chat.Settings) error {
	if st.Temperature != nil && (*st.Temperature < 0 || *st.Temperature > 2) {
		return &ValidationError{Field: "temperature", Message: "must be between 0 and 2"}
	}
	if st.MaxTokens != nil && *st.MaxTokens <= 0 {
		return &ValidationError{Field: "maxTokens", Message: "must be positive"}
	}
	if st.TopK != nil && *st.TopK <= 0 {
		return &ValidationError{Field: "topK", Message: "must be positive"}
	}
	if st.TopP != nil && (*st.TopP < 0 || *st.TopP > 1) {
		return &ValidationError{Field: "topP", Message: "must be between 0 and 1"}
	}
	return nil
}

// Package assistant runs the dashboard chat. Replies are produced by a
// background dispatcher after a fixed delay.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"skillbridge/internal/domain"
	"skillbridge/internal/session"
)

// DisabledReply is the only answer the assistant gives for now.
const DisabledReply = "AI chat is temporarily disabled while we debug the Gemini integration. " +
	"The rest of the dashboard (ATS, Skill Gap, Roadmaps) is using stub data."

var (
	// ErrEmptyMessage is returned when the message is blank once markup is removed.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned when too many replies are pending.
	ErrBusy = errors.New("assistant is busy, try again shortly")
	// ErrNotRunning is returned before Start or after Shutdown.
	ErrNotRunning = errors.New("assistant is not running")
)

// Dispatcher accepts chat messages and schedules replies.
type Dispatcher interface {
	Start(ctx context.Context) error
	Shutdown()
	Send(ctx context.Context, sessionID, text string) (*domain.AnalysisState, error)
	Transcript(ctx context.Context, sessionID string) (*Transcript, error)
}

// Transcript is the chat history of one session.
type Transcript struct {
	SessionID string               `json:"sessionId"`
	Messages  []domain.ChatMessage `json:"messages"`
	Typing    bool                 `json:"assistantTyping"`
}

// Events receives chat notifications, typically metrics.
type Events interface {
	RecordChatMessage(role domain.ChatRole)
}

type Config struct {
	ReplyDelay time.Duration
	MaxPending int
	Logger     *logrus.Logger
	Events     Events
}

type dispatcher struct {
	cfg      Config
	sessions session.Store
	policy   *bluemonday.Policy
	now      func() time.Time

	sem    chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	// pending counts scheduled replies per session
	pending map[string]int
}

func NewDispatcher(cfg Config, sessions session.Store) Dispatcher {
	if cfg.ReplyDelay <= 0 {
		cfg.ReplyDelay = 500 * time.Millisecond
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &dispatcher{
		cfg:      cfg,
		sessions: sessions,
		policy:   bluemonday.StrictPolicy(),
		now:      time.Now,
		sem:      make(chan struct{}, cfg.MaxPending),
		pending:  make(map[string]int),
	}
}

func (d *dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx != nil {
		return fmt.Errorf("assistant already started")
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.cfg.Logger.Infof("assistant started, reply delay: %s", d.cfg.ReplyDelay)
	return nil
}

// Shutdown stops accepting messages, delivers every pending reply at once
// and waits for them to be stored.
func (d *dispatcher) Shutdown() {
	d.mu.Lock()
	d.closed = true
	cancel := d.cancel
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
	d.cfg.Logger.Info("assistant stopped")
}

func (d *dispatcher) Send(ctx context.Context, sessionID, text string) (*domain.AnalysisState, error) {
	text = d.clean(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	d.mu.Lock()
	if d.ctx == nil || d.closed {
		d.mu.Unlock()
		return nil, ErrNotRunning
	}
	select {
	case d.sem <- struct{}{}:
	default:
		d.mu.Unlock()
		return nil, ErrBusy
	}
	d.pending[sessionID]++
	d.wg.Add(1)
	d.mu.Unlock()

	state, err := d.sessions.Update(ctx, sessionID, func(st *domain.AnalysisState) error {
		st.Chat = append(st.Chat, domain.ChatMessage{Role: domain.ChatRoleUser, Text: text, At: d.now().UTC()})
		st.AssistantTyping = true
		return nil
	})
	if err != nil {
		d.release(sessionID)
		d.wg.Done()
		return nil, err
	}
	d.record(domain.ChatRoleUser)

	go d.reply(sessionID)
	return state, nil
}

func (d *dispatcher) Transcript(ctx context.Context, sessionID string) (*Transcript, error) {
	state, err := d.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	messages := state.Chat
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	return &Transcript{
		SessionID: state.ID,
		Messages:  messages,
		Typing:    state.AssistantTyping,
	}, nil
}

func (d *dispatcher) reply(sessionID string) {
	defer d.wg.Done()

	timer := time.NewTimer(d.cfg.ReplyDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-d.ctx.Done():
	}

	// the root context may already be cancelled; the reply still has to land
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d.release(sessionID)
	_, err := d.sessions.Update(ctx, sessionID, func(st *domain.AnalysisState) error {
		st.Chat = append(st.Chat, domain.ChatMessage{Role: domain.ChatRoleAI, Text: DisabledReply, At: d.now().UTC()})
		st.AssistantTyping = d.pendingFor(sessionID) > 0
		return nil
	})
	if err != nil {
		d.cfg.Logger.WithError(err).WithField("session", sessionID).Warn("deliver assistant reply failed")
		return
	}
	d.record(domain.ChatRoleAI)
}

func (d *dispatcher) release(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	<-d.sem
	if d.pending[sessionID]--; d.pending[sessionID] <= 0 {
		delete(d.pending, sessionID)
	}
}

func (d *dispatcher) pendingFor(sessionID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending[sessionID]
}

func (d *dispatcher) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(d.policy.Sanitize(text)))
}

func (d *dispatcher) record(role domain.ChatRole) {
	if d.cfg.Events != nil {
		d.cfg.Events.RecordChatMessage(role)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aura-tui/internal/api"
	"github.com/jeranaias/aura-tui/internal/config"
	"github.com/jeranaias/aura-tui/internal/controller"
	"github.com/jeranaias/aura-tui/internal/directory"
	"github.com/jeranaias/aura-tui/internal/model"
	"github.com/jeranaias/aura-tui/internal/session"
)

// =============================================================================
// FAKE TRANSPORT
// =============================================================================

type fakeTransport struct {
	mu       sync.Mutex
	next     int
	convs    map[model.ID]*model.Conversation
	order    []model.ID
	feedback []api.FeedbackRequest
	patches  []model.ConversationPatch
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{convs: make(map[model.ID]*model.Conversation)}
}

func (f *fakeTransport) nextID() model.ID {
	f.next++
	return model.ID(strconv.Itoa(f.next))
}

func (f *fakeTransport) CreateConversation(_ context.Context, title string) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv := &model.Conversation{ID: f.nextID(), Title: title}
	f.convs[conv.ID] = conv
	f.order = append(f.order, conv.ID)
	c := *conv
	return &c, nil
}

func (f *fakeTransport) ListConversations(context.Context) ([]model.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Summary
	for i := len(f.order) - 1; i >= 0; i-- {
		if c, ok := f.convs[f.order[i]]; ok {
			out = append(out, c.Summary())
		}
	}
	return out, nil
}

func (f *fakeTransport) GetConversation(_ context.Context, id model.ID) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.convs[id]
	if !ok {
		return nil, api.ErrNotFound
	}
	cp := *c
	cp.Messages = append([]model.Message(nil), c.Messages...)
	return &cp, nil
}

func (f *fakeTransport) SendMessage(_ context.Context, id model.ID, content string) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.convs[id]
	if !ok {
		return nil, api.ErrNotFound
	}
	user := model.Message{ID: f.nextID(), Role: model.RoleUser, Content: content}
	reply := model.Message{ID: f.nextID(), Role: model.RoleAssistant, Content: "echo: " + content}
	c.Messages = append(c.Messages, user, reply)
	return &reply, nil
}

func (f *fakeTransport) UpdateConversation(_ context.Context, id model.ID, patch model.ConversationPatch) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	c := *f.convs[id]
	return &c, nil
}

func (f *fakeTransport) DeleteConversation(_ context.Context, id model.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.convs, id)
	return nil
}

func (f *fakeTransport) UploadFile(_ context.Context, _ model.ID, filename string, _ io.Reader) (*model.Attachment, error) {
	return &model.Attachment{Filename: filename}, nil
}

func (f *fakeTransport) SubmitFeedback(_ context.Context, fb api.FeedbackRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, fb)
	return nil
}

func (f *fakeTransport) Analytics(context.Context) (*model.Analytics, error) {
	return &model.Analytics{TotalMessages: 2, ModelDistribution: map[string]int{"aura-standard": 1}}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

type harness struct {
	t         *testing.T
	transport *fakeTransport
	ctrl      *controller.Controller
	bridge    *Bridge
	copied    []string
	model     Model
}

func newHarness(t *testing.T) *harness {
	h := &harness{t: t, transport: newFakeTransport(), bridge: NewBridge()}
	h.ctrl = controller.New(h.transport, session.New(), directory.New(), controller.WithConfirmer(h.bridge))

	opts := OptionsFromConfig(config.Default())
	opts.Theme = "dark"
	opts.Markdown = false
	opts.Clipboard = func(s string) error {
		h.copied = append(h.copied, s)
		return nil
	}
	h.model = New(context.Background(), h.ctrl, opts)
	h.update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// update feeds msg to the model and returns the resulting command.
func (h *harness) update(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

// run executes cmd synchronously, waits for background refreshes and
// feeds the result and a fresh snapshot back to the model.
func (h *harness) run(cmd tea.Cmd) tea.Msg {
	require.NotNil(h.t, cmd)
	msg := cmd()
	h.ctrl.Wait()
	h.update(msg)
	h.update(SessionChangedMsg{})
	h.update(DirectoryChangedMsg{})
	return msg
}

func (h *harness) typeText(s string) {
	h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// =============================================================================
// TESTS
// =============================================================================

func TestInitialViewShowsStarters(t *testing.T) {
	h := newHarness(t)
	view := h.model.View()
	assert.Contains(t, view, "Aura")
	assert.Contains(t, view, "New Chat")
	assert.Contains(t, view, "Explain quantum physics")
	assert.Contains(t, view, "Gen Standard")
}

func TestSendMessageFlow(t *testing.T) {
	h := newHarness(t)

	h.typeText("Hello there")
	msg := h.run(h.update(keyMsg(tea.KeyEnter)))
	assert.Equal(t, opDoneMsg{op: "send"}, msg)

	state := h.model.State()
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "Hello there", state.Messages[0].Content)
	assert.Equal(t, "echo: Hello there", state.Messages[1].Content)
	assert.Equal(t, "Hello there", state.Title)
	assert.Empty(t, h.model.input.Value())

	view := h.model.View()
	assert.Contains(t, view, "echo: Hello there")
	assert.Contains(t, view, "#1")
	require.Len(t, h.model.items, 1)
}

func TestEmptyInputDoesNotSend(t *testing.T) {
	h := newHarness(t)
	h.typeText("   ")
	assert.Nil(t, h.update(keyMsg(tea.KeyEnter)))
}

func TestStarterPromptKey(t *testing.T) {
	h := newHarness(t)
	h.run(h.update(runes("1")))

	state := h.model.State()
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "Explain quantum physics", state.Messages[0].Content)
	assert.Equal(t, "Explain quantum physics", state.Title)
}

func TestRateAndCopySelectedReply(t *testing.T) {
	h := newHarness(t)
	h.typeText("rate me")
	h.run(h.update(keyMsg(tea.KeyEnter)))

	h.update(keyMsg(tea.KeyTab))
	require.Equal(t, focusHistory, h.model.focus)
	assert.Equal(t, 1, h.model.selected)

	h.run(h.update(runes("+")))
	require.Len(t, h.transport.feedback, 1)
	assert.True(t, h.transport.feedback[0].IsPositive)
	assert.Equal(t, model.ID("1"), h.transport.feedback[0].ConversationID)

	state := h.model.State()
	require.NotNil(t, state.Messages[1].Feedback)
	assert.True(t, state.Messages[1].Feedback.IsPositive)

	h.update(runes("y"))
	assert.Equal(t, []string{"echo: rate me"}, h.copied)
	assert.Equal(t, "Copied to clipboard", h.model.flash)

	// The user message cannot be rated.
	h.update(runes("k"))
	assert.Equal(t, 0, h.model.selected)
	h.update(runes("-"))
	assert.Len(t, h.transport.feedback, 1)
}

func TestSettingsOverlaySavesThroughController(t *testing.T) {
	h := newHarness(t)
	h.typeText("first")
	h.run(h.update(keyMsg(tea.KeyEnter)))

	h.update(keyMsg(tea.KeyCtrlS))
	require.Equal(t, overlaySettings, h.model.overlay)
	assert.Contains(t, h.model.View(), "Conversation Settings")

	h.update(keyMsg(tea.KeyTab))
	h.update(keyMsg(tea.KeyTab))
	h.update(keyMsg(tea.KeyRight))
	h.run(h.update(keyMsg(tea.KeyCtrlS)))

	assert.Equal(t, overlayNone, h.model.overlay)
	assert.Equal(t, model.ModelCreative, h.model.State().Settings.Model)
	require.Len(t, h.transport.patches, 1)
	assert.Equal(t, model.ModelCreative, *h.transport.patches[0].SelectedModel)
	assert.Equal(t, "Settings saved", h.model.flash)
}

func TestSettingsEscapeCancels(t *testing.T) {
	h := newHarness(t)
	h.update(keyMsg(tea.KeyCtrlS))
	h.update(keyMsg(tea.KeyEsc))
	assert.Equal(t, overlayNone, h.model.overlay)
	assert.Empty(t, h.transport.patches)
}

func TestAnalyticsOverlay(t *testing.T) {
	h := newHarness(t)
	cmd := h.update(keyMsg(tea.KeyCtrlA))
	require.Equal(t, overlayAnalytics, h.model.overlay)
	assert.Contains(t, h.model.View(), "Loading")

	h.update(cmd())
	assert.Contains(t, h.model.View(), "aura-standard")

	h.update(keyMsg(tea.KeyEsc))
	assert.Equal(t, overlayNone, h.model.overlay)
}

func TestDeleteFromSidebarConfirms(t *testing.T) {
	h := newHarness(t)
	h.typeText("to delete")
	h.run(h.update(keyMsg(tea.KeyEnter)))

	msgs := make(chan tea.Msg, 4)
	h.bridge.Attach(func(m tea.Msg) { msgs <- m })

	h.update(keyMsg(tea.KeyTab))
	h.update(keyMsg(tea.KeyTab))
	require.Equal(t, focusSidebar, h.model.focus)

	cmd := h.update(runes("d"))
	require.NotNil(t, cmd)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var req ConfirmRequestMsg
	select {
	case m := <-msgs:
		var ok bool
		req, ok = m.(ConfirmRequestMsg)
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("no confirmation requested")
	}
	assert.Equal(t, model.PromptConfirmDelete, req.Prompt)

	h.update(req)
	require.Equal(t, overlayConfirm, h.model.overlay)
	h.update(runes("y"))
	assert.Equal(t, overlayNone, h.model.overlay)

	result := <-done
	assert.Equal(t, deleteDoneMsg{deleted: true}, result)
	h.ctrl.Wait()
	h.update(result)
	h.update(SessionChangedMsg{})
	assert.True(t, h.model.State().ID.IsZero())
	assert.Empty(t, h.model.State().Messages)
}

func TestDeclinedConfirmKeepsConversation(t *testing.T) {
	h := newHarness(t)
	reply := make(chan bool, 1)
	h.update(ConfirmRequestMsg{Prompt: "sure?", Reply: reply})
	h.update(keyMsg(tea.KeyEsc))
	assert.False(t, <-reply)

	// A second request while one is pending is declined immediately.
	first := make(chan bool, 1)
	second := make(chan bool, 1)
	h.update(ConfirmRequestMsg{Prompt: "one", Reply: first})
	h.update(ConfirmRequestMsg{Prompt: "two", Reply: second})
	assert.False(t, <-second)
}

func TestNewChatResetsSession(t *testing.T) {
	h := newHarness(t)
	h.typeText("something")
	h.run(h.update(keyMsg(tea.KeyEnter)))
	require.False(t, h.model.State().ID.IsZero())

	h.run(h.update(keyMsg(tea.KeyCtrlN)))
	assert.True(t, h.model.State().ID.IsZero())
	assert.Contains(t, h.model.View(), "Explain quantum physics")
}

func TestConfigReloadAppliesUI(t *testing.T) {
	h := newHarness(t)
	cfg := config.Default()
	cfg.UI.Theme = "light"
	cfg.UI.ShowTimestamps = true
	cfg.UI.SidebarWidth = 32

	h.update(ConfigReloadedMsg{Config: cfg})
	assert.False(t, h.model.theme.IsDark)
	assert.True(t, h.model.messages.ShowTimestamps)
	assert.Equal(t, 32, h.model.sidebar.Width)
	assert.Equal(t, "Config reloaded", h.model.flash)
	assert.NotNil(t, h.model.opts.Clipboard)
}

func TestFlashClearsOnlyLatest(t *testing.T) {
	h := newHarness(t)
	h.model.setFlash("one")
	h.model.setFlash("two")
	h.update(flashClearMsg{seq: 1})
	assert.Equal(t, "two", h.model.flash)
	h.update(flashClearMsg{seq: 2})
	assert.Empty(t, h.model.flash)
}

func TestBridgeWithoutProgram(t *testing.T) {
	b := NewBridge()
	assert.False(t, b.Send(SessionChangedMsg{}))
	_, err := b.Confirm(context.Background(), "delete?")
	assert.ErrorIs(t, err, ErrNotAttached)
}

func TestBridgeConfirmHonorsContext(t *testing.T) {
	b := NewBridge()
	b.Attach(func(tea.Msg) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := b.Confirm(ctx, "delete?")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBridgeWatchForwardsChanges(t *testing.T) {
	b := NewBridge()
	msgs := make(chan tea.Msg, 4)
	b.Attach(func(m tea.Msg) { msgs <- m })

	sess := session.New()
	stop := b.Watch(sess, directory.New())
	defer stop()

	sess.AppendMessage(model.NewUserMessage("hi"))
	select {
	case m := <-msgs:
		assert.IsType(t, SessionChangedMsg{}, m)
	case <-time.After(2 * time.Second):
		t.Fatal("no change forwarded")
	}
}

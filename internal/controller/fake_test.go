// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"io"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/jeranaias/aura-tui/internal/api"
	"github.com/jeranaias/aura-tui/internal/model"
)

// fakeTransport is an in-memory conversation service. Hooks replace the
// default behavior of individual calls so tests can block or fail them.
type fakeTransport struct {
	mu     sync.Mutex
	convs  map[model.ID]*model.Conversation
	order  []model.ID
	nextID int

	creates   atomic.Int32
	sends     atomic.Int32
	uploads   atomic.Int32
	feedbacks atomic.Int32
	deletes   atomic.Int32
	updates   atomic.Int32
	lists     atomic.Int32

	lastTitle    string
	lastPrompt   string
	lastPatch    model.ConversationPatch
	lastFeedback api.FeedbackRequest

	createHook func(ctx context.Context, title string) error
	sendHook   func(ctx context.Context, id model.ID, content string) (*model.Message, error)
	uploadHook func(ctx context.Context, id model.ID, filename string) error
	getHook    func(ctx context.Context, id model.ID) error
	fbHook     func(ctx context.Context) error
	deleteHook func(ctx context.Context, id model.ID) error
	listHook   func(ctx context.Context) error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{convs: make(map[model.ID]*model.Conversation)}
}

// seed stores a conversation and returns its id.
func (f *fakeTransport) seed(title string, msgs ...model.Message) model.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := model.ID(strconv.Itoa(f.nextID))
	f.convs[id] = &model.Conversation{ID: id, Title: title, Messages: msgs}
	f.order = append([]model.ID{id}, f.order...)
	return id
}

func (f *fakeTransport) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	f.creates.Add(1)
	f.mu.Lock()
	f.lastTitle = title
	f.mu.Unlock()
	if f.createHook != nil {
		if err := f.createHook(ctx, title); err != nil {
			return nil, err
		}
	}
	id := f.seed(title)
	return &model.Conversation{ID: id, Title: title}, nil
}

func (f *fakeTransport) ListConversations(ctx context.Context) ([]model.Summary, error) {
	f.lists.Add(1)
	if f.listHook != nil {
		if err := f.listHook(ctx); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Summary, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.convs[id].Summary())
	}
	return out, nil
}

func (f *fakeTransport) GetConversation(ctx context.Context, id model.ID) (*model.Conversation, error) {
	if f.getHook != nil {
		if err := f.getHook(ctx, id); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.convs[id]
	if !ok {
		return nil, &api.StatusError{Status: 404, Detail: "Conversation not found"}
	}
	cp := *conv
	cp.Messages = append([]model.Message(nil), conv.Messages...)
	return &cp, nil
}

func (f *fakeTransport) SendMessage(ctx context.Context, id model.ID, content string) (*model.Message, error) {
	n := f.sends.Add(1)
	f.mu.Lock()
	f.lastPrompt = content
	f.mu.Unlock()
	if f.sendHook != nil {
		return f.sendHook(ctx, id, content)
	}
	return &model.Message{
		ID:      model.ID(strconv.Itoa(1000 + int(n))),
		Role:    model.RoleAssistant,
		Content: "reply to " + content,
	}, nil
}

func (f *fakeTransport) UpdateConversation(ctx context.Context, id model.ID, patch model.ConversationPatch) (*model.Conversation, error) {
	f.updates.Add(1)
	f.mu.Lock()
	f.lastPatch = patch
	f.mu.Unlock()
	return &model.Conversation{ID: id}, nil
}

func (f *fakeTransport) DeleteConversation(ctx context.Context, id model.ID) error {
	f.deletes.Add(1)
	if f.deleteHook != nil {
		if err := f.deleteHook(ctx, id); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.convs, id)
	for i, o := range f.order {
		if o == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeTransport) UploadFile(ctx context.Context, id model.ID, filename string, r io.Reader) (*model.Attachment, error) {
	f.uploads.Add(1)
	if f.uploadHook != nil {
		if err := f.uploadHook(ctx, id, filename); err != nil {
			return nil, err
		}
	}
	data, _ := io.ReadAll(r)
	return &model.Attachment{
		ID:       "a1",
		Filename: filename,
		Metadata: map[string]any{"filename": filename, "size": len(data)},
	}, nil
}

func (f *fakeTransport) SubmitFeedback(ctx context.Context, fb api.FeedbackRequest) error {
	f.feedbacks.Add(1)
	f.mu.Lock()
	f.lastFeedback = fb
	f.mu.Unlock()
	if f.fbHook != nil {
		return f.fbHook(ctx)
	}
	return nil
}

func (f *fakeTransport) Analytics(ctx context.Context) (*model.Analytics, error) {
	return &model.Analytics{TotalMessages: 2}, nil
}

var _ Transport = (*fakeTransport)(nil)
var _ Transport = (*api.Client)(nil)

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package directory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aura-tui/internal/model"
)

type listerFunc func(ctx context.Context) ([]model.Summary, error)

func (f listerFunc) ListConversations(ctx context.Context) ([]model.Summary, error) {
	return f(ctx)
}

func staticLister(items ...model.Summary) Lister {
	return listerFunc(func(context.Context) ([]model.Summary, error) { return items, nil })
}

func TestRefresh_ReplacesItems(t *testing.T) {
	d := New()
	var notified int
	d.Subscribe(func() { notified++ })

	require.NoError(t, d.Refresh(context.Background(), staticLister(
		model.Summary{ID: "2", Title: "b"},
		model.Summary{ID: "1", Title: "a"},
	)))

	items := d.Items()
	require.Len(t, items, 2)
	assert.Equal(t, model.ID("2"), items[0].ID)
	assert.Equal(t, 1, notified)
	assert.False(t, d.RefreshedAt().IsZero())

	s, ok := d.Find("1")
	assert.True(t, ok)
	assert.Equal(t, "a", s.Title)
	assert.Equal(t, 1, d.IndexOf("1"))
	assert.Equal(t, -1, d.IndexOf("9"))
}

func TestRefresh_FailureKeepsItems(t *testing.T) {
	d := New()
	d.Replace([]model.Summary{{ID: "1", Title: "a"}})

	boom := errors.New("boom")
	err := d.Refresh(context.Background(), listerFunc(func(context.Context) ([]model.Summary, error) {
		return nil, boom
	}))

	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, d.LastError(), boom)
	assert.Equal(t, 1, d.Len())
}

func TestRefresh_OutOfOrderResultDropped(t *testing.T) {
	d := New()
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = d.Refresh(context.Background(), listerFunc(func(context.Context) ([]model.Summary, error) {
			close(slowStarted)
			<-releaseSlow
			return []model.Summary{{ID: "old"}}, nil
		}))
	}()
	<-slowStarted

	require.NoError(t, d.Refresh(context.Background(), staticLister(model.Summary{ID: "new"})))
	close(releaseSlow)
	<-done

	items := d.Items()
	require.Len(t, items, 1)
	assert.Equal(t, model.ID("new"), items[0].ID)
}

func TestFormatList(t *testing.T) {
	assert.Equal(t, "No conversations yet.", FormatList(nil, ""))

	out := FormatList([]model.Summary{
		{ID: "1", Title: "First"},
		{ID: "2", Title: ""},
	}, "2")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "  1"))
	assert.True(t, strings.HasPrefix(lines[3], "* 2"))
	assert.Contains(t, lines[3], model.DefaultTitle)
}

func TestSidebarLabel(t *testing.T) {
	s := model.Summary{Title: "A very long\nconversation title"}
	assert.Equal(t, "A very ...", SidebarLabel(s, 10))
}

package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thgossler/MyAzUrlShortener/analytic/model"
	"github.com/thgossler/MyAzUrlShortener/shared"
)

type fakeSink struct {
	events []*model.ClickEvent
	err    error
}

func (f *fakeSink) Add(event *model.ClickEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func TestClickHandlerDropsUndecodableMessages(t *testing.T) {
	sink := &fakeSink{}
	handle := newClickHandler(sink)

	// A non-nil return would requeue the broken payload forever.
	require.NoError(t, handle([]byte("not json")))
	assert.Empty(t, sink.events)
}

func TestClickHandlerPersistsClicks(t *testing.T) {
	sink := &fakeSink{}
	handle := newClickHandler(sink)

	body, err := json.Marshal(shared.ClickMessage{Id: "id-1", Code: "abc", ClickDatetime: "2024-03-15 12:00"})
	require.NoError(t, err)

	require.NoError(t, handle(body))
	require.Len(t, sink.events, 1)
	assert.Equal(t, "abc", sink.events[0].Code)
	assert.Equal(t, "id-1", sink.events[0].ID)
}

func TestClickHandlerReturnsRepoErrors(t *testing.T) {
	sink := &fakeSink{err: errors.New("db down")}
	handle := newClickHandler(sink)

	body, err := json.Marshal(shared.ClickMessage{Id: "id-2", Code: "abc", ClickDatetime: "2024-03-15 12:00"})
	require.NoError(t, err)

	// Repo failures are transient, those still get requeued.
	assert.Error(t, handle(body))
}

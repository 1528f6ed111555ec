package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk-service/internal/events"
)

type fakePublisher struct {
	messages [][]byte
	err      error
}

func (p *fakePublisher) PublishEvent(_ context.Context, payload []byte) error {
	p.messages = append(p.messages, payload)
	return p.err
}

func TestNotificationServiceLogsAndPublishes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	publisher := &fakePublisher{}
	notifications := NewNotificationService(publisher, zap.New(core))

	event := events.Event{
		ID:        "evt-1",
		Type:      events.EventTicketDeleted,
		EntityID:  7,
		Actor:     events.Actor{PersonID: 1, Roles: []string{"ADMIN"}},
		Timestamp: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, notifications.Handle(context.Background(), event))

	entries := logs.FilterMessage("ticket_deleted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ContextMap()["entity_id"])

	require.Len(t, publisher.messages, 1)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(publisher.messages[0], &decoded))
	assert.Equal(t, "ticket_deleted", decoded["type"])
	assert.Equal(t, "evt-1", decoded["id"])
}

func TestNotificationServicePublishFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	publisher := &fakePublisher{err: errors.New("redis down")}
	notifications := NewNotificationService(publisher, zap.New(core))

	err := notifications.Handle(context.Background(), events.Event{ID: "evt-2", Type: events.EventPersonCreated})
	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("event publish failed").Len())
}

func TestNotificationServiceWithoutPublisher(t *testing.T) {
	notifications := NewNotificationService(nil, nil)
	assert.NoError(t, notifications.Handle(context.Background(), events.Event{Type: events.EventTicketCreated}))
}

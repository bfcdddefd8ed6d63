package broker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"room-chat/backend/models"
	"room-chat/backend/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func receive(t *testing.T, sub *registry.Subscription) models.ServerEvent {
	t.Helper()
	select {
	case evt := <-sub.C():
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	return models.ServerEvent{}
}

func TestAcceptFansOutToRoom(t *testing.T) {
	reg := registry.New()
	b := New(reg)
	room := primitive.NewObjectID()
	sub := reg.Subscribe(room.Hex(), "conn")

	msg := models.Message{ID: primitive.NewObjectID(), RoomID: room, Text: "hello", CreatedAt: time.Now()}
	b.Accept(msg)

	evt := receive(t, sub)
	assert.Equal(t, models.EventMessageAdded, evt.Type)
	assert.Equal(t, room.Hex(), evt.RoomID)
	require.NotNil(t, evt.Message)
	assert.Equal(t, msg.ID, evt.Message.ID)
}

func TestAcceptDoesNotDeduplicate(t *testing.T) {
	reg := registry.New()
	b := New(reg)
	room := primitive.NewObjectID()
	sub := reg.Subscribe(room.Hex(), "conn")

	msg := models.Message{ID: primitive.NewObjectID(), RoomID: room, Text: "retry", CreatedAt: time.Now()}
	b.Accept(msg)
	b.Accept(msg)

	assert.Equal(t, msg.ID, receive(t, sub).Message.ID)
	assert.Equal(t, msg.ID, receive(t, sub).Message.ID)
}

func TestAcceptDoesNotWaitForConsumers(t *testing.T) {
	reg := registry.New(registry.WithQueueSize(1))
	b := New(reg)
	room := primitive.NewObjectID()
	reg.Subscribe(room.Hex(), "never-reads")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Accept(models.Message{ID: primitive.NewObjectID(), RoomID: room, CreatedAt: time.Now()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Accept blocked on a consumer that never reads")
	}
}

func TestMemberEventsHidePassword(t *testing.T) {
	reg := registry.New()
	b := New(reg)
	room := primitive.NewObjectID()
	sub := reg.Subscribe(room.Hex(), "conn")

	user := models.User{ID: primitive.NewObjectID(), Name: "alice", Password: "hash"}
	b.MemberJoined(room.Hex(), user)
	b.MemberLeft(room.Hex(), user)

	joined := receive(t, sub)
	assert.Equal(t, models.EventMemberJoined, joined.Type)
	require.NotNil(t, joined.User)
	assert.Empty(t, joined.User.Password)
	assert.Equal(t, "alice", joined.User.Name)

	left := receive(t, sub)
	assert.Equal(t, models.EventMemberLeft, left.Type)
}

func TestCreateKeepsCreationOrderWhenInsertIsSlow(t *testing.T) {
	reg := registry.New()
	b := New(reg)
	room := primitive.NewObjectID()
	sub := reg.Subscribe(room.Hex(), "conn")

	stamped := make(chan struct{})
	release := make(chan struct{})
	first := make(chan *models.Message, 1)
	go func() {
		msg, err := b.Create(context.Background(), room.Hex(), func(context.Context) (*models.Message, error) {
			m := &models.Message{ID: primitive.NewObjectID(), RoomID: room, Text: "A", CreatedAt: time.Now()}
			close(stamped)
			<-release
			return m, nil
		})
		assert.NoError(t, err)
		first <- msg
	}()
	<-stamped

	var secondStarted atomic.Bool
	second := make(chan *models.Message, 1)
	go func() {
		msg, err := b.Create(context.Background(), room.Hex(), func(context.Context) (*models.Message, error) {
			secondStarted.Store(true)
			return &models.Message{ID: primitive.NewObjectID(), RoomID: room, Text: "B", CreatedAt: time.Now()}, nil
		})
		assert.NoError(t, err)
		second <- msg
	}()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, secondStarted.Load(), "second create ran while the first was still inserting")
	close(release)

	a, bm := <-first, <-second
	assert.True(t, models.MessageLess(*a, *bm))
	assert.Equal(t, "A", receive(t, sub).Message.Text)
	assert.Equal(t, "B", receive(t, sub).Message.Text)
}

func TestCreateDoesNotSerializeAcrossRooms(t *testing.T) {
	reg := registry.New()
	b := New(reg)
	busy := primitive.NewObjectID()
	other := primitive.NewObjectID()

	release := make(chan struct{})
	defer close(release)
	entered := make(chan struct{})
	go func() {
		_, _ = b.Create(context.Background(), busy.Hex(), func(context.Context) (*models.Message, error) {
			close(entered)
			<-release
			return &models.Message{ID: primitive.NewObjectID(), RoomID: busy}, nil
		})
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := b.Create(ctx, other.Hex(), func(context.Context) (*models.Message, error) {
		return &models.Message{ID: primitive.NewObjectID(), RoomID: other}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, other, msg.RoomID)
}

func TestCreateFailureIsNotPublished(t *testing.T) {
	reg := registry.New()
	b := New(reg)
	room := primitive.NewObjectID()
	sub := reg.Subscribe(room.Hex(), "conn")

	_, err := b.Create(context.Background(), room.Hex(), func(context.Context) (*models.Message, error) {
		return nil, models.ErrStoreUnavailable
	})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	select {
	case evt := <-sub.C():
		t.Fatalf("unexpected event %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCreateGivesUpWhenContextEndsWhileWaiting(t *testing.T) {
	reg := registry.New()
	b := New(reg)
	room := primitive.NewObjectID()

	release := make(chan struct{})
	defer close(release)
	entered := make(chan struct{})
	go func() {
		_, _ = b.Create(context.Background(), room.Hex(), func(context.Context) (*models.Message, error) {
			close(entered)
			<-release
			return &models.Message{ID: primitive.NewObjectID(), RoomID: room}, nil
		})
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := b.Create(ctx, room.Hex(), func(context.Context) (*models.Message, error) {
		return nil, errors.New("must not run")
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

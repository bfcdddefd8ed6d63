package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"room-chat/backend/broker"
	"room-chat/backend/mocks"
	"room-chat/backend/models"
	"room-chat/backend/reconciler"
	"room-chat/backend/registry"
	ws "room-chat/backend/websocket"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
)

type testServer struct {
	url    string
	base   string
	room   primitive.ObjectID
	broker *broker.Broker
	// snapshot 是 GET /rooms/{id}/messages 回傳的內容
	snapshot []models.Message
	// beforeSnapshot 在回傳快照前呼叫，模擬快照與即時事件的競爭
	beforeSnapshot func()
}

func newTestServer(t *testing.T, user models.User) *testServer {
	ctrl := gomock.NewController(t)
	ts := &testServer{room: primitive.NewObjectID()}

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().FindRoomByID(gomock.Any(), ts.room).Return(&models.Room{ID: ts.room}, nil).AnyTimes()
	store.EXPECT().IsMember(gomock.Any(), user.ID, ts.room).Return(true, nil).AnyTimes()
	store.EXPECT().CreateMessage(gomock.Any(), ts.room, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, roomID primitive.ObjectID, author models.User, text string) (*models.Message, error) {
			return &models.Message{ID: primitive.NewObjectID(), RoomID: roomID, AuthorID: author.ID, Text: text, CreatedAt: time.Now().UTC()}, nil
		}).AnyTimes()

	identity := mocks.NewMockIdentity(ctrl)
	identity.EXPECT().Authenticate(gomock.Any(), "good").Return(&user, nil).AnyTimes()
	identity.EXPECT().Authenticate(gomock.Any(), gomock.Not("good")).Return(nil, models.ErrAuthenticationFailed).AnyTimes()

	reg := registry.New()
	ts.broker = broker.New(reg)
	h := ws.NewHandler(identity, ws.SessionDeps{Store: store, Broker: ts.broker, Registry: reg}, nil)

	r := mux.NewRouter()
	r.HandleFunc("/ws", h.ServeWS)
	r.HandleFunc("/rooms/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse{Message: "authentication failed", Code: models.CodeAuthenticationFailed})
			return
		}
		if ts.beforeSnapshot != nil {
			ts.beforeSnapshot()
		}
		json.NewEncoder(w).Encode(ts.snapshot)
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		h.Shutdown(ctx)
		srv.Close()
	})
	ts.base = srv.URL
	ts.url = "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return ts
}

func (ts *testServer) dial(t *testing.T, token string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, Options{URL: ts.url, HTTPBase: ts.base, Token: token})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func message(room primitive.ObjectID, n int) models.Message {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var id primitive.ObjectID
	id[11] = byte(n)
	return models.Message{ID: id, RoomID: room, Text: string(rune('a' + n)), CreatedAt: base.Add(time.Duration(n) * time.Second)}
}

func keys(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Key()
	}
	return out
}

func TestSubscribeMergesSnapshotWithLiveEvents(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Name: "alice"}
	ts := newTestServer(t, user)
	m1, m2, m3, m4 := message(ts.room, 1), message(ts.room, 2), message(ts.room, 3), message(ts.room, 4)
	ts.snapshot = []models.Message{m1, m2, m3}
	ts.beforeSnapshot = func() {
		// 快照送出前已經推播的訊息：重複的 2 與較新的 4
		ts.broker.Accept(m2)
		ts.broker.Accept(m4)
	}

	c := ts.dial(t, "good")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Subscribe(ctx, ts.room.Hex()))

	want := keys([]models.Message{m1, m2, m3, m4})
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, keys(c.Messages(ts.room.Hex())))
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSendAppearsOnceLocally(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Name: "alice"}
	ts := newTestServer(t, user)
	c := ts.dial(t, "good")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Subscribe(ctx, ts.room.Hex()))

	msg, err := c.Send(ctx, ts.room.Hex(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)

	// 自己的 sent 回覆與 messageAdded 推播合併為一筆
	time.Sleep(50 * time.Millisecond)
	msgs := c.Messages(ts.room.Hex())
	require.Len(t, msgs, 1)
	assert.Equal(t, msg.ID, msgs[0].ID)
}

func TestRequestErrorsMapToSentinels(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Name: "alice"}
	ts := newTestServer(t, user)
	c := ts.dial(t, "good")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := c.Send(ctx, ts.room.Hex(), "")
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	err = c.Subscribe(ctx, "not-a-room")
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestDialWithBadTokenEndsUnauthorized(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Name: "alice"}
	ts := newTestServer(t, user)
	c := ts.dial(t, "expired")

	select {
	case evt := <-c.Events():
		assert.Equal(t, models.EventError, evt.Type)
		assert.Equal(t, models.CodeAuthenticationFailed, evt.Error.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("no error event")
	}
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("connection stayed open")
	}
	assert.ErrorIs(t, c.Err(), models.ErrAuthenticationFailed)

	err := c.Subscribe(context.Background(), ts.room.Hex())
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)
}

func TestSnapshotErrorIsDecoded(t *testing.T) {
	c := &Client{opts: Options{Token: "bad"}, httpc: http.DefaultClient}
	user := models.User{ID: primitive.NewObjectID()}
	ts := newTestServer(t, user)
	c.opts.HTTPBase = ts.base

	_, err := c.fetchSnapshot(context.Background(), ts.room.Hex())
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)
}

func TestLateMessageAfterUnsubscribeIsIgnored(t *testing.T) {
	room := primitive.NewObjectID()
	c := &Client{
		cache:   reconciler.NewCache(),
		pending: make(map[string]chan models.ServerEvent),
		rooms:   make(map[string]struct{}),
		events:  make(chan models.ServerEvent, 1),
	}

	c.setSubscribed(room.Hex(), true)
	c.cache.LoadSnapshot(room.Hex(), []models.Message{message(room, 1)})
	c.setSubscribed(room.Hex(), false)
	c.cache.Forget(room.Hex())

	// 伺服器佇列中取消訂閱前就已排入的推播
	c.dispatch(models.NewMessageAdded(message(room, 2)))

	assert.Empty(t, c.Messages(room.Hex()))
	assert.False(t, c.Subscribed(room.Hex()))
	select {
	case evt := <-c.Events():
		t.Fatalf("unexpected event %+v", evt)
	default:
	}
}

func TestUnsubscribeDropsLocalRoom(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Name: "alice"}
	ts := newTestServer(t, user)
	ts.snapshot = []models.Message{message(ts.room, 1)}
	c := ts.dial(t, "good")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Subscribe(ctx, ts.room.Hex()))
	assert.True(t, c.Subscribed(ts.room.Hex()))
	require.Len(t, c.Messages(ts.room.Hex()), 1)

	require.NoError(t, c.Unsubscribe(ctx, ts.room.Hex()))
	ts.broker.Accept(message(ts.room, 2))
	_, err := c.Send(ctx, ts.room.Hex(), "after leaving the live feed")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, c.Subscribed(ts.room.Hex()))
	assert.Empty(t, c.Messages(ts.room.Hex()))
}

package database

import (
	"context"
	"testing"
	"time"

	"room-chat/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newTestStore 以 testcontainers 啟動 MongoDB，沒有 Docker 時略過
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("MongoDB container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := ConnectMongoDB(ctx, uri, "room_chat_test")
	require.NoError(t, err)
	t.Cleanup(store.DisconnectMongoDB)
	require.NoError(t, store.EnsureIndexes(ctx))
	return store
}

func TestStoreIntegration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice, err := store.InsertUser(ctx, models.User{Email: "alice@example.com", Name: "alice", Password: "hash"})
	require.NoError(t, err)

	t.Run("email is unique", func(t *testing.T) {
		_, err := store.InsertUser(ctx, models.User{Email: "alice@example.com", Name: "other"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	group, err := store.InsertGroup(ctx, models.Group{Name: "General"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGroupIcon, group.Icon)

	general, err := store.InsertRoom(ctx, models.Room{Name: "general", GroupID: group.ID, Tags: []string{"chat"}})
	require.NoError(t, err)
	random, err := store.InsertRoom(ctx, models.Room{Name: "random", GroupID: group.ID})
	require.NoError(t, err)

	t.Run("membership is idempotent", func(t *testing.T) {
		joined, err := store.JoinRoom(ctx, alice.ID, general.ID)
		require.NoError(t, err)
		assert.True(t, joined)

		joined, err = store.JoinRoom(ctx, alice.ID, general.ID)
		require.NoError(t, err)
		assert.False(t, joined)

		member, err := store.IsMember(ctx, alice.ID, general.ID)
		require.NoError(t, err)
		assert.True(t, member)

		member, err = store.IsMember(ctx, alice.ID, random.ID)
		require.NoError(t, err)
		assert.False(t, member)
	})

	t.Run("messages advance lastActivity and come back ordered", func(t *testing.T) {
		var created []models.Message
		for _, text := range []string{"one", "two", "three"} {
			msg, err := store.CreateMessage(ctx, general.ID, *alice, text)
			require.NoError(t, err)
			created = append(created, *msg)
		}

		snapshot, err := store.GetRoomSnapshot(ctx, general.ID, 10)
		require.NoError(t, err)
		require.Len(t, snapshot, 3)
		for i := range created {
			assert.Equal(t, created[i].ID, snapshot[i].ID)
			assert.True(t, created[i].CreatedAt.Equal(snapshot[i].CreatedAt))
		}

		latest, err := store.GetRoomSnapshot(ctx, general.ID, 2)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, created[1].ID, latest[0].ID)

		room, err := store.FindRoomByID(ctx, general.ID)
		require.NoError(t, err)
		assert.True(t, room.LastActivity.Equal(created[2].CreatedAt))

		rooms, err := store.ListRooms(ctx, models.RoomFilter{}, 0)
		require.NoError(t, err)
		require.Len(t, rooms, 2)
		assert.Equal(t, general.ID, rooms[0].ID)
	})

	t.Run("room filters", func(t *testing.T) {
		rooms, err := store.ListRooms(ctx, models.RoomFilter{Tag: "chat"}, 0)
		require.NoError(t, err)
		require.Len(t, rooms, 1)

		rooms, err = store.ListRooms(ctx, models.RoomFilter{Keyword: "RAND"}, 0)
		require.NoError(t, err)
		require.Len(t, rooms, 1)
		assert.Equal(t, random.ID, rooms[0].ID)
	})

	t.Run("missing documents", func(t *testing.T) {
		room, err := store.FindRoomByID(ctx, primitive.NewObjectID())
		assert.NoError(t, err)
		assert.Nil(t, room)

		user, err := store.GetUserByID(ctx, primitive.NewObjectID())
		assert.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("members and user rooms", func(t *testing.T) {
		bob, err := store.InsertUser(ctx, models.User{Email: "bob@example.com", Name: "bob", Password: "hash"})
		require.NoError(t, err)
		_, err = store.JoinRoom(ctx, bob.ID, general.ID)
		require.NoError(t, err)

		members, err := store.GetRoomMembers(ctx, general.ID)
		require.NoError(t, err)
		require.Len(t, members, 2)
		assert.Equal(t, "alice", members[0].Name)
		assert.Equal(t, "bob", members[1].Name)

		rooms, err := store.GetUserRooms(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, rooms, 1)
		assert.Equal(t, general.ID, rooms[0].ID)

		members, err = store.GetRoomMembers(ctx, random.ID)
		require.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("message counts and user list", func(t *testing.T) {
		count, err := store.CountMessages(ctx, general.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)

		count, err = store.CountMessages(ctx, random.ID)
		require.NoError(t, err)
		assert.Zero(t, count)

		users, err := store.ListUsers(ctx, 0)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Name)
		assert.Equal(t, "bob", users[1].Name)

		users, err = store.ListUsers(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("leave", func(t *testing.T) {
		left, err := store.LeaveRoom(ctx, alice.ID, general.ID)
		require.NoError(t, err)
		assert.True(t, left)
		left, err = store.LeaveRoom(ctx, alice.ID, general.ID)
		require.NoError(t, err)
		assert.False(t, left)
	})
}

func TestCreateMessageStoreUnavailable(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	room, err := store.InsertRoom(ctx, models.Room{Name: "down"})
	require.NoError(t, err)

	store.DisconnectMongoDB()
	_, err = store.CreateMessage(ctx, room.ID, models.User{ID: primitive.NewObjectID()}, "lost")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

package database

import (
	"context"
	"regexp"
	"sort"
	"time"

	"room-chat/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertGroup 新增分類
func (s *Store) InsertGroup(ctx context.Context, group models.Group) (*models.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	group.ID = primitive.NewObjectID()
	if group.Icon == "" {
		group.Icon = models.DefaultGroupIcon
	}
	if _, err := s.collection(groupsCollection).InsertOne(ctx, group); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListGroups 依名稱排序回傳所有分類
func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.collection(groupsCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	groups := []models.Group{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// FindGroupByID 找不到時回傳 (nil, nil)
func (s *Store) FindGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var group models.Group
	err := s.collection(groupsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// InsertRoom 新增聊天室，lastActivity 初始為建立時間
func (s *Store) InsertRoom(ctx context.Context, room models.Room) (*models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	room.ID = primitive.NewObjectID()
	room.CreatedAt = now
	room.LastActivity = now
	if room.Tags == nil {
		room.Tags = []string{}
	}
	if _, err := s.collection(roomsCollection).InsertOne(ctx, room); err != nil {
		return nil, err
	}
	return &room, nil
}

// FindRoomByID 找不到時回傳 (nil, nil)
func (s *Store) FindRoomByID(ctx context.Context, id primitive.ObjectID) (*models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var room models.Room
	err := s.collection(roomsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms 依 lastActivity 由新到舊排序
func (s *Store) ListRooms(ctx context.Context, filter models.RoomFilter, limit int64) ([]models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := bson.M{}
	if !filter.GroupID.IsZero() {
		query["groupId"] = filter.GroupID
	}
	if filter.Tag != "" {
		query["tags"] = filter.Tag
	}
	if filter.Keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Keyword), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "lastActivity", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	cursor, err := s.collection(roomsCollection).Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rooms := []models.Room{}
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// JoinRoom 加入聊天室，重複加入不是錯誤。回傳是否為新加入。
func (s *Store) JoinRoom(ctx context.Context, userID, roomID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"userId": userID, "roomId": roomID}
	update := bson.M{"$setOnInsert": bson.M{
		"userId":   userID,
		"roomId":   roomID,
		"joinedAt": time.Now().UTC().Truncate(time.Millisecond),
	}}
	result, err := s.collection(membershipsCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// 同時加入的競爭，另一方已寫入
			return false, nil
		}
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

// LeaveRoom 離開聊天室，回傳是否真的移除了成員關係
func (s *Store) LeaveRoom(ctx context.Context, userID, roomID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := s.collection(membershipsCollection).DeleteOne(ctx, bson.M{"userId": userID, "roomId": roomID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// IsMember 檢查成員關係
func (s *Store) IsMember(ctx context.Context, userID, roomID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := s.collection(membershipsCollection).CountDocuments(ctx,
		bson.M{"userId": userID, "roomId": roomID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetUserRooms 回傳使用者加入的聊天室
func (s *Store) GetUserRooms(ctx context.Context, userID primitive.ObjectID) ([]models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.collection(membershipsCollection).Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	var memberships []models.Membership
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []models.Room{}, nil
	}

	roomIDs := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		roomIDs = append(roomIDs, m.RoomID)
	}
	roomCursor, err := s.collection(roomsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": roomIDs}},
		options.Find().SetSort(bson.D{{Key: "lastActivity", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer roomCursor.Close(ctx)

	rooms := []models.Room{}
	if err := roomCursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// GetRoomMembers 依使用者名稱排序回傳聊天室成員
func (s *Store) GetRoomMembers(ctx context.Context, roomID primitive.ObjectID) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.collection(membershipsCollection).Find(ctx, bson.M{"roomId": roomID})
	if err != nil {
		return nil, err
	}
	var memberships []models.Membership
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []models.User{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	users, err := s.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"poll-voting-backend/models"
)

const (
	collUsers   = "users"
	collRoles   = "roles"
	collPolls   = "polls"
	collChoices = "choices"
)

// MongoStore 文档存储实现，投票记录内嵌在选项文档中
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

func mongoErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// EnsureIndexes 创建唯一索引，启动时调用
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	const op = "repository.MongoStore.EnsureIndexes"

	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		collRoles:   {{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		collPolls:   {{Keys: bson.D{{Key: "topic", Value: 1}}, Options: unique}, {Keys: bson.D{{Key: "date", Value: -1}}}},
		collChoices: {{Keys: bson.D{{Key: "poll", Value: 1}, {Key: "position", Value: 1}}}},
	}

	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("%s: %s: %w", op, coll, err)
		}
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func afterUpsert() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
}

// 用户

func (s *MongoStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := findOne[models.User](ctx, s.db.Collection(collUsers), bson.M{"_id": id})
	return user, mongoErr("repository.UserByID", err)
}

func (s *MongoStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := findOne[models.User](ctx, s.db.Collection(collUsers), bson.M{"email": email})
	return user, mongoErr("repository.UserByEmail", err)
}

func (s *MongoStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := findOne[models.User](ctx, s.db.Collection(collUsers), bson.M{"username": username})
	return user, mongoErr("repository.UserByUsername", err)
}

func (s *MongoStore) Users(ctx context.Context) ([]models.User, error) {
	users, err := findAll[models.User](ctx, s.db.Collection(collUsers), bson.M{},
		options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	return users, mongoErr("repository.Users", err)
}

func (s *MongoStore) InsertUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	_, err := s.db.Collection(collUsers).InsertOne(ctx, user)
	return mongoErr("repository.InsertUser", err)
}

func (s *MongoStore) UpsertUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	set := bson.M{}
	if upd.Username != "" {
		set["username"] = upd.Username
	}
	if upd.Fullname != "" {
		set["fullname"] = upd.Fullname
	}
	if upd.Email != "" {
		set["email"] = upd.Email
	}
	if upd.Roles != nil {
		set["roles"] = upd.Roles
	}

	update := bson.M{"$setOnInsert": bson.M{"password": ""}}
	if len(set) > 0 {
		update["$set"] = set
	}

	var user models.User
	err := s.db.Collection(collUsers).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, afterUpsert()).Decode(&user)
	if err != nil {
		return nil, mongoErr("repository.UpsertUser", err)
	}
	return &user, nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.Collection(collUsers).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr("repository.DeleteUser", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("repository.DeleteUser: %w", ErrNotFound)
	}
	return nil
}

// 角色

func (s *MongoStore) RolesByIDs(ctx context.Context, ids []string) ([]models.Role, error) {
	roles, err := findAll[models.Role](ctx, s.db.Collection(collRoles), bson.M{"_id": bson.M{"$in": ids}})
	return roles, mongoErr("repository.RolesByIDs", err)
}

func (s *MongoStore) RolesByNames(ctx context.Context, names []string) ([]models.Role, error) {
	roles, err := findAll[models.Role](ctx, s.db.Collection(collRoles), bson.M{"name": bson.M{"$in": names}})
	return roles, mongoErr("repository.RolesByNames", err)
}

func (s *MongoStore) InsertRole(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = newID()
	}
	_, err := s.db.Collection(collRoles).InsertOne(ctx, role)
	return mongoErr("repository.InsertRole", err)
}

func (s *MongoStore) CountRoles(ctx context.Context) (int64, error) {
	n, err := s.db.Collection(collRoles).EstimatedDocumentCount(ctx)
	return n, mongoErr("repository.CountRoles", err)
}

// 投票

func (s *MongoStore) PollByID(ctx context.Context, id string) (*models.Poll, error) {
	poll, err := findOne[models.Poll](ctx, s.db.Collection(collPolls), bson.M{"_id": id})
	return poll, mongoErr("repository.PollByID", err)
}

func (s *MongoStore) Polls(ctx context.Context) ([]models.Poll, error) {
	polls, err := findAll[models.Poll](ctx, s.db.Collection(collPolls), bson.M{},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	return polls, mongoErr("repository.Polls", err)
}

func (s *MongoStore) InsertPoll(ctx context.Context, poll *models.Poll) error {
	if poll.ID == "" {
		poll.ID = newID()
	}
	if poll.Status == "" {
		poll.Status = models.PollOpen
	}
	if poll.Date.IsZero() {
		poll.Date = time.Now()
	}
	_, err := s.db.Collection(collPolls).InsertOne(ctx, poll)
	return mongoErr("repository.InsertPoll", err)
}

func (s *MongoStore) UpsertPollByTopic(ctx context.Context, topic string, upd PollUpdate) (*models.Poll, error) {
	set := bson.M{"topic": topic}
	onInsert := bson.M{
		"_id":    newID(),
		"status": models.PollOpen,
		"date":   time.Now(),
	}
	// 同一字段不能同时出现在 $set 和 $setOnInsert 中
	if upd.Author != "" {
		set["author"] = upd.Author
	} else if upd.InsertAuthor != "" {
		onInsert["author"] = upd.InsertAuthor
	}
	if upd.InsertUser != "" {
		onInsert["user"] = upd.InsertUser
	}
	update := bson.M{"$set": set, "$setOnInsert": onInsert}

	var poll models.Poll
	err := s.db.Collection(collPolls).FindOneAndUpdate(ctx, bson.M{"topic": topic}, update, afterUpsert()).Decode(&poll)
	if err != nil {
		return nil, mongoErr("repository.UpsertPollByTopic", err)
	}
	return &poll, nil
}

func (s *MongoStore) UpsertPollStatus(ctx context.Context, id string, status models.PollStatus) (*models.Poll, error) {
	update := bson.M{
		"$set":         bson.M{"status": status},
		"$setOnInsert": bson.M{"date": time.Now()},
	}

	var poll models.Poll
	err := s.db.Collection(collPolls).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, afterUpsert()).Decode(&poll)
	if err != nil {
		return nil, mongoErr("repository.UpsertPollStatus", err)
	}
	return &poll, nil
}

func (s *MongoStore) DeletePoll(ctx context.Context, id string) error {
	res, err := s.db.Collection(collPolls).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr("repository.DeletePoll", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("repository.DeletePoll: %w", ErrNotFound)
	}
	return nil
}

// 选项

func (s *MongoStore) ChoiceByID(ctx context.Context, id string) (*models.Choice, error) {
	choice, err := findOne[models.Choice](ctx, s.db.Collection(collChoices), bson.M{"_id": id})
	return choice, mongoErr("repository.ChoiceByID", err)
}

func (s *MongoStore) ChoicesByPoll(ctx context.Context, pollID string) ([]models.Choice, error) {
	choices, err := findAll[models.Choice](ctx, s.db.Collection(collChoices), bson.M{"poll": pollID},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	return choices, mongoErr("repository.ChoicesByPoll", err)
}

func (s *MongoStore) InsertChoice(ctx context.Context, choice *models.Choice) error {
	if choice.ID == "" {
		choice.ID = newID()
	}
	if choice.Votes == nil {
		choice.Votes = []models.VoteEntry{}
	}
	_, err := s.db.Collection(collChoices).InsertOne(ctx, choice)
	return mongoErr("repository.InsertChoice", err)
}

func (s *MongoStore) DeleteChoicesByPoll(ctx context.Context, pollID string) error {
	_, err := s.db.Collection(collChoices).DeleteMany(ctx, bson.M{"poll": pollID})
	return mongoErr("repository.DeleteChoicesByPoll", err)
}

// PrependVote 用 $push + $position:0 原子地插到列表头部。同一选项内的重复由过滤条件拦截
func (s *MongoStore) PrependVote(ctx context.Context, choiceID string, vote models.VoteEntry) error {
	const op = "repository.PrependVote"

	if vote.ID == "" {
		vote.ID = newID()
	}
	if vote.Date.IsZero() {
		vote.Date = time.Now()
	}

	filter := bson.M{"_id": choiceID, "votes.user": bson.M{"$ne": vote.User}}
	update := bson.M{"$push": bson.M{"votes": bson.M{
		"$each":     []models.VoteEntry{vote},
		"$position": 0,
	}}}

	res, err := s.db.Collection(collChoices).UpdateOne(ctx, filter, update)
	if err != nil {
		return mongoErr(op, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// 区分选项不存在和重复投票
	n, err := s.db.Collection(collChoices).CountDocuments(ctx, bson.M{"_id": choiceID})
	if err != nil {
		return mongoErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, ErrDuplicate)
}

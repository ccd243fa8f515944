package notifications

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names used by the MongoDB stores.
const (
	SubscriptionsCollection = "subscriptions"
	NotificationsCollection = "notifications"
)

// MongoSubscriptionStore keeps one document per user in the subscriptions collection.
type MongoSubscriptionStore struct {
	coll *mongo.Collection
}

func NewMongoSubscriptionStore(db *mongo.Database) *MongoSubscriptionStore {
	return &MongoSubscriptionStore{coll: db.Collection(SubscriptionsCollection)}
}

// EnsureIndexes creates the unique user id index.
func (s *MongoSubscriptionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// subscriptionUpdate builds an upsert that merges in atomically: provided
// fields are $set, defaults for the rest are applied only on insert.
func subscriptionUpdate(in SubscriptionInput, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	setOnInsert := bson.M{"createdAt": now}

	if in.Channels != nil {
		set["channels"] = in.Channels
	} else {
		setOnInsert["channels"] = []Channel{}
	}

	var patch PreferencesPatch
	if in.Preferences != nil {
		patch = *in.Preferences
	}
	defaults := DefaultPreferences()
	for key, value := range patch.fields() {
		path := "preferences." + key
		if value != nil {
			set[path] = *value
			continue
		}
		enabled, _ := defaults.Lookup(key)
		setOnInsert[path] = enabled
	}

	return bson.M{"$set": set, "$setOnInsert": setOnInsert}
}

func (s *MongoSubscriptionStore) Upsert(ctx context.Context, in SubscriptionInput, now time.Time) (*Subscription, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := subscriptionUpdate(in, now)

	var sub Subscription
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"userId": in.UserID}, update, opts).Decode(&sub)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert inserted first; the retry matches its document.
		err = s.coll.FindOneAndUpdate(ctx, bson.M{"userId": in.UserID}, update, opts).Decode(&sub)
	}
	if err != nil {
		return nil, err
	}
	return normalizeSubscription(&sub), nil
}

func (s *MongoSubscriptionStore) Get(ctx context.Context, userID string) (*Subscription, error) {
	var sub Subscription
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return normalizeSubscription(&sub), nil
}

func normalizeSubscription(sub *Subscription) *Subscription {
	if sub.Channels == nil {
		sub.Channels = []Channel{}
	}
	return sub
}

// MongoStorage keeps notification records in the notifications collection.
type MongoStorage struct {
	coll *mongo.Collection
}

func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{coll: db.Collection(NotificationsCollection)}
}

// EnsureIndexes creates the index backing ListByUser.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (s *MongoStorage) Create(ctx context.Context, n Notification) error {
	_, err := s.coll.InsertOne(ctx, n)
	return err
}

func (s *MongoStorage) Get(ctx context.Context, id string) (*Notification, error) {
	var n Notification
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func statusUpdate(to Status, sentAt *time.Time, now time.Time) bson.M {
	set := bson.M{"status": to, "updatedAt": now}
	if sentAt != nil {
		set["sentAt"] = *sentAt
	}
	return bson.M{"$set": set}
}

func (s *MongoStorage) UpdateStatus(ctx context.Context, id string, from, to Status, sentAt *time.Time, now time.Time) (*Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n Notification
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		statusUpdate(to, sentAt, now),
		opts,
	).Decode(&n)
	if err == nil {
		return &n, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	count, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotificationNotFound
	}
	return nil, ErrInvalidTransition
}

func (s *MongoStorage) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func listOptions(opts ListOptions) *options.FindOptionsBuilder {
	find := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Offset > 0 {
		find.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}
	return find
}

func (s *MongoStorage) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID}, listOptions(opts))
	if err != nil {
		return nil, err
	}

	list := []Notification{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

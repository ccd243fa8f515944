package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStorage persists tasks in a MongoDB collection so that handed-off work
// survives restarts and can be shared by several workers.
type MongoStorage struct {
	coll *mongo.Collection
}

func NewMongoStorage(coll *mongo.Collection) *MongoStorage {
	return &MongoStorage{coll: coll}
}

// EnsureIndexes creates the index backing ClaimTask.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "queue", Value: 1},
			{Key: "status", Value: 1},
			{Key: "priority", Value: -1},
			{Key: "scheduledAt", Value: 1},
		},
	})
	return err
}

type taskDocument struct {
	ID          string     `bson:"_id"`
	Queue       string     `bson:"queue"`
	TaskName    string     `bson:"taskName"`
	Payload     []byte     `bson:"payload,omitempty"`
	Status      TaskStatus `bson:"status"`
	Priority    Priority   `bson:"priority"`
	ScheduledAt time.Time  `bson:"scheduledAt"`
	LockedUntil *time.Time `bson:"lockedUntil,omitempty"`
	LockedBy    string     `bson:"lockedBy,omitempty"`
	ProcessedAt *time.Time `bson:"processedAt,omitempty"`
	Error       *string    `bson:"error,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
}

func toTaskDocument(t *Task) taskDocument {
	doc := taskDocument{
		ID:          t.ID.String(),
		Queue:       t.Queue,
		TaskName:    t.TaskName,
		Payload:     t.Payload,
		Status:      t.Status,
		Priority:    t.Priority,
		ScheduledAt: t.ScheduledAt,
		LockedUntil: t.LockedUntil,
		ProcessedAt: t.ProcessedAt,
		Error:       t.Error,
		CreatedAt:   t.CreatedAt,
	}
	if t.LockedBy != nil {
		doc.LockedBy = t.LockedBy.String()
	}
	return doc
}

func (d taskDocument) toTask() (*Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	t := &Task{
		ID:          id,
		Queue:       d.Queue,
		TaskName:    d.TaskName,
		Payload:     d.Payload,
		Status:      d.Status,
		Priority:    d.Priority,
		ScheduledAt: d.ScheduledAt,
		LockedUntil: d.LockedUntil,
		ProcessedAt: d.ProcessedAt,
		Error:       d.Error,
		CreatedAt:   d.CreatedAt,
	}
	if d.LockedBy != "" {
		if by, err := uuid.Parse(d.LockedBy); err == nil {
			t.LockedBy = &by
		}
	}
	return t, nil
}

func (s *MongoStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	_, err := s.coll.InsertOne(ctx, toTaskDocument(task))
	return err
}

// claimFilter matches due pending tasks and processing tasks whose lock expired.
func claimFilter(queues []string, now time.Time) bson.M {
	return bson.M{
		"queue": bson.M{"$in": queues},
		"$or": bson.A{
			bson.M{"status": TaskStatusPending, "scheduledAt": bson.M{"$lte": now}},
			bson.M{"status": TaskStatusProcessing, "lockedUntil": bson.M{"$lt": now}},
		},
	}
}

func (s *MongoStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":      TaskStatusProcessing,
		"lockedUntil": now.Add(lockDuration),
		"lockedBy":    workerID.String(),
	}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "priority", Value: -1}, {Key: "scheduledAt", Value: 1}}).
		SetReturnDocument(options.After)

	var doc taskDocument
	err := s.coll.FindOneAndUpdate(ctx, claimFilter(queues, now), update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoTaskToClaim
	}
	if err != nil {
		return nil, err
	}
	return doc.toTask()
}

func (s *MongoStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	return s.resolve(ctx, taskID, bson.M{"status": TaskStatusCompleted})
}

func (s *MongoStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	return s.resolve(ctx, taskID, bson.M{"status": TaskStatusFailed, "error": errorMsg})
}

func (s *MongoStorage) resolve(ctx context.Context, taskID uuid.UUID, set bson.M) error {
	set["processedAt"] = time.Now().UTC()
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": taskID.String(), "status": TaskStatusProcessing},
		bson.M{"$set": set, "$unset": bson.M{"lockedUntil": "", "lockedBy": ""}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTaskNotProcessing
	}
	return nil
}

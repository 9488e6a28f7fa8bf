// Package mongodb stores rates, members, records and sessions in MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
)

const (
	ratesCollection    = "rates"
	membersCollection  = "members"
	recordsCollection  = "entries"
	sessionsCollection = "entry_sessions"

	rateDocumentID = "active"
)

// NewStores connects to MongoDB and returns stores backed by dbName.
func NewStores(ctx context.Context, uri string, dbName string) (*repository.Stores, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	return repository.NewStores(
		&RateStore{coll: db.Collection(ratesCollection)},
		&MemberStore{coll: db.Collection(membersCollection)},
		&RecordStore{coll: db.Collection(recordsCollection)},
		&SessionStore{coll: db.Collection(sessionsCollection)},
		client.Disconnect,
	), nil
}

// RateStore keeps the rate as a single document.
type RateStore struct {
	coll *mongo.Collection
}

type rateDocument struct {
	ID          string `bson:"_id"`
	models.Rate `bson:",inline"`
}

// Get implements repository.RateStore.
func (s *RateStore) Get(ctx context.Context) (models.Rate, bool, error) {
	var doc rateDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": rateDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Rate{}, false, nil
	}
	if err != nil {
		return models.Rate{}, false, fmt.Errorf("failed to load rate: %w", err)
	}
	return doc.Rate, true, nil
}

// Set implements repository.RateStore.
func (s *RateStore) Set(ctx context.Context, rate models.Rate) error {
	doc := rateDocument{ID: rateDocumentID, Rate: rate}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rateDocumentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to store rate: %w", err)
	}
	return nil
}

// MemberStore keeps one document per member with embedded history.
type MemberStore struct {
	coll *mongo.Collection
}

// All implements repository.MemberStore.
func (s *MemberStore) All(ctx context.Context) ([]models.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "join_date", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	members := []models.Member{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode members: %w", err)
	}
	return members, nil
}

// FindByName implements repository.MemberStore.
func (s *MemberStore) FindByName(ctx context.Context, name string) (models.Member, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "join_date", Value: 1}})
	return s.findOne(ctx, bson.M{"name": name}, opts)
}

// FindByID implements repository.MemberStore.
func (s *MemberStore) FindByID(ctx context.Context, id string) (models.Member, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MemberStore) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (models.Member, error) {
	var member models.Member
	err := s.coll.FindOne(ctx, filter, opts...).Decode(&member)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Member{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Member{}, fmt.Errorf("failed to load member: %w", err)
	}
	if member.History == nil {
		member.History = []models.CollectionRecord{}
	}
	return member, nil
}

// Insert implements repository.MemberStore.
func (s *MemberStore) Insert(ctx context.Context, member models.Member) error {
	if member.History == nil {
		member.History = []models.CollectionRecord{}
	}
	if _, err := s.coll.InsertOne(ctx, member); err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// Update implements repository.MemberStore.
func (s *MemberStore) Update(ctx context.Context, member models.Member) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": member.ID}, member)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete implements repository.MemberStore.
func (s *MemberStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ClearHistory implements repository.MemberStore.
func (s *MemberStore) ClearHistory(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"history": []models.CollectionRecord{}}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to clear member history: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RecordStore keeps individual collection records.
type RecordStore struct {
	coll *mongo.Collection
}

// Insert implements repository.RecordStore.
func (s *RecordStore) Insert(ctx context.Context, record models.CollectionRecord) error {
	if _, err := s.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// All implements repository.RecordStore.
func (s *RecordStore) All(ctx context.Context) ([]models.CollectionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	records := []models.CollectionRecord{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

// SessionStore keeps grouped shift sessions.
type SessionStore struct {
	coll *mongo.Collection
}

// Insert implements repository.SessionStore. A session with an existing id
// replaces the stored one.
func (s *SessionStore) Insert(ctx context.Context, session models.CollectionSession) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": session.ID}, session, opts); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Update implements repository.SessionStore.
func (s *SessionStore) Update(ctx context.Context, session models.CollectionSession) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete implements repository.SessionStore.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByID implements repository.SessionStore.
func (s *SessionStore) GetByID(ctx context.Context, id string) (models.CollectionSession, error) {
	var session models.CollectionSession
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CollectionSession{}, repository.ErrNotFound
	}
	if err != nil {
		return models.CollectionSession{}, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// All implements repository.SessionStore.
func (s *SessionStore) All(ctx context.Context) ([]models.CollectionSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sessions := []models.CollectionSession{}
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

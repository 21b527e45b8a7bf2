package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

const (
	usersCollection  = "users"
	eventsCollection = "ledger_events"
)

// ErrUserNotFound is returned when no account has the requested username.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateUser is returned when registering an existing username.
var ErrDuplicateUser = errors.New("user already exists")

// MongoDBRepository stores credentials and the ledger audit trail.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository connects, pings and ensures the username index.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{client: client, dbName: dbName}

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.collection(usersCollection).Indexes().CreateOne(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to create username index: %w", err)
	}

	return repo, nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// FindUser loads the account for username.
func (r *MongoDBRepository) FindUser(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.collection(usersCollection).FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// InsertUser stores a new account.
func (r *MongoDBRepository) InsertUser(ctx context.Context, user models.User) error {
	_, err := r.collection(usersCollection).InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateUser
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// SaveEvent appends one audit event.
func (r *MongoDBRepository) SaveEvent(ctx context.Context, event models.AuditEvent) error {
	if _, err := r.collection(eventsCollection).InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert ledger event: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

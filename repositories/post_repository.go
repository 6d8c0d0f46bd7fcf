package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rmaalouf/melodeon_backend/models"
)

// ErrPostNotFound is returned when no post exists for the given id.
var ErrPostNotFound = errors.New("post not found")

// PostRepository persists post documents. Listing is newest-first by
// creation time with insertion order as tiebreaker.
type PostRepository interface {
	List(ctx context.Context, page, pageSize int, tag string) (*models.PostList, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, draft models.PostDraft) (*models.Post, error)
	Update(ctx context.Context, id string, draft models.PostDraft) (*models.Post, error)
	// Delete removes the document and returns it so the caller can release
	// associated media.
	Delete(ctx context.Context, id string) (*models.Post, error)
}

// MongoPostRepository is the MongoDB-backed PostRepository.
type MongoPostRepository struct {
	collection *mongo.Collection
}

func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{
		collection: db.Collection("posts"),
	}
}

func (r *MongoPostRepository) List(ctx context.Context, page, pageSize int, tag string) (*models.PostList, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	filter := bson.M{}
	// An empty tag means "no filter", not "posts with an empty tag list"
	if tag != "" {
		filter["tags"] = tag
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	for cursor.Next(ctx) {
		var post models.Post
		if err := cursor.Decode(&post); err != nil {
			return nil, err
		}
		normalizePost(&post)
		posts = append(posts, post)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return &models.PostList{
		Posts:   posts,
		Total:   total,
		HasMore: int64(page*pageSize) < total,
	}, nil
}

func (r *MongoPostRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPostNotFound
	} else if err != nil {
		return nil, err
	}

	normalizePost(&post)
	return &post, nil
}

func (r *MongoPostRepository) Create(ctx context.Context, draft models.PostDraft) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	post := models.Post{
		ID:        primitive.NewObjectID(),
		Title:     draft.Title,
		Content:   draft.Content,
		Tags:      emptyIfNil(draft.Tags),
		Images:    emptyIfNil(draft.Images),
		Videos:    emptyIfNil(draft.Videos),
		SongURL:   draft.SongURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) Update(ctx context.Context, id string, draft models.PostDraft) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	// createdAt is left untouched on update
	update := bson.M{
		"$set": bson.M{
			"title":     draft.Title,
			"content":   draft.Content,
			"tags":      emptyIfNil(draft.Tags),
			"images":    emptyIfNil(draft.Images),
			"videos":    emptyIfNil(draft.Videos),
			"songUrl":   draft.SongURL,
			"updatedAt": time.Now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPostNotFound
	} else if err != nil {
		return nil, err
	}

	normalizePost(&post)
	return &post, nil
}

func (r *MongoPostRepository) Delete(ctx context.Context, id string) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": objID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPostNotFound
	} else if err != nil {
		return nil, err
	}

	normalizePost(&post)
	return &post, nil
}

// normalizePost keeps tags and media lists non-null for older documents
func normalizePost(post *models.Post) {
	post.Tags = emptyIfNil(post.Tags)
	post.Images = emptyIfNil(post.Images)
	post.Videos = emptyIfNil(post.Videos)
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

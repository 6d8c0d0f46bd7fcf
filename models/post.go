package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post model for blog posts
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	Tags      []string           `json:"tags" bson:"tags"`
	Images    []string           `json:"images" bson:"images"`
	Videos    []string           `json:"videos" bson:"videos"`
	SongURL   string             `json:"songUrl,omitempty" bson:"songUrl,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PostDraft carries the author-supplied fields of a post. The repository
// assigns the id and timestamps.
type PostDraft struct {
	Title   string
	Content string
	Tags    []string
	Images  []string
	Videos  []string
	SongURL string
}

// PostList is the paginated listing payload for GET /api/posts
type PostList struct {
	Posts   []Post `json:"posts"`
	Total   int64  `json:"total"`
	HasMore bool   `json:"hasMore"`
}

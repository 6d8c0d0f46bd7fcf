package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rmaalouf/melodeon_backend/models"
)

// MemoryPostRepository is an in-memory PostRepository used by tests and for
// running without a database.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[string]*memoryPost
	seq   int64
}

type memoryPost struct {
	post models.Post
	seq  int64
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		posts: make(map[string]*memoryPost),
	}
}

func (r *MemoryPostRepository) List(ctx context.Context, page, pageSize int, tag string) (*models.PostList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	matched := make([]*memoryPost, 0, len(r.posts))
	for _, entry := range r.posts {
		if tag != "" && !containsString(entry.post.Tags, tag) {
			continue
		}
		matched = append(matched, entry)
	}

	// Newest first; insertion order breaks creation-time ties
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].post.CreatedAt.Equal(matched[j].post.CreatedAt) {
			return matched[i].post.CreatedAt.After(matched[j].post.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	total := int64(len(matched))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	posts := make([]models.Post, 0, end-start)
	for _, entry := range matched[start:end] {
		posts = append(posts, clonePost(entry.post))
	}

	return &models.PostList{
		Posts:   posts,
		Total:   total,
		HasMore: int64(page*pageSize) < total,
	}, nil
}

func (r *MemoryPostRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	post := clonePost(entry.post)
	return &post, nil
}

func (r *MemoryPostRepository) Create(ctx context.Context, draft models.PostDraft) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	r.seq++
	post := models.Post{
		ID:        primitive.NewObjectID(),
		Title:     draft.Title,
		Content:   draft.Content,
		Tags:      cloneSlice(draft.Tags),
		Images:    cloneSlice(draft.Images),
		Videos:    cloneSlice(draft.Videos),
		SongURL:   draft.SongURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.posts[post.ID.Hex()] = &memoryPost{post: post, seq: r.seq}

	result := clonePost(post)
	return &result, nil
}

func (r *MemoryPostRepository) Update(ctx context.Context, id string, draft models.PostDraft) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}

	entry.post.Title = draft.Title
	entry.post.Content = draft.Content
	entry.post.Tags = cloneSlice(draft.Tags)
	entry.post.Images = cloneSlice(draft.Images)
	entry.post.Videos = cloneSlice(draft.Videos)
	entry.post.SongURL = draft.SongURL
	entry.post.UpdatedAt = time.Now().UTC()

	post := clonePost(entry.post)
	return &post, nil
}

func (r *MemoryPostRepository) Delete(ctx context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	delete(r.posts, id)

	post := clonePost(entry.post)
	return &post, nil
}

func clonePost(post models.Post) models.Post {
	post.Tags = cloneSlice(post.Tags)
	post.Images = cloneSlice(post.Images)
	post.Videos = cloneSlice(post.Videos)
	return post
}

func cloneSlice(values []string) []string {
	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/rmaalouf/melodeon_backend/models"
)

func TestListEmpty(t *testing.T) {
	repo := NewMemoryPostRepository()

	list, err := repo.List(context.Background(), 1, 5, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("expected total 0, got %d", list.Total)
	}
	if list.HasMore {
		t.Fatalf("expected hasMore false")
	}
	if list.Posts == nil || len(list.Posts) != 0 {
		t.Fatalf("expected empty non-nil posts, got %#v", list.Posts)
	}
}

func TestListPaginationNewestFirst(t *testing.T) {
	repo := NewMemoryPostRepository()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 12; i++ {
		post, err := repo.Create(ctx, models.PostDraft{
			Title:   fmt.Sprintf("post %d", i),
			Content: "content",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, post.ID.Hex())
	}

	var collected []string
	for page := 1; page <= 3; page++ {
		list, err := repo.List(ctx, page, 5, "")
		if err != nil {
			t.Fatalf("list page %d: %v", page, err)
		}
		if list.Total != 12 {
			t.Fatalf("page %d: expected total 12, got %d", page, list.Total)
		}
		wantMore := page < 3
		if list.HasMore != wantMore {
			t.Fatalf("page %d: expected hasMore %v, got %v", page, wantMore, list.HasMore)
		}
		for _, post := range list.Posts {
			collected = append(collected, post.ID.Hex())
		}
	}

	if len(collected) != 12 {
		t.Fatalf("expected 12 posts across pages, got %d", len(collected))
	}
	// Newest first: reverse of creation order, no duplicates or omissions
	for i, id := range collected {
		if want := ids[len(ids)-1-i]; id != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, id)
		}
	}
}

func TestListPageBeyondEnd(t *testing.T) {
	repo := NewMemoryPostRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, models.PostDraft{Title: "t", Content: "c"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := repo.List(ctx, 99, 5, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Posts) != 0 {
		t.Fatalf("expected empty page, got %d posts", len(list.Posts))
	}
	if list.HasMore {
		t.Fatalf("expected hasMore false")
	}
	if list.Total != 1 {
		t.Fatalf("expected total 1, got %d", list.Total)
	}
}

func TestListTagFilter(t *testing.T) {
	repo := NewMemoryPostRepository()
	ctx := context.Background()

	tagged := []string{}
	for i := 0; i < 6; i++ {
		draft := models.PostDraft{Title: fmt.Sprintf("post %d", i), Content: "c"}
		if i%2 == 0 {
			draft.Tags = []string{"music", "life"}
		} else {
			draft.Tags = []string{"travel"}
		}
		post, err := repo.Create(ctx, draft)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if i%2 == 0 {
			tagged = append(tagged, post.ID.Hex())
		}
	}

	list, err := repo.List(ctx, 1, 10, "music")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 3 || len(list.Posts) != 3 {
		t.Fatalf("expected 3 tagged posts, got total %d len %d", list.Total, len(list.Posts))
	}
	for i, post := range list.Posts {
		if want := tagged[len(tagged)-1-i]; post.ID.Hex() != want {
			t.Fatalf("tag filter lost newest-first order at %d", i)
		}
	}

	// An empty tag means no filter
	all, err := repo.List(ctx, 1, 10, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if all.Total != 6 {
		t.Fatalf("expected total 6 with empty tag, got %d", all.Total)
	}
}

func TestCreateNormalizesNilLists(t *testing.T) {
	repo := NewMemoryPostRepository()

	post, err := repo.Create(context.Background(), models.PostDraft{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Tags == nil || post.Images == nil || post.Videos == nil {
		t.Fatalf("expected non-nil lists, got %#v", post)
	}
	if post.CreatedAt.IsZero() || !post.CreatedAt.Equal(post.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt on create")
	}
}

func TestGetNotFound(t *testing.T) {
	repo := NewMemoryPostRepository()

	if _, err := repo.Get(context.Background(), "missing"); err != ErrPostNotFound {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestUpdateReplacesFields(t *testing.T) {
	repo := NewMemoryPostRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, models.PostDraft{
		Title:   "before",
		Content: "old",
		Tags:    []string{"a"},
		Images:  []string{"/uploads/images/one.png"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.Update(ctx, created.ID.Hex(), models.PostDraft{
		Title:   "after",
		Content: "new",
		Tags:    []string{"b", "c"},
		SongURL: "https://songs.example/track",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != "after" || updated.Content != "new" {
		t.Fatalf("fields not replaced: %#v", updated)
	}
	if len(updated.Tags) != 2 || len(updated.Images) != 0 {
		t.Fatalf("lists not replaced: %#v", updated)
	}
	if updated.SongURL != "https://songs.example/track" {
		t.Fatalf("song not replaced: %q", updated.SongURL)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("createdAt changed on update")
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Fatalf("updatedAt went backwards")
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo := NewMemoryPostRepository()

	if _, err := repo.Update(context.Background(), "missing", models.PostDraft{Title: "t", Content: "c"}); err != ErrPostNotFound {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}

	list, err := repo.List(context.Background(), 1, 5, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("update on missing id must not create a document")
	}
}

func TestDelete(t *testing.T) {
	repo := NewMemoryPostRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, models.PostDraft{
		Title:   "t",
		Content: "c",
		Videos:  []string{"/uploads/videos/clip.mp4"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := repo.Delete(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(deleted.Videos) != 1 {
		t.Fatalf("expected deleted post to carry its media")
	}

	if _, err := repo.Get(ctx, created.ID.Hex()); err != ErrPostNotFound {
		t.Fatalf("expected post gone, got %v", err)
	}
	if _, err := repo.Delete(ctx, created.ID.Hex()); err != ErrPostNotFound {
		t.Fatalf("expected ErrPostNotFound on second delete, got %v", err)
	}
}

package controllers

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/melodeon_backend/middleware"
	"github.com/rmaalouf/melodeon_backend/models"
	"github.com/rmaalouf/melodeon_backend/repositories"
	"github.com/rmaalouf/melodeon_backend/services"
	"github.com/rmaalouf/melodeon_backend/utils"
)

const defaultPageSize = 5

type PostController struct {
	repo  repositories.PostRepository
	media services.MediaStore
}

func NewPostController(repo repositories.PostRepository, media services.MediaStore) *PostController {
	return &PostController{repo: repo, media: media}
}

// GetPosts handles GET /api/posts?page&tag
func (pc *PostController) GetPosts(c echo.Context) error {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	list, err := pc.repo.List(c.Request().Context(), page, defaultPageSize, c.QueryParam("tag"))
	if err != nil {
		c.Logger().Errorf("Failed to list posts: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch posts",
		})
	}

	return c.JSON(http.StatusOK, list)
}

// GetPost handles GET /api/posts/:id
func (pc *PostController) GetPost(c echo.Context) error {
	id := c.Param("id")
	post, err := pc.repo.Get(c.Request().Context(), id)
	if errors.Is(err, repositories.ErrPostNotFound) {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No post found with id " + id,
		})
	} else if err != nil {
		c.Logger().Errorf("Failed to fetch post %s: %v", id, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch post",
		})
	}

	return c.JSON(http.StatusOK, post)
}

// CreatePost handles POST /api/posts (multipart)
func (pc *PostController) CreatePost(c echo.Context) error {
	ctx := c.Request().Context()

	draft, ok := bindDraft(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title and content are required",
		})
	}

	files := mediaFiles(c)
	images, videos, err := pc.uploadAll(ctx, files)
	if err != nil {
		var unsupported *unsupportedMediaError
		if errors.As(err, &unsupported) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		c.Logger().Errorf("Media upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to upload media",
		})
	}
	draft.Images = images
	draft.Videos = videos

	post, err := pc.repo.Create(ctx, draft)
	if err != nil {
		// Nothing was persisted; release whatever was already hosted
		pc.releaseMedia(ctx, images, videos)
		c.Logger().Errorf("Failed to create post: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create post",
		})
	}

	log.Printf("Post %s created by %s", post.ID.Hex(), middleware.GetUserID(c))
	return c.JSON(http.StatusCreated, post)
}

// UpdatePost handles PUT /api/posts/:id (multipart)
func (pc *PostController) UpdatePost(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	// Resolve the target before uploading anything
	if _, err := pc.repo.Get(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "No post found with id " + id,
			})
		}
		c.Logger().Errorf("Failed to fetch post %s: %v", id, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch post",
		})
	}

	draft, ok := bindDraft(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title and content are required",
		})
	}

	files := mediaFiles(c)
	newImages, newVideos, err := pc.uploadAll(ctx, files)
	if err != nil {
		var unsupported *unsupportedMediaError
		if errors.As(err, &unsupported) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		c.Logger().Errorf("Media upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to upload media",
		})
	}

	// Retained URLs come first, newly hosted ones after
	draft.Images = append(formList(c, "existingImages"), newImages...)
	draft.Videos = append(formList(c, "existingVideos"), newVideos...)

	post, err := pc.repo.Update(ctx, id, draft)
	if err != nil {
		pc.releaseMedia(ctx, newImages, newVideos)
		if errors.Is(err, repositories.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "No post found with id " + id,
			})
		}
		c.Logger().Errorf("Failed to update post %s: %v", id, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update post",
		})
	}

	log.Printf("Post %s updated by %s", id, middleware.GetUserID(c))
	return c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:id
func (pc *PostController) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	post, err := pc.repo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrPostNotFound) {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No post found with id " + id,
		})
	} else if err != nil {
		c.Logger().Errorf("Failed to delete post %s: %v", id, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete post",
		})
	}

	// Best-effort media release; the document removal already succeeded
	pc.releaseMedia(ctx, post.Images, post.Videos)

	log.Printf("Post %s deleted by %s", id, middleware.GetUserID(c))
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Post deleted successfully",
	})
}

type unsupportedMediaError struct {
	cause error
}

func (e *unsupportedMediaError) Error() string { return e.cause.Error() }

// uploadAll spools every attached file and uploads it to the media store,
// routed by its detected kind. On any failure the already-hosted files are
// released so a 500 never leaves stray media behind.
func (pc *PostController) uploadAll(ctx context.Context, files []*multipart.FileHeader) ([]string, []string, error) {
	kinds := make([]string, len(files))
	for i, file := range files {
		kind, err := utils.MediaKind(file)
		if err != nil {
			return nil, nil, &unsupportedMediaError{cause: err}
		}
		kinds[i] = kind
	}

	var images, videos []string
	for i, file := range files {
		url, err := pc.uploadOne(ctx, file, kinds[i])
		if err != nil {
			pc.releaseMedia(ctx, images, videos)
			return nil, nil, err
		}
		if kinds[i] == utils.MediaKindImage {
			images = append(images, url)
		} else {
			videos = append(videos, url)
		}
	}

	return images, videos, nil
}

func (pc *PostController) uploadOne(ctx context.Context, file *multipart.FileHeader, kind string) (string, error) {
	path, cleanup, err := utils.SpoolFormFile(file)
	if err != nil {
		return "", err
	}
	defer cleanup()

	return pc.media.Upload(ctx, path, file.Filename, kind)
}

// releaseMedia deletes hosted media by the id derived from each URL.
// Failures are logged and swallowed.
func (pc *PostController) releaseMedia(ctx context.Context, images, videos []string) {
	for _, url := range images {
		if err := pc.media.Delete(ctx, services.PublicIDFromURL(url), utils.MediaKindImage); err != nil {
			log.Printf("Failed to delete media %s: %v", url, err)
		}
	}
	for _, url := range videos {
		if err := pc.media.Delete(ctx, services.PublicIDFromURL(url), utils.MediaKindVideo); err != nil {
			log.Printf("Failed to delete media %s: %v", url, err)
		}
	}
}

// bindDraft reads the shared text fields of create and update requests.
// The boolean is false when title or content is missing.
func bindDraft(c echo.Context) (models.PostDraft, bool) {
	draft := models.PostDraft{
		Title:   strings.TrimSpace(c.FormValue("title")),
		Content: strings.TrimSpace(c.FormValue("content")),
		Tags:    splitList(c.FormValue("tags")),
		SongURL: strings.TrimSpace(c.FormValue("song")),
	}
	if draft.Title == "" || draft.Content == "" {
		return models.PostDraft{}, false
	}
	return draft, true
}

func mediaFiles(c echo.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["media"]
}

// formList collects a repeated multipart field; single comma-separated
// values are split the same way tags are.
func formList(c echo.Context, key string) []string {
	values := []string{}
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return values
	}
	for _, raw := range form.Value[key] {
		values = append(values, splitList(raw)...)
	}
	return values
}

func splitList(raw string) []string {
	values := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

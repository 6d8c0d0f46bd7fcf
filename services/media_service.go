package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rmaalouf/melodeon_backend/utils"
)

// MediaStore is the narrow interface to the media hosting service. Upload
// returns a durable public URL; Delete removes an asset by its public id.
type MediaStore interface {
	Upload(ctx context.Context, filePath, filename, kind string) (string, error)
	Delete(ctx context.Context, publicID, kind string) error
}

// PublicIDFromURL derives the store identifier from the last path segment of
// a media URL, without the file extension.
func PublicIDFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	segment := rawURL
	if err == nil {
		segment = parsed.Path
	}
	base := path.Base(segment)
	return strings.TrimSuffix(base, path.Ext(base))
}

const defaultCloudAPIBase = "https://api.cloudinary.com/v1_1"

// CloudMediaService uploads media to the cloud media API over its signed
// REST endpoints.
type CloudMediaService struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

// NewCloudMediaService creates a cloud media service instance
func NewCloudMediaService(cloudName, apiKey, apiSecret string) *CloudMediaService {
	return &CloudMediaService{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   defaultCloudAPIBase,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload streams the spooled file to the upload endpoint and returns the
// hosted URL.
func (s *CloudMediaService) Upload(ctx context.Context, filePath, filename, kind string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	params := map[string]string{
		"public_id": uuid.New().String(),
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range params {
		writer.WriteField(key, value)
	}
	writer.WriteField("api_key", s.apiKey)
	writer.WriteField("signature", s.signParams(params))

	part, err := writer.CreateFormFile("file", utils.CleanFilename(filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	var result struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	endpoint := fmt.Sprintf("%s/%s/%s/upload", s.baseURL, s.cloudName, kind)
	if err := s.makeRequest(ctx, endpoint, body, writer.FormDataContentType(), &result); err != nil {
		return "", err
	}

	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	if result.URL != "" {
		return result.URL, nil
	}
	return "", fmt.Errorf("media upload returned no URL")
}

// Delete destroys an asset by public id. A "not found" result counts as
// success so deletes stay idempotent.
func (s *CloudMediaService) Delete(ctx context.Context, publicID, kind string) error {
	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("api_key", s.apiKey)
	form.Set("signature", s.signParams(params))

	var result struct {
		Result string `json:"result"`
	}
	endpoint := fmt.Sprintf("%s/%s/%s/destroy", s.baseURL, s.cloudName, kind)
	body := strings.NewReader(form.Encode())
	if err := s.makeRequest(ctx, endpoint, body, "application/x-www-form-urlencoded", &result); err != nil {
		return err
	}

	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("media delete failed for %s: %s", publicID, result.Result)
	}
	return nil
}

// makeRequest performs an HTTP request against the media API
func (s *CloudMediaService) makeRequest(ctx context.Context, endpoint string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("media store request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read media store response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("media store responded with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode media store response: %w", err)
	}
	return nil
}

// signParams computes the request signature over the sorted parameters.
func (s *CloudMediaService) signParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + s.apiSecret))
	return hex.EncodeToString(sum[:])
}

package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/farmlink/community-service/internal/model"
	"github.com/farmlink/community-service/internal/repository"
	"github.com/farmlink/community-service/internal/repository/memory"
	"github.com/farmlink/community-service/internal/service"
	"github.com/farmlink/community-service/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	viper.Set("client.origin", "http://localhost:5173")

	blobs, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	repo := &repository.Repository{Posts: memory.NewPostRepo()}
	services := service.New(zap.NewNop(), repo, blobs)

	return New(services).InitRoutes()
}

type mediaFile struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, text, user string, files ...mediaFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("text", text))
	require.NoError(t, w.WriteField("user", user))
	for _, f := range files {
		fw, err := w.CreateFormFile("media", f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func createPost(t *testing.T, r *gin.Engine, text, user string, files ...mediaFile) model.Post {
	t.Helper()

	body, contentType := multipartBody(t, text, user, files...)
	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var post model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	return post
}

func listPosts(t *testing.T, r *gin.Engine) []model.Post {
	t.Helper()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var posts []model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	return posts
}

func TestCreatePostWithBadUserJSON(t *testing.T) {
	r := newTestRouter(t)

	post := createPost(t, r, "Hello", `{bad json`)

	assert.Equal(t, "Hello", post.Text)
	assert.Equal(t, "Anonymous", post.Author.Name)
	assert.Equal(t, int64(0), post.Likes)
	assert.Equal(t, int64(0), post.Shares)
	assert.Empty(t, post.Comments)
}

func TestCreatePostRejectsNonMultipart(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewBufferString(`{"text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedNewestFirst(t *testing.T) {
	r := newTestRouter(t)

	p1 := createPost(t, r, "P1", `{"name":"Ravi"}`)
	p2 := createPost(t, r, "P2", `{"name":"Ravi"}`)
	p3 := createPost(t, r, "P3", `{"name":"Ravi"}`)

	posts := listPosts(t, r)
	require.Len(t, posts, 3)
	assert.Equal(t, p3.ID, posts[0].ID)
	assert.Equal(t, p2.ID, posts[1].ID)
	assert.Equal(t, p1.ID, posts[2].ID)
}

func TestGetPostByID(t *testing.T) {
	r := newTestRouter(t)

	created := createPost(t, r, "lookup me", `{"name":"Ravi"}`)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/"+created.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var post model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, created.ID, post.ID)
	assert.Equal(t, "lookup me", post.Text)
}

func TestConcurrentLikesOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	created := createPost(t, r, "like storm", `{"name":"Ravi"}`)

	const n = 25

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(srv.URL+"/posts/"+created.ID.String()+"/like", "", nil)
			if assert.NoError(t, err) {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}
		}()
	}
	wg.Wait()

	posts := listPosts(t, r)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(n), posts[0].Likes)
}

func TestCommentAppends(t *testing.T) {
	r := newTestRouter(t)

	created := createPost(t, r, "discuss", `{"name":"Ravi"}`)

	comment := func(user, text string) *httptest.ResponseRecorder {
		body := fmt.Sprintf(`{"user":%s,"text":%q}`, user, text)
		req := httptest.NewRequest(http.MethodPost, "/posts/"+created.ID.String()+"/comment", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := comment(`{"name":"Asha","avatar":"/asha.png"}`, "First!")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = comment(`{"name":"Bob","avatar":"/a.png"}`, "Nice!")
	require.Equal(t, http.StatusOK, rec.Code)

	var post model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	require.Len(t, post.Comments, 2)
	assert.Equal(t, "Asha", post.Comments[0].Author.Name)
	assert.Equal(t, "Bob", post.Comments[1].Author.Name)
	assert.Equal(t, "Nice!", post.Comments[1].Text)
}

func TestCommentWithoutTextRejected(t *testing.T) {
	r := newTestRouter(t)

	created := createPost(t, r, "quiet", `{"name":"Ravi"}`)

	req := httptest.NewRequest(http.MethodPost, "/posts/"+created.ID.String()+"/comment",
		bytes.NewBufferString(`{"user":{"name":"Bob"},"text":"  "}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	posts := listPosts(t, r)
	require.Len(t, posts, 1)
	assert.Empty(t, posts[0].Comments)
}

func TestShareUnknownIDLeavesStoreUnchanged(t *testing.T) {
	r := newTestRouter(t)

	createPost(t, r, "only post", `{"name":"Ravi"}`)
	before := listPosts(t, r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/posts/unknown-id/share", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/posts/b71be1a1-0e1e-4f1b-9a44-1a07bd2ef00e/share", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	after := listPosts(t, r)
	assert.Equal(t, before, after)
}

func TestUploadRoundtrip(t *testing.T) {
	r := newTestRouter(t)

	pngBytes := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}
	post := createPost(t, r, "with media", `{"name":"Ravi"}`, mediaFile{name: "field.png", data: pngBytes})

	require.Len(t, post.Media, 1)
	assert.Contains(t, post.Media[0], "/uploads/")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, post.Media[0], nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())
}

func TestUploadUnknownRef(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

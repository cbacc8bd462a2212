package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"whitelight-store/apps/api/middleware"
	"whitelight-store/apps/api/model"
	"whitelight-store/pkg/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// newTestDB 每个测试一个独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Product{}, &model.ProductCategory{}, &model.ProductImage{}, &model.ProductVariant{},
		&model.Order{}, &model.OrderItem{},
		&model.Admin{},
	); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

// fakeStorage 可编排失败的对象存储替身
type fakeStorage struct {
	mu      sync.Mutex
	base    string
	failOn  map[string]bool // 按文件名触发上传失败
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{base: "https://cdn.test/whitelight", failOn: make(map[string]bool)}
}

func (f *fakeStorage) Upload(_ context.Context, reader io.Reader, _ int64, _, folder, filename string) storage.UploadResult {
	io.Copy(io.Discard, reader)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[filename] {
		return storage.UploadResult{Success: false, Error: "simulated storage failure"}
	}
	key := folder + "/" + filename
	return storage.UploadResult{Success: true, URL: f.base + "/" + key, Key: key}
}

func (f *fakeStorage) Delete(_ context.Context, key string) storage.DeleteResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return storage.DeleteResult{Success: true}
}

func (f *fakeStorage) PublicURL(key string) string {
	return f.base + "/" + key
}

func (f *fakeStorage) Owns(url string) bool {
	return strings.HasPrefix(url, f.base+"/")
}

func (f *fakeStorage) KeyFromURL(url string) string {
	if !f.Owns(url) {
		return ""
	}
	return strings.TrimPrefix(url, f.base+"/")
}

// newTestRouter authed=true 时写路径挂上真实认证中间件
func newTestRouter(h *Handler, db *gorm.DB, authed bool) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")

	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/:id", h.GetOrder)
	api.PUT("/orders/:id/status", h.UpdateOrderStatus)
	api.POST("/admin/login", h.Login)

	grp := api.Group("/")
	if authed {
		grp.Use(middleware.AdminAuth(db))
	}
	grp.POST("/products", h.CreateProduct)
	grp.PUT("/products/:id", h.UpdateProduct)
	grp.DELETE("/products/:id", h.DeleteProduct)
	grp.POST("/products/images", h.UploadImages)
	grp.GET("/admin/profile", h.Profile)
	return r
}

type testEnv struct {
	db     *gorm.DB
	store  *fakeStorage
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	db := newTestDB(t)
	store := newFakeStorage()
	h := New(db, store, true)
	return &testEnv{db: db, store: store, router: newTestRouter(h, db, false)}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope (%s): %v", w.Body.String(), err)
	}
	return w, env
}

type fileSpec struct {
	field, name, content string
}

func (e *testEnv) doMultipart(t *testing.T, method, path string, fields map[string]string, files []fileSpec) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		part.Write([]byte(f.content))
	}
	mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope (%s): %v", w.Body.String(), err)
	}
	return w, env
}

// createProduct 测试用快捷方式，返回 {id, slug}
func (e *testEnv) createProduct(t *testing.T, body map[string]interface{}) (string, string) {
	t.Helper()
	w, env := e.doJSON(t, http.MethodPost, "/api/products", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create product returned %d: %s", w.Code, w.Body.String())
	}
	var data struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	return data.ID, data.Slug
}

func validProductBody() map[string]interface{} {
	return map[string]interface{}{
		"name":       "Test Shoe",
		"brand":      "Acme",
		"categories": []string{"running"},
		"price":      1000,
	}
}

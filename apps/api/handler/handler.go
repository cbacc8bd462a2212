package handler

import (
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"whitelight-store/pkg/response"
	"whitelight-store/pkg/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler 持有所有依赖，启动时构造一次注入到路由
type Handler struct {
	db      *gorm.DB
	storage storage.Storage
	dev     bool // development 模式下 500 响应附带详细错误
}

func New(db *gorm.DB, store storage.Storage, dev bool) *Handler {
	return &Handler{db: db, storage: store, dev: dev}
}

// serverError 统一的 500 出口，详细错误只在开发模式下回显
func (h *Handler) serverError(c *gin.Context, message string, err error) {
	if h.dev && err != nil {
		response.FailWithError(c, http.StatusInternalServerError, message, err.Error())
		return
	}
	response.Fail(c, http.StatusInternalServerError, message)
}

// newProductID 对外可见的时间戳令牌：毫秒时间戳 + 3位随机
func newProductID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + randDigits(3)
}

// newOrderNumber WL + 毫秒时间戳后6位 + 3位随机
// 不做唯一性预检，撞号靠数据库唯一索引兜底 (概率极低)
func newOrderNumber() string {
	ms := time.Now().UnixMilli()
	return "WL" + padMod(ms, 6) + randDigits(3)
}

func padMod(v int64, n int) string {
	mod := int64(1)
	for i := 0; i < n; i++ {
		mod *= 10
	}
	s := make([]byte, n)
	r := v % mod
	for i := n - 1; i >= 0; i-- {
		s[i] = byte('0' + r%10)
		r /= 10
	}
	return string(s)
}

func randDigits(n int) string {
	s := make([]byte, n)
	for i := range s {
		s[i] = byte('0' + rand.Intn(10))
	}
	return string(s)
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"whitelight-store/apps/api/handler"
	"whitelight-store/apps/api/middleware"
	"whitelight-store/apps/api/model"
	"whitelight-store/pkg/config"
	"whitelight-store/pkg/database"
	"whitelight-store/pkg/jwt"
	"whitelight-store/pkg/response"
	"whitelight-store/pkg/storage"
	"whitelight-store/pkg/tracer"

	sentinel "github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// 定义资源名称
const ResUpload = "product_upload_api"

// initSentinel 初始化限流规则
// multipart 接口一个请求可能占着数据库连接连传 10 张图，给它们上 QPS 闸
func initSentinel() {
	err := sentinel.InitDefault()
	if err != nil {
		log.Fatalf("Failed to init sentinel: %v", err)
	}

	_, err = flow.LoadRules([]*flow.Rule{
		{
			Resource:               ResUpload,
			TokenCalculateStrategy: flow.Direct,
			ControlBehavior:        flow.Reject,
			Threshold:              20, // QPS
			StatIntervalInMs:       1000,
		},
	})
	if err != nil {
		log.Fatalf("Failed to load sentinel rules: %v", err)
	}
	log.Println("Sentinel flow rule loaded: upload endpoints QPS limit = 20")
}

// uploadGuard Sentinel 入口检查，被限流直接 429
func uploadGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		e, b := sentinel.Entry(ResUpload, sentinel.WithTrafficType(base.Inbound))
		if b != nil {
			response.Fail(c, http.StatusTooManyRequests, "Server busy, try again later")
			c.Abort()
			return
		}
		defer e.Exit()
		c.Next()
	}
}

func main() {
	c, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 环境变量适配 (容器里覆盖文件配置)
	if v := os.Getenv("SERVICE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Service.Port = p
		}
	}
	if v := os.Getenv("MYSQL_HOST"); v != "" {
		c.Mysql.Host = v
		log.Printf("Config Override: MYSQL_HOST used (%s)", v)
	}
	if v := os.Getenv("MYSQL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Mysql.Port = p
		}
	}
	if v := os.Getenv("MYSQL_USER"); v != "" {
		c.Mysql.User = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		c.Mysql.Password = v
	}
	if v := os.Getenv("MYSQL_DBNAME"); v != "" {
		c.Mysql.DbName = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		c.Redis.Address = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Jwt.Secret = v
	}
	if v := os.Getenv("STORAGE_ENDPOINT"); v != "" {
		c.Storage.Endpoint = v
	}
	if v := os.Getenv("STORAGE_ACCESS_KEY"); v != "" {
		c.Storage.AccessKey = v
	}
	if v := os.Getenv("STORAGE_SECRET_KEY"); v != "" {
		c.Storage.SecretKey = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("STORAGE_PUBLIC_URL"); v != "" {
		c.Storage.PublicURL = v
	}

	jwt.Init(c.Jwt.Secret, c.Jwt.Issuer)

	db, err := database.InitMySQL(c.Mysql)
	if err != nil {
		log.Fatalf("Failed to init mysql: %v", err)
	}
	db.AutoMigrate(
		&model.Product{}, &model.ProductCategory{}, &model.ProductImage{}, &model.ProductVariant{},
		&model.Order{}, &model.OrderItem{},
		&model.Admin{},
	)

	rdb := database.InitRedis(c.Redis)

	store, err := storage.NewMinioStorage(c.Storage)
	if err != nil {
		log.Fatalf("Failed to init object storage: %v", err)
	}

	initSentinel()

	// Tracing 按需开启
	if c.Trace.Endpoint != "" {
		tp, err := tracer.InitTracer(c.Service.Name, c.Service.Env, c.Trace.Endpoint)
		if err != nil {
			log.Fatalf("Failed to init tracer: %v", err)
		}
		defer tp.Shutdown(context.Background())
	}

	if !c.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handler.New(db, store, c.IsDevelopment())

	r := gin.Default()
	if c.Trace.Endpoint != "" {
		r.Use(otelgin.Middleware(c.Service.Name))
	}

	r.GET("/health", func(ctx *gin.Context) {
		response.OK(ctx, "ok", nil)
	})

	api := r.Group("/api")

	// 公开接口
	{
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)

		api.POST("/orders", h.CreateOrder)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/:id", h.GetOrder)
		api.PUT("/orders/:id/status", h.UpdateOrderStatus)

		api.POST("/admin/login", middleware.LoginRateLimit(rdb, 10, time.Minute), h.Login)
	}

	// 受保护接口 (写路径)
	authed := api.Group("/")
	authed.Use(middleware.AdminAuth(db))
	{
		authed.POST("/products", uploadGuard(), h.CreateProduct)
		authed.PUT("/products/:id", uploadGuard(), h.UpdateProduct)
		authed.DELETE("/products/:id", h.DeleteProduct)
		authed.POST("/products/images", uploadGuard(), h.UploadImages)

		authed.GET("/admin/profile", h.Profile)
	}

	addr := fmt.Sprintf(":%d", c.Service.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.Printf("Whitelight Store API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

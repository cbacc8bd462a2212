package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"whitelight-store/apps/api/model"
	"whitelight-store/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	maxImageFiles = 10
	maxImageSize  = 10 << 20 // 10MB
	imageFolder   = "products"
)

// 默认尺码：创建时一个规格都没传就合成这五个
var defaultSizes = []int{40, 41, 42, 43, 44}

const defaultStockQuantity = 10

// productForm 归一化后的商品写入载荷，multipart 和 JSON 两种请求体都落到这里
type productForm struct {
	Name           string
	Brand          string
	Description    string
	Price          float64
	PriceOK        bool
	OriginalPrice  *float64
	Categories     []string
	Tags           []string
	IsNew          bool
	IsBestSeller   bool
	IsOnOffer      bool
	Variants       []variantInput
	VariantsGiven  bool
	ImageURLs      []imageURLInput
	ImagesToDelete []uint
	Files          []*multipart.FileHeader
}

// flexRaw 把 JSON 请求体里的 "数组或JSON字符串" 统一成待解析的原始串
func flexRaw(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}

// bindProductForm 解析 multipart 或 JSON 请求体
func (h *Handler) bindProductForm(c *gin.Context) (*productForm, error) {
	f := &productForm{}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, fmt.Errorf("invalid multipart form: %w", err)
		}

		f.Name = strings.TrimSpace(c.PostForm("name"))
		f.Brand = strings.TrimSpace(c.PostForm("brand"))
		f.Description = c.PostForm("description")
		if p, err := strconv.ParseFloat(c.PostForm("price"), 64); err == nil {
			f.Price = p
			f.PriceOK = true
		}
		if op, err := strconv.ParseFloat(c.PostForm("originalPrice"), 64); err == nil {
			f.OriginalPrice = &op
		}
		f.Categories = resolveCategories(c.PostForm("categories"), c.PostForm("category"))
		f.Tags = parseTags(c.PostForm("tags"))
		f.IsNew = formBool(c.PostForm("isNew"))
		f.IsBestSeller = formBool(c.PostForm("isBestSeller"))
		f.IsOnOffer = formBool(c.PostForm("isOnOffer"))
		f.Variants, f.VariantsGiven = parseVariants(c.PostForm("variants"))
		f.ImageURLs = parseImageURLs(c.PostForm("images"))
		f.ImagesToDelete = parseUintList(c.PostForm("imagesToDelete"))
		f.Files = mf.File["images"]
		return f, nil
	}

	var body struct {
		Name           string          `json:"name"`
		Brand          string          `json:"brand"`
		Category       string          `json:"category"`
		Categories     json.RawMessage `json:"categories"`
		Price          *float64        `json:"price"`
		OriginalPrice  *float64        `json:"originalPrice"`
		Description    string          `json:"description"`
		Tags           json.RawMessage `json:"tags"`
		IsNew          bool            `json:"isNew"`
		IsBestSeller   bool            `json:"isBestSeller"`
		IsOnOffer      bool            `json:"isOnOffer"`
		Variants       json.RawMessage `json:"variants"`
		Images         json.RawMessage `json:"images"`
		ImagesToDelete json.RawMessage `json:"imagesToDelete"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, err
	}

	f.Name = strings.TrimSpace(body.Name)
	f.Brand = strings.TrimSpace(body.Brand)
	f.Description = body.Description
	if body.Price != nil {
		f.Price = *body.Price
		f.PriceOK = true
	}
	f.OriginalPrice = body.OriginalPrice
	f.Categories = resolveCategories(flexRaw(body.Categories), body.Category)
	f.Tags = parseTags(flexRaw(body.Tags))
	f.IsNew = body.IsNew
	f.IsBestSeller = body.IsBestSeller
	f.IsOnOffer = body.IsOnOffer
	f.Variants, f.VariantsGiven = parseVariants(flexRaw(body.Variants))
	f.ImageURLs = parseImageURLs(flexRaw(body.Images))
	f.ImagesToDelete = parseUintList(flexRaw(body.ImagesToDelete))
	return f, nil
}

func formBool(v string) bool {
	return v == "true" || v == "1"
}

// validate 必填校验，失败时不产生任何写入
func (f *productForm) validate() string {
	switch {
	case f.Name == "":
		return "name is required"
	case f.Brand == "":
		return "brand is required"
	case !f.PriceOK || f.Price <= 0:
		return "price is required and must be positive"
	case len(f.Categories) == 0:
		return "at least one category is required"
	case len(f.Files) > maxImageFiles:
		return fmt.Sprintf("at most %d images per request", maxImageFiles)
	}
	for _, fh := range f.Files {
		if fh.Size > maxImageSize {
			return fmt.Sprintf("image %s exceeds 10MB limit", fh.Filename)
		}
	}
	return ""
}

// CreateProduct POST /api/products
//
// 商品行 + 关联表写入在一个事务里 (全有或全无)，对象存储上传明确不在
// 事务内：单张图片失败只记日志跳过，商品照常创建。DB 失败 => 整体回滚；
// 存储失败 => 部分成功。两边的不对称是契约的一部分。
func (h *Handler) CreateProduct(c *gin.Context) {
	form, err := h.bindProductForm(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := form.validate(); msg != "" {
		response.Fail(c, http.StatusBadRequest, msg)
		return
	}

	id := newProductID()
	slug := h.uniqueSlug(form.Name, id)
	tagsJSON, _ := json.Marshal(form.Tags)

	tx := h.db.Begin()
	if tx.Error != nil {
		h.serverError(c, "Failed to create product", tx.Error)
		return
	}

	product := model.Product{
		ID:            id,
		Slug:          slug,
		Name:          form.Name,
		Brand:         form.Brand,
		Category:      form.Categories[0], // 首分类镜像到老字段
		Price:         form.Price,
		OriginalPrice: form.OriginalPrice,
		Description:   form.Description,
		Tags:          string(tagsJSON),
		IsNew:         form.IsNew,
		IsBestSeller:  form.IsBestSeller,
		IsOnOffer:     form.IsOnOffer,
	}
	if err := tx.Create(&product).Error; err != nil {
		tx.Rollback()
		h.serverError(c, "Failed to create product", err)
		return
	}

	images := h.attachImages(c.Request.Context(), tx, id, form.Name, form.ImageURLs, form.Files)
	h.insertCategories(tx, id, form.Categories)

	if err := h.insertVariants(tx, id, form.Variants, true); err != nil {
		tx.Rollback()
		h.serverError(c, "Failed to create product", err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		h.serverError(c, "Failed to create product", err)
		return
	}

	response.Created(c, "Product created", gin.H{
		"id":     id,
		"slug":   slug,
		"images": images,
	})
}

// uniqueSlug 先查后插的乐观唯一检查：撞了就拼上商品 id。
// 并发下残余竞态由 slug 唯一索引兜底 (事务回滚成 500)
func (h *Handler) uniqueSlug(name, id string) string {
	slug := slugify(name)
	if slug == "" {
		slug = id
	}
	var count int64
	h.db.Model(&model.Product{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		slug = slug + "-" + id
	}
	return slug
}

// attachImages 两条独立的尽力而为路径：
// a) 预上传 URL 直接入库 (不重新上传)
// b) 原始文件逐个顺序推到对象存储，成功的入库，失败的记日志跳过
// 返回本次成功入库的图片行，调用方放进响应 (部分失败要靠数组长度发现)
func (h *Handler) attachImages(ctx context.Context, tx *gorm.DB, productID, productName string, urls []imageURLInput, files []*multipart.FileHeader) []model.ProductImage {
	var created []model.ProductImage

	for _, in := range urls {
		alt := in.AltText
		if alt == "" {
			alt = productName
		}
		img := model.ProductImage{ProductID: productID, URL: in.URL, AltText: alt}
		if err := tx.Create(&img).Error; err != nil {
			log.Printf("WARN: image row insert failed for product %s url=%s: %v", productID, in.URL, err)
			continue
		}
		created = append(created, img)
	}

	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			log.Printf("WARN: cannot open upload %s for product %s: %v", fh.Filename, productID, err)
			continue
		}
		res := h.storage.Upload(ctx, file, fh.Size, fh.Header.Get("Content-Type"), imageFolder, fh.Filename)
		file.Close()
		if !res.Success {
			log.Printf("WARN: storage upload failed for product %s file=%s: %s", productID, fh.Filename, res.Error)
			continue
		}
		img := model.ProductImage{ProductID: productID, URL: res.URL, AltText: productName}
		if err := tx.Create(&img).Error; err != nil {
			log.Printf("WARN: image row insert failed for product %s key=%s: %v", productID, res.Key, err)
			continue
		}
		created = append(created, img)
	}

	return created
}

// insertCategories 重复键当作已满足直接吞掉，其他错误记日志但不中断事务
func (h *Handler) insertCategories(tx *gorm.DB, productID string, categories []string) {
	for _, cat := range categories {
		err := tx.Create(&model.ProductCategory{ProductID: productID, Category: cat}).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			log.Printf("WARN: category insert failed for product %s category=%s: %v", productID, cat, err)
		}
	}
}

// insertVariants 按尺码去重后入库
// synthesize: 创建路径上空列表要合成默认尺码；更新路径上空列表就是清空
func (h *Handler) insertVariants(tx *gorm.DB, productID string, variants []variantInput, synthesize bool) error {
	rows := dedupeVariants(variants)

	if len(rows) == 0 {
		if !synthesize {
			return nil
		}
		for _, size := range defaultSizes {
			v := model.ProductVariant{ProductID: productID, Size: size, InStock: true, StockQuantity: defaultStockQuantity}
			if err := tx.Create(&v).Error; err != nil {
				return err
			}
		}
		return nil
	}

	for _, in := range rows {
		v := model.ProductVariant{ProductID: productID, Size: in.Size, InStock: true, StockQuantity: defaultStockQuantity}
		if in.InStock != nil {
			v.InStock = *in.InStock
		}
		if in.StockQuantity != nil {
			v.StockQuantity = *in.StockQuantity
		}
		if err := tx.Create(&v).Error; err != nil {
			return err
		}
	}
	return nil
}

// UpdateProduct PUT /api/products/:id
//
// 不是 PATCH：标量字段无条件整体重写。分类整组替换 (先删后插)；
// 指定删除的图片先删 DB 行，提交后再删存储对象 (顺序固定，崩溃只会
// 留下孤儿对象，不会留悬空 DB 行)；新上传的图片追加；variants 只有
// 传了才整组替换，没传就原样保留，和创建时的默认合成是两种契约。
func (h *Handler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")

	var product model.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Product not found")
		return
	}

	form, err := h.bindProductForm(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := form.validate(); msg != "" {
		response.Fail(c, http.StatusBadRequest, msg)
		return
	}

	tagsJSON, _ := json.Marshal(form.Tags)

	tx := h.db.Begin()
	if tx.Error != nil {
		h.serverError(c, "Failed to update product", tx.Error)
		return
	}

	updates := map[string]interface{}{
		"name":           form.Name,
		"brand":          form.Brand,
		"category":       form.Categories[0],
		"price":          form.Price,
		"original_price": form.OriginalPrice,
		"description":    form.Description,
		"tags":           string(tagsJSON),
		"is_new":         form.IsNew,
		"is_best_seller": form.IsBestSeller,
		"is_on_offer":    form.IsOnOffer,
	}
	if err := tx.Model(&model.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		tx.Rollback()
		h.serverError(c, "Failed to update product", err)
		return
	}

	// 分类整组替换
	if err := tx.Where("product_id = ?", id).Delete(&model.ProductCategory{}).Error; err != nil {
		tx.Rollback()
		h.serverError(c, "Failed to update product", err)
		return
	}
	h.insertCategories(tx, id, form.Categories)

	// 指定删除的图片：先读 URL，再删行；存储对象进补偿清单，提交后处理
	var storageKeys []string
	if len(form.ImagesToDelete) > 0 {
		var doomed []model.ProductImage
		if err := tx.Where("product_id = ? AND id IN ?", id, form.ImagesToDelete).Find(&doomed).Error; err != nil {
			tx.Rollback()
			h.serverError(c, "Failed to update product", err)
			return
		}
		if err := tx.Where("product_id = ? AND id IN ?", id, form.ImagesToDelete).Delete(&model.ProductImage{}).Error; err != nil {
			tx.Rollback()
			h.serverError(c, "Failed to update product", err)
			return
		}
		for _, img := range doomed {
			if key := h.storage.KeyFromURL(img.URL); key != "" {
				storageKeys = append(storageKeys, key)
			}
		}
	}

	// 新图片追加，不动旧的
	images := h.attachImages(c.Request.Context(), tx, id, form.Name, form.ImageURLs, form.Files)

	// variants 传了才替换
	if form.VariantsGiven {
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductVariant{}).Error; err != nil {
			tx.Rollback()
			h.serverError(c, "Failed to update product", err)
			return
		}
		if err := h.insertVariants(tx, id, form.Variants, false); err != nil {
			tx.Rollback()
			h.serverError(c, "Failed to update product", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		h.serverError(c, "Failed to update product", err)
		return
	}

	// 补偿动作：提交成功后才碰对象存储，失败只记日志
	h.deleteStorageKeys(c.Request.Context(), storageKeys)

	response.OK(c, "Product updated", gin.H{
		"id":     id,
		"slug":   product.Slug,
		"images": images,
	})
}

// DeleteProduct DELETE /api/products/:id
// 有订单引用就拒绝 (返回引用数)，商品和关联数据原样保留
func (h *Handler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	var product model.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Product not found")
		return
	}

	var refCount int64
	if err := h.db.Model(&model.OrderItem{}).Where("product_id = ?", id).Count(&refCount).Error; err != nil {
		h.serverError(c, "Failed to delete product", err)
		return
	}
	if refCount > 0 {
		c.JSON(http.StatusBadRequest, response.Response{
			Success: false,
			Message: fmt.Sprintf("Cannot delete product: referenced by %d order item(s)", refCount),
			Data:    gin.H{"references": refCount},
		})
		return
	}

	// 先收集图片 URL，DB 删完之后才动存储
	var images []model.ProductImage
	h.db.Where("product_id = ?", id).Find(&images)

	tx := h.db.Begin()
	if tx.Error != nil {
		h.serverError(c, "Failed to delete product", tx.Error)
		return
	}
	for _, m := range []interface{}{&model.ProductImage{}, &model.ProductVariant{}, &model.ProductCategory{}} {
		if err := tx.Where("product_id = ?", id).Delete(m).Error; err != nil {
			tx.Rollback()
			h.serverError(c, "Failed to delete product", err)
			return
		}
	}
	if err := tx.Where("id = ?", id).Delete(&model.Product{}).Error; err != nil {
		tx.Rollback()
		h.serverError(c, "Failed to delete product", err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		h.serverError(c, "Failed to delete product", err)
		return
	}

	// 只删指向本存储的对象，外链不碰。崩在这里会留孤儿对象，接受
	var keys []string
	for _, img := range images {
		if key := h.storage.KeyFromURL(img.URL); key != "" {
			keys = append(keys, key)
		}
	}
	h.deleteStorageKeys(c.Request.Context(), keys)

	response.OK(c, "Product deleted", gin.H{"id": id})
}

func (h *Handler) deleteStorageKeys(ctx context.Context, keys []string) {
	for _, key := range keys {
		if res := h.storage.Delete(ctx, key); !res.Success {
			log.Printf("WARN: storage delete failed key=%s: %s", key, res.Error)
		}
	}
}

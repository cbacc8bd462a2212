package handler

import (
	"net/http"
	"strconv"
	"strings"

	"whitelight-store/apps/api/model"
	"whitelight-store/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 150
)

// productView 读路径的响应形态：tags 解析成数组，categories 补全
type productView struct {
	model.Product
	TagList    []string `json:"tags"`
	Categories []string `json:"categories"`
}

// hydrate 逐行补齐图片/规格/分类 (每行每表一查)。
// 关联表没有分类行的老商品退回主表的单分类字段
func (h *Handler) hydrate(p model.Product) productView {
	var images []model.ProductImage
	h.db.Where("product_id = ?", p.ID).Order("id").Find(&images)

	var variants []model.ProductVariant
	h.db.Where("product_id = ?", p.ID).Order("size").Find(&variants)

	var rows []model.ProductCategory
	h.db.Where("product_id = ?", p.ID).Find(&rows)
	categories := make([]string, 0, len(rows))
	for _, r := range rows {
		categories = append(categories, r.Category)
	}
	if len(categories) == 0 && p.Category != "" {
		categories = []string{p.Category}
	}

	p.Images = images
	p.Variants = variants
	return productView{
		Product:    p,
		TagList:    parseTags(p.Tags),
		Categories: categories,
	}
}

// ListProducts GET /api/products
// 过滤 + 分页；关联数据按行扇出查询
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	query := h.db.Model(&model.Product{})

	// 分类走关联表成员判断，支持逗号分隔的多值
	if raw := c.Query("category"); raw != "" {
		var cats []string
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cats = append(cats, s)
			}
		}
		if len(cats) > 0 {
			query = query.Where("id IN (?)",
				h.db.Model(&model.ProductCategory{}).Select("product_id").Where("category IN ?", cats))
		}
	}

	if brand := c.Query("brand"); brand != "" {
		query = query.Where("brand = ?", brand)
	}

	if search := c.Query("search"); search != "" {
		q := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ?", q, q, q)
	}

	if v := c.Query("isNew"); v != "" {
		query = query.Where("is_new = ?", formBool(v))
	}
	if v := c.Query("isBestSeller"); v != "" {
		query = query.Where("is_best_seller = ?", formBool(v))
	}

	if v := c.Query("minPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			query = query.Where("price >= ?", p)
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			query = query.Where("price <= ?", p)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.serverError(c, "Failed to list products", err)
		return
	}

	var products []model.Product
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		h.serverError(c, "Failed to list products", err)
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, h.hydrate(p))
	}

	pages := (total + int64(limit) - 1) / int64(limit)
	response.OK(c, "", gin.H{
		"products": views,
		"total":    total,
		"page":     page,
		"pages":    pages,
		"limit":    limit,
	})
}

// GetProduct GET /api/products/:id  (id 或 slug 都行)
func (h *Handler) GetProduct(c *gin.Context) {
	key := c.Param("id")

	var product model.Product
	if err := h.db.Where("id = ? OR slug = ?", key, key).First(&product).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Product not found")
		return
	}

	response.OK(c, "", h.hydrate(product))
}

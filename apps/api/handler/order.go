package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"whitelight-store/apps/api/model"
	"whitelight-store/pkg/response"

	"github.com/gin-gonic/gin"
)

// 订单明细入参，尺码/数量范围在绑定层校验，进不了控制器
type orderItemRequest struct {
	ProductID     string  `json:"productId" binding:"required"`
	ProductName   string  `json:"productName" binding:"required"`
	ProductPrice  float64 `json:"productPrice" binding:"required,gt=0"`
	Size          int     `json:"size" binding:"required,min=35,max=50"`
	SelectedSizes []int   `json:"selectedSizes"`
	Quantity      int     `json:"quantity" binding:"required,min=1,max=10"`
	ProductImage  string  `json:"productImage"`
	ReferenceLink string  `json:"referenceLink"`
}

type createOrderRequest struct {
	CustomerName    string             `json:"customerName" binding:"required"`
	CustomerPhone   string             `json:"customerPhone" binding:"required"`
	CustomerEmail   string             `json:"customerEmail" binding:"omitempty,email"`
	DeliveryAddress string             `json:"deliveryAddress"`
	OrderNotes      string             `json:"orderNotes"`
	Items           []orderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateOrder POST /api/orders
//
// 和商品管线不同，这里没有外部副作用资源，任何一步失败整个事务回滚，
// 不存在部分成功。金额在应用层算好：subtotal = price*quantity，
// total = Σ subtotal。
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid order payload: "+err.Error())
		return
	}

	var total float64
	for _, item := range req.Items {
		total += item.ProductPrice * float64(item.Quantity)
	}

	tx := h.db.Begin()
	if tx.Error != nil {
		h.serverError(c, "Failed to create order", tx.Error)
		return
	}

	order := model.Order{
		OrderNumber:     newOrderNumber(),
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		DeliveryAddress: req.DeliveryAddress,
		OrderNotes:      req.OrderNotes,
		TotalAmount:     total,
		Status:          model.OrderStatusPending,
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		h.serverError(c, "Failed to create order", err)
		return
	}

	for _, item := range req.Items {
		sizes := item.SelectedSizes
		if len(sizes) == 0 {
			sizes = []int{item.Size}
		}
		sizesJSON, _ := json.Marshal(sizes)

		row := model.OrderItem{
			OrderID:       order.ID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			ProductPrice:  item.ProductPrice,
			Size:          item.Size,
			SelectedSizes: string(sizesJSON),
			Quantity:      item.Quantity,
			Subtotal:      item.ProductPrice * float64(item.Quantity),
			ProductImage:  item.ProductImage,
			ReferenceLink: item.ReferenceLink,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			h.serverError(c, "Failed to create order", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		h.serverError(c, "Failed to create order", err)
		return
	}

	// 提交后回读，响应里带上明细
	var created model.Order
	if err := h.db.Preload("Items").First(&created, order.ID).Error; err != nil {
		h.serverError(c, "Failed to load created order", err)
		return
	}

	response.Created(c, "Order created", created)
}

// ListOrders GET /api/orders
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	query := h.db.Model(&model.Order{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.serverError(c, "Failed to list orders", err)
		return
	}

	var orders []model.Order
	if err := query.Preload("Items").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&orders).Error; err != nil {
		h.serverError(c, "Failed to list orders", err)
		return
	}

	pages := (total + int64(limit) - 1) / int64(limit)
	response.OK(c, "", gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
		"pages":  pages,
		"limit":  limit,
	})
}

// GetOrder GET /api/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid order id")
		return
	}

	var order model.Order
	if err := h.db.Preload("Items").First(&order, id).Error; err != nil {
		response.Fail(c, http.StatusNotFound, "Order not found")
		return
	}

	response.OK(c, "", order)
}

// UpdateOrderStatus PUT /api/orders/:id/status
// 只校验状态是六个合法值之一，不限制状态间怎么跳 (delivered 也能直接改
// cancelled)，和前台管理页的约定保持一致
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "status is required")
		return
	}
	if !model.ValidOrderStatus(req.Status) {
		response.Fail(c, http.StatusBadRequest, "Invalid status value")
		return
	}

	result := h.db.Model(&model.Order{}).Where("id = ?", id).Update("status", req.Status)
	if result.Error != nil {
		h.serverError(c, "Failed to update order status", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		response.Fail(c, http.StatusNotFound, "Order not found")
		return
	}

	var order model.Order
	if err := h.db.Preload("Items").First(&order, id).Error; err != nil {
		h.serverError(c, "Failed to load order", err)
		return
	}

	response.OK(c, "Order status updated", order)
}

package model

import "time"

// 订单状态闭集，写入前校验成员资格，但不限制状态间的跳转
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus 是否为六个合法状态之一
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order 订单主表
type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	OrderNumber     string      `gorm:"type:varchar(32);uniqueIndex;not null" json:"orderNumber"`
	CustomerName    string      `gorm:"type:varchar(255);not null" json:"customerName"`
	CustomerPhone   string      `gorm:"type:varchar(50);not null" json:"customerPhone"`
	CustomerEmail   string      `gorm:"type:varchar(255)" json:"customerEmail,omitempty"`
	DeliveryAddress string      `gorm:"type:text" json:"deliveryAddress,omitempty"`
	OrderNotes      string      `gorm:"type:text" json:"orderNotes,omitempty"`
	TotalAmount     float64     `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	Status          string      `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem 订单明细，下单时拷贝商品名称/价格，后续改商品不影响历史订单
type OrderItem struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	OrderID       uint    `gorm:"index" json:"-"`
	ProductID     string  `gorm:"type:varchar(32);index" json:"productId"`
	ProductName   string  `gorm:"type:varchar(255)" json:"productName"`
	ProductPrice  float64 `gorm:"type:decimal(10,2)" json:"productPrice"`
	Size          int     `json:"size"`
	SelectedSizes string  `gorm:"type:text" json:"-"` // JSON数组字符串
	Quantity      int     `json:"quantity"`
	Subtotal      float64 `gorm:"type:decimal(10,2)" json:"subtotal"` // price*quantity，应用层算好再入库
	ProductImage  string  `gorm:"type:varchar(1024)" json:"productImage,omitempty"`
	ReferenceLink string  `gorm:"type:varchar(1024)" json:"referenceLink,omitempty"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

func (OrderItem) TableName() string {
	return "order_items"
}

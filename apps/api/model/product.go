package model

import "time"

// Product 商品主表
// ID 是对外可见的时间戳令牌 (毫秒 + 3位随机)，slug 全局唯一
type Product struct {
	ID            string   `gorm:"type:varchar(32);primaryKey" json:"id"`
	Slug          string   `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Name          string   `gorm:"type:varchar(255);not null" json:"name"`
	Brand         string   `gorm:"type:varchar(100);not null" json:"brand"`
	Category      string   `gorm:"type:varchar(100);not null" json:"category"` // 首个分类的镜像，兼容单分类老数据
	Price         float64  `gorm:"type:decimal(10,2);not null" json:"price"`
	OriginalPrice *float64 `gorm:"type:decimal(10,2)" json:"originalPrice,omitempty"`
	Description   string   `gorm:"type:text" json:"description"`
	Tags          string   `gorm:"type:text" json:"-"` // JSON数组字符串，坏数据按空数组处理
	IsNew         bool     `gorm:"default:false" json:"isNew"`
	IsBestSeller  bool     `gorm:"default:false" json:"isBestSeller"`
	IsOnOffer     bool     `gorm:"default:false" json:"isOnOffer"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Images     []ProductImage    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Variants   []ProductVariant  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Categories []ProductCategory `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

// ProductCategory 商品-分类 关联表
type ProductCategory struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	ProductID string `gorm:"type:varchar(32);index;uniqueIndex:uni_product_category;not null" json:"-"`
	Category  string `gorm:"type:varchar(100);uniqueIndex:uni_product_category;not null" json:"category"`
}

// ProductImage 商品图片，URL 可能指向对象存储也可能是外链
type ProductImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID string `gorm:"type:varchar(32);index;not null" json:"-"`
	URL       string `gorm:"type:varchar(1024);not null" json:"url"`
	AltText   string `gorm:"type:varchar(255)" json:"altText"`
}

// ProductVariant 尺码规格，(product_id, size) 唯一
type ProductVariant struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ProductID     string `gorm:"type:varchar(32);index;uniqueIndex:uni_product_size;not null" json:"-"`
	Size          int    `gorm:"uniqueIndex:uni_product_size;not null" json:"size"`
	InStock       bool   `gorm:"default:true" json:"inStock"`
	StockQuantity int    `gorm:"default:10" json:"stockQuantity"`
}

func (Product) TableName() string {
	return "products"
}

func (ProductCategory) TableName() string {
	return "product_categories"
}

func (ProductImage) TableName() string {
	return "product_images"
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

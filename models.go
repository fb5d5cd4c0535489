package main

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ctxKey struct{}

// Roles stored on User and carried inside token claims.
const (
	RoleCustomer  = "customer"
	RoleShopOwner = "shopowner"
	RoleShoemaker = "shoemaker"
	RoleAdmin     = "admin"
)

// Shop approval states set by the admin review flow.
const (
	ShopPending  = "pending"
	ShopApproved = "approved"
	ShopRejected = "rejected"
)

type User struct {
	ID           string  `json:"id" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	Name         string  `json:"name" gorm:"size:100"`
	Email        string  `json:"email" gorm:"size:100;not null"`
	Password     string  `json:"-" gorm:"size:100;not null"`
	Salt         string  `json:"-" gorm:"size:64;not null"`
	Role         string  `json:"role" gorm:"size:20;not null;default:customer"`
	ShopCodename *string `json:"shopCodename"`
	Address      *string `json:"address"`
	// Stored as raw strings so checkout rejects non-numeric values the same
	// way it rejects missing ones.
	Latitude  *string        `json:"latitude" gorm:"size:30"`
	Longitude *string        `json:"longitude" gorm:"size:30"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type Shop struct {
	ID              string                 `json:"-" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	Name            *string                `json:"name" gorm:"size:100;not null"`
	Codename        string                 `json:"codename" gorm:"size:100;not null"`
	Description     *string                `json:"description"`
	Address         *string                `json:"address"`
	Latitude        *string                `json:"latitude" gorm:"size:30"`
	Longitude       *string                `json:"longitude" gorm:"size:30"`
	Status          string                 `json:"status" gorm:"size:20;not null;default:pending"`
	RejectionReason *string                `json:"rejectionReason"`
	User            User                   `json:"-" gorm:"not null"`
	UserID          string                 `json:"-"`
	Documents       []VerificationDocument `json:"documents" gorm:"constraint:OnDelete:CASCADE;"`
	Shoes           []Shoe                 `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt       time.Time              `json:"-"`
	UpdatedAt       time.Time              `json:"-"`
	DeletedAt       gorm.DeletedAt         `json:"-" gorm:"index"`
}

type VerificationDocument struct {
	ID        string    `json:"id" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	Shop      Shop      `json:"-" gorm:"not null"`
	ShopID    string    `json:"-" gorm:"not null"`
	File      string    `json:"file" gorm:"size:500;not null"`
	CreatedAt time.Time `json:"uploadedAt"`
}

type Shoe struct {
	ID        string         `json:"-" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	Name      *string        `json:"name" gorm:"size:100;not null"`
	Codename  string         `json:"codename" gorm:"size:100;not null"`
	Brand     *string        `json:"brand" gorm:"size:100"`
	Type      *string        `json:"type" gorm:"size:50"`
	Gender    *string        `json:"gender" gorm:"size:20"`
	Public    bool           `json:"public"`
	Shop      Shop           `json:"shop" gorm:"not null"`
	ShopID    string         `json:"-" gorm:"not null"`
	Variants  []ShoeVariant  `json:"variants" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// ShoeVariant is one color option of a shoe with its own price, image and
// per-size stock rows.
type ShoeVariant struct {
	ID     string          `json:"id" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	Shoe   Shoe            `json:"-" gorm:"not null"`
	ShoeID string          `json:"-" gorm:"not null"`
	Color  string          `json:"color" gorm:"size:50;not null"`
	Price  decimal.Decimal `json:"price" sql:"type:decimal(20,8);" gorm:"not null"`
	Image  string          `json:"image" gorm:"size:500"`
	Sizes  []SizeStock     `json:"sizes" gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE;"`
}

type SizeStock struct {
	ID        string      `json:"-" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	Variant   ShoeVariant `json:"-" gorm:"not null"`
	VariantID string      `json:"-" gorm:"not null"`
	Size      string      `json:"size" gorm:"size:10;not null"`
	Quantity  int         `json:"quantity" gorm:"not null"`
}

// CartItem keeps a denormalized snapshot of the chosen variant so the cart
// survives later edits to the shoe.
type CartItem struct {
	ID        string          `json:"id" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	User      User            `json:"-" gorm:"not null"`
	UserID    string          `json:"-" gorm:"not null"`
	ShoeID    string          `json:"shoeId" gorm:"not null"`
	VariantID string          `json:"variantId" gorm:"not null"`
	ShopID    string          `json:"shopId" gorm:"not null"`
	ShoeName  string          `json:"shoeName" gorm:"size:100"`
	Brand     string          `json:"brand" gorm:"size:100"`
	Color     string          `json:"color" gorm:"size:50"`
	Size      string          `json:"size" gorm:"size:10;not null"`
	UnitPrice decimal.Decimal `json:"unitPrice" sql:"type:decimal(20,8);" gorm:"not null"`
	Image     string          `json:"image" gorm:"size:500"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// Order is a single line item, following the one-document-per-item layout of
// the original transaction tree. Multi-item checkouts produce one row per
// item sharing a checkout group identifier.
type Order struct {
	ID            string          `json:"-" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	Codename      string          `json:"codename" gorm:"size:40;not null"`
	CheckoutGroup string          `json:"checkoutGroup" gorm:"size:40"`
	User          User            `json:"-" gorm:"not null"`
	UserID        string          `json:"-" gorm:"not null"`
	Email         string          `json:"email" gorm:"size:100;not null"`
	Shop          Shop            `json:"shop"`
	ShopID        string          `json:"-" gorm:"not null"`
	ShoeID        *string         `json:"shoeId"`
	VariantID     *string         `json:"variantId"`
	ShoeName      string          `json:"shoeName" gorm:"size:100"`
	Brand         string          `json:"brand" gorm:"size:100"`
	Color         string          `json:"color" gorm:"size:50"`
	Size          string          `json:"size" gorm:"size:10"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	UnitPrice     decimal.Decimal `json:"unitPrice" sql:"type:decimal(20,8);" gorm:"not null"`
	ShippingFee   decimal.Decimal `json:"shippingFee" sql:"type:decimal(20,8);"`
	TotalPrice    decimal.Decimal `json:"totalPrice" sql:"type:decimal(20,8);" gorm:"not null"`
	Address       string          `json:"address" gorm:"size:200"`
	Note          string          `json:"note" gorm:"size:200"`
	Status        string          `json:"status" gorm:"size:30;not null;default:pending"`
	StatusUpdates []StatusUpdate  `json:"statusUpdates" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"-"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`
}

// StatusUpdate rows are append-only; an order's history is never rewritten.
type StatusUpdate struct {
	ID        string    `json:"-" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	Order     Order     `json:"-" gorm:"not null"`
	OrderID   string    `json:"-" gorm:"not null"`
	Status    string    `json:"status" gorm:"size:30;not null"`
	Message   string    `json:"message" gorm:"size:200"`
	Location  *string   `json:"location" gorm:"size:100"`
	CreatedAt time.Time `json:"timestamp"`
}

type DesignModel struct {
	ID           string          `json:"-" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	Name         *string         `json:"name" gorm:"size:100;not null"`
	Codename     string          `json:"codename" gorm:"size:100;not null"`
	Image        string          `json:"image" gorm:"size:500"`
	BasePrice    decimal.Decimal `json:"basePrice" sql:"type:decimal(20,8);" gorm:"not null"`
	BaseLeadDays int             `json:"baseLeadDays" gorm:"not null"`
	Options      []DesignOption  `json:"options" gorm:"foreignKey:ModelID;constraint:OnDelete:CASCADE;"`
	CreatedAt    time.Time       `json:"-"`
	UpdatedAt    time.Time       `json:"-"`
	DeletedAt    gorm.DeletedAt  `json:"-" gorm:"index"`
}

// Components a design order picks exactly one option from.
const (
	ComponentLaces  = "laces"
	ComponentInsole = "insole"
	ComponentSole   = "sole"
	ComponentColor  = "color"
)

type DesignOption struct {
	ID        string          `json:"id" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	Model     DesignModel     `json:"-" gorm:"not null"`
	ModelID   string          `json:"-" gorm:"not null"`
	Component string          `json:"component" gorm:"size:20;not null"`
	Name      string          `json:"name" gorm:"size:100;not null"`
	Price     decimal.Decimal `json:"price" sql:"type:decimal(20,8);" gorm:"not null"`
	LeadDays  int             `json:"leadDays" gorm:"not null"`
}

type DesignOrder struct {
	ID         string            `json:"id" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	User       User              `json:"-" gorm:"not null"`
	UserID     string            `json:"-" gorm:"not null"`
	Model      DesignModel       `json:"model"`
	ModelID    string            `json:"-" gorm:"not null"`
	Selections []DesignSelection `json:"selections" gorm:"constraint:OnDelete:CASCADE;"`
	TotalPrice decimal.Decimal   `json:"totalPrice" sql:"type:decimal(20,8);" gorm:"not null"`
	LeadDays   int               `json:"leadDays" gorm:"not null"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"-"`
}

// DesignSelection snapshots the chosen option's price and lead time at order
// time, like cart items do for variants.
type DesignSelection struct {
	ID            string          `json:"-" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	DesignOrder   DesignOrder     `json:"-" gorm:"not null"`
	DesignOrderID string          `json:"-" gorm:"not null"`
	Component     string          `json:"component" gorm:"size:20;not null"`
	OptionName    string          `json:"optionName" gorm:"size:100;not null"`
	Price         decimal.Decimal `json:"price" sql:"type:decimal(20,8);" gorm:"not null"`
	LeadDays      int             `json:"leadDays" gorm:"not null"`
}

type Feedback struct {
	ID        string          `json:"id" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	User      User            `json:"user" gorm:"not null"`
	UserID    string          `json:"-" gorm:"not null;uniqueIndex:idx_feedback_user_order"`
	OrderID   string          `json:"orderId" gorm:"not null;uniqueIndex:idx_feedback_user_order"`
	ShoeID    *string         `json:"shoeId"`
	ShopID    string          `json:"shopId" gorm:"not null"`
	Rating    int             `json:"rating" gorm:"not null"`
	Comment   string          `json:"comment" gorm:"size:500"`
	Media     []FeedbackMedia `json:"media" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time       `json:"createdAt"`
}

type FeedbackMedia struct {
	ID         string    `json:"-" gorm:"primary_key;type:uuid;default:uuid_generate_v4()"`
	Feedback   Feedback  `json:"-" gorm:"not null"`
	FeedbackID string    `json:"-" gorm:"not null"`
	Type       string    `json:"type" gorm:"size:10;not null"` // photo or video
	File       string    `json:"file" gorm:"size:500;not null"`
	CreatedAt  time.Time `json:"-"`
}

// ShippingConfig is a singleton tuning record, seeded with defaults on first
// read and edited by admins.
type ShippingConfig struct {
	ID                 string          `json:"-" gorm:"primaryKey;size:20"`
	BaseFee            decimal.Decimal `json:"baseFee" sql:"type:decimal(20,8);"`
	PerKmRate          decimal.Decimal `json:"perKmRate" sql:"type:decimal(20,8);"`
	PerKgRate          decimal.Decimal `json:"perKgRate" sql:"type:decimal(20,8);"`
	ServiceFee         decimal.Decimal `json:"serviceFee" sql:"type:decimal(20,8);"`
	AdditionalShopFee  decimal.Decimal `json:"additionalShopFee" sql:"type:decimal(20,8);"`
	BaseWeightKg       float64         `json:"baseWeightKg" validate:"gte=0"`
	ItemWeightKg       float64         `json:"itemWeightKg" validate:"gt=0"`
	MaxDistanceKm      float64         `json:"maxDistanceKm" validate:"gt=0"`
	MaxAdditionalShops int             `json:"maxAdditionalShops" validate:"gte=0"`
	UpdatedAt          time.Time       `json:"-"`
}

type RefreshToken struct {
	Token     string `gorm:"primaryKey"`
	Email     string `gorm:"not null"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type ErrorJSON struct {
	Message string      `json:"message"`
	Payload interface{} `json:"payload,omitempty"`
}

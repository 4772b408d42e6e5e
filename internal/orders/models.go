package orders

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// AdminID is the fixed identity used for the admin in sessions and chat.
const AdminID = "admin"

type Category string

const (
	CategoryFormal  Category = "Formal"
	CategoryLuxury  Category = "Luxury"
	CategorySmart   Category = "Smart"
	CategorySports  Category = "Sports"
	CategoryKids    Category = "Kids"
	CategoryStylish Category = "Stylish"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFormal, CategoryLuxury, CategorySmart, CategorySports, CategoryKids, CategoryStylish:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
	PaymentBkash          PaymentMethod = "Bkash"
	PaymentNagad          PaymentMethod = "Nagad"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCashOnDelivery, PaymentBkash, PaymentNagad:
		return true
	}
	return false
}

// Prepaid reports whether the customer has to transfer funds before shipping.
func (p PaymentMethod) Prepaid() bool {
	return p == PaymentBkash || p == PaymentNagad
}

type DeliveryMethod string

const (
	DeliveryStandard DeliveryMethod = "Standard"
	DeliveryPremium  DeliveryMethod = "Premium"
)

func (d DeliveryMethod) Valid() bool {
	return d == DeliveryStandard || d == DeliveryPremium
}

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Role         Role   `json:"role"`
}

type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Stock       int      `json:"stock"`
	Colors      []string `json:"colors"`
	AgeGroup    string   `json:"ageGroup"`
	ImageURL    string   `json:"imageUrl"`
}

func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	case !p.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, p.Category)
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	case len(p.Colors) == 0:
		return fmt.Errorf("%w: at least one color is required", ErrInvalidInput)
	}
	return nil
}

func (p Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// LineItem is the product data captured when the order was placed. Later
// catalog edits never reach it.
type LineItem struct {
	ProductID   string `json:"productId"`
	Color       string `json:"color"`
	Quantity    int    `json:"quantity"`
	ProductName string `json:"productName"`
	UnitPrice   int    `json:"unitPrice"`
	ImageURL    string `json:"imageUrl"`
}

func (li LineItem) Subtotal() int { return li.UnitPrice * li.Quantity }

// Shipping is the customer's contact data as it was at placement.
type Shipping struct {
	UserID  string `json:"userId"`
	Name    string `json:"userName"`
	Phone   string `json:"userPhone"`
	Address string `json:"userAddress"`
}

type Cost struct {
	BaseTotal      int    `json:"baseTotal"`
	VAT            int    `json:"vat"`
	DeliveryCharge int    `json:"deliveryCharge"`
	GrandTotal     int    `json:"grandTotal"`
	AdminNote      string `json:"adminNote,omitempty"`
}

type Order struct {
	ID             string         `json:"id"`
	Shipping       Shipping       `json:"shipping"`
	Items          []LineItem     `json:"items"`
	Status         Status         `json:"status"`
	PaymentMethod  PaymentMethod  `json:"paymentMethod"`
	DeliveryMethod DeliveryMethod `json:"deliveryMethod"`
	PlacedAt       time.Time      `json:"placedAt"`
	Cost           *Cost          `json:"cost,omitempty"` // nil until the admin submits cost
	PaymentProof   bool           `json:"paymentProof"`
	Version        int            `json:"version"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (o Order) BaseTotal() int {
	total := 0
	for _, it := range o.Items {
		total += it.Subtotal()
	}
	return total
}

// Clone returns a copy that shares no mutable memory with o.
func (o Order) Clone() Order {
	out := o
	out.Items = append([]LineItem(nil), o.Items...)
	if o.Cost != nil {
		c := *o.Cost
		out.Cost = &c
	}
	return out
}

func (p Product) Clone() Product {
	out := p
	out.Colors = append([]string(nil), p.Colors...)
	return out
}

type OfferType string

const (
	OfferTypeOffer    OfferType = "offer"
	OfferTypePromo    OfferType = "promo"
	OfferTypeActivity OfferType = "activity"
)

type Offer struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Type        OfferType `json:"type,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}

// Session is the persisted "current actor" pointer. The zero value is an
// anonymous visitor.
type Session struct {
	Role   Role   `json:"role,omitempty"`
	UserID string `json:"userId,omitempty"`
}

func (s Session) Anonymous() bool { return s.Role == "" }

// Actor is who is calling a lifecycle operation.
type Actor struct {
	Role   Role
	UserID string
}

func (s Session) Actor() Actor { return Actor{Role: s.Role, UserID: s.UserID} }

func AdminActor() Actor { return Actor{Role: RoleAdmin, UserID: AdminID} }

func CustomerActor(userID string) Actor { return Actor{Role: RoleCustomer, UserID: userID} }

// MerchantNumbers are the mobile-wallet accounts customers pay into.
type MerchantNumbers struct {
	Bkash string `json:"bkash"`
	Nagad string `json:"nagad"`
}

func (m MerchantNumbers) For(p PaymentMethod) string {
	switch p {
	case PaymentBkash:
		return m.Bkash
	case PaymentNagad:
		return m.Nagad
	}
	return ""
}

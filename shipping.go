package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Coordinates struct {
	Lat float64
	Lng float64
}

var (
	ErrEmptyCart                  = errors.New("no items to ship")
	ErrInvalidCustomerCoordinates = errors.New("Invalid customer coordinates")
)

// TooManyShopsError is returned before any distance lookup when the order
// spans more shops than the configuration allows.
type TooManyShopsError struct {
	Shops int
	Max   int
}

func (e *TooManyShopsError) Error() string {
	return fmt.Sprintf("order spans %d shops, at most %d allowed", e.Shops, e.Max)
}

// ShopCoordinatesError marks a shop whose stored coordinates are missing or
// not numeric.
type ShopCoordinatesError struct {
	ShopID string
}

func (e *ShopCoordinatesError) Error() string {
	return fmt.Sprintf("shop %s has no usable coordinates", e.ShopID)
}

type ShipmentItem struct {
	ShopID   string `json:"shopId"`
	Quantity int    `json:"quantity"`
}

type ShopShippingFee struct {
	ShopID     string          `json:"shopId"`
	ShopName   string          `json:"shopName"`
	DistanceKm float64         `json:"distanceKm"`
	WeightKg   float64         `json:"weightKg"`
	Fee        decimal.Decimal `json:"fee"`
}

type ShippingQuote struct {
	Success         bool              `json:"success"`
	Total           decimal.Decimal   `json:"total"`
	Shops           []ShopShippingFee `json:"shops"`
	OutOfRangeShops []ShopShippingFee `json:"outOfRangeShops"`
	MultiShopFee    decimal.Decimal   `json:"multiShopFee"`
	Estimated       bool              `json:"estimated"`
	Message         string            `json:"message,omitempty"`
}

// ParseCoordinates turns the stored string pair into numbers; nil or
// non-numeric values are one and the same failure.
func ParseCoordinates(lat *string, lng *string) (Coordinates, error) {
	if lat == nil || lng == nil {
		return Coordinates{}, errors.New("coordinates missing")
	}

	latF, err1 := strconv.ParseFloat(*lat, 64)
	lngF, err2 := strconv.ParseFloat(*lng, 64)
	if err1 != nil || err2 != nil {
		return Coordinates{}, errors.New("coordinates not numeric")
	}

	return Coordinates{Lat: latF, Lng: lngF}, nil
}

// CalculateShippingFees produces the shipping total and a per-shop breakdown
// for a cart possibly spanning multiple shops.
//
// Per shop: baseFee + distance*perKmRate + max(0, weight-baseWeight)*perKgRate
// + serviceFee, rounded to the nearest currency unit; a shop farther than
// maxDistanceKm lands in OutOfRangeShops and is excluded from the total.
// When more than one shop contributes, (shops-1)*additionalShopFee is added.
func CalculateShippingFees(ctx context.Context, items []ShipmentItem, customerLat *string, customerLng *string, shops map[string]Shop, cfg ShippingConfig, svc DistanceService) (*ShippingQuote, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	customer, err := ParseCoordinates(customerLat, customerLng)
	if err != nil {
		return nil, ErrInvalidCustomerCoordinates
	}

	// 1. Group quantities by shop; weight is quantity times the fixed
	// per-item weight.
	weights := make(map[string]float64)
	for _, item := range items {
		weights[item.ShopID] += float64(item.Quantity) * cfg.ItemWeightKg
	}

	shopIDs := make([]string, 0, len(weights))
	for shopID := range weights {
		shopIDs = append(shopIDs, shopID)
	}
	sort.Strings(shopIDs)

	// 2. Shop-count limit short-circuits before any distance lookup
	if len(shopIDs) > cfg.MaxAdditionalShops+1 {
		return nil, &TooManyShopsError{Shops: len(shopIDs), Max: cfg.MaxAdditionalShops + 1}
	}

	// 3. Resolve stored shop coordinates and batch the distance query
	origins := make([]Coordinates, 0, len(shopIDs))
	for _, shopID := range shopIDs {
		shop, ok := shops[shopID]
		if !ok {
			return nil, &ShopCoordinatesError{ShopID: shopID}
		}

		origin, err := ParseCoordinates(shop.Latitude, shop.Longitude)
		if err != nil {
			return nil, &ShopCoordinatesError{ShopID: shopID}
		}

		origins = append(origins, origin)
	}

	distances, err := svc.DriveDistances(ctx, origins, customer)
	if err != nil {
		return nil, err
	}

	// 4. Per-shop fee, collecting unreachable shops instead of failing fast
	quote := &ShippingQuote{
		Total:           decimal.Zero,
		Shops:           make([]ShopShippingFee, 0, len(shopIDs)),
		OutOfRangeShops: make([]ShopShippingFee, 0),
		MultiShopFee:    decimal.Zero,
	}

	for i, shopID := range shopIDs {
		shop := shops[shopID]
		weight := weights[shopID]
		dist := distances[i]

		name := ""
		if shop.Name != nil {
			name = *shop.Name
		}

		entry := ShopShippingFee{
			ShopID:     shopID,
			ShopName:   name,
			DistanceKm: dist,
			WeightKg:   weight,
		}

		if dist > cfg.MaxDistanceKm {
			quote.OutOfRangeShops = append(quote.OutOfRangeShops, entry)
			continue
		}

		excessWeight := weight - cfg.BaseWeightKg
		if excessWeight < 0 {
			excessWeight = 0
		}

		fee := cfg.BaseFee.
			Add(decimal.NewFromFloat(dist).Mul(cfg.PerKmRate)).
			Add(decimal.NewFromFloat(excessWeight).Mul(cfg.PerKgRate)).
			Add(cfg.ServiceFee).
			Round(0)

		entry.Fee = fee
		quote.Shops = append(quote.Shops, entry)
		quote.Total = quote.Total.Add(fee)
	}

	// 5. Surcharge when more than one shop actually contributes
	if len(quote.Shops) > 1 {
		quote.MultiShopFee = cfg.AdditionalShopFee.Mul(decimal.NewFromInt(int64(len(quote.Shops) - 1)))
		quote.Total = quote.Total.Add(quote.MultiShopFee)
	}

	// 6. Any unreachable shop fails the quote as a whole
	quote.Success = len(quote.OutOfRangeShops) == 0

	return quote, nil
}

// FlatShippingEstimate is the degraded fallback when coordinates or the
// distance service are unusable: a flat amount per item.
func FlatShippingEstimate(items []ShipmentItem) decimal.Decimal {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}

	return decimal.NewFromInt(int64(100 * total))
}

// DefaultShippingConfig seeds the singleton on first read.
func DefaultShippingConfig() ShippingConfig {
	return ShippingConfig{
		ID:                 "default",
		BaseFee:            decimal.NewFromInt(50),
		PerKmRate:          decimal.NewFromInt(2),
		PerKgRate:          decimal.NewFromInt(10),
		ServiceFee:         decimal.NewFromInt(20),
		AdditionalShopFee:  decimal.NewFromInt(30),
		BaseWeightKg:       0.5,
		ItemWeightKg:       0.5,
		MaxDistanceKm:      100,
		MaxAdditionalShops: 2,
	}
}

// LoadShippingConfig returns the singleton, creating it with defaults when
// absent.
func LoadShippingConfig() ShippingConfig {
	var cfg ShippingConfig
	if err := db.Take(&cfg, "id = ?", "default").Error; err != nil {
		cfg = DefaultShippingConfig()
		db.Create(&cfg)
	}

	return cfg
}

func GetShippingConfig(w http.ResponseWriter, r *http.Request) {
	cfg := LoadShippingConfig()
	JSONResponse(cfg, w)
}

var validate = validator.New()

func UpdateShippingConfig(w http.ResponseWriter, r *http.Request) {
	var errorStruct ErrorJSON

	cfg := LoadShippingConfig()

	var request ShippingConfig
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "unable to parse body to json"
		JSONResponse(errorStruct, w)
		return
	}

	request.ID = cfg.ID

	if err := validate.Struct(request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = err.Error()
		JSONResponse(errorStruct, w)
		return
	}

	if request.BaseFee.IsNegative() || request.PerKmRate.IsNegative() || request.PerKgRate.IsNegative() ||
		request.ServiceFee.IsNegative() || request.AdditionalShopFee.IsNegative() {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "fees cannot be negative"
		JSONResponse(errorStruct, w)
		return
	}

	db.Save(&request)
	JSONResponse(request, w)
}

// GetShippingQuote prices the caller's cart (or an explicit item list)
// without placing an order.
func GetShippingQuote(w http.ResponseWriter, r *http.Request) {
	email := GetClaim("email", r)

	var user User
	db.Take(&user, "email = ?", *email)

	request := struct {
		Items []ShipmentItem `json:"items"`
	}{}
	json.NewDecoder(r.Body).Decode(&request)

	items := request.Items
	if len(items) == 0 {
		var cart []CartItem
		db.Where("user_id = ?", user.ID).Find(&cart)
		for _, item := range cart {
			items = append(items, ShipmentItem{ShopID: item.ShopID, Quantity: item.Quantity})
		}
	}

	quote, status := QuoteOrFallback(r.Context(), items, user)

	w.WriteHeader(status)
	JSONResponse(quote, w)
}

// QuoteOrFallback runs the calculator and applies the degraded flat estimate
// for empty-item, coordinate and distance-service failures. The max-shops
// error stays a hard error because the customer can fix it by splitting the
// order; out-of-range shops come back in the quote itself.
func QuoteOrFallback(ctx context.Context, items []ShipmentItem, user User) (*ShippingQuote, int) {
	cfg := LoadShippingConfig()

	shopIDs := make([]string, 0, len(items))
	for _, item := range items {
		shopIDs = append(shopIDs, item.ShopID)
	}

	var shopRows []Shop
	db.Where("id IN ?", shopIDs).Find(&shopRows)

	shops := make(map[string]Shop, len(shopRows))
	for _, shop := range shopRows {
		shops[shop.ID] = shop
	}

	quote, err := CalculateShippingFees(ctx, items, user.Latitude, user.Longitude, shops, cfg, distance)
	if err == nil {
		return quote, http.StatusOK
	}

	var tooMany *TooManyShopsError
	if errors.As(err, &tooMany) {
		return &ShippingQuote{Success: false, Message: err.Error()}, http.StatusBadRequest
	}

	// Nothing to ship, coordinates or distance service unusable: estimate
	// instead of blocking. An empty item list estimates to zero.
	logger.Warnw("shipping estimate fallback", "error", err)
	return &ShippingQuote{
		Success:   true,
		Total:     FlatShippingEstimate(items),
		Estimated: true,
		Message:   err.Error(),
	}, http.StatusOK
}

package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func GetOrders(w http.ResponseWriter, r *http.Request) {
	email := GetClaim("email", r)
	role := GetClaim("role", r)

	var user User
	db.Take(&user, "email = ?", *email)

	r.ParseForm()

	tx := db.Preload("StatusUpdates", func(tx2 *gorm.DB) *gorm.DB {
		return tx2.Order("created_at")
	}).Preload("Shop")

	// Only filter if user is not an admin
	if *role != RoleAdmin {
		tx = tx.Where("user_id = ?", user.ID)
	}

	if orderID := GetSingleParameter(r, "orderId"); orderID != "" {
		var order Order
		if err := tx.Take(&order, "codename = ?", orderID).Error; err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		JSONResponse(order, w)
		return
	}

	orders := make([]Order, 0)
	tx.Order("created_at desc").Find(&orders)
	JSONResponse(orders, w)
}

// Checkout modes selected by the ?method= query parameter.
const (
	MethodBuyNow    = "buyNow"
	MethodCartOrder = "cartOrder"
)

func PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var errorStruct ErrorJSON

	email := GetClaim("email", r)

	var user User
	db.Take(&user, "email = ?", *email)

	r.ParseForm()
	method := GetSingleParameter(r, "method")

	request := struct {
		Address  *string `json:"address"`
		Note     string  `json:"note"`
		Shoe     *string `json:"shoe"`
		Variant  *string `json:"variant"`
		Size     *string `json:"size"`
		Quantity *int    `json:"quantity"`
	}{}

	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "unable to parse body to json"
		JSONResponse(errorStruct, w)
		return
	}

	if request.Address == nil || *request.Address == "" {
		if user.Address == nil || *user.Address == "" {
			w.WriteHeader(http.StatusBadRequest)
			errorStruct.Message = "shipping information missing"
			JSONResponse(errorStruct, w)
			return
		}
		request.Address = user.Address
	}

	// Collect the line items for the chosen checkout mode
	var lines []CartItem

	switch method {
	case MethodBuyNow:
		line, err := buildBuyNowLine(user, request.Shoe, request.Variant, request.Size, request.Quantity)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			errorStruct.Message = err.Error()
			JSONResponse(errorStruct, w)
			return
		}
		lines = []CartItem{line}

	case MethodCartOrder:
		db.Where("user_id = ?", user.ID).Find(&lines)
		if len(lines) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			errorStruct.Message = "cart is empty"
			JSONResponse(errorStruct, w)
			return
		}

	default:
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "method must be buyNow or cartOrder"
		JSONResponse(errorStruct, w)
		return
	}

	// Check for errors:
	// does the stock bucket still exist, is the quantity correct
	stockErrors := make(map[string]string)
	for _, line := range lines {
		var stock SizeStock
		err := db.Where("variant_id = ?", line.VariantID).Take(&stock, "size = ?", line.Size).Error
		if err != nil {
			continue // missing bucket is a warning at adjust time, not a blocker
		}

		if line.Quantity > stock.Quantity {
			stockErrors[line.ShoeName] = fmt.Sprintf("only %d units left in size %s", stock.Quantity, line.Size)
		}
	}

	if len(stockErrors) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "order invalid"
		errorStruct.Payload = stockErrors
		JSONResponse(errorStruct, w)
		return
	}

	// Shipping fees, shared out per shop
	items := make([]ShipmentItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, ShipmentItem{ShopID: line.ShopID, Quantity: line.Quantity})
	}

	quote, status := QuoteOrFallback(r.Context(), items, user)
	if status != http.StatusOK {
		w.WriteHeader(status)
		JSONResponse(quote, w)
		return
	}

	if !quote.Success {
		w.WriteHeader(http.StatusUnprocessableEntity)
		errorStruct.Message = "some shops cannot deliver to this address"
		errorStruct.Payload = quote.OutOfRangeShops
		JSONResponse(errorStruct, w)
		return
	}

	orders := createOrders(user, lines, *request.Address, request.Note, quote)

	if len(orders) == 0 {
		Response(w, http.StatusInternalServerError, "order could not be saved")
		return
	}

	if method == MethodCartOrder {
		// Best effort; a leftover cart row is not worth failing the order
		if err := db.Where("user_id = ?", user.ID).Delete(&CartItem{}).Error; err != nil {
			logger.Warnw("cart not cleared after checkout", "user", user.ID, "error", err)
		}
	}

	w.WriteHeader(http.StatusCreated)
	JSONResponse(orders, w)
}

func buildBuyNowLine(user User, shoeCodename *string, variantID *string, size *string, quantity *int) (CartItem, error) {
	if shoeCodename == nil || variantID == nil || size == nil {
		return CartItem{}, fmt.Errorf("shoe, variant and size are required")
	}

	if quantity == nil || *quantity < 1 {
		return CartItem{}, fmt.Errorf("quantity must be at least one")
	}

	var shoe Shoe
	if err := db.Where("codename = ?", *shoeCodename).Take(&shoe).Error; err != nil {
		return CartItem{}, fmt.Errorf("shoe not found")
	}

	var variant ShoeVariant
	if err := db.Where("shoe_id = ?", shoe.ID).Take(&variant, "id = ?", *variantID).Error; err != nil {
		return CartItem{}, fmt.Errorf("variant not found")
	}

	name := ""
	if shoe.Name != nil {
		name = *shoe.Name
	}

	brand := ""
	if shoe.Brand != nil {
		brand = *shoe.Brand
	}

	return CartItem{
		UserID:    user.ID,
		ShoeID:    shoe.ID,
		VariantID: variant.ID,
		ShopID:    shoe.ShopID,
		ShoeName:  name,
		Brand:     brand,
		Color:     variant.Color,
		Size:      *size,
		UnitPrice: variant.Price,
		Image:     variant.Image,
		Quantity:  *quantity,
	}, nil
}

// createOrders writes one order row per line item and then adjusts stock.
// The two writes share a transaction per line, but a vanished size bucket
// only logs a warning; the order stands either way.
func createOrders(user User, lines []CartItem, address string, note string, quote *ShippingQuote) []Order {
	group, _ := uuid.NewRandom()

	// Per-shop fee lands on that shop's first line; the multi-shop
	// surcharge on the first line overall.
	shopFees := make(map[string]decimal.Decimal, len(quote.Shops))
	for _, shopFee := range quote.Shops {
		shopFees[shopFee.ShopID] = shopFee.Fee
	}

	surcharge := quote.MultiShopFee
	if quote.Estimated {
		// Flat estimates have no per-shop breakdown; each line carries
		// its own per-item amount instead
		shopFees = nil
		surcharge = decimal.Zero
	}

	orders := make([]Order, 0, len(lines))
	surchargeApplied := false

	for _, line := range lines {
		fee := decimal.Zero
		feeFromShop := false
		if quote.Estimated {
			fee = decimal.NewFromInt(int64(100 * line.Quantity))
		} else if shopFee, ok := shopFees[line.ShopID]; ok {
			fee = shopFee
			feeFromShop = true
		}

		if !surchargeApplied {
			fee = fee.Add(surcharge)
		}

		shoeID := line.ShoeID
		variantID := line.VariantID

		order := Order{
			Codename:      GenerateOrderIdentifier(),
			CheckoutGroup: group.String(),
			UserID:        user.ID,
			Email:         user.Email,
			ShopID:        line.ShopID,
			ShoeID:        &shoeID,
			VariantID:     &variantID,
			ShoeName:      line.ShoeName,
			Brand:         line.Brand,
			Color:         line.Color,
			Size:          line.Size,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			ShippingFee:   fee,
			TotalPrice:    line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Add(fee).Round(2),
			Address:       address,
			Note:          note,
			Status:        StatusPending,
		}

		line := line
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&order).Error; err != nil {
				return err
			}

			tx.Create(&StatusUpdate{
				OrderID: order.ID,
				Status:  StatusPending,
				Message: "Order placed",
			})

			adjustStock(tx, line)
			return nil
		})

		// A failed line must not eat the shop fee or the surcharge; they
		// carry over to the next line that does get written
		if err != nil {
			logger.Errorw("order line not saved",
				"shoe", line.ShoeID, "shop", line.ShopID, "error", err)
			continue
		}

		if feeFromShop {
			delete(shopFees, line.ShopID)
		}
		surchargeApplied = true

		orders = append(orders, order)
	}

	return orders
}

// adjustStock subtracts the purchased quantity from the size bucket. A
// missing shoe/variant/size is skipped with a warning; the order was already
// stored and stays stored.
func adjustStock(tx *gorm.DB, line CartItem) {
	var stock SizeStock
	err := tx.Where("variant_id = ?", line.VariantID).Take(&stock, "size = ?", line.Size).Error
	if err != nil {
		logger.Warnw("stock not adjusted, size bucket missing",
			"shoe", line.ShoeID, "variant", line.VariantID, "size", line.Size)
		return
	}

	stock.Quantity -= line.Quantity
	if stock.Quantity < 0 {
		logger.Warnw("stock went negative, clamping to zero",
			"variant", line.VariantID, "size", line.Size)
		stock.Quantity = 0
	}

	tx.Save(&stock)
}

// AdvanceOrderStatus moves an order one step forward and appends to its
// audit trail. Only the shop behind the order (owner or shoemaker) and
// admins may advance it.
func AdvanceOrderStatus(w http.ResponseWriter, r *http.Request) {
	var errorStruct ErrorJSON

	params := mux.Vars(r)

	email := GetClaim("email", r)
	role := GetClaim("role", r)

	var order Order
	if err := db.Preload("Shop.User").Preload("User").Take(&order, "codename = ?", params["order"]).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if !canManageOrder(*email, *role, order) {
		Response(w, http.StatusUnauthorized, "not authorized")
		return
	}

	request := struct {
		Status   *string `json:"status"`
		Message  string  `json:"message"`
		Location *string `json:"location"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Status == nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "status not set"
		JSONResponse(errorStruct, w)
		return
	}

	if !CanTransition(order.Status, *request.Status) {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = fmt.Sprintf("cannot move from %s to %s", order.Status, *request.Status)
		errorStruct.Payload = NextStatusOptions(order.Status)
		JSONResponse(errorStruct, w)
		return
	}

	message := request.Message
	if message == "" {
		message = fmt.Sprintf("Status updated to %s", *request.Status)
	}

	order.Status = *request.Status
	db.Save(&order)
	AppendStatusUpdate(order.ID, order.Status, message, request.Location)

	if order.Status == StatusRejected {
		// Mail failure must not fail the rejection
		if err := SendOrderRejectionEmail(order.User.Email, order.Codename, message); err != nil {
			logger.Warnw("rejection email not sent", "order", order.Codename, "error", err)
		}
	}

	db.Preload("StatusUpdates", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at")
	}).Take(&order, "id = ?", order.ID)
	JSONResponse(order, w)
}

func canManageOrder(email string, role string, order Order) bool {
	if role == RoleAdmin {
		return true
	}

	if role == RoleShopOwner && order.Shop.User.Email == email {
		return true
	}

	if role == RoleShoemaker {
		var user User
		if err := db.Take(&user, "email = ?", email).Error; err != nil {
			return false
		}

		return user.ShopCodename != nil && *user.ShopCodename == order.Shop.Codename
	}

	return false
}

// CancelOrder lets the buyer back out while the order is still pending.
func CancelOrder(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	email := GetClaim("email", r)

	var user User
	db.Take(&user, "email = ?", *email)

	var order Order
	if err := db.Where("user_id = ?", user.ID).Take(&order, "codename = ?", params["order"]).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if order.Status != StatusPending {
		Response(w, http.StatusBadRequest, "only pending orders can be cancelled")
		return
	}

	order.Status = StatusCancelled
	db.Save(&order)
	AppendStatusUpdate(order.ID, StatusCancelled, "Cancelled by customer", nil)

	JSONResponse(order, w)
}

// GetProductionQueue lists the in-progress orders of the shop a shoemaker
// works for.
func GetProductionQueue(w http.ResponseWriter, r *http.Request) {
	email := GetClaim("email", r)

	var worker User
	if err := db.Take(&worker, "email = ?", *email).Error; err != nil {
		Response(w, http.StatusBadRequest, "no such account")
		return
	}

	if worker.ShopCodename == nil {
		Response(w, http.StatusBadRequest, "not assigned to a shop")
		return
	}

	var shop Shop
	if err := db.Where("codename = ?", *worker.ShopCodename).Take(&shop).Error; err != nil {
		Response(w, http.StatusBadRequest, "shop not found")
		return
	}

	orders := make([]Order, 0)

	tx := db.Preload("StatusUpdates", func(tx2 *gorm.DB) *gorm.DB {
		return tx2.Order("created_at")
	})
	tx.Where("shop_id = ?", shop.ID)
	tx.Where("status IN ?", []string{StatusAccepted, StatusProcessing, StatusOrderProcessed})
	tx.Order("created_at").Find(&orders)

	JSONResponse(orders, w)
}

package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

func GetCart(w http.ResponseWriter, r *http.Request) {
	email := GetClaim("email", r)

	var user User
	db.Take(&user, "email = ?", *email)

	items := make([]CartItem, 0)
	db.Where("user_id = ?", user.ID).Order("created_at desc").Find(&items)
	JSONResponse(items, w)
}

func AddCartItem(w http.ResponseWriter, r *http.Request) {
	var errorStruct ErrorJSON

	email := GetClaim("email", r)

	var user User
	db.Take(&user, "email = ?", *email)

	request := struct {
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

	if request.Shoe == nil || request.Variant == nil || request.Size == nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "shoe, variant and size are required"
		JSONResponse(errorStruct, w)
		return
	}

	if request.Quantity == nil || *request.Quantity < 1 {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "quantity must be at least one"
		JSONResponse(errorStruct, w)
		return
	}

	var shoe Shoe
	if err := db.Where("codename = ?", *request.Shoe).Take(&shoe).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		errorStruct.Message = "shoe not found"
		JSONResponse(errorStruct, w)
		return
	}

	var variant ShoeVariant
	if err := db.Where("shoe_id = ?", shoe.ID).Take(&variant, "id = ?", *request.Variant).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		errorStruct.Message = "variant not found"
		JSONResponse(errorStruct, w)
		return
	}

	var stock SizeStock
	if err := db.Where("variant_id = ?", variant.ID).Take(&stock, "size = ?", *request.Size).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		errorStruct.Message = "size not available"
		JSONResponse(errorStruct, w)
		return
	}

	if *request.Quantity > stock.Quantity {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "not enough stock"
		JSONResponse(errorStruct, w)
		return
	}

	brand := ""
	if shoe.Brand != nil {
		brand = *shoe.Brand
	}

	name := ""
	if shoe.Name != nil {
		name = *shoe.Name
	}

	// Snapshot the variant so later shoe edits leave the cart untouched
	item := CartItem{
		UserID:    user.ID,
		ShoeID:    shoe.ID,
		VariantID: variant.ID,
		ShopID:    shoe.ShopID,
		ShoeName:  name,
		Brand:     brand,
		Color:     variant.Color,
		Size:      *request.Size,
		UnitPrice: variant.Price,
		Image:     variant.Image,
		Quantity:  *request.Quantity,
	}
	db.Create(&item)

	w.WriteHeader(http.StatusCreated)
	JSONResponse(item, w)
}

func UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	email := GetClaim("email", r)

	var user User
	db.Take(&user, "email = ?", *email)

	var item CartItem
	if err := db.Where("user_id = ?", user.ID).Take(&item, "id = ?", params["itemid"]).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	request := struct {
		Quantity *int `json:"quantity"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Quantity == nil {
		Response(w, http.StatusBadRequest, "quantity is required")
		return
	}

	if *request.Quantity < 1 {
		Response(w, http.StatusBadRequest, "quantity must be at least one")
		return
	}

	item.Quantity = *request.Quantity
	db.Save(&item)

	JSONResponse(item, w)
}

func RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	email := GetClaim("email", r)

	var user User
	db.Take(&user, "email = ?", *email)

	db.Where("user_id = ?", user.ID).Delete(&CartItem{}, "id = ?", params["itemid"])
}

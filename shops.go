package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func GetShops(w http.ResponseWriter, r *http.Request) {
	shops := make([]Shop, 0)

	// The public storefront only ever lists approved shops
	db.Where("status = ?", ShopApproved).Order("created_at desc").Find(&shops)
	JSONResponse(shops, w)
}

func GetShop(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	shopName := params["shop"]

	var shop Shop

	err := db.Preload("Documents").Preload("User").Where("codename = ?", shopName).Take(&shop).Error
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	// Shops still in review are only visible to their owner and admins
	if shop.Status != ShopApproved {
		claims, err := parseAccessToken(r)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		email := fmt.Sprintf("%v", claims["email"])
		role := fmt.Sprintf("%v", claims["role"])
		if role != RoleAdmin && shop.User.Email != email {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	}

	JSONResponse(&shop, w)
}

func CreateShop(w http.ResponseWriter, r *http.Request) {
	var errorStruct ErrorJSON

	email := GetClaim("email", r)
	err := GetShopByEmail(*email, &Shop{}, false)
	if err == nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "second shop cannot be created"
		JSONResponse(errorStruct, w)
		return
	}

	// Parse json to object
	var shop Shop
	err = json.NewDecoder(r.Body).Decode(&shop)

	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = err.Error()
		JSONResponse(errorStruct, w)
		return
	}

	// Info validation
	if shop.Name == nil || *shop.Name == "" {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "name cannot be empty"
		JSONResponse(errorStruct, w)
		return
	}

	if shop.Address == nil || *shop.Address == "" {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "address cannot be empty"
		JSONResponse(errorStruct, w)
		return
	}

	err = NameTaken(*shop.Name, &Shop{})
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		errorStruct.Message = err.Error()
		JSONResponse(errorStruct, w)
		return
	}

	if shop.Description == nil {
		shop.Description = new(string)
	}

	var user User
	db.Take(&user, "email = ?", *email)

	// New shops always enter review
	shop.Codename = GenerateCodename(*shop.Name, false)
	shop.Status = ShopPending
	shop.RejectionReason = nil
	shop.User = user
	err = db.Create(&shop).Error
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = err.Error()
		JSONResponse(errorStruct, w)
		return
	}

	// Update user info
	user.ShopCodename = &shop.Codename
	db.Save(&user)

	// Send tokens with correct info
	MakeTokens(w, user)

	w.WriteHeader(http.StatusCreated)
	JSONResponse(shop, w)
}

func UpdateShop(w http.ResponseWriter, r *http.Request) {
	var errorStruct ErrorJSON

	// Check if user has a shop
	email := GetClaim("email", r)

	var shop Shop
	err := GetShopByEmail(*email, &shop, false)

	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "shop not found, please create a shop"
		JSONResponse(errorStruct, w)
		return
	}

	var request Shop
	err = json.NewDecoder(r.Body).Decode(&request)

	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = err.Error()
		JSONResponse(errorStruct, w)
		return
	}

	if request.Name != nil && *request.Name == "" {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "name cannot be empty"
		JSONResponse(errorStruct, w)
		return
	}

	if request.Name != nil {
		shop.Name = request.Name
		shop.Codename = GenerateCodename(*shop.Name, false)

		var user User
		db.Take(&user, "id = ?", shop.UserID)

		user.ShopCodename = &shop.Codename
		db.Save(&user)
		// Send tokens with correct info
		MakeTokens(w, user)
	}

	if request.Description != nil {
		shop.Description = request.Description
	}

	if request.Address != nil {
		shop.Address = request.Address
	}

	if request.Latitude != nil {
		shop.Latitude = request.Latitude
	}

	if request.Longitude != nil {
		shop.Longitude = request.Longitude
	}

	db.Save(&shop)

	JSONResponse(shop, w)
}

func DeleteShop(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	shopName := params["shop"]

	email := GetClaim("email", r)
	role := GetClaim("role", r)

	var shop Shop
	if err := db.Preload(clause.Associations).Where("codename = ?", shopName).Take(&shop).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if *role != RoleAdmin && shop.User.Email != *email {
		Response(w, http.StatusUnauthorized, "not authorized")
		return
	}

	// Variant and size rows have no soft delete and would outlive the shop
	shoeIDs := db.Model(&Shoe{}).Select("id").Where("shop_id = ?", shop.ID)
	db.Where("variant_id IN (?)", db.Model(&ShoeVariant{}).Select("id").Where("shoe_id IN (?)", shoeIDs)).Delete(&SizeStock{})
	db.Where("shoe_id IN (?)", shoeIDs).Delete(&ShoeVariant{})

	err := db.Select("Documents", "Shoes").Delete(&shop).Error
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
}

// UploadVerificationDocument stores an ownership/permit file for admin review.
func UploadVerificationDocument(w http.ResponseWriter, r *http.Request) {
	email := GetClaim("email", r)

	var shop Shop
	if err := GetShopByEmail(*email, &shop, false); err != nil {
		Response(w, http.StatusBadRequest, "shop not found, please create a shop")
		return
	}

	r.ParseMultipartForm(10 << 20)

	var user User
	db.Take(&user, "email = ?", *email)

	dir := fmt.Sprintf("uploads/%s", user.ID)
	file := FileUpload(r, "file", dir, "verification_")
	if file == "" {
		Response(w, http.StatusBadRequest, "file is required")
		return
	}

	document := VerificationDocument{
		ShopID: shop.ID,
		File:   file,
	}
	db.Create(&document)

	w.WriteHeader(http.StatusCreated)
	JSONResponse(document, w)
}

// ========================== Admin approval ==============================

func GetShopsForReview(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	status := GetSingleParameter(r, "status")
	if status == "" {
		status = ShopPending
	}

	shops := make([]Shop, 0)
	db.Preload("Documents").Preload("User").Where("status = ?", status).Order("created_at").Find(&shops)
	JSONResponse(shops, w)
}

func ApproveShop(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	var shop Shop
	if err := db.Where("codename = ?", params["shop"]).Take(&shop).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	shop.Status = ShopApproved
	shop.RejectionReason = nil
	db.Save(&shop)

	JSONResponse(shop, w)
}

func RejectShop(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	request := struct {
		Reason string `json:"reason"`
	}{}
	json.NewDecoder(r.Body).Decode(&request)

	if request.Reason == "" {
		Response(w, http.StatusBadRequest, "rejection reason is required")
		return
	}

	var shop Shop
	if err := db.Preload("User").Where("codename = ?", params["shop"]).Take(&shop).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	shop.Status = ShopRejected
	shop.RejectionReason = &request.Reason
	db.Save(&shop)

	// Mail failure must not fail the rejection itself
	if err := SendShopRejectionEmail(shop.User.Email, *shop.Name, request.Reason); err != nil {
		logger.Warnw("rejection email not sent", "shop", shop.Codename, "error", err)
	}

	JSONResponse(shop, w)
}

func GetShopOrders(w http.ResponseWriter, r *http.Request) {
	email := GetClaim("email", r)

	var shop Shop
	if err := GetShopByEmail(*email, &shop, false, "id"); err != nil {
		Response(w, http.StatusBadRequest, "shop not found")
		return
	}

	orders := make([]Order, 0)

	tx := db.Preload("StatusUpdates", func(tx2 *gorm.DB) *gorm.DB {
		return tx2.Order("created_at")
	})
	tx.Where("shop_id = ?", shop.ID).Order("created_at desc").Find(&orders)
	JSONResponse(orders, w)
}

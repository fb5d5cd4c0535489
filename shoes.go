package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VariantForm is the wire shape of one color variant inside the multipart
// shoes form; sizes replace the stored rows wholesale.
type VariantForm struct {
	Color string          `json:"color"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
	Sizes []struct {
		Size     string `json:"size"`
		Quantity int    `json:"quantity"`
	} `json:"sizes"`
}

// GetPublicOrOwnerShoes narrows a query to shoes the requester may see:
// public shoes of approved shops, plus everything from the requester's own
// shop when a valid token rides along.
func GetPublicOrOwnerShoes(tx *gorm.DB, r *http.Request) {
	statement := "(public = ? AND shop_id IN (?))"
	approved := db.Model(&Shop{}).Select("id").Where("status = ?", ShopApproved)

	shopID := ""
	claims, err := parseAccessToken(r)
	if err == nil {
		var shop Shop

		email := fmt.Sprintf("%v", claims["email"])
		if err := GetShopByEmail(email, &shop, false, "id"); err == nil {
			statement += " OR shop_id = ?"
			shopID = shop.ID
			tx.Where(statement, true, approved, shopID)
			return
		}
	}

	tx.Where(statement, true, approved)
}

func GetShoes(w http.ResponseWriter, r *http.Request) {
	shoes := make([]Shoe, 0)

	tx := db.Preload("Variants.Sizes").Preload("Variants").Preload("Shop")
	GetPublicOrOwnerShoes(tx, r)

	r.ParseForm()

	if brand := GetSingleParameter(r, "brand"); brand != "" {
		tx.Where("brand = ?", brand)
	}

	if shoeType := GetSingleParameter(r, "type"); shoeType != "" {
		tx.Where("type = ?", shoeType)
	}

	if gender := GetSingleParameter(r, "gender"); gender != "" {
		tx.Where("gender = ?", gender)
	}

	requestedShops := r.Form["shop"]
	if len(requestedShops) > 0 {
		var shopIDs []string
		db.Model(&Shop{}).Select("id").Where("codename IN ?", requestedShops).Find(&shopIDs)

		if len(shopIDs) == 0 {
			JSONResponse(shoes, w)
			return
		}

		tx.Where("shop_id in ?", shopIDs)
	}

	offset, limit := ParsePagination(r)
	tx.Offset(offset).Limit(limit).Order("created_at desc").Find(&shoes)
	JSONResponse(shoes, w)
}

func GetShoe(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	shoeName := params["shoe"]

	var shoe Shoe

	tx := db.Preload("Variants.Sizes").Preload("Variants").Preload("Shop")
	GetPublicOrOwnerShoes(tx, r)

	err := tx.Where("codename = ?", shoeName).Take(&shoe).Error
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	JSONResponse(shoe, w)
}

func AddEditShoe(w http.ResponseWriter, r *http.Request) {
	var errorStruct ErrorJSON

	params := mux.Vars(r)
	shoeName := params["shoe"]
	var shoe Shoe

	isEdit := len(shoeName) > 0

	email := GetClaim("email", r)

	var shop Shop
	if err := GetShopByEmail(*email, &shop, false); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "no shop detected, please create a shop before adding a shoe"
		JSONResponse(errorStruct, w)
		return
	}

	if !isEdit {
		shoe.ShopID = shop.ID
	}

	r.ParseMultipartForm(10 << 20)

	request := struct {
		Name     *string `json:"name"`
		Brand    *string `json:"brand"`
		Type     *string `json:"type"`
		Gender   *string `json:"gender"`
		Public   *bool   `json:"public"`
		Variants *string `json:"variants"`
	}{}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	decoder.ZeroEmpty(true)

	err := decoder.Decode(&request, r.Form)

	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = err.Error()
		JSONResponse(errorStruct, w)
		return
	}

	if isEdit {
		err = db.Preload("Variants.Sizes").Preload("Variants").Where("shop_id = ?", shop.ID).Where("codename = ?", shoeName).Take(&shoe).Error
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			errorStruct.Message = "shoe not found"
			JSONResponse(errorStruct, w)
			return
		}
	}

	// Name
	if !isEdit && (request.Name == nil || len(*request.Name) == 0) {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "shoe name cannot be empty"
		JSONResponse(errorStruct, w)
		return
	}

	if request.Name != nil {
		shoe.Name = request.Name
		shoe.Codename = GenerateCodename(*request.Name, true)
	}

	if request.Brand != nil {
		shoe.Brand = request.Brand
	}

	if request.Type != nil {
		shoe.Type = request.Type
	}

	if request.Gender != nil {
		shoe.Gender = request.Gender
	}

	if request.Public != nil {
		shoe.Public = *request.Public
	}

	// Variants
	var variantForms []VariantForm
	if request.Variants != nil {
		if err := json.Unmarshal([]byte(*request.Variants), &variantForms); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			errorStruct.Message = "unable to parse variants"
			JSONResponse(errorStruct, w)
			return
		}
	}

	if !isEdit && len(variantForms) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "at least one variant is required"
		JSONResponse(errorStruct, w)
		return
	}

	for _, variant := range variantForms {
		if variant.Price.IsNegative() {
			w.WriteHeader(http.StatusBadRequest)
			errorStruct.Message = "price cannot be less than zero"
			JSONResponse(errorStruct, w)
			return
		}

		for _, size := range variant.Sizes {
			if size.Quantity < 0 {
				w.WriteHeader(http.StatusBadRequest)
				errorStruct.Message = "quantity cannot be less than zero"
				JSONResponse(errorStruct, w)
				return
			}
		}
	}

	if !isEdit {
		if err = db.Create(&shoe).Error; err != nil {
			w.WriteHeader(http.StatusBadRequest)
			errorStruct.Message = "could not save shoe"
			JSONResponse(errorStruct, w)
			return
		}
	} else {
		db.Save(&shoe)
	}

	if len(variantForms) > 0 {
		ReplaceVariants(&shoe, variantForms, r, shop.UserID)
	}

	db.Preload("Variants.Sizes").Preload("Variants").Take(&shoe, "id = ?", shoe.ID)

	if !isEdit {
		w.WriteHeader(http.StatusCreated)
	}
	JSONResponse(shoe, w)
}

// ReplaceVariants drops and recreates the variant and size rows from the
// submitted form. Per-variant images arrive as image_0, image_1, ... files.
func ReplaceVariants(shoe *Shoe, forms []VariantForm, r *http.Request, userID string) {
	var old []ShoeVariant
	db.Where("shoe_id = ?", shoe.ID).Find(&old)
	for _, variant := range old {
		db.Where("variant_id = ?", variant.ID).Delete(&SizeStock{})
	}
	db.Where("shoe_id = ?", shoe.ID).Delete(&ShoeVariant{})

	for i, form := range forms {
		variant := ShoeVariant{
			ShoeID: shoe.ID,
			Color:  form.Color,
			Price:  form.Price,
			Image:  form.Image,
		}

		dir := fmt.Sprintf("uploads/%s", userID)
		if image := FileUpload(r, fmt.Sprintf("image_%d", i), dir, "shoe_"); image != "" {
			variant.Image = image
		}

		db.Create(&variant)

		for _, size := range form.Sizes {
			db.Create(&SizeStock{
				VariantID: variant.ID,
				Size:      size.Size,
				Quantity:  size.Quantity,
			})
		}
	}
}

func DeleteShoe(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	shoeName := params["shoe"]

	email := GetClaim("email", r)

	var shop Shop
	if err := GetShopByEmail(*email, &shop, false, "id"); err != nil {
		Response(w, http.StatusBadRequest, "shop not found")
		return
	}

	var shoe Shoe
	err := db.Where("shop_id = ?", shop.ID).Take(&shoe, "codename = ?", shoeName).Error
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	// Size rows have no soft delete and would outlive the shoe
	db.Where("variant_id IN (?)", db.Model(&ShoeVariant{}).Select("id").Where("shoe_id = ?", shoe.ID)).Delete(&SizeStock{})
	db.Select("Variants").Delete(&shoe)
}

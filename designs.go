package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// ========================== Design models ==============================

func GetDesignModels(w http.ResponseWriter, r *http.Request) {
	models := make([]DesignModel, 0)
	db.Preload("Options").Order("created_at desc").Find(&models)
	JSONResponse(models, w)
}

func GetDesignModel(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	var model DesignModel

	err := db.Preload("Options").Take(&model, "codename = ?", params["design"]).Error
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	JSONResponse(&model, w)
}

func CreateDesignModel(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(10 << 20)

	var model DesignModel

	name := r.FormValue("name")
	if len(name) == 0 {
		Response(w, http.StatusBadRequest, "name is required")
		return
	}

	basePrice, err := decimal.NewFromString(r.FormValue("basePrice"))
	if err != nil || basePrice.IsNegative() {
		Response(w, http.StatusBadRequest, "basePrice must be a non-negative number")
		return
	}

	baseLeadDays, _ := strconv.Atoi(r.FormValue("baseLeadDays"))
	if baseLeadDays < 0 {
		Response(w, http.StatusBadRequest, "baseLeadDays cannot be negative")
		return
	}

	model.Name = &name
	model.Codename = GenerateCodename(name, false)
	model.BasePrice = basePrice
	model.BaseLeadDays = baseLeadDays
	model.Image = FileUpload(r, "file", "uploads/designs", "design_")

	if options := r.FormValue("options"); options != "" {
		if err := json.Unmarshal([]byte(options), &model.Options); err != nil {
			Response(w, http.StatusBadRequest, "unable to parse options")
			return
		}
	}

	for _, option := range model.Options {
		if !validComponent(option.Component) {
			Response(w, http.StatusBadRequest, "unknown component "+option.Component)
			return
		}
	}

	db.Create(&model)

	w.WriteHeader(http.StatusCreated)
	JSONResponse(model, w)
}

func UpdateDesignModel(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	r.ParseMultipartForm(10 << 20)

	var model DesignModel

	err := db.Preload("Options").Take(&model, "codename = ?", params["design"]).Error
	if err != nil {
		Response(w, http.StatusNotFound, "design model not found")
		return
	}

	if name := r.FormValue("name"); len(name) > 0 && *model.Name != name {
		*model.Name = name
		model.Codename = GenerateCodename(name, false)
	}

	if basePrice := r.FormValue("basePrice"); basePrice != "" {
		price, err := decimal.NewFromString(basePrice)
		if err != nil || price.IsNegative() {
			Response(w, http.StatusBadRequest, "basePrice must be a non-negative number")
			return
		}
		model.BasePrice = price
	}

	if baseLeadDays := r.FormValue("baseLeadDays"); baseLeadDays != "" {
		days, err := strconv.Atoi(baseLeadDays)
		if err != nil || days < 0 {
			Response(w, http.StatusBadRequest, "baseLeadDays must be a non-negative number")
			return
		}
		model.BaseLeadDays = days
	}

	if image := FileUpload(r, "file", "uploads/designs", "design_"); len(image) > 0 {
		model.Image = image
	}

	if options := r.FormValue("options"); options != "" {
		var newOptions []DesignOption
		if err := json.Unmarshal([]byte(options), &newOptions); err != nil {
			Response(w, http.StatusBadRequest, "unable to parse options")
			return
		}

		for _, option := range newOptions {
			if !validComponent(option.Component) {
				Response(w, http.StatusBadRequest, "unknown component "+option.Component)
				return
			}
		}

		db.Where("model_id = ?", model.ID).Delete(&DesignOption{})
		for i := range newOptions {
			newOptions[i].ModelID = model.ID
			db.Create(&newOptions[i])
		}
		model.Options = newOptions
	}

	db.Save(&model)
	JSONResponse(model, w)
}

func DeleteDesignModel(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	db.Unscoped().Delete(&DesignModel{}, "codename = ?", params["design"])
}

func validComponent(component string) bool {
	switch component {
	case ComponentLaces, ComponentInsole, ComponentSole, ComponentColor:
		return true
	}

	return false
}

// ========================== Design orders ==============================

// PlaceDesignOrder prices a custom build from its selections: total is the
// model base price plus every chosen option, lead time is the base days plus
// the slowest option.
func PlaceDesignOrder(w http.ResponseWriter, r *http.Request) {
	var errorStruct ErrorJSON

	email := GetClaim("email", r)

	var user User
	db.Take(&user, "email = ?", *email)

	request := struct {
		Model   *string  `json:"model"`
		Options []string `json:"options"`
	}{}

	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil || request.Model == nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "model is required"
		JSONResponse(errorStruct, w)
		return
	}

	var model DesignModel
	if err := db.Preload("Options").Take(&model, "codename = ?", *request.Model).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		errorStruct.Message = "design model not found"
		JSONResponse(errorStruct, w)
		return
	}

	optionsByID := make(map[string]DesignOption, len(model.Options))
	for _, option := range model.Options {
		optionsByID[option.ID] = option
	}

	total := model.BasePrice
	maxLead := 0
	chosenComponents := make(map[string]bool)
	selections := make([]DesignSelection, 0, len(request.Options))

	for _, optionID := range request.Options {
		option, ok := optionsByID[optionID]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			errorStruct.Message = "option does not belong to this model"
			JSONResponse(errorStruct, w)
			return
		}

		if chosenComponents[option.Component] {
			w.WriteHeader(http.StatusBadRequest)
			errorStruct.Message = "only one option per component"
			JSONResponse(errorStruct, w)
			return
		}
		chosenComponents[option.Component] = true

		total = total.Add(option.Price)
		if option.LeadDays > maxLead {
			maxLead = option.LeadDays
		}

		selections = append(selections, DesignSelection{
			Component:  option.Component,
			OptionName: option.Name,
			Price:      option.Price,
			LeadDays:   option.LeadDays,
		})
	}

	designOrder := DesignOrder{
		UserID:     user.ID,
		ModelID:    model.ID,
		Selections: selections,
		TotalPrice: total.Round(2),
		LeadDays:   model.BaseLeadDays + maxLead,
	}

	if err := db.Create(&designOrder).Error; err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "could not save design order"
		JSONResponse(errorStruct, w)
		return
	}

	w.WriteHeader(http.StatusCreated)
	JSONResponse(designOrder, w)
}

func GetDesignOrders(w http.ResponseWriter, r *http.Request) {
	email := GetClaim("email", r)
	role := GetClaim("role", r)

	var user User
	db.Take(&user, "email = ?", *email)

	r.ParseForm()

	tx := db.Preload("Selections").Preload("Model")

	if *role != RoleAdmin {
		tx = tx.Where("user_id = ?", user.ID)
	}

	if designID := GetSingleParameter(r, "designId"); designID != "" {
		var order DesignOrder
		if err := tx.Take(&order, "id = ?", designID).Error; err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		JSONResponse(order, w)
		return
	}

	orders := make([]DesignOrder, 0)
	tx.Order("created_at desc").Find(&orders)
	JSONResponse(orders, w)
}

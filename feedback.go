package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// Words the comment filter masks. Matching is whole-word and case
// insensitive; the first letter survives.
var profanityList = []string{
	"damn", "hell", "crap", "bastard", "idiot", "stupid", "scam", "trash",
}

// CensorProfanity masks listed words while leaving the rest of the comment
// untouched.
func CensorProfanity(comment string) string {
	words := strings.Fields(comment)

	for i, word := range words {
		stripped := strings.ToLower(strings.Trim(word, ".,!?;:\"'"))

		for _, bad := range profanityList {
			if stripped != bad {
				continue
			}

			start := strings.Index(strings.ToLower(word), stripped)
			masked := word[:start+1] + strings.Repeat("*", len(stripped)-1)
			words[i] = masked + word[start+len(stripped):]
			break
		}
	}

	return strings.Join(words, " ")
}

type feedbackForm struct {
	OrderID string `validate:"required"`
	Rating  int    `validate:"required,min=1,max=5"`
	Comment string `validate:"max=500"`
}

func CreateFeedback(w http.ResponseWriter, r *http.Request) {
	var errorStruct ErrorJSON

	email := GetClaim("email", r)

	var user User
	db.Take(&user, "email = ?", *email)

	r.ParseMultipartForm(32 << 20)

	rating, _ := strconv.Atoi(r.FormValue("rating"))
	form := feedbackForm{
		OrderID: r.FormValue("orderId"),
		Rating:  rating,
		Comment: r.FormValue("comment"),
	}

	if err := validate.Struct(form); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = err.Error()
		JSONResponse(errorStruct, w)
		return
	}

	var order Order
	if err := db.Where("user_id = ?", user.ID).Take(&order, "codename = ?", form.OrderID).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		errorStruct.Message = "order not found"
		JSONResponse(errorStruct, w)
		return
	}

	if order.Status != StatusDelivered && order.Status != StatusCompleted {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "order has not been delivered yet"
		JSONResponse(errorStruct, w)
		return
	}

	if db.Find(&Feedback{}, "user_id = ? AND order_id = ?", user.ID, order.ID).RowsAffected > 0 {
		w.WriteHeader(http.StatusConflict)
		errorStruct.Message = "feedback already left for this order"
		JSONResponse(errorStruct, w)
		return
	}

	feedback := Feedback{
		UserID:  user.ID,
		OrderID: order.ID,
		ShoeID:  order.ShoeID,
		ShopID:  order.ShopID,
		Rating:  form.Rating,
		Comment: CensorProfanity(form.Comment),
	}

	if err := db.Create(&feedback).Error; err != nil {
		w.WriteHeader(http.StatusBadRequest)
		errorStruct.Message = "could not save feedback"
		JSONResponse(errorStruct, w)
		return
	}

	// Attachments are best effort; a failed upload never rolls back the
	// feedback itself
	photoDir := fmt.Sprintf("feedback_media/%s/%s/photos", user.ID, order.ID)
	for _, photo := range FileUploadAll(r, "photos", photoDir, "photo_") {
		db.Create(&FeedbackMedia{FeedbackID: feedback.ID, Type: "photo", File: photo})
	}

	videoDir := fmt.Sprintf("feedback_media/%s/%s/video", user.ID, order.ID)
	if video := FileUpload(r, "video", videoDir, "video_"); video != "" {
		db.Create(&FeedbackMedia{FeedbackID: feedback.ID, Type: "video", File: video})
	}

	db.Preload("Media").Take(&feedback, "id = ?", feedback.ID)

	w.WriteHeader(http.StatusCreated)
	JSONResponse(feedback, w)
}

func GetShoeFeedbacks(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	var shoe Shoe
	if err := db.Take(&shoe, "codename = ?", params["shoe"]).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	feedbacks := make([]Feedback, 0)
	db.Preload("Media").Preload("User").Where("shoe_id = ?", shoe.ID).Order("created_at desc").Find(&feedbacks)
	JSONResponse(feedbacks, w)
}

func GetShopFeedbacks(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	var shop Shop
	if err := db.Take(&shop, "codename = ?", params["shop"]).Error; err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	feedbacks := make([]Feedback, 0)
	db.Preload("Media").Preload("User").Where("shop_id = ?", shop.ID).Order("created_at desc").Find(&feedbacks)
	JSONResponse(feedbacks, w)
}

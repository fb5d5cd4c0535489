package main

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

//CheckEmailAvailability checks if an email is not already registered
func CheckEmailAvailability(email string) error {
	if db.Find(&User{}, "email = ?", email).RowsAffected > 0 {
		return errors.New("user with same email exists")
	}

	return nil
}

func PerformUserDataChecks(email string, password string, repeatedPassword string) (httpStatus int, err error) {
	if !emailRegex.MatchString(email) {
		return http.StatusNotAcceptable, errors.New("bad email format")
	}

	err = CheckEmailAvailability(email)
	if err != nil {
		return http.StatusNotAcceptable, err
	}

	err = CheckIfPasswordValid(password, repeatedPassword)
	if err != nil {
		return http.StatusBadRequest, err
	}

	return http.StatusOK, nil
}

//checks that, while registering a new account, the provided password
//matches the repeated password
func CheckIfPasswordValid(passwordOne string, passwordTwo string) error {
	if passwordOne != passwordTwo {
		return errors.New("passwords do not match")
	}

	return nil
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	requestData := struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		RepeatPassword string `json:"repeatPassword"`
		Role           string `json:"role"`
	}{}

	err := json.NewDecoder(r.Body).Decode(&requestData)
	if err != nil {
		Response(w, http.StatusBadRequest, "unable to parse body to json")
		return
	}

	status, err := PerformUserDataChecks(requestData.Email, requestData.Password, requestData.RepeatPassword)
	if err != nil {
		Response(w, status, err.Error())
		return
	}

	// Admin accounts are seeded, never self-registered
	role := requestData.Role
	switch role {
	case "":
		role = RoleCustomer
	case RoleCustomer, RoleShopOwner, RoleShoemaker:
	default:
		Response(w, http.StatusBadRequest, "unknown role")
		return
	}

	salt := GenerateSalt()
	hashedPassword := GenerateSecurePassword(requestData.Password, salt)

	newUser := User{
		Name:     requestData.Name,
		Email:    requestData.Email,
		Password: hashedPassword,
		Salt:     salt,
		Role:     role,
	}

	if err = db.Create(&newUser).Error; err != nil {
		Response(w, http.StatusBadRequest, "could not create account")
		return
	}

	MakeTokens(w, newUser)

	w.WriteHeader(http.StatusCreated)
	JSONResponse(newUser, w)
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	requestData := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{"", ""}

	json.NewDecoder(r.Body).Decode(&requestData)

	var userDatabaseData User

	// Finds user by email in database, if no user, then returns "bad request"
	err := db.Take(&userDatabaseData, "email = ?", requestData.Email).Error
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		JSONResponse(struct{}{}, w)
		return
	}

	hashedPassword := GenerateSecurePassword(requestData.Password, userDatabaseData.Salt)
	//checks if salted hashed password from database matches the sent in salted hashed password
	if hashedPassword != userDatabaseData.Password {
		w.WriteHeader(http.StatusUnauthorized)
		JSONResponse(struct{}{}, w)
		return
	}

	MakeTokens(w, userDatabaseData)

	w.WriteHeader(http.StatusAccepted)
	JSONResponse(userDatabaseData, w)
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	refreshTokenCookie, err := r.Cookie("Refresh-Token")
	if err == nil {
		db.Delete(&RefreshToken{}, "token = ?", refreshTokenCookie.Value)
	}

	http.SetCookie(w, &http.Cookie{Name: "Access-Token", Value: "", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: "Refresh-Token", Value: "", MaxAge: -1, HttpOnly: true})

	w.WriteHeader(http.StatusOK)
	JSONResponse(struct{}{}, w)
}

func RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	refreshTokenCookie, err := r.Cookie("Refresh-Token")

	if err == nil {
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(refreshTokenCookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("there was an error")
			}
			return signKey, nil
		})

		if err != nil || !token.Valid {
			w.WriteHeader(http.StatusUnauthorized)
			JSONResponse(struct{}{}, w)
			return
		}

		email := fmt.Sprintf("%v", claims["email"])

		var oldRefreshToken RefreshToken
		db.Take(&oldRefreshToken, "token = ?", refreshTokenCookie.Value)

		// A previously revoked token being replayed burns the whole family
		if oldRefreshToken.DeletedAt.Valid {
			db.Delete(&RefreshToken{}, "email = ?", email)
			w.WriteHeader(http.StatusForbidden)
			return
		}

		db.Delete(&oldRefreshToken)

		var user User
		if err := db.Take(&user, "email = ?", email).Error; err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		MakeTokens(w, user)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.WriteHeader(http.StatusUnauthorized)
	JSONResponse(struct{}{}, w)
}

func MakeTokens(w http.ResponseWriter, user User) (accessToken string, refreshToken string) {
	accessClaims := map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	accessToken, _ = GenerateToken(accessClaims)
	http.SetCookie(w, &http.Cookie{Name: "Access-Token", Value: accessToken, MaxAge: 60 * 60})

	refreshClaims := map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(time.Hour * 24 * 7).Unix(),
	}
	refreshToken, _ = GenerateToken(refreshClaims)

	refreshDatabaseEntry := RefreshToken{
		Token: refreshToken,
		Email: user.Email,
	}
	db.Create(&refreshDatabaseEntry)

	http.SetCookie(w, &http.Cookie{Name: "Refresh-Token", Value: refreshToken, HttpOnly: true})

	return accessToken, refreshToken
}

//GenerateSalt creates a pseudorandom salt used in password salting
func GenerateSalt() string {
	salt, _ := uuid.NewRandom()
	return salt.String()
}

//GenerateSecurePassword generates a password using PBKDF2 standard
func GenerateSecurePassword(password string, salt string) string {
	hashedPassword := pbkdf2.Key([]byte(password), []byte(salt), 4096, 32, sha1.New)

	return hex.EncodeToString(hashedPassword)
}

func GenerateToken(claimsMap map[string]interface{}) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	for k, v := range claimsMap {
		claims[k] = v
	}

	tokenString, err := token.SignedString(signKey)

	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func parseAccessToken(r *http.Request) (jwt.MapClaims, error) {
	accessTokenCookie, err := r.Cookie("Access-Token")
	if err != nil {
		return nil, errors.New("not authorized")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(accessTokenCookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there was an error")
		}
		return signKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("not authorized")
	}

	return claims, nil
}

func isAuthorized(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := parseAccessToken(r)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			JSONResponse(ErrorJSON{Message: err.Error()}, w)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isAdmin(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := parseAccessToken(r)
		if err != nil || fmt.Sprintf("%v", claims["role"]) != RoleAdmin {
			w.WriteHeader(http.StatusUnauthorized)
			JSONResponse(ErrorJSON{Message: "not authorized"}, w)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// hasRole gates a handler to one role; admins pass everywhere.
func hasRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(ctxKey{}).(jwt.MapClaims)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			JSONResponse(ErrorJSON{Message: "not authorized"}, w)
			return
		}

		got := fmt.Sprintf("%v", claims["role"])
		if got != role && got != RoleAdmin {
			w.WriteHeader(http.StatusUnauthorized)
			JSONResponse(ErrorJSON{Message: "not authorized"}, w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetShopByEmail loads the shop owned by the user with the given email.
func GetShopByEmail(email string, shop *Shop, unscoped bool, selects ...string) error {
	var user User
	if err := db.Take(&user, "email = ?", email).Error; err != nil {
		return err
	}

	tx := db
	if unscoped {
		tx = tx.Unscoped()
	}

	if len(selects) > 0 {
		tx = tx.Select(selects)
	}

	return tx.Where("user_id = ?", user.ID).Take(shop).Error
}

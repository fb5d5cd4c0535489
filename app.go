package main

import (
	"log"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gorilla/mux"
)

var db *gorm.DB
var logger *zap.SugaredLogger
var distance DistanceService
var signKey []byte

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+\/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

type app struct {
	Router *mux.Router
	DB     *gorm.DB
	Log    *zap.SugaredLogger
}

func NewApp() *app {
	var zl *zap.Logger
	var err error

	if os.Getenv("APP_ENV") == "development" {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}

	if err != nil {
		log.Fatal(err)
	}

	a := &app{Log: zl.Sugar()}
	logger = a.Log

	return a
}

func (a *app) InitRouter() *app {
	a.Router = Routes()
	return a
}

// InitDB loads the given env file, connects to Postgres and migrates the
// schema. The same env file carries the JWT key, distance API settings and
// SMTP credentials.
func (a *app) InitDB(envFile string) *app {
	godotenv.Load(envFile)

	var err error
	a.DB, err = gorm.Open(postgres.Open(os.Getenv("DATABASE_DSN")), &gorm.Config{})
	if err != nil {
		a.Log.Fatalw("could not connect to database", "error", err)
	}

	a.DB.AutoMigrate(
		&User{}, &Shop{}, &VerificationDocument{},
		&Shoe{}, &ShoeVariant{}, &SizeStock{},
		&CartItem{}, &Order{}, &StatusUpdate{},
		&DesignModel{}, &DesignOption{}, &DesignOrder{}, &DesignSelection{},
		&Feedback{}, &FeedbackMedia{},
		&ShippingConfig{}, &RefreshToken{},
	)

	db = a.DB
	signKey = []byte(os.Getenv("JWT_KEY"))
	distance = NewDistanceClient(os.Getenv("DISTANCE_API_URL"), os.Getenv("DISTANCE_API_KEY"))

	return a
}

func (a *app) CloseDbTest() {
	sqlDB, _ := a.DB.DB()
	sqlDB.Close()
}

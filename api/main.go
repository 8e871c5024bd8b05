package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	accounts "github.com/lingualearn/accounts"
)

type config struct {
	Addr         string `env:"ADDR" envDefault:":8090"`
	MongoURI     string `env:"MONGO_URI"`
	Database     string `env:"MONGO_DATABASE" envDefault:"lingualearn"`
	CanvasAPIURL string `env:"CANVAS_API_URL" envDefault:"https://canvas.instructure.com/api/v1"`
	CanvasAPIKey string `env:"CANVAS_API_KEY"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(err)
	}

	directory := accounts.NewAccountDirectory()
	integrations := accounts.NewIntegrationStore()

	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal(err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			log.Fatal(err)
		}

		db := client.Database(cfg.Database)
		directory = accounts.NewMongoDirectory(db.Collection("accounts"))
		integrations = accounts.NewMongoIntegrationStore(db.Collection("integrations"))
	}

	canvas := accounts.NewCanvasGateway(cfg.CanvasAPIURL, cfg.CanvasAPIKey)

	var scores accounts.ProficiencyGateway = canvas
	if cfg.CanvasAPIKey == "" {
		log.Println("no LMS API key configured; serving fixture proficiency data")
		scores = accounts.StaticProficiencyGateway{}
	}

	svc := accounts.NewService(directory, accounts.NewLogNotifier(), accounts.NewGoogleIdentity(), scores, nil)
	lmsSvc := accounts.NewLMSService(canvas, integrations)

	router := httprouter.New()
	router.Handler(http.MethodPost, "/v1/accounts", accounts.RegisterAccountHandler(svc))
	router.Handler(http.MethodPost, "/v1/accounts/activation", accounts.ActivateAccountHandler(svc))
	router.Handler(http.MethodPut, "/v1/accounts/role", accounts.AssignRoleHandler(svc))
	router.Handler(http.MethodPost, "/v1/sessions", accounts.LoginHandler(svc))
	router.Handler(http.MethodPost, "/v1/sessions/oauth", accounts.OAuthLoginHandler(svc))
	router.Handler(http.MethodPut, "/v1/lms/integration", accounts.ConfigureLMSHandler(svc, lmsSvc))

	log.Printf("Server started. Listening on %s\n", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, router))
}

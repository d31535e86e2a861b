// Command seed loads catalog items and accounts into MongoDB for local development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	mongoRepo "github.com/CesarOsorioP/StateView-sub000/internal/adapter/repository/mongodb"
	"github.com/CesarOsorioP/StateView-sub000/internal/config"
	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/middleware"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type seedFile struct {
	Items []struct {
		ID        string  `json:"id"`
		Variant   string  `json:"variant"`
		Title     string  `json:"title"`
		Year      string  `json:"year"`
		PosterURL string  `json:"poster_url"`
		Total     float64 `json:"rating_total"`
		Count     int64   `json:"rating_count"`
	} `json:"items"`
	People []struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	} `json:"people"`
}

func main() {
	var (
		app = kingpin.New("seed", "Loads catalog items and accounts into the StateView MongoDB database.")

		path = app.Flag(
			"file", "seed JSON file with items and people").Short('f').Default("seed.json").ExistingFile()

		printTokens = app.Flag(
			"tokens", "print a signed JWT for every seeded person").Bool()

		tokenTTL = app.Flag(
			"token-ttl", "lifetime of printed tokens").Default("24h").Duration()
	)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	_ = godotenv.Load()
	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		appLogger.Fatal("Failed to read seed file", zap.String("path", *path), zap.Error(err))
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		appLogger.Fatal("Failed to parse seed file", zap.String("path", *path), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	store, err := mongoRepo.NewStore(client.Database(cfg.MongoDatabase), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize MongoDB repositories", zap.Error(err))
	}

	for _, it := range seed.Items {
		variant, err := domain.ParseItemVariant(it.Variant)
		if err != nil {
			appLogger.Warn("Skipping item", zap.String("item_id", it.ID), zap.Error(err))
			continue
		}
		item := &domain.CatalogItem{
			ID:        it.ID,
			Variant:   variant,
			Title:     it.Title,
			Year:      it.Year,
			PosterURL: it.PosterURL,
			Rating:    domain.RatingAggregate{}.Apply(it.Total, it.Count),
			CreatedAt: time.Now().UTC(),
		}
		if err := store.Catalog.Upsert(ctx, item); err != nil {
			appLogger.Fatal("Failed to upsert item", zap.String("item_id", it.ID), zap.Error(err))
		}
		appLogger.Info("Seeded item", zap.String("item_id", it.ID), zap.String("variant", string(variant)))
	}

	for _, p := range seed.People {
		person, err := domain.NewPerson(p.Name, p.Email, p.Password, domain.Role(p.Role))
		if err != nil {
			appLogger.Warn("Skipping person", zap.String("email", p.Email), zap.Error(err))
			continue
		}
		if err := store.People.Create(ctx, person); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				appLogger.Info("Person already exists", zap.String("email", person.Email))
				continue
			}
			appLogger.Fatal("Failed to create person", zap.String("email", person.Email), zap.Error(err))
		}
		appLogger.Info("Seeded person", zap.String("id", person.ID), zap.String("role", string(person.Role)))

		if *printTokens {
			token, err := middleware.GenerateToken(cfg.JWTSecret, person.ID, person.Role, person.Name, *tokenTTL)
			if err != nil {
				appLogger.Fatal("Failed to sign token", zap.Error(err))
			}
			fmt.Printf("%s\t%s\t%s\n", person.Email, person.Role, token)
		}
	}
}

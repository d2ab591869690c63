package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"artisanmarket/internal/adapter/api"
	"artisanmarket/internal/adapter/api/handler"
	apimiddleware "artisanmarket/internal/adapter/api/middleware"
	"artisanmarket/internal/adapter/api/router"
	"artisanmarket/internal/adapter/repository"
	"artisanmarket/internal/infrastructure/firebase"
	"artisanmarket/internal/infrastructure/websocket"
	"artisanmarket/internal/store"
	"artisanmarket/internal/usecase"
	"artisanmarket/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	productRepo := repository.NewFirestoreProductRepository(firestoreClient)
	negotiationRepo := repository.NewFirestoreNegotiationRepository(firestoreClient)
	reviewRepo := repository.NewFirestoreReviewRepository(firestoreClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	bus := store.NewBus()
	registry := store.NewRegistry()
	notifier := store.NotifierFunc(func(userID string, n store.Notification) {
		wsManager.SendEvent(userID, "notification", n)
	})

	userUseCase := usecase.NewUserUseCase(userRepo)
	productUseCase := usecase.NewProductUseCase(productRepo, userRepo)
	negotiationUseCase := usecase.NewNegotiationUseCase(negotiationRepo, productRepo, userRepo, wsManager, bus)
	sessionUseCase := usecase.NewSessionUseCase(negotiationUseCase, userRepo, registry, bus, notifier)
	reviewUseCase := usecase.NewReviewUseCase(reviewRepo, negotiationRepo, productRepo, userRepo)

	handler.Setup(userUseCase, productUseCase, negotiationUseCase, sessionUseCase, reviewUseCase)

	negotiationUseCase.StartExpirySweep(ctx, cfg.ExpirySweepPeriod)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	devMinter := firebase.NewDevTokenMinter(cfg.DevTokenSecret, cfg.DevTokenExpiry)
	authMiddleware := apimiddleware.NewAuthMiddleware(firebase.NewFirebaseAuthClient(authClient), devMinter, cfg.Environment)

	wsHandler := handler.NewWebSocketHandler(wsManager, sessionUseCase)
	devTokenHandler := handler.NewDevTokenHandler(devMinter)

	router.Setup(e, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler, authMiddleware)
	router.SetupDevRouter(e, devTokenHandler, cfg.Environment)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}

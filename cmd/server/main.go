package main

import (
	"context"
	"log"
	"os"
	"time"

	"chatLink/config"
	"chatLink/pkg/api"
	"chatLink/pkg/app"
	"chatLink/pkg/repository"
	"chatLink/pkg/token"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalln("Error loading .env file")
	}
}

func main() {
	ctx := context.Background()

	db := config.SetupDatabase(ctx)
	defer db.Close()

	firebaseApp := config.SetupFirebase()

	firestore, err := firebaseApp.Firestore(ctx)
	if err != nil {
		log.Fatalln(err)
	}

	storageClient, err := firebaseApp.Storage(ctx)
	if err != nil {
		log.Fatalln(err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		log.Fatalln(err)
	}

	storage := repository.NewStorage(firestore)
	users := repository.NewUserStorage(db)
	blobs := repository.NewBlobStorage(bucket, os.Getenv("STORAGE_BUCKET"))

	guestTokens := token.NewGuestTokens(os.Getenv("GUEST_TOKEN_SECRET"), 24*time.Hour)

	identityService := api.NewIdentityService(users, guestTokens)
	directoryService := api.NewDirectoryService(storage, users)
	membershipService := api.NewMembershipService(storage)
	inviteService := api.NewInviteService(storage, storage, os.Getenv("PUBLIC_BASE_URL"))
	threadService := api.NewThreadService(storage, users, blobs)

	router := chi.NewRouter()

	server := app.NewServer(router, guestTokens, identityService, directoryService, membershipService, inviteService, threadService)

	if err = server.Run(); err != nil {
		log.Println(err)
	}
}

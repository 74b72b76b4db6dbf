package config

import (
	"context"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
)

func SetupFirebase() *firebase.App {
	app, err := firebase.NewApp(context.Background(), &firebase.Config{
		StorageBucket: os.Getenv("STORAGE_BUCKET"),
	})
	if err != nil {
		log.Fatalln(err)
	}
	return app
}

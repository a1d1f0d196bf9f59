package utils

import (
	"context"
	"fmt"

	"github.com/Hiteshmehtaa/yann-app-sub003/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase App and Messaging client from the
// configured service account file.
func FirebaseInit(ctx context.Context) (*messaging.Client, error) {
	if config.AppConfig.FirebaseCredentialsPath == "" {
		return nil, fmt.Errorf("firebase: FIREBASE_CREDENTIALS_PATH is not set")
	}
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsPath)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}

	FCMClient = client
	return client, nil
}

package gcp

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
)

func CreateFirestore(ctx context.Context, projectID string) *firestore.Client {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	// Caller closes the client on shutdown.
	return client
}

// Package firestore contains the Firestore-backed implementation of the
// remote profile store.
package firestore

import (
	"context"
	"log/slog"

	"storefront/config"
	"storefront/internal/errors"

	"cloud.google.com/go/firestore"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates the Firestore client. When no credentials file is configured,
// Application Default Credentials are used.
func New(params Params) (*firestore.Client, error) {
	if params.Config.Firebase == nil || params.Config.Firebase.ProjectID == "" {
		return nil, errors.New("firebase projectId is required")
	}

	ctx := context.Background()
	var opts []option.ClientOption
	if params.Config.Firebase.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(params.Config.Firebase.CredentialsPath))
	}

	client, err := firestore.NewClient(ctx, params.Config.Firebase.ProjectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create firestore client")
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	params.Logger.Info("Firestore connected",
		slog.String("projectID", params.Config.Firebase.ProjectID))

	return client, nil
}

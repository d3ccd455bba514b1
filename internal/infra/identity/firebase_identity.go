// Package identity contains the Firebase Auth implementation of the
// identity provider.
package identity

import (
	"context"
	"log/slog"

	"storefront/config"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

// Params defines the required parameters
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// firebaseIdentity implements service.IdentityProvider on Firebase Auth.
type firebaseIdentity struct {
	client *auth.Client
	logger *slog.Logger
}

// New creates the Firebase Auth client.
func New(params Params) (service.IdentityProvider, error) {
	if params.Config.Firebase == nil || params.Config.Firebase.ProjectID == "" {
		return nil, errors.New("firebase projectId is required")
	}

	ctx := context.Background()
	var opts []option.ClientOption
	if params.Config.Firebase.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(params.Config.Firebase.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: params.Config.Firebase.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize firebase app")
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create firebase auth client")
	}

	return &firebaseIdentity{client: client, logger: params.Logger}, nil
}

// CreateAccount registers a new identity and returns its identifier.
func (p *firebaseIdentity) CreateAccount(ctx context.Context, email, password string) (string, error) {
	user, err := p.client.CreateUser(ctx, (&auth.UserToCreate{}).
		Email(email).
		Password(password))
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", service.ErrAccountExists
		}

		return "", errors.Wrap(err, "failed to create firebase user")
	}

	return user.UID, nil
}

// SetDisplayName sets the display name on an identity.
func (p *firebaseIdentity) SetDisplayName(ctx context.Context, id, displayName string) error {
	_, err := p.client.UpdateUser(ctx, id, (&auth.UserToUpdate{}).DisplayName(displayName))
	if err != nil {
		return errors.Wrap(err, "failed to update firebase user display name")
	}

	return nil
}

// VerifyToken validates a client-supplied ID token and resolves its identity.
func (p *firebaseIdentity) VerifyToken(ctx context.Context, token string) (*service.Identity, error) {
	decoded, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify firebase id token")
	}

	ident := &service.Identity{ID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		ident.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		ident.DisplayName = name
	}

	return ident, nil
}

// Lookup resolves an identity by its account identifier.
func (p *firebaseIdentity) Lookup(ctx context.Context, id string) (*service.Identity, error) {
	user, err := p.client.GetUser(ctx, id)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, service.ErrIdentityNotFound
		}

		return nil, errors.Wrap(err, "failed to look up firebase user")
	}

	return &service.Identity{
		ID:          user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}

// DeleteAccount removes an identity.
func (p *firebaseIdentity) DeleteAccount(ctx context.Context, id string) error {
	if err := p.client.DeleteUser(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete firebase user")
	}

	return nil
}

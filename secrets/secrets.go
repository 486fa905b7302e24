// Package secrets resolves the project identity and reads named secrets at startup
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/compute/metadata"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// ErrSecretNotFound is returned when a named secret has no value
var ErrSecretNotFound = errors.New("secret not found")

// Provider reads a named secret
type Provider interface {
	AccessSecret(ctx context.Context, name string) (string, error)
}

// ResolveProjectID returns the explicit project id when set, otherwise the
// project of the GCE metadata server
func ResolveProjectID(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if !metadata.OnGCE() {
		return "", errors.New("project id not configured and not running on GCE")
	}

	projectID, err := metadata.ProjectIDWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read project id from metadata server: %w", err)
	}
	return projectID, nil
}

// EnvProvider reads secrets from environment variables.
// A secret named "CourtListenerAccessKey" is looked up as
// COURTLISTENERACCESSKEY, after any configured prefix.
type EnvProvider struct {
	Prefix string
	lookup func(string) (string, bool)
}

// NewEnvProvider creates a provider backed by the process environment
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix, lookup: os.LookupEnv}
}

// AccessSecret returns the environment value for the secret name
func (p *EnvProvider) AccessSecret(ctx context.Context, name string) (string, error) {
	key := EnvKey(p.Prefix, name)
	value, ok := p.lookup(key)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s (env %s)", ErrSecretNotFound, name, key)
	}
	return value, nil
}

// EnvKey converts a secret name into an environment variable name
func EnvKey(prefix, name string) string {
	key := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", "/", "_").Replace(name))
	return prefix + key
}

// SecretManagerProvider reads the latest version of secrets from Google Secret Manager
type SecretManagerProvider struct {
	client    *secretmanager.Client
	projectID string
}

// NewSecretManagerProvider creates a Secret Manager backed provider
func NewSecretManagerProvider(ctx context.Context, projectID string) (*SecretManagerProvider, error) {
	if projectID == "" {
		return nil, errors.New("project id is required for secret manager")
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}

	return &SecretManagerProvider{client: client, projectID: projectID}, nil
}

// Close closes the underlying client
func (p *SecretManagerProvider) Close() error {
	return p.client.Close()
}

// AccessSecret returns the payload of the latest version of the secret
func (p *SecretManagerProvider) AccessSecret(ctx context.Context, name string) (string, error) {
	resp, err := p.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: SecretVersionName(p.projectID, name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", name, err)
	}
	if resp.GetPayload() == nil || len(resp.GetPayload().GetData()) == 0 {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}

// SecretVersionName builds the resource name of a secret's latest version
func SecretVersionName(projectID, name string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, name)
}

// StaticProvider returns fixed values, used when a key is passed in directly
type StaticProvider map[string]string

// AccessSecret returns the fixed value for the name
func (p StaticProvider) AccessSecret(ctx context.Context, name string) (string, error) {
	value, ok := p[name]
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return value, nil
}

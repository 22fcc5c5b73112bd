// Package kms resolves the scorer bearer credential from HashiCorp Vault.
package kms

import (
	"context"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/patrickmn/go-cache"

	"github.com/CSingh26/ReliScore/internal/config"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

const tokenCacheKey = "scorer_bearer_token"

// VaultTokenProvider reads the scorer bearer token from a Vault KV v2
// secret, with a short-lived in-memory cache to avoid hitting Vault on
// every scoring attempt.
type VaultTokenProvider struct {
	client *vault.Client
	cache  *cache.Cache
	cfg    *config.VaultConfig
	logger logger.Logger
}

// NewVaultTokenProvider creates a provider against the configured Vault.
func NewVaultTokenProvider(cfg *config.VaultConfig, log logger.Logger) (*VaultTokenProvider, error) {
	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = cfg.Address

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("could not create vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}

	return &VaultTokenProvider{
		client: client,
		cache:  cache.New(5*time.Minute, 10*time.Minute),
		cfg:    cfg,
		logger: log.WithComponent("vault_token_provider"),
	}, nil
}

// Token returns the bearer credential for the remote scorer.
func (p *VaultTokenProvider) Token(ctx context.Context) (string, error) {
	if cached, found := p.cache.Get(tokenCacheKey); found {
		return cached.(string), nil
	}

	secret, err := p.client.Logical().ReadWithContext(ctx, p.cfg.SecretPath)
	if err != nil {
		return "", fmt.Errorf("could not read scorer credential from vault: %w", err)
	}
	if secret == nil || secret.Data["data"] == nil {
		return "", fmt.Errorf("scorer credential not found at %s", p.cfg.SecretPath)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid secret format at %s", p.cfg.SecretPath)
	}
	token, ok := data[p.cfg.SecretKey].(string)
	if !ok {
		return "", fmt.Errorf("secret key %q not found or not a string", p.cfg.SecretKey)
	}

	p.cache.SetDefault(tokenCacheKey, token)
	return token, nil
}

package vault

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

// Client reads pipeline secrets from a Vault KV v2 mount after a
// kubernetes service-account login.
type Client struct {
	http         *resty.Client
	kvSecretPath string
	token        string
}

type loginResponse struct {
	Auth *struct {
		ClientToken string `json:"client_token"`
	} `json:"auth"`
	Errors []string `json:"errors"`
}

type kvResponse struct {
	Data *struct {
		Data map[string]any `json:"data"`
	} `json:"data"`
	Errors []string `json:"errors"`
}

// New logs in with the service-account token found at cfg.TokenPath.
func New(cfg config.VaultConfig) (*Client, error) {
	jwt, err := os.ReadFile(cfg.TokenPath)
	if err != nil {
		return nil, errors.Wrap(err, "read service account token")
	}

	c := &Client{
		http:         resty.New().SetBaseURL(strings.TrimRight(cfg.Addr, "/")),
		kvSecretPath: strings.Trim(cfg.KVSecretPath, "/"),
	}

	var out loginResponse
	resp, err := c.http.R().
		SetBody(map[string]string{
			"jwt":  strings.TrimSpace(string(jwt)),
			"role": cfg.Role,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/v1/auth/kubernetes/login")
	if err != nil {
		return nil, errors.Wrap(err, "vault login")
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("vault login failed with status %d: %s", resp.StatusCode(), strings.Join(out.Errors, "; "))
	}
	if out.Auth == nil || out.Auth.ClientToken == "" {
		return nil, fmt.Errorf("vault login returned no client_token")
	}

	c.token = out.Auth.ClientToken
	return c, nil
}

// GetKV returns every string value stored under the configured secret path.
func (c *Client) GetKV() (map[string]string, error) {
	var out kvResponse
	resp, err := c.http.R().
		SetHeader("X-Vault-Token", c.token).
		SetResult(&out).
		SetError(&out).
		Get("/v1/" + c.kvSecretPath)
	if err != nil {
		return nil, errors.Wrap(err, "vault kv get")
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("vault kv get failed with status %d: %s", resp.StatusCode(), strings.Join(out.Errors, "; "))
	}
	if out.Data == nil || out.Data.Data == nil {
		return nil, fmt.Errorf("vault response missing nested 'data' field")
	}

	secrets := make(map[string]string, len(out.Data.Data))
	for k, v := range out.Data.Data {
		if s, ok := v.(string); ok {
			secrets[k] = s
		}
	}
	return secrets, nil
}

// ApplySecrets fills blank credential fields of appConfig from Vault. It is a
// no-op when VAULT_ADDR is unset. Values already present in the environment win.
func ApplySecrets(appConfig *config.AppConfig, l *logger.Logger) error {
	if appConfig.Vault.Addr == "" {
		return nil
	}

	client, err := New(appConfig.Vault)
	if err != nil {
		return err
	}

	secrets, err := client.GetKV()
	if err != nil {
		return err
	}

	applied := []string{}
	fill := func(dst *string, key string) {
		if *dst != "" {
			return
		}
		if v, ok := secrets[key]; ok && v != "" {
			*dst = v
			applied = append(applied, key)
		}
	}
	fill(&appConfig.LLM.APIKey, "LLM_API_KEY")
	fill(&appConfig.Storage.ServiceKey, "STORAGE_SERVICE_KEY")
	fill(&appConfig.Storage.URL, "STORAGE_URL")
	fill(&appConfig.Explorer.APIKey, "EXPLORER_API_KEY")

	l.Info("[vault][ApplySecrets] secrets loaded", map[string]string{
		"keys": strings.Join(applied, ","),
	})
	return nil
}

/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package config provides structures and functions for loading and managing server configurations.
package config

import (
	"errors"
	"os"
	"path/filepath"

	env "github.com/caarlos0/env/v11"
	yaml "gopkg.in/yaml.v3"
)

// ServerConfig holds the server configuration details.
type ServerConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
}

// SecurityConfig holds the security configuration details.
type SecurityConfig struct {
	KeyFile string `yaml:"key_file"`
}

// DataSource holds the individual database connection details.
type DataSource struct {
	Type            string `yaml:"type"`
	Hostname        string `yaml:"hostname"`
	Port            int    `yaml:"port"`
	Name            string `yaml:"name"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"sslmode"`
	Path            string `yaml:"path"`
	Options         string `yaml:"options"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
}

// DatabaseConfig holds the different database configuration details.
type DatabaseConfig struct {
	Identity DataSource `yaml:"identity"`
	Runtime  DataSource `yaml:"runtime"`
}

// JWTConfig holds the JWT configuration details.
type JWTConfig struct {
	Issuer         string `yaml:"issuer"`
	ValidityPeriod int64  `yaml:"validity_period"`
}

// RefreshTokenConfig holds the refresh token configuration details.
type RefreshTokenConfig struct {
	ValidityPeriod int64 `yaml:"validity_period"`
	RenewOnGrant   *bool `yaml:"renew_on_grant"`
}

// RenewOnGrantEnabled returns whether a new refresh token is issued on every
// refresh token grant. Defaults to true when not configured.
func (c RefreshTokenConfig) RenewOnGrantEnabled() bool {
	if c.RenewOnGrant == nil {
		return true
	}
	return *c.RenewOnGrant
}

// OAuthConfig holds the OAuth configuration details.
type OAuthConfig struct {
	JWT          JWTConfig          `yaml:"jwt"`
	RefreshToken RefreshTokenConfig `yaml:"refresh_token"`
}

// RedisConfig holds the redis connection details for the redis token store.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// TokenStoreConfig holds the token store backend configuration details.
type TokenStoreConfig struct {
	Type  string      `yaml:"type"`
	Redis RedisConfig `yaml:"redis"`
}

// Config holds the complete configuration details of the server.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Security   SecurityConfig   `yaml:"security"`
	Database   DatabaseConfig   `yaml:"database"`
	OAuth      OAuthConfig      `yaml:"oauth"`
	TokenStore TokenStoreConfig `yaml:"token_store"`
}

// envOverrides holds the configuration values that may be overridden through
// environment variables. Secrets are expected to arrive this way in deployments.
type envOverrides struct {
	ServerPort        int    `env:"EMBER_SERVER_PORT"`
	IdentityDBPasswd  string `env:"EMBER_IDENTITY_DB_PASSWORD"`
	RuntimeDBPasswd   string `env:"EMBER_RUNTIME_DB_PASSWORD"`
	RedisAddr         string `env:"EMBER_REDIS_ADDR"`
	RedisPassword     string `env:"EMBER_REDIS_PASSWORD"`
	TokenStoreBackend string `env:"EMBER_TOKEN_STORE_TYPE"`
}

// LoadConfig loads the configurations from the given yaml file path.
func LoadConfig(configFilePath string) (*Config, error) {
	cleanedPath := filepath.Clean(configFilePath)
	data, err := os.ReadFile(cleanedPath)
	if err != nil {
		return nil, errors.New("failed to read config file: " + err.Error())
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.New("failed to parse config file: " + err.Error())
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides on top of the loaded configuration.
func applyEnvOverrides(cfg *Config) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return errors.New("failed to parse environment overrides: " + err.Error())
	}

	if overrides.ServerPort != 0 {
		cfg.Server.Port = overrides.ServerPort
	}
	if overrides.IdentityDBPasswd != "" {
		cfg.Database.Identity.Password = overrides.IdentityDBPasswd
	}
	if overrides.RuntimeDBPasswd != "" {
		cfg.Database.Runtime.Password = overrides.RuntimeDBPasswd
	}
	if overrides.RedisAddr != "" {
		cfg.TokenStore.Redis.Addr = overrides.RedisAddr
	}
	if overrides.RedisPassword != "" {
		cfg.TokenStore.Redis.Password = overrides.RedisPassword
	}
	if overrides.TokenStoreBackend != "" {
		cfg.TokenStore.Type = overrides.TokenStoreBackend
	}

	return nil
}

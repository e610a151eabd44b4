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

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/asgardeo/ember/internal/oauth/oauth2/model"
	"github.com/asgardeo/ember/internal/system/config"
	"github.com/asgardeo/ember/internal/system/crypto/hash"
	"github.com/asgardeo/ember/internal/system/utils"
)

const (
	refreshTokenKeyPrefix = "rt:"
	issuedTokenKeyPrefix  = "tok:"
)

// redisTokenRecord is the wire format of a token record stored in redis.
type redisTokenRecord struct {
	TokenID               string     `json:"token_id"`
	ClientID              string     `json:"client_id"`
	UserID                string     `json:"user_id"`
	Scope                 string     `json:"scope,omitempty"`
	AccessTokenExpiresAt  time.Time  `json:"access_token_expires_at"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
}

// RedisTokenStore implements the TokenStoreInterface over redis. Refresh token
// records are keyed by token digest and expire with the token itself.
type RedisTokenStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisTokenStore creates a new redis backed token store from the server configuration.
func NewRedisTokenStore() TokenStoreInterface {
	redisCfg := config.GetEmberRuntime().Config.TokenStore.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	return &RedisTokenStore{
		client:    client,
		keyPrefix: redisCfg.KeyPrefix,
	}
}

// NewRedisTokenStoreWithClient creates a redis backed token store with the given client.
// Intended for tests.
func NewRedisTokenStoreWithClient(client redis.UniversalClient, keyPrefix string) TokenStoreInterface {
	return &RedisTokenStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// LookupRefreshToken retrieves an active refresh token record by its token string.
func (rs *RedisTokenStore) LookupRefreshToken(tokenString string) (*model.RefreshToken, error) {
	ctx := context.Background()

	data, err := rs.client.Get(ctx, rs.refreshTokenKey(tokenString)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRefreshTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error while retrieving refresh token: %w", err)
	}

	record, err := decodeTokenRecord(data)
	if err != nil {
		return nil, err
	}

	return record.toRefreshToken(tokenString), nil
}

// RevokeToken revokes the given refresh token. The fetch-and-delete is atomic,
// so at most one concurrent redemption of the same token succeeds.
func (rs *RedisTokenStore) RevokeToken(token *model.RefreshToken) (bool, error) {
	ctx := context.Background()

	_, err := rs.client.GetDel(ctx, rs.refreshTokenKey(token.RefreshToken)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error while revoking refresh token: %w", err)
	}

	return true, nil
}

// SaveToken persists a newly issued token record. The refresh token entry is
// written only when the record carries one, with a TTL matching its expiry.
func (rs *RedisTokenStore) SaveToken(token *model.IssuedToken, client *model.Client,
	user *model.User) (*model.IssuedToken, error) {
	ctx := context.Background()

	record := redisTokenRecord{
		TokenID:               utils.GenerateUUID(),
		ClientID:              client.ID,
		UserID:                user.ID,
		Scope:                 token.Scope,
		AccessTokenExpiresAt:  token.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: token.RefreshTokenExpiresAt,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("error while encoding token record: %w", err)
	}

	now := time.Now()
	accessTTL := time.Until(token.AccessTokenExpiresAt)
	if accessTTL <= 0 {
		return nil, errors.New("access token expiry is not in the future")
	}

	issuedKey := rs.keyPrefix + issuedTokenKeyPrefix + record.TokenID
	if err := rs.client.Set(ctx, issuedKey, data, accessTTL).Err(); err != nil {
		return nil, fmt.Errorf("error while saving token record: %w", err)
	}

	if token.RefreshToken != "" {
		refreshTTL := time.Duration(0)
		if token.RefreshTokenExpiresAt != nil {
			refreshTTL = token.RefreshTokenExpiresAt.Sub(now)
			if refreshTTL <= 0 {
				return nil, errors.New("refresh token expiry is not in the future")
			}
		}
		refreshKey := rs.refreshTokenKey(token.RefreshToken)
		if err := rs.client.Set(ctx, refreshKey, data, refreshTTL).Err(); err != nil {
			return nil, fmt.Errorf("error while saving refresh token record: %w", err)
		}
	}

	saved := *token
	saved.TokenID = record.TokenID
	return &saved, nil
}

// refreshTokenKey builds the redis key for a refresh token string.
func (rs *RedisTokenStore) refreshTokenKey(tokenString string) string {
	return rs.keyPrefix + refreshTokenKeyPrefix + hash.HashString(tokenString)
}

// decodeTokenRecord decodes a stored token record.
func decodeTokenRecord(data string) (*redisTokenRecord, error) {
	var record redisTokenRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("error while decoding token record: %w", err)
	}
	return &record, nil
}

// toRefreshToken converts a stored record to the refresh token model.
func (r *redisTokenRecord) toRefreshToken(tokenString string) *model.RefreshToken {
	refreshToken := &model.RefreshToken{
		TokenID:               r.TokenID,
		RefreshToken:          tokenString,
		Scope:                 r.Scope,
		RefreshTokenExpiresAt: r.RefreshTokenExpiresAt,
	}
	if r.ClientID != "" {
		refreshToken.Client = &model.Client{ID: r.ClientID}
	}
	if r.UserID != "" {
		refreshToken.User = &model.User{ID: r.UserID}
	}
	return refreshToken
}

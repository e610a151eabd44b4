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

// Package store provides persistence for issued tokens and refresh token lookup,
// revocation and rotation state.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asgardeo/ember/internal/oauth/oauth2/model"
	"github.com/asgardeo/ember/internal/system/crypto/hash"
	dbmodel "github.com/asgardeo/ember/internal/system/database/model"
	"github.com/asgardeo/ember/internal/system/database/provider"
	"github.com/asgardeo/ember/internal/system/log"
	"github.com/asgardeo/ember/internal/system/utils"
)

const loggerComponentName = "TokenStore"

// Token states.
const (
	tokenStateActive  = "ACTIVE"
	tokenStateRevoked = "REVOKED"
)

// ErrRefreshTokenNotFound is returned when no active refresh token exists for a token string.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// queryGetRefreshToken is the query to retrieve an active token record by refresh token hash.
var queryGetRefreshToken = dbmodel.DBQuery{
	ID: "TKQ-00001",
	Query: "SELECT TOKEN_ID, CONSUMER_KEY, AUTHZ_USER, SCOPE, REFRESH_TOKEN_EXPIRY_TIME " +
		"FROM OAUTH2_TOKEN WHERE REFRESH_TOKEN_HASH = $1 AND STATE = $2",
	SQLiteQuery: "SELECT TOKEN_ID, CONSUMER_KEY, AUTHZ_USER, SCOPE, REFRESH_TOKEN_EXPIRY_TIME " +
		"FROM OAUTH2_TOKEN WHERE REFRESH_TOKEN_HASH = ? AND STATE = ?",
}

// queryRevokeRefreshToken transitions an active token record to the revoked state.
// The state predicate makes the transition conditional so that concurrent
// redemptions of the same refresh token cannot both succeed.
var queryRevokeRefreshToken = dbmodel.DBQuery{
	ID:          "TKQ-00002",
	Query:       "UPDATE OAUTH2_TOKEN SET STATE = $1 WHERE TOKEN_ID = $2 AND STATE = $3",
	SQLiteQuery: "UPDATE OAUTH2_TOKEN SET STATE = ? WHERE TOKEN_ID = ? AND STATE = ?",
}

// queryInsertToken is the query to insert a newly issued token record.
var queryInsertToken = dbmodel.DBQuery{
	ID: "TKQ-00003",
	Query: "INSERT INTO OAUTH2_TOKEN (TOKEN_ID, ACCESS_TOKEN_HASH, REFRESH_TOKEN_HASH, " +
		"CONSUMER_KEY, AUTHZ_USER, SCOPE, ACCESS_TOKEN_EXPIRY_TIME, REFRESH_TOKEN_EXPIRY_TIME, " +
		"TIME_CREATED, STATE) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
	SQLiteQuery: "INSERT INTO OAUTH2_TOKEN (TOKEN_ID, ACCESS_TOKEN_HASH, REFRESH_TOKEN_HASH, " +
		"CONSUMER_KEY, AUTHZ_USER, SCOPE, ACCESS_TOKEN_EXPIRY_TIME, REFRESH_TOKEN_EXPIRY_TIME, " +
		"TIME_CREATED, STATE) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
}

// TokenStoreInterface defines the persistence contract consumed by the grant handlers.
type TokenStoreInterface interface {
	// LookupRefreshToken returns the active refresh token for the given token
	// string, or ErrRefreshTokenNotFound when none exists.
	LookupRefreshToken(tokenString string) (*model.RefreshToken, error)
	// RevokeToken revokes the given refresh token. Returns false when the token
	// could not be revoked, e.g. when it was already redeemed concurrently.
	RevokeToken(token *model.RefreshToken) (bool, error)
	// SaveToken persists a newly issued token record and returns the persisted record.
	SaveToken(token *model.IssuedToken, client *model.Client, user *model.User) (*model.IssuedToken, error)
}

// TokenStore implements the TokenStoreInterface over the runtime database.
type TokenStore struct {
	DBProvider provider.DBProviderInterface
}

// NewTokenStore creates a new database backed token store.
func NewTokenStore() TokenStoreInterface {
	return &TokenStore{
		DBProvider: provider.GetDBProvider(),
	}
}

// LookupRefreshToken retrieves an active token record by its refresh token string.
// The store holds only token digests; the lookup is performed by digest.
func (ts *TokenStore) LookupRefreshToken(tokenString string) (*model.RefreshToken, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dbClient, err := ts.DBProvider.GetDBClient("runtime")
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return nil, err
	}

	results, err := dbClient.Query(queryGetRefreshToken, hash.HashString(tokenString), tokenStateActive)
	if err != nil {
		return nil, fmt.Errorf("error while retrieving refresh token: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrRefreshTokenNotFound
	}
	row := results[0]

	tokenID, ok := row["token_id"].(string)
	if !ok || tokenID == "" {
		return nil, ErrRefreshTokenNotFound
	}

	refreshToken := &model.RefreshToken{
		TokenID:      tokenID,
		RefreshToken: tokenString,
	}

	if consumerKey, ok := row["consumer_key"].(string); ok && consumerKey != "" {
		refreshToken.Client = &model.Client{ID: consumerKey}
	}
	if authzUser, ok := row["authz_user"].(string); ok && authzUser != "" {
		refreshToken.User = &model.User{ID: authzUser}
	}
	if scope, ok := row["scope"].(string); ok {
		refreshToken.Scope = scope
	}

	if expiryVal := row["refresh_token_expiry_time"]; expiryVal != nil {
		expiry, err := parseTimeField(expiryVal, "refresh_token_expiry_time", logger)
		if err != nil {
			return nil, err
		}
		refreshToken.RefreshTokenExpiresAt = &expiry
	}

	return refreshToken, nil
}

// RevokeToken revokes the given refresh token. The update is conditional on the
// record still being active, so at most one concurrent redemption succeeds.
func (ts *TokenStore) RevokeToken(token *model.RefreshToken) (bool, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dbClient, err := ts.DBProvider.GetDBClient("runtime")
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return false, err
	}

	rowsAffected, err := dbClient.Execute(queryRevokeRefreshToken, tokenStateRevoked,
		token.TokenID, tokenStateActive)
	if err != nil {
		return false, fmt.Errorf("error while revoking refresh token: %w", err)
	}

	return rowsAffected > 0, nil
}

// SaveToken persists a newly issued token record. Only token digests are stored.
func (ts *TokenStore) SaveToken(token *model.IssuedToken, client *model.Client,
	user *model.User) (*model.IssuedToken, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dbClient, err := ts.DBProvider.GetDBClient("runtime")
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return nil, err
	}

	tokenID := utils.GenerateUUID()

	var refreshTokenHash interface{}
	var refreshTokenExpiry interface{}
	if token.RefreshToken != "" {
		refreshTokenHash = hash.HashString(token.RefreshToken)
	}
	if token.RefreshTokenExpiresAt != nil {
		refreshTokenExpiry = token.RefreshTokenExpiresAt.UTC()
	}

	_, err = dbClient.Execute(queryInsertToken, tokenID, hash.HashString(token.AccessToken),
		refreshTokenHash, client.ID, user.ID, token.Scope, token.AccessTokenExpiresAt.UTC(),
		refreshTokenExpiry, time.Now().UTC(), tokenStateActive)
	if err != nil {
		return nil, fmt.Errorf("error while saving token: %w", err)
	}

	saved := *token
	saved.TokenID = tokenID
	return &saved, nil
}

// parseTimeField parses a time field returned by the database.
func parseTimeField(field interface{}, fieldName string, logger *log.Logger) (time.Time, error) {
	const customTimeFormat = "2006-01-02 15:04:05.999999999"

	switch v := field.(type) {
	case string:
		trimmedTime := trimTimeString(v)
		parsedTime, err := time.Parse(customTimeFormat, trimmedTime)
		if err != nil {
			logger.Error("Error parsing time field", log.String("field", fieldName), log.Error(err))
			return time.Time{}, fmt.Errorf("error parsing %s: %w", fieldName, err)
		}
		return parsedTime, nil
	case time.Time:
		return v, nil
	default:
		logger.Error("Unexpected type for time field", log.String("field", fieldName), log.Any("value", v))
		return time.Time{}, fmt.Errorf("unexpected type for %s", fieldName)
	}
}

// trimTimeString retains only the date and time parts of a database time string.
func trimTimeString(timeStr string) string {
	parts := strings.SplitN(timeStr, " ", 3)
	if len(parts) >= 2 {
		return parts[0] + " " + parts[1]
	}
	return timeStr
}

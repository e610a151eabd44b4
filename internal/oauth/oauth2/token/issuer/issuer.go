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

// Package issuer provides generation of token credentials and their expiry times.
package issuer

import (
	"errors"
	"time"

	"github.com/asgardeo/ember/internal/oauth/oauth2/model"
	"github.com/asgardeo/ember/internal/system/config"
	"github.com/asgardeo/ember/internal/system/jwt"
	"github.com/asgardeo/ember/internal/system/utils"
)

const defaultRefreshTokenValidity = 86400 // default validity period of 1 day

const opaqueTokenNumBytes = 32

// TokenIssuerInterface defines the shared capability for generating token
// credentials. Grant handlers depend on this contract rather than on a
// concrete issuer.
type TokenIssuerInterface interface {
	GenerateAccessToken(client *model.Client, user *model.User, scope string) (string, error)
	GenerateRefreshToken(client *model.Client, user *model.User, scope string) (string, error)
	AccessTokenExpiresAt() time.Time
	RefreshTokenExpiresAt() time.Time
}

// TokenIssuer implements the TokenIssuerInterface. Access tokens are signed
// JWTs; refresh tokens are opaque random strings resolved through the token store.
type TokenIssuer struct {
	JWTService jwt.JWTServiceInterface
}

// NewTokenIssuer creates a new instance of TokenIssuer.
func NewTokenIssuer() TokenIssuerInterface {
	return &TokenIssuer{
		JWTService: jwt.GetJWTService(),
	}
}

// GenerateAccessToken generates a signed JWT access token for the given client, user and scope.
func (ti *TokenIssuer) GenerateAccessToken(client *model.Client, user *model.User, scope string) (string, error) {
	if client == nil || user == nil {
		return "", errors.New("client and user are required to generate an access token")
	}

	validityPeriod := config.GetEmberRuntime().Config.OAuth.JWT.ValidityPeriod

	claims := make(map[string]string)
	claims["client_id"] = client.ID
	if scope != "" {
		claims["scope"] = scope
	}

	token, _, err := ti.JWTService.GenerateJWT(user.ID, client.ID, validityPeriod, claims)
	return token, err
}

// GenerateRefreshToken generates an opaque refresh token string.
func (ti *TokenIssuer) GenerateRefreshToken(client *model.Client, user *model.User, scope string) (string, error) {
	if client == nil || user == nil {
		return "", errors.New("client and user are required to generate a refresh token")
	}
	return utils.GenerateOpaqueToken(opaqueTokenNumBytes)
}

// AccessTokenExpiresAt returns the expiry time for a newly issued access token.
func (ti *TokenIssuer) AccessTokenExpiresAt() time.Time {
	validityPeriod := config.GetEmberRuntime().Config.OAuth.JWT.ValidityPeriod
	if validityPeriod == 0 {
		validityPeriod = 3600
	}
	return time.Now().Add(time.Duration(validityPeriod) * time.Second)
}

// RefreshTokenExpiresAt returns the expiry time for a newly issued refresh token.
func (ti *TokenIssuer) RefreshTokenExpiresAt() time.Time {
	validityPeriod := config.GetEmberRuntime().Config.OAuth.RefreshToken.ValidityPeriod
	if validityPeriod == 0 {
		validityPeriod = defaultRefreshTokenValidity
	}
	return time.Now().Add(time.Duration(validityPeriod) * time.Second)
}

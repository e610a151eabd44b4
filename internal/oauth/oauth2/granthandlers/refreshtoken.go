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

package granthandlers

import (
	"errors"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asgardeo/ember/internal/application"
	"github.com/asgardeo/ember/internal/oauth/oauth2/constants"
	"github.com/asgardeo/ember/internal/oauth/oauth2/model"
	"github.com/asgardeo/ember/internal/oauth/oauth2/token/issuer"
	"github.com/asgardeo/ember/internal/oauth/oauth2/token/store"
	"github.com/asgardeo/ember/internal/system/config"
	"github.com/asgardeo/ember/internal/system/log"
)

// Refresh token strings are restricted to the visible ASCII character set,
// excluding space and backslash, per RFC 6749 Appendix A.
var refreshTokenValuePattern = regexp.MustCompile(`^[\x21-\x5B\x5D-\x7E]+$`)

// refreshTokenGrantHandler handles the refresh token grant type.
type refreshTokenGrantHandler struct {
	TokenStore  store.TokenStoreInterface
	TokenIssuer issuer.TokenIssuerInterface
}

// newRefreshTokenGrantHandler creates a new instance of the refresh token grant handler.
// Missing collaborators are a configuration error and are reported immediately.
func newRefreshTokenGrantHandler(tokenStore store.TokenStoreInterface,
	tokenIssuer issuer.TokenIssuerInterface) (GrantHandlerInterface, error) {
	if tokenStore == nil {
		return nil, errors.New("token store is required")
	}
	if tokenIssuer == nil {
		return nil, errors.New("token issuer is required")
	}
	return &refreshTokenGrantHandler{
		TokenStore:  tokenStore,
		TokenIssuer: tokenIssuer,
	}, nil
}

// ValidateGrant validates the refresh token grant request.
func (h *refreshTokenGrantHandler) ValidateGrant(tokenRequest *model.TokenRequest,
	oauthApp *application.OAuthApplication) *model.ErrorResponse {
	if tokenRequest == nil || oauthApp == nil {
		return &model.ErrorResponse{
			Error:            constants.ErrorServerError,
			ErrorDescription: "Token request and application are required",
		}
	}
	if constants.GrantType(tokenRequest.GrantType) != constants.GrantTypeRefreshToken {
		return &model.ErrorResponse{
			Error:            constants.ErrorUnsupportedGrantType,
			ErrorDescription: "Unsupported grant type",
		}
	}
	if tokenRequest.RefreshToken == "" {
		return &model.ErrorResponse{
			Error:            constants.ErrorInvalidRequest,
			ErrorDescription: "Refresh token is required",
		}
	}
	if !refreshTokenValuePattern.MatchString(tokenRequest.RefreshToken) {
		return &model.ErrorResponse{
			Error:            constants.ErrorInvalidRequest,
			ErrorDescription: "Refresh token contains invalid characters",
		}
	}

	return nil
}

// HandleGrant processes the refresh token grant request and issues a new token.
// Validation, revocation, issuance and persistence run strictly in that order;
// the first failing step aborts the remainder of the flow.
func (h *refreshTokenGrantHandler) HandleGrant(tokenRequest *model.TokenRequest,
	oauthApp *application.OAuthApplication) (*model.IssuedToken, *model.ErrorResponse) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "RefreshTokenGrantHandler"))

	if tokenRequest == nil || oauthApp == nil {
		return nil, &model.ErrorResponse{
			Error:            constants.ErrorServerError,
			ErrorDescription: "Token request and application are required",
		}
	}

	refreshToken, errResp := h.getValidatedRefreshToken(tokenRequest.RefreshToken, oauthApp, logger)
	if errResp != nil {
		return nil, errResp
	}

	renewOnGrant := config.GetEmberRuntime().Config.OAuth.RefreshToken.RenewOnGrantEnabled()

	// Under rotation the old token must be revoked before the new one is
	// persisted, so the two are never simultaneously redeemable.
	if renewOnGrant {
		if errResp := h.revokeRefreshToken(refreshToken, logger); errResp != nil {
			return nil, errResp
		}
	}

	client := &model.Client{ID: oauthApp.ClientID}
	user := refreshToken.User
	scope := refreshToken.Scope

	// The four generation operations share no state and run concurrently.
	// All of them must complete before the new record is assembled.
	var accessToken, newRefreshToken string
	var accessTokenExpiry, refreshTokenExpiry time.Time

	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		accessToken, err = h.TokenIssuer.GenerateAccessToken(client, user, scope)
		return err
	})
	g.Go(func() error {
		var err error
		newRefreshToken, err = h.TokenIssuer.GenerateRefreshToken(client, user, scope)
		return err
	})
	g.Go(func() error {
		accessTokenExpiry = h.TokenIssuer.AccessTokenExpiresAt()
		return nil
	})
	g.Go(func() error {
		refreshTokenExpiry = h.TokenIssuer.RefreshTokenExpiresAt()
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to generate token credentials", log.Error(err))
		return nil, &model.ErrorResponse{
			Error:            constants.ErrorServerError,
			ErrorDescription: "Failed to generate token credentials",
		}
	}

	issuedToken := &model.IssuedToken{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: accessTokenExpiry,
		Scope:                scope,
	}
	if renewOnGrant {
		issuedToken.RefreshToken = newRefreshToken
		issuedToken.RefreshTokenExpiresAt = &refreshTokenExpiry
	}

	savedToken, err := h.TokenStore.SaveToken(issuedToken, client, user)
	if err != nil {
		logger.Error("Failed to save issued token", log.Error(err))
		return nil, &model.ErrorResponse{
			Error:            constants.ErrorServerError,
			ErrorDescription: "Failed to save issued token",
		}
	}

	logger.Debug("Refresh token grant completed",
		log.String(log.LoggerKeyClientID, client.ID), log.Bool("rotated", renewOnGrant))
	return savedToken, nil
}

// getValidatedRefreshToken looks up the presented refresh token and validates it.
// The rules are evaluated in order and the first match wins.
func (h *refreshTokenGrantHandler) getValidatedRefreshToken(tokenString string,
	oauthApp *application.OAuthApplication, logger *log.Logger) (*model.RefreshToken, *model.ErrorResponse) {
	refreshToken, err := h.TokenStore.LookupRefreshToken(tokenString)
	if err != nil {
		if errors.Is(err, store.ErrRefreshTokenNotFound) {
			logger.Debug("Refresh token not found", log.String("token", log.MaskString(tokenString)))
			return nil, &model.ErrorResponse{
				Error:            constants.ErrorInvalidGrant,
				ErrorDescription: "Refresh token is invalid",
			}
		}
		logger.Error("Failed to retrieve refresh token", log.Error(err))
		return nil, &model.ErrorResponse{
			Error:            constants.ErrorServerError,
			ErrorDescription: "Failed to retrieve refresh token",
		}
	}

	// A token without a client or user is a token store contract violation,
	// not a user error.
	if refreshToken.Client == nil || refreshToken.Client.ID == "" {
		logger.Error("Token store returned a refresh token without a client",
			log.String(log.LoggerKeyTokenID, refreshToken.TokenID))
		return nil, &model.ErrorResponse{
			Error:            constants.ErrorServerError,
			ErrorDescription: "Token store returned a refresh token without a client",
		}
	}
	if refreshToken.User == nil || refreshToken.User.ID == "" {
		logger.Error("Token store returned a refresh token without a user",
			log.String(log.LoggerKeyTokenID, refreshToken.TokenID))
		return nil, &model.ErrorResponse{
			Error:            constants.ErrorServerError,
			ErrorDescription: "Token store returned a refresh token without a user",
		}
	}

	if refreshToken.Client.ID != oauthApp.ClientID {
		logger.Debug("Refresh token client does not match the authenticated client",
			log.String(log.LoggerKeyClientID, oauthApp.ClientID))
		return nil, &model.ErrorResponse{
			Error:            constants.ErrorInvalidGrant,
			ErrorDescription: "Refresh token was issued to another client",
		}
	}

	if refreshToken.RefreshTokenExpiresAt != nil {
		if refreshToken.RefreshTokenExpiresAt.IsZero() {
			logger.Error("Token store returned a refresh token with an invalid expiry",
				log.String(log.LoggerKeyTokenID, refreshToken.TokenID))
			return nil, &model.ErrorResponse{
				Error:            constants.ErrorServerError,
				ErrorDescription: "Token store returned a refresh token with an invalid expiry",
			}
		}
		if refreshToken.RefreshTokenExpiresAt.Before(time.Now()) {
			logger.Debug("Refresh token has expired",
				log.Any("expiryTime", refreshToken.RefreshTokenExpiresAt))
			return nil, &model.ErrorResponse{
				Error:            constants.ErrorInvalidGrant,
				ErrorDescription: "Refresh token has expired",
			}
		}
	}

	return refreshToken, nil
}

// revokeRefreshToken revokes the validated refresh token before rotation.
func (h *refreshTokenGrantHandler) revokeRefreshToken(refreshToken *model.RefreshToken,
	logger *log.Logger) *model.ErrorResponse {
	revoked, err := h.TokenStore.RevokeToken(refreshToken)
	if err != nil {
		logger.Error("Failed to revoke refresh token", log.Error(err))
		return &model.ErrorResponse{
			Error:            constants.ErrorServerError,
			ErrorDescription: "Failed to revoke refresh token",
		}
	}
	if !revoked {
		logger.Debug("Refresh token could not be revoked",
			log.String(log.LoggerKeyTokenID, refreshToken.TokenID))
		return &model.ErrorResponse{
			Error:            constants.ErrorInvalidGrant,
			ErrorDescription: "Refresh token is invalid or could not be revoked",
		}
	}
	return nil
}

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

// Package token provides the handler for managing OAuth 2.0 token requests.
package token

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/asgardeo/ember/internal/application"
	"github.com/asgardeo/ember/internal/oauth/oauth2/constants"
	"github.com/asgardeo/ember/internal/oauth/oauth2/granthandlers"
	"github.com/asgardeo/ember/internal/oauth/oauth2/model"
	"github.com/asgardeo/ember/internal/oauth/oauth2/token/issuer"
	"github.com/asgardeo/ember/internal/oauth/oauth2/token/store"
	"github.com/asgardeo/ember/internal/system/error/serviceerror"
	"github.com/asgardeo/ember/internal/system/log"
	"github.com/asgardeo/ember/internal/system/utils"
)

// TokenHandler handles OAuth 2.0 token requests.
type TokenHandler struct {
	ApplicationService   application.ApplicationServiceInterface
	GrantHandlerProvider granthandlers.GrantHandlerProviderInterface
}

// NewTokenHandler creates a new token handler wired with the configured
// token store backend and token issuer.
func NewTokenHandler() (*TokenHandler, error) {
	grantHandlerProvider, err := granthandlers.NewGrantHandlerProvider(
		store.NewTokenStoreFromConfig(), issuer.NewTokenIssuer())
	if err != nil {
		return nil, err
	}
	return &TokenHandler{
		ApplicationService:   application.NewApplicationService(),
		GrantHandlerProvider: grantHandlerProvider,
	}, nil
}

// HandleTokenRequest handles the token request for OAuth 2.0.
// It authenticates the client and delegates to the appropriate grant handler.
func (th *TokenHandler) HandleTokenRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "TokenHandler"))

	// Parse the form data from the request body.
	if err := r.ParseForm(); err != nil {
		utils.WriteJSONError(w, constants.ErrorInvalidRequest,
			"Failed to parse request body", http.StatusBadRequest, nil)
		return
	}

	// Validate the grant_type.
	grantType := r.FormValue(constants.RequestParamGrantType)
	if grantType == "" {
		utils.WriteJSONError(w, constants.ErrorInvalidRequest,
			"Missing grant_type parameter", http.StatusBadRequest, nil)
		return
	}

	grantHandler, err := th.GrantHandlerProvider.GetGrantHandler(constants.GrantType(grantType))
	if err != nil {
		utils.WriteJSONError(w, constants.ErrorUnsupportedGrantType,
			"Unsupported grant type", http.StatusBadRequest, nil)
		return
	}

	// Extract client credentials from the request.
	clientID := ""
	clientSecret := ""
	if r.Header.Get("Authorization") != "" {
		clientID, clientSecret, err = utils.ExtractBasicAuthCredentials(r)
		if err != nil {
			responseHeaders := []map[string]string{
				{"WWW-Authenticate": "Basic"},
			}
			utils.WriteJSONError(w, constants.ErrorInvalidClient,
				"Invalid client credentials", http.StatusUnauthorized, responseHeaders)
			return
		}
	}

	// Check for client credentials in the request body.
	clientIDFromBody := r.FormValue(constants.RequestParamClientID)
	clientSecretFromBody := r.FormValue(constants.RequestParamClientSecret)

	if clientIDFromBody != "" && clientSecretFromBody != "" && clientID != "" {
		utils.WriteJSONError(w, constants.ErrorInvalidRequest,
			"Authorization information is provided in both header and body", http.StatusBadRequest, nil)
		return
	}
	if clientID == "" {
		clientID = clientIDFromBody
	}
	if clientSecret == "" {
		clientSecret = clientSecretFromBody
	}

	// Authenticate the client against the registered application.
	oauthApp, svcErr := th.ApplicationService.AuthenticateClient(clientID, clientSecret)
	if svcErr != nil || oauthApp == nil {
		if svcErr != nil && svcErr.Type == serviceerror.ServerErrorType {
			utils.WriteJSONError(w, constants.ErrorServerError,
				"Failed to authenticate client", http.StatusInternalServerError, nil)
			return
		}
		utils.WriteJSONError(w, constants.ErrorInvalidClient,
			"Invalid client credentials", http.StatusUnauthorized, nil)
		return
	}

	// Validate grant type against the application.
	if !oauthApp.IsAllowedGrantType(constants.GrantType(grantType)) {
		utils.WriteJSONError(w, constants.ErrorUnauthorizedClient,
			"The authenticated client is not authorized to use this grant type",
			http.StatusUnauthorized, nil)
		return
	}

	// Construct the token request.
	tokenRequest := &model.TokenRequest{
		GrantType:    grantType,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        r.FormValue(constants.RequestParamScope),
		RefreshToken: r.FormValue(constants.RequestParamRefreshToken),
	}

	// Validate the token request.
	if errResp := grantHandler.ValidateGrant(tokenRequest, oauthApp); errResp != nil && errResp.Error != "" {
		utils.WriteJSONError(w, errResp.Error, errResp.ErrorDescription,
			statusCodeForError(errResp.Error), nil)
		return
	}

	// Delegate to the grant handler.
	issuedToken, errResp := grantHandler.HandleGrant(tokenRequest, oauthApp)
	if errResp != nil && errResp.Error != "" {
		utils.WriteJSONError(w, errResp.Error, errResp.ErrorDescription,
			statusCodeForError(errResp.Error), nil)
		return
	}

	logger.Info("Token generated successfully", log.String(log.LoggerKeyClientID, clientID),
		log.String(log.LoggerKeyGrantType, grantType))

	// Set the response headers.
	w.Header().Set("Content-Type", "application/json")
	// Must include the following headers when sensitive data is returned.
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")

	// Write the token response.
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(toTokenResponse(issuedToken)); err != nil {
		logger.Error("Failed to write token response", log.Error(err))
		http.Error(w, "Failed to write token response", http.StatusInternalServerError)
		return
	}
}

// toTokenResponse converts an issued token record to the wire response.
func toTokenResponse(issuedToken *model.IssuedToken) *model.TokenResponse {
	return &model.TokenResponse{
		AccessToken:  issuedToken.AccessToken,
		TokenType:    constants.TokenTypeBearer,
		ExpiresIn:    int64(time.Until(issuedToken.AccessTokenExpiresAt).Seconds()),
		RefreshToken: issuedToken.RefreshToken,
		Scope:        issuedToken.Scope,
	}
}

// statusCodeForError maps an OAuth2 error code to its HTTP status code.
func statusCodeForError(errorCode string) int {
	switch errorCode {
	case constants.ErrorInvalidClient, constants.ErrorUnauthorizedClient:
		return http.StatusUnauthorized
	case constants.ErrorServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

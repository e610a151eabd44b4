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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/ember/internal/application"
	"github.com/asgardeo/ember/internal/oauth/oauth2/constants"
	"github.com/asgardeo/ember/internal/oauth/oauth2/model"
	"github.com/asgardeo/ember/internal/oauth/oauth2/token/store"
	"github.com/asgardeo/ember/internal/system/config"
	"github.com/asgardeo/ember/tests/mocks/issuermock"
	"github.com/asgardeo/ember/tests/mocks/tokenstoremock"
)

type RefreshTokenGrantHandlerTestSuite struct {
	suite.Suite
	handler         *refreshTokenGrantHandler
	mockTokenStore  *tokenstoremock.TokenStoreInterfaceMock
	mockTokenIssuer *issuermock.TokenIssuerInterfaceMock
	oauthApp        *application.OAuthApplication
	storedToken     *model.RefreshToken
	testTokenReq    *model.TokenRequest
}

func TestRefreshTokenGrantHandlerSuite(t *testing.T) {
	suite.Run(t, new(RefreshTokenGrantHandlerTestSuite))
}

func (suite *RefreshTokenGrantHandlerTestSuite) SetupTest() {
	suite.initRuntime(true)

	suite.mockTokenStore = &tokenstoremock.TokenStoreInterfaceMock{}
	suite.mockTokenIssuer = &issuermock.TokenIssuerInterfaceMock{}

	suite.handler = &refreshTokenGrantHandler{
		TokenStore:  suite.mockTokenStore,
		TokenIssuer: suite.mockTokenIssuer,
	}

	suite.oauthApp = &application.OAuthApplication{
		ClientID:           "test-client-id",
		HashedClientSecret: "hashed-secret",
		GrantTypes:         []constants.GrantType{constants.GrantTypeRefreshToken},
	}

	expiry := time.Now().Add(time.Hour)
	suite.storedToken = &model.RefreshToken{
		TokenID:               "token-id-1",
		RefreshToken:          "valid-refresh-token",
		RefreshTokenExpiresAt: &expiry,
		Client:                &model.Client{ID: "test-client-id"},
		User:                  &model.User{ID: "test-user-id"},
		Scope:                 "read write",
	}

	suite.testTokenReq = &model.TokenRequest{
		GrantType:    string(constants.GrantTypeRefreshToken),
		ClientID:     "test-client-id",
		RefreshToken: "valid-refresh-token",
	}
}

// initRuntime resets the runtime singleton with the given rotation setting.
func (suite *RefreshTokenGrantHandlerTestSuite) initRuntime(renewOnGrant bool) {
	config.ResetEmberRuntime()
	testConfig := &config.Config{
		OAuth: config.OAuthConfig{
			JWT: config.JWTConfig{
				ValidityPeriod: 3600,
			},
			RefreshToken: config.RefreshTokenConfig{
				ValidityPeriod: 86400,
				RenewOnGrant:   &renewOnGrant,
			},
		},
	}
	_ = config.InitializeEmberRuntime("test", testConfig)
}

// expectIssuance wires the issuer mock to produce a fixed set of credentials.
func (suite *RefreshTokenGrantHandlerTestSuite) expectIssuance() (time.Time, time.Time) {
	accessExpiry := time.Now().Add(time.Hour)
	refreshExpiry := time.Now().Add(24 * time.Hour)

	suite.mockTokenIssuer.On("GenerateAccessToken", mock.Anything, mock.Anything, mock.Anything).
		Return("new-access-token", nil)
	suite.mockTokenIssuer.On("GenerateRefreshToken", mock.Anything, mock.Anything, mock.Anything).
		Return("new-refresh-token", nil)
	suite.mockTokenIssuer.On("AccessTokenExpiresAt").Return(accessExpiry)
	suite.mockTokenIssuer.On("RefreshTokenExpiresAt").Return(refreshExpiry)

	return accessExpiry, refreshExpiry
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestNewRefreshTokenGrantHandler() {
	handler, err := newRefreshTokenGrantHandler(suite.mockTokenStore, suite.mockTokenIssuer)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), handler)
	assert.Implements(suite.T(), (*GrantHandlerInterface)(nil), handler)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestNewRefreshTokenGrantHandler_MissingCollaborators() {
	handler, err := newRefreshTokenGrantHandler(nil, suite.mockTokenIssuer)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), handler)

	handler, err = newRefreshTokenGrantHandler(suite.mockTokenStore, nil)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), handler)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestValidateGrant_Success() {
	err := suite.handler.ValidateGrant(suite.testTokenReq, suite.oauthApp)
	assert.Nil(suite.T(), err)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestValidateGrant_InvalidGrantType() {
	tokenReq := &model.TokenRequest{
		GrantType:    "authorization_code",
		ClientID:     "test-client-id",
		RefreshToken: "token",
	}

	err := suite.handler.ValidateGrant(tokenReq, suite.oauthApp)
	assert.NotNil(suite.T(), err)
	assert.Equal(suite.T(), constants.ErrorUnsupportedGrantType, err.Error)
	assert.Equal(suite.T(), "Unsupported grant type", err.ErrorDescription)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestValidateGrant_MissingRefreshToken() {
	tokenReq := &model.TokenRequest{
		GrantType: string(constants.GrantTypeRefreshToken),
		ClientID:  "test-client-id",
	}

	err := suite.handler.ValidateGrant(tokenReq, suite.oauthApp)
	assert.NotNil(suite.T(), err)
	assert.Equal(suite.T(), constants.ErrorInvalidRequest, err.Error)
	assert.Equal(suite.T(), "Refresh token is required", err.ErrorDescription)
	suite.mockTokenStore.AssertNotCalled(suite.T(), "LookupRefreshToken", mock.Anything)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestValidateGrant_InvalidCharacters() {
	for _, token := range []string{"with space", "with\\backslash", "tab\there", "non-ascii-é"} {
		tokenReq := &model.TokenRequest{
			GrantType:    string(constants.GrantTypeRefreshToken),
			ClientID:     "test-client-id",
			RefreshToken: token,
		}

		err := suite.handler.ValidateGrant(tokenReq, suite.oauthApp)
		assert.NotNil(suite.T(), err)
		assert.Equal(suite.T(), constants.ErrorInvalidRequest, err.Error)
		assert.Equal(suite.T(), "Refresh token contains invalid characters", err.ErrorDescription)
	}
	suite.mockTokenStore.AssertNotCalled(suite.T(), "LookupRefreshToken", mock.Anything)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestValidateGrant_NilArguments() {
	err := suite.handler.ValidateGrant(nil, suite.oauthApp)
	assert.NotNil(suite.T(), err)
	assert.Equal(suite.T(), constants.ErrorServerError, err.Error)

	err = suite.handler.ValidateGrant(suite.testTokenReq, nil)
	assert.NotNil(suite.T(), err)
	assert.Equal(suite.T(), constants.ErrorServerError, err.Error)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_TokenNotFound() {
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(nil, store.ErrRefreshTokenNotFound)

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorInvalidGrant, errResp.Error)
	assert.Equal(suite.T(), "Refresh token is invalid", errResp.ErrorDescription)
	suite.mockTokenStore.AssertNotCalled(suite.T(), "RevokeToken", mock.Anything)
	suite.mockTokenStore.AssertNotCalled(suite.T(), "SaveToken", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_LookupError() {
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(nil, errors.New("connection refused"))

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorServerError, errResp.Error)
	assert.Equal(suite.T(), "Failed to retrieve refresh token", errResp.ErrorDescription)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_TokenWithoutClient() {
	suite.storedToken.Client = nil
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorServerError, errResp.Error)
	assert.Equal(suite.T(), "Token store returned a refresh token without a client", errResp.ErrorDescription)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_TokenWithoutUser() {
	suite.storedToken.User = nil
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorServerError, errResp.Error)
	assert.Equal(suite.T(), "Token store returned a refresh token without a user", errResp.ErrorDescription)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_TokenIssuedToAnotherClient() {
	suite.storedToken.Client = &model.Client{ID: "another-client-id"}
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorInvalidGrant, errResp.Error)
	assert.Equal(suite.T(), "Refresh token was issued to another client", errResp.ErrorDescription)
	suite.mockTokenStore.AssertNotCalled(suite.T(), "RevokeToken", mock.Anything)
	suite.mockTokenStore.AssertNotCalled(suite.T(), "SaveToken", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_InvalidExpiry() {
	zero := time.Time{}
	suite.storedToken.RefreshTokenExpiresAt = &zero
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorServerError, errResp.Error)
	assert.Equal(suite.T(), "Token store returned a refresh token with an invalid expiry", errResp.ErrorDescription)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_ExpiredToken() {
	expired := time.Now().Add(-time.Hour)
	suite.storedToken.RefreshTokenExpiresAt = &expired
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorInvalidGrant, errResp.Error)
	assert.Equal(suite.T(), "Refresh token has expired", errResp.ErrorDescription)
	suite.mockTokenStore.AssertNotCalled(suite.T(), "RevokeToken", mock.Anything)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_RevokeReturnsFalse() {
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)
	suite.mockTokenStore.On("RevokeToken", suite.storedToken).Return(false, nil)

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorInvalidGrant, errResp.Error)
	assert.Equal(suite.T(), "Refresh token is invalid or could not be revoked", errResp.ErrorDescription)
	suite.mockTokenStore.AssertNotCalled(suite.T(), "SaveToken", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_RevokeError() {
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)
	suite.mockTokenStore.On("RevokeToken", suite.storedToken).
		Return(false, errors.New("connection refused"))

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorServerError, errResp.Error)
	assert.Equal(suite.T(), "Failed to revoke refresh token", errResp.ErrorDescription)
	suite.mockTokenStore.AssertNotCalled(suite.T(), "SaveToken", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_AccessTokenGenerationError() {
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)
	suite.mockTokenStore.On("RevokeToken", suite.storedToken).Return(true, nil)

	suite.mockTokenIssuer.On("GenerateAccessToken", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("signing failed"))
	suite.mockTokenIssuer.On("GenerateRefreshToken", mock.Anything, mock.Anything, mock.Anything).
		Return("new-refresh-token", nil)
	suite.mockTokenIssuer.On("AccessTokenExpiresAt").Return(time.Now().Add(time.Hour))
	suite.mockTokenIssuer.On("RefreshTokenExpiresAt").Return(time.Now().Add(24 * time.Hour))

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorServerError, errResp.Error)
	assert.Equal(suite.T(), "Failed to generate token credentials", errResp.ErrorDescription)
	suite.mockTokenStore.AssertNotCalled(suite.T(), "SaveToken", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_SaveError() {
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)
	suite.mockTokenStore.On("RevokeToken", suite.storedToken).Return(true, nil)
	suite.mockTokenStore.On("SaveToken", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("constraint violation"))
	suite.expectIssuance()

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorServerError, errResp.Error)
	assert.Equal(suite.T(), "Failed to save issued token", errResp.ErrorDescription)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_SuccessWithRotation() {
	accessExpiry, refreshExpiry := suite.expectIssuance()

	var callOrder []string
	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)
	suite.mockTokenStore.On("RevokeToken", suite.storedToken).
		Run(func(args mock.Arguments) { callOrder = append(callOrder, "revoke") }).
		Return(true, nil)
	suite.mockTokenStore.On("SaveToken", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { callOrder = append(callOrder, "save") }).
		Return(&model.IssuedToken{
			TokenID:               "new-token-id",
			AccessToken:           "new-access-token",
			AccessTokenExpiresAt:  accessExpiry,
			RefreshToken:          "new-refresh-token",
			RefreshTokenExpiresAt: &refreshExpiry,
			Scope:                 "read write",
		}, nil)

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), errResp)
	assert.NotNil(suite.T(), token)
	assert.Equal(suite.T(), "new-token-id", token.TokenID)
	assert.Equal(suite.T(), "new-access-token", token.AccessToken)
	assert.Equal(suite.T(), "new-refresh-token", token.RefreshToken)
	assert.Equal(suite.T(), "read write", token.Scope)

	// The old token must be revoked before the new record is persisted.
	assert.Equal(suite.T(), []string{"revoke", "save"}, callOrder)

	// The persisted record carries the new credentials and the stored token's scope.
	savedArg := suite.mockTokenStore.Calls[len(suite.mockTokenStore.Calls)-1].
		Arguments.Get(0).(*model.IssuedToken)
	assert.Equal(suite.T(), "new-access-token", savedArg.AccessToken)
	assert.Equal(suite.T(), "new-refresh-token", savedArg.RefreshToken)
	assert.NotNil(suite.T(), savedArg.RefreshTokenExpiresAt)
	assert.Equal(suite.T(), "read write", savedArg.Scope)

	clientArg := suite.mockTokenStore.Calls[len(suite.mockTokenStore.Calls)-1].
		Arguments.Get(1).(*model.Client)
	userArg := suite.mockTokenStore.Calls[len(suite.mockTokenStore.Calls)-1].
		Arguments.Get(2).(*model.User)
	assert.Equal(suite.T(), "test-client-id", clientArg.ID)
	assert.Equal(suite.T(), "test-user-id", userArg.ID)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_SuccessWithoutRotation() {
	suite.initRuntime(false)
	suite.expectIssuance()

	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)
	suite.mockTokenStore.On("SaveToken", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.IssuedToken{
			TokenID:              "new-token-id",
			AccessToken:          "new-access-token",
			AccessTokenExpiresAt: time.Now().Add(time.Hour),
			Scope:                "read write",
		}, nil)

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), errResp)
	assert.NotNil(suite.T(), token)
	assert.Empty(suite.T(), token.RefreshToken)
	assert.Nil(suite.T(), token.RefreshTokenExpiresAt)

	// Rotation is off, so the presented token stays active.
	suite.mockTokenStore.AssertNotCalled(suite.T(), "RevokeToken", mock.Anything)

	// The persisted record must not carry refresh token credentials.
	for _, call := range suite.mockTokenStore.Calls {
		if call.Method == "SaveToken" {
			savedArg := call.Arguments.Get(0).(*model.IssuedToken)
			assert.Empty(suite.T(), savedArg.RefreshToken)
			assert.Nil(suite.T(), savedArg.RefreshTokenExpiresAt)
		}
	}
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_TokenWithoutExpiry() {
	suite.storedToken.RefreshTokenExpiresAt = nil
	suite.expectIssuance()

	suite.mockTokenStore.On("LookupRefreshToken", "valid-refresh-token").
		Return(suite.storedToken, nil)
	suite.mockTokenStore.On("RevokeToken", suite.storedToken).Return(true, nil)
	suite.mockTokenStore.On("SaveToken", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.IssuedToken{TokenID: "new-token-id"}, nil)

	token, errResp := suite.handler.HandleGrant(suite.testTokenReq, suite.oauthApp)

	assert.Nil(suite.T(), errResp)
	assert.NotNil(suite.T(), token)
}

func (suite *RefreshTokenGrantHandlerTestSuite) TestHandleGrant_NilArguments() {
	token, errResp := suite.handler.HandleGrant(nil, suite.oauthApp)
	assert.Nil(suite.T(), token)
	assert.NotNil(suite.T(), errResp)
	assert.Equal(suite.T(), constants.ErrorServerError, errResp.Error)
}

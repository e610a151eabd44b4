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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/ember/internal/oauth/oauth2/constants"
	"github.com/asgardeo/ember/tests/mocks/issuermock"
	"github.com/asgardeo/ember/tests/mocks/tokenstoremock"
)

type GrantHandlerProviderTestSuite struct {
	suite.Suite
	provider GrantHandlerProviderInterface
}

func TestGrantHandlerProviderSuite(t *testing.T) {
	suite.Run(t, new(GrantHandlerProviderTestSuite))
}

func (suite *GrantHandlerProviderTestSuite) SetupTest() {
	provider, err := NewGrantHandlerProvider(
		&tokenstoremock.TokenStoreInterfaceMock{}, &issuermock.TokenIssuerInterfaceMock{})
	assert.NoError(suite.T(), err)
	suite.provider = provider
}

func (suite *GrantHandlerProviderTestSuite) TestNewGrantHandlerProvider_MissingCollaborators() {
	provider, err := NewGrantHandlerProvider(nil, &issuermock.TokenIssuerInterfaceMock{})
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), provider)
}

func (suite *GrantHandlerProviderTestSuite) TestGetGrantHandler_RefreshToken() {
	handler, err := suite.provider.GetGrantHandler(constants.GrantTypeRefreshToken)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), handler)
	assert.IsType(suite.T(), &refreshTokenGrantHandler{}, handler)
}

func (suite *GrantHandlerProviderTestSuite) TestGetGrantHandler_Unsupported() {
	handler, err := suite.provider.GetGrantHandler("authorization_code")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), handler)
}

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

// Package issuermock provides a mock implementation of the token issuer for testing.
package issuermock

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/asgardeo/ember/internal/oauth/oauth2/model"
)

// TokenIssuerInterfaceMock is a mock implementation of the TokenIssuerInterface.
type TokenIssuerInterfaceMock struct {
	mock.Mock
}

// GenerateAccessToken mocks the GenerateAccessToken method.
func (m *TokenIssuerInterfaceMock) GenerateAccessToken(client *model.Client, user *model.User,
	scope string) (string, error) {
	args := m.Called(client, user, scope)
	return args.String(0), args.Error(1)
}

// GenerateRefreshToken mocks the GenerateRefreshToken method.
func (m *TokenIssuerInterfaceMock) GenerateRefreshToken(client *model.Client, user *model.User,
	scope string) (string, error) {
	args := m.Called(client, user, scope)
	return args.String(0), args.Error(1)
}

// AccessTokenExpiresAt mocks the AccessTokenExpiresAt method.
func (m *TokenIssuerInterfaceMock) AccessTokenExpiresAt() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

// RefreshTokenExpiresAt mocks the RefreshTokenExpiresAt method.
func (m *TokenIssuerInterfaceMock) RefreshTokenExpiresAt() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

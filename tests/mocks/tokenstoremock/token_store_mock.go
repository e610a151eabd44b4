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

// Package tokenstoremock provides a mock implementation of the token store for testing.
package tokenstoremock

import (
	"github.com/stretchr/testify/mock"

	"github.com/asgardeo/ember/internal/oauth/oauth2/model"
)

// TokenStoreInterfaceMock is a mock implementation of the TokenStoreInterface.
type TokenStoreInterfaceMock struct {
	mock.Mock
}

// LookupRefreshToken mocks the LookupRefreshToken method.
func (m *TokenStoreInterfaceMock) LookupRefreshToken(tokenString string) (*model.RefreshToken, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

// RevokeToken mocks the RevokeToken method.
func (m *TokenStoreInterfaceMock) RevokeToken(token *model.RefreshToken) (bool, error) {
	args := m.Called(token)
	return args.Bool(0), args.Error(1)
}

// SaveToken mocks the SaveToken method.
func (m *TokenStoreInterfaceMock) SaveToken(token *model.IssuedToken, client *model.Client,
	user *model.User) (*model.IssuedToken, error) {
	args := m.Called(token, client, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IssuedToken), args.Error(1)
}

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

// Package jwtmock provides a mock implementation of the JWT service for testing.
package jwtmock

import (
	"crypto/rsa"

	"github.com/stretchr/testify/mock"
)

// JWTServiceInterfaceMock is a mock implementation of the JWTServiceInterface.
type JWTServiceInterfaceMock struct {
	mock.Mock
}

// Init mocks the Init method.
func (m *JWTServiceInterfaceMock) Init() error {
	args := m.Called()
	return args.Error(0)
}

// GetPublicKey mocks the GetPublicKey method.
func (m *JWTServiceInterfaceMock) GetPublicKey() *rsa.PublicKey {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*rsa.PublicKey)
}

// GenerateJWT mocks the GenerateJWT method.
func (m *JWTServiceInterfaceMock) GenerateJWT(sub, aud string, validityPeriod int64,
	claims map[string]string) (string, int64, error) {
	args := m.Called(sub, aud, validityPeriod, claims)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

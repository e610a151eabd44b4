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

// Package application provides management of registered OAuth applications.
package application

import (
	"github.com/asgardeo/ember/internal/oauth/oauth2/constants"
)

// OAuthApplication represents a registered OAuth application.
type OAuthApplication struct {
	ClientID           string
	HashedClientSecret string
	GrantTypes         []constants.GrantType
}

// IsAllowedGrantType checks whether the application is allowed to use the given grant type.
func (a *OAuthApplication) IsAllowedGrantType(grantType constants.GrantType) bool {
	for _, allowed := range a.GrantTypes {
		if allowed == grantType {
			return true
		}
	}
	return false
}

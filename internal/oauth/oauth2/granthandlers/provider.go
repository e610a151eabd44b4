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
	"fmt"

	"github.com/asgardeo/ember/internal/oauth/oauth2/constants"
	"github.com/asgardeo/ember/internal/oauth/oauth2/token/issuer"
	"github.com/asgardeo/ember/internal/oauth/oauth2/token/store"
)

// GrantHandlerProviderInterface defines the interface for resolving grant handlers.
type GrantHandlerProviderInterface interface {
	GetGrantHandler(grantType constants.GrantType) (GrantHandlerInterface, error)
}

// GrantHandlerProvider resolves grant handlers by grant type. Handlers are
// constructed once at provider creation so that configuration errors surface
// at startup rather than at request time.
type GrantHandlerProvider struct {
	refreshTokenHandler GrantHandlerInterface
}

// NewGrantHandlerProvider creates a new grant handler provider with the given collaborators.
func NewGrantHandlerProvider(tokenStore store.TokenStoreInterface,
	tokenIssuer issuer.TokenIssuerInterface) (GrantHandlerProviderInterface, error) {
	refreshTokenHandler, err := newRefreshTokenGrantHandler(tokenStore, tokenIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to construct refresh token grant handler: %w", err)
	}
	return &GrantHandlerProvider{
		refreshTokenHandler: refreshTokenHandler,
	}, nil
}

// GetGrantHandler returns the grant handler for the given grant type.
func (p *GrantHandlerProvider) GetGrantHandler(grantType constants.GrantType) (GrantHandlerInterface, error) {
	switch grantType {
	case constants.GrantTypeRefreshToken:
		return p.refreshTokenHandler, nil
	default:
		return nil, fmt.Errorf("unsupported grant type: %s", grantType)
	}
}

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

// Package constants defines constants used across the OAuth2 module.
package constants

// OAuth2 request parameters.
const (
	RequestParamGrantType        = "grant_type"
	RequestParamClientID         = "client_id"
	RequestParamClientSecret     = "client_secret"
	RequestParamScope            = "scope"
	RequestParamRefreshToken     = "refresh_token"
	RequestParamError            = "error"
	RequestParamErrorDescription = "error_description"
)

// GrantType defines the supported OAuth2 grant types.
type GrantType string

// Supported grant types.
const (
	GrantTypeRefreshToken GrantType = "refresh_token"
)

// TokenTypeBearer is the token type returned for all issued tokens.
const TokenTypeBearer = "Bearer"

// OAuth2 endpoints.
const (
	OAuth2TokenEndpoint = "/oauth2/token" // #nosec G101
)

// OAuth2 error codes per RFC 6749.
const (
	ErrorInvalidRequest       = "invalid_request"
	ErrorInvalidClient        = "invalid_client"
	ErrorInvalidGrant         = "invalid_grant"
	ErrorUnauthorizedClient   = "unauthorized_client"
	ErrorUnsupportedGrantType = "unsupported_grant_type"
	ErrorInvalidScope         = "invalid_scope"
	ErrorServerError          = "server_error"
)

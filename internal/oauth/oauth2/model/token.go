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

// Package model defines the data structures used in the OAuth2 module.
package model

import "time"

// TokenRequest represents the OAuth2 token request.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Scope        string `json:"scope,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ErrorResponse represents an OAuth2 error response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Client represents the identity of an OAuth2 client.
type Client struct {
	ID string `json:"id"`
}

// User represents the resource owner a token was issued for. The server
// treats it as opaque beyond its identifier.
type User struct {
	ID string `json:"id"`
}

// RefreshToken represents a stored refresh token as returned by the token store.
// Client and User must be non-nil on any token the store returns; absence is a
// store contract violation rather than a user error.
type RefreshToken struct {
	TokenID               string     `json:"token_id"`
	RefreshToken          string     `json:"refresh_token"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	Client                *Client    `json:"client"`
	User                  *User      `json:"user"`
	Scope                 string     `json:"scope,omitempty"`
}

// IssuedToken represents the record produced by a successful grant.
// RefreshToken and RefreshTokenExpiresAt are set only when rotation is enabled.
type IssuedToken struct {
	TokenID               string     `json:"token_id"`
	AccessToken           string     `json:"access_token"`
	AccessTokenExpiresAt  time.Time  `json:"access_token_expires_at"`
	RefreshToken          string     `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	Scope                 string     `json:"scope,omitempty"`
}

// TokenResponse represents the OAuth2 token response written to the wire.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

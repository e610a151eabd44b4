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

package application

import (
	"errors"

	"github.com/asgardeo/ember/internal/system/crypto/hash"
	"github.com/asgardeo/ember/internal/system/error/serviceerror"
	"github.com/asgardeo/ember/internal/system/log"
)

// ErrorClientIDRequired is returned when no client ID is provided.
var ErrorClientIDRequired = &serviceerror.ServiceError{
	Code:             "APP-1001",
	Type:             serviceerror.ClientErrorType,
	Error:            "Client ID is required.",
	ErrorDescription: "A client ID must be provided to resolve the application.",
}

// ErrorApplicationNotFound is returned when no application exists for the client ID.
var ErrorApplicationNotFound = &serviceerror.ServiceError{
	Code:             "APP-1002",
	Type:             serviceerror.ClientErrorType,
	Error:            "Application not found.",
	ErrorDescription: "No application is registered for the given client ID.",
}

// ErrorInvalidClientCredentials is returned when the client secret does not match.
var ErrorInvalidClientCredentials = &serviceerror.ServiceError{
	Code:             "APP-1003",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid client credentials.",
	ErrorDescription: "The provided client credentials are invalid.",
}

// ErrorWhileRetrievingApplication is returned when the application lookup fails.
var ErrorWhileRetrievingApplication = &serviceerror.ServiceError{
	Code:             "APP-5001",
	Type:             serviceerror.ServerErrorType,
	Error:            "Error while retrieving application.",
	ErrorDescription: "An error occurred while retrieving the application.",
}

// ApplicationServiceInterface defines the service for OAuth application operations.
type ApplicationServiceInterface interface {
	GetOAuthApplication(clientID string) (*OAuthApplication, *serviceerror.ServiceError)
	AuthenticateClient(clientID, clientSecret string) (*OAuthApplication, *serviceerror.ServiceError)
}

// ApplicationService implements the ApplicationServiceInterface.
type ApplicationService struct {
	Store ApplicationStoreInterface
}

// NewApplicationService creates a new instance of ApplicationService.
func NewApplicationService() ApplicationServiceInterface {
	return &ApplicationService{
		Store: NewApplicationStore(),
	}
}

// GetOAuthApplication retrieves the OAuth application registered for the given client ID.
func (s *ApplicationService) GetOAuthApplication(clientID string) (
	*OAuthApplication, *serviceerror.ServiceError) {
	if clientID == "" {
		return nil, ErrorClientIDRequired
	}

	app, err := s.Store.GetOAuthApplication(clientID)
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) {
			return nil, ErrorApplicationNotFound
		}
		logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ApplicationService"))
		logger.Error("Failed to retrieve application", log.Error(err))
		return nil, ErrorWhileRetrievingApplication
	}

	return app, nil
}

// AuthenticateClient verifies the client credentials against the registered application.
func (s *ApplicationService) AuthenticateClient(clientID, clientSecret string) (
	*OAuthApplication, *serviceerror.ServiceError) {
	app, svcErr := s.GetOAuthApplication(clientID)
	if svcErr != nil {
		return nil, svcErr
	}
	if !hash.Verify(clientSecret, app.HashedClientSecret) {
		return nil, ErrorInvalidClientCredentials
	}
	return app, nil
}

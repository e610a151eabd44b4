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
	"fmt"
	"strings"

	"github.com/asgardeo/ember/internal/oauth/oauth2/constants"
	dbmodel "github.com/asgardeo/ember/internal/system/database/model"
	"github.com/asgardeo/ember/internal/system/database/provider"
	"github.com/asgardeo/ember/internal/system/log"
)

const storeLoggerComponentName = "ApplicationStore"

// ErrApplicationNotFound is returned when no application exists for a client ID.
var ErrApplicationNotFound = errors.New("application not found")

// queryGetOAuthApplication is the query to retrieve an OAuth application by client ID.
var queryGetOAuthApplication = dbmodel.DBQuery{
	ID: "APQ-00001",
	Query: "SELECT CONSUMER_KEY, CONSUMER_SECRET_HASH, GRANT_TYPES FROM OAUTH_CONSUMER_APP " +
		"WHERE CONSUMER_KEY = $1",
	SQLiteQuery: "SELECT CONSUMER_KEY, CONSUMER_SECRET_HASH, GRANT_TYPES FROM OAUTH_CONSUMER_APP " +
		"WHERE CONSUMER_KEY = ?",
}

// ApplicationStoreInterface defines the interface for retrieving registered OAuth applications.
type ApplicationStoreInterface interface {
	GetOAuthApplication(clientID string) (*OAuthApplication, error)
}

// ApplicationStore implements the ApplicationStoreInterface over the identity database.
type ApplicationStore struct {
	DBProvider provider.DBProviderInterface
}

// NewApplicationStore creates a new instance of ApplicationStore.
func NewApplicationStore() ApplicationStoreInterface {
	return &ApplicationStore{
		DBProvider: provider.GetDBProvider(),
	}
}

// GetOAuthApplication retrieves an OAuth application by its client ID.
func (as *ApplicationStore) GetOAuthApplication(clientID string) (*OAuthApplication, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, storeLoggerComponentName))

	dbClient, err := as.DBProvider.GetDBClient("identity")
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return nil, err
	}

	results, err := dbClient.Query(queryGetOAuthApplication, clientID)
	if err != nil {
		return nil, fmt.Errorf("error while retrieving application: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrApplicationNotFound
	}
	row := results[0]

	consumerKey, ok := row["consumer_key"].(string)
	if !ok || consumerKey == "" {
		return nil, ErrApplicationNotFound
	}

	secretHash, _ := row["consumer_secret_hash"].(string)
	grantTypesStr, _ := row["grant_types"].(string)

	grantTypes := make([]constants.GrantType, 0)
	for _, gt := range strings.Split(grantTypesStr, ",") {
		gt = strings.TrimSpace(gt)
		if gt != "" {
			grantTypes = append(grantTypes, constants.GrantType(gt))
		}
	}

	return &OAuthApplication{
		ClientID:           consumerKey,
		HashedClientSecret: secretHash,
		GrantTypes:         grantTypes,
	}, nil
}

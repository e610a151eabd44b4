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

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path"

	"github.com/asgardeo/ember/internal/oauth/oauth2/constants"
	"github.com/asgardeo/ember/internal/oauth/oauth2/token"
	"github.com/asgardeo/ember/internal/system/config"
	"github.com/asgardeo/ember/internal/system/jwt"
	"github.com/asgardeo/ember/internal/system/log"
)

func main() {
	logger := log.GetLogger()

	// Get the Ember home directory.
	emberHome := getEmberHome(logger)

	// Initialize the server configurations.
	cfg := initEmberConfigurations(logger, emberHome)

	// Initialize the multiplexer and register the services.
	mux := initMultiPlexer(logger)

	startServer(logger, cfg, mux)
}

// getEmberHome retrieves and returns the Ember home directory.
func getEmberHome(logger *log.Logger) string {
	projectHome := ""
	projectHomeFlag := flag.String("emberHome", "", "Path to the Ember home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		logger.Info("Using emberHome from command line argument", log.String("emberHome", *projectHomeFlag))
		projectHome = *projectHomeFlag
	} else {
		// If no command line argument is provided, use the current working directory.
		dir, dirErr := os.Getwd()
		if dirErr != nil {
			logger.Fatal("Failed to get current working directory", log.Error(dirErr))
		}
		projectHome = dir
	}

	return projectHome
}

// initEmberConfigurations loads the configurations and prepares the runtime.
func initEmberConfigurations(logger *log.Logger, emberHome string) *config.Config {
	configFilePath := path.Join(emberHome, "repository/conf/deployment.yaml")
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		logger.Fatal("Failed to load configurations", log.Error(err))
	}

	if err := config.InitializeEmberRuntime(emberHome, cfg); err != nil {
		logger.Fatal("Failed to initialize runtime configurations", log.Error(err))
	}

	// Load the server's private key for signing JWTs.
	if err := jwt.GetJWTService().Init(); err != nil {
		logger.Fatal("Failed to load private key", log.Error(err))
	}

	return cfg
}

// initMultiPlexer initializes the HTTP multiplexer and registers the services.
func initMultiPlexer(logger *log.Logger) *http.ServeMux {
	tokenHandler, err := token.NewTokenHandler()
	if err != nil {
		logger.Fatal("Failed to initialize the token handler", log.Error(err))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+constants.OAuth2TokenEndpoint, tokenHandler.HandleTokenRequest)

	return mux
}

// startServer starts the HTTP server with the given configurations and multiplexer.
func startServer(logger *log.Logger, cfg *config.Config, mux *http.ServeMux) {
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: mux,
	}

	logger.Info("Starting Asgardeo Ember...", log.String("address", serverAddr))

	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Server failed to start", log.Error(err))
	}
}

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

package config

import "sync"

// EmberRuntime holds the runtime configuration for the Ember server.
type EmberRuntime struct {
	EmberHome string `yaml:"ember_home"`
	Config    Config `yaml:"config"`
}

var (
	runtimeConfig *EmberRuntime
	once          sync.Once
)

// InitializeEmberRuntime initializes the EmberRuntime configuration.
func InitializeEmberRuntime(emberHome string, config *Config) error {
	once.Do(func() {
		runtimeConfig = &EmberRuntime{
			EmberHome: emberHome,
			Config:    *config,
		}
	})

	return nil
}

// GetEmberRuntime returns the EmberRuntime configuration.
func GetEmberRuntime() *EmberRuntime {
	if runtimeConfig == nil {
		panic("EmberRuntime is not initialized")
	}
	return runtimeConfig
}

// ResetEmberRuntime resets the EmberRuntime.
// This should only be used in tests to reset the singleton state.
func ResetEmberRuntime() {
	runtimeConfig = nil
	once = sync.Once{}
}

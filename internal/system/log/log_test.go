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

package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogger(t *testing.T) {
	logger := GetLogger()
	assert.NotNil(t, logger)

	// The logger is a singleton.
	assert.Same(t, logger, GetLogger())
}

func TestWith(t *testing.T) {
	logger := GetLogger()
	child := logger.With(String(LoggerKeyComponentName, "TestComponent"))

	assert.NotNil(t, child)
	assert.NotSame(t, logger, child)
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, Field{Key: "name", Value: "value"}, String("name", "value"))
	assert.Equal(t, Field{Key: "count", Value: 7}, Int("count", 7))
	assert.Equal(t, Field{Key: "rotated", Value: true}, Bool("rotated", true))
	assert.Equal(t, Field{Key: "raw", Value: 1.5}, Any("raw", 1.5))

	err := errors.New("boom")
	assert.Equal(t, Field{Key: "error", Value: err}, Error(err))
}

func TestParseLogLevel(t *testing.T) {
	for _, tc := range []struct {
		input string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"INFO", true},
		{"verbose", false},
		{"", false},
	} {
		_, err := parseLogLevel(tc.input)
		if tc.valid {
			assert.NoError(t, err, tc.input)
		} else {
			assert.Error(t, err, tc.input)
		}
	}
}

func TestMaskString(t *testing.T) {
	assert.Equal(t, "", MaskString(""))
	assert.Equal(t, "*", MaskString("a"))
	assert.Equal(t, "***", MaskString("abc"))
	assert.Equal(t, "a**d", MaskString("abcd"))
	assert.Equal(t, "r*************e", MaskString("refresh-token-e"))
}

package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateJSON_ValidJSON(t *testing.T) {
	schemaPath := filepath.Join("testdata", "valid_schema.json")
	jsonPath := filepath.Join("testdata", "valid_json.json")

	err := ValidateJSON(schemaPath, jsonPath)
	assert.NoError(t, err)
}

func TestValidateJSON_InvalidJSON_MissingField(t *testing.T) {
	schemaPath := filepath.Join("testdata", "valid_schema.json")
	jsonPath := filepath.Join("testdata", "invalid_json.json")

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSON_InvalidJSON_WrongType(t *testing.T) {
	schemaPath := filepath.Join("testdata", "valid_schema.json")
	jsonPath := filepath.Join("testdata", "type_mismatch.json")

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSON_NonExistentSchema(t *testing.T) {
	schemaPath := "testdata/nonexistent_schema.json"
	jsonPath := filepath.Join("testdata", "valid_json.json")

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_NonExistentJSON(t *testing.T) {
	schemaPath := filepath.Join("testdata", "valid_schema.json")
	jsonPath := "testdata/nonexistent_json.json"

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_MalformedJSON(t *testing.T) {
	tmpDir := t.TempDir()
	malformedJSON := filepath.Join(tmpDir, "malformed.json")
	err := os.WriteFile(malformedJSON, []byte("{ invalid json }"), 0644)
	require.NoError(t, err)

	schemaPath := filepath.Join("testdata", "valid_schema.json")

	valErr := ValidateJSON(schemaPath, malformedJSON)
	require.Error(t, valErr)
	// The error might be from gojsonschema parsing, not our code
}

func TestValidateJSON_RequirementProfileSchema(t *testing.T) {
	tests := []struct {
		name      string
		jsonFile  string
		wantError bool
	}{
		{
			name:      "valid requirement profile",
			jsonFile:  "../../testdata/valid/requirement_profile.json",
			wantError: false,
		},
		{
			name:      "missing required field",
			jsonFile:  "../../testdata/invalid/missing_field.json",
			wantError: true,
		},
		{
			name:      "wrong type",
			jsonFile:  "../../testdata/invalid/wrong_type.json",
			wantError: true,
		},
	}

	schemaPath := "../../schemas/requirement_profile.schema.json"

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(schemaPath, tt.jsonFile)
			if tt.wantError {
				require.Error(t, err)
				// Should be ValidationError, not SchemaLoadError
				validationErr, ok := err.(*ValidationError)
				if !ok {
					schemaErr, isSchemaErr := err.(*SchemaLoadError)
					if isSchemaErr {
						t.Fatalf("unexpected SchemaLoadError (schema loading failed): %v", schemaErr)
					}
					t.Fatalf("error should be ValidationError or SchemaLoadError, got %T: %v", err, err)
				}
				assert.Greater(t, len(validationErr.Errors), 0, "validation error should have at least one field error")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateJSON_RankedRepositoriesSchema(t *testing.T) {
	schemaPath := "../../schemas/ranked_repositories.schema.json"
	jsonPath := "../../testdata/valid/ranked_repositories.json"

	err := ValidateJSON(schemaPath, jsonPath)
	assert.NoError(t, err)
}

func TestValidateJSON_RepositoryDetailSchema(t *testing.T) {
	schemaPath := "../../schemas/repository_detail.schema.json"
	jsonPath := "../../testdata/valid/repository_detail.json"

	err := ValidateJSON(schemaPath, jsonPath)
	assert.NoError(t, err)
}

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["project_type"],
		"properties": {
			"project_type": {"type": "string"}
		}
	}`
	jsonContent := `{"project_type": "Booking platform"}`

	err := ValidateJSONString(schemaContent, jsonContent)
	assert.NoError(t, err)
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["project_type"],
		"properties": {
			"project_type": {"type": "string"}
		}
	}`
	jsonContent := `{"stars": 30}`

	err := ValidateJSONString(schemaContent, jsonContent)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "deliverables", Message: "is required"},
			{Field: "stars", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "deliverables")
	assert.Contains(t, errorMsg, "stars")
}

func TestValidateJSON_NestedFieldValidation(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["repository"],
		"properties": {
			"repository": {
				"type": "object",
				"required": ["full_name"],
				"properties": {
					"full_name": {"type": "string"}
				}
			}
		}
	}`

	jsonContent := `{"repository": {}}`

	err := ValidateJSONString(schemaContent, jsonContent)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
	// Check that the field path includes nested field
	found := false
	for _, fieldErr := range validationErr.Errors {
		if fieldErr.Field != "" {
			found = true
			break
		}
	}
	assert.True(t, found, "should include field path in error")
}

func TestResolveSchemaPath_NotFound(t *testing.T) {
	path := ResolveSchemaPath("schemas/does_not_exist.schema.json")
	assert.Equal(t, "", path)
}

func TestResolveSchemaPath_FindsRepoSchemas(t *testing.T) {
	// From internal/schemas the repository schemas sit two levels up
	path := ResolveSchemaPath("schemas/requirement_profile.schema.json")
	require.NotEqual(t, "", path)
	assert.True(t, filepath.IsAbs(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

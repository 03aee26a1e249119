package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGroqClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGroqClient(GroqConfig{})
	assert.Error(t, err)
}

func TestNewGroqClient_Defaults(t *testing.T) {
	client, err := NewGroqClient(GroqConfig{APIKey: "gsk_test"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, client.model)
	assert.Equal(t, 0.3, client.temperature)
	assert.Equal(t, 2048, client.maxTokens)
}

func TestBuildParams_RoleMapping(t *testing.T) {
	client, err := NewGroqClient(GroqConfig{APIKey: "gsk_test", Model: "test-model"})
	require.NoError(t, err)

	params := client.buildParams([]Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}, Options{})

	require.Len(t, params.Messages, 3)
	assert.Equal(t, "test-model", string(params.Model))
	assert.NotNil(t, params.Messages[0].OfSystem)
	assert.NotNil(t, params.Messages[1].OfUser)
	assert.NotNil(t, params.Messages[2].OfAssistant)
}

func TestBuildParams_OptionOverrides(t *testing.T) {
	client, err := NewGroqClient(GroqConfig{APIKey: "gsk_test"})
	require.NoError(t, err)

	params := client.buildParams(nil, Options{Temperature: 0.9, MaxTokens: 100})
	assert.Equal(t, 0.9, params.Temperature.Value)
	assert.Equal(t, int64(100), params.MaxTokens.Value)
}

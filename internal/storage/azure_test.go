package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAzureStoreURL(t *testing.T) {
	conn := "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=a2V5;" +
		"BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"
	s, err := NewAzureStore(AzureOptions{ConnectionString: conn, APIVersion: "2023-11-03", TryTimeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:10000/devstoreaccount1/diet-data/All_Diets.csv", s.URL("diet-data", "All_Diets.csv"))
}

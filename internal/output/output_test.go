package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flocklens/flocklens/internal/core"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestFormatGroupOrdersByInDegree(t *testing.T) {
	result := &core.GroupResult{
		InDegree: map[int64]int{10: 1, 20: 5, 30: 5},
		Requests: 7,
	}

	rendered := FormatGroup(result)
	require.Contains(t, rendered, "20")
	require.Contains(t, rendered, "3 nodes")
	require.Contains(t, rendered, "7 requests")
	// Equal counts break ties by node id: 20 before 30.
	require.Less(t, strings.Index(rendered, "20"), strings.Index(rendered, "30"))
	require.Less(t, strings.Index(rendered, "30"), strings.Index(rendered, "10"))
}

func TestFormatCredentialsHidesSecrets(t *testing.T) {
	rendered := FormatCredentials([]core.CredentialRecord{
		{ID: 1, Label: "primary", Token: "very-secret-token", Secret: "very-secret"},
	})
	require.Contains(t, rendered, "primary")
	require.NotContains(t, rendered, "very-secret")
}

func TestRenderJSON(t *testing.T) {
	rendered, err := Render(FormatJSON, map[string]int{"a": 1}, func() string { return "table" })
	require.NoError(t, err)
	require.Contains(t, rendered, `"a": 1`)

	rendered, err = Render(FormatTable, nil, func() string { return "table" })
	require.NoError(t, err)
	require.Equal(t, "table", rendered)
}

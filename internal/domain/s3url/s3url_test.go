package s3url

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParse covers accepted and rejected URLs.
func TestParse(t *testing.T) {
	t.Parallel()

	u, err := Parse("s3://logs/2024/01/")
	require.NoError(t, err)
	require.Equal(t, &URL{Bucket: "logs", Prefix: "2024/01/"}, u)
	require.Equal(t, "s3://logs/2024/01/", u.String())

	u, err = Parse("s3://logs")
	require.NoError(t, err)
	require.Equal(t, &URL{Bucket: "logs"}, u)

	u, err = Parse("s3://logs//2024")
	require.NoError(t, err)
	require.Equal(t, &URL{Bucket: "logs", Prefix: "2024"}, u)

	u, err = Parse("s3://logs:9000/2024")
	require.NoError(t, err)
	require.Equal(t, &URL{Bucket: "logs", Prefix: "2024"}, u)

	for _, bad := range []string{"", "https://logs/a", "logs/a", "s3:///a", "://"} {
		_, err = Parse(bad)
		require.Error(t, err, bad)
	}

	_, err = Parse("http://logs/a")
	require.ErrorIs(t, err, errUnsupportedURL)
}

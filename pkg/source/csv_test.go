package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecords(t *testing.T) {
	input := strings.Join([]string{
		"price,odometer,brand,model",
		"\"$5,000\",\"150,000km\",bmw,3er",
		"$900,,opel,",
	}, "\n")

	rs, err := readRecords(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"price", "odometer", "brand", "model"}, rs.Columns)
	require.Equal(t, 2, rs.Len())

	first := rs.Records[0]
	assert.NotEmpty(t, first.ID)
	price, ok := first.String("price")
	require.True(t, ok)
	assert.Equal(t, "$5,000", price)

	second := rs.Records[1]
	assert.True(t, second.IsNull("odometer"), "empty cells become nulls")
	assert.True(t, second.IsNull("model"))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestReadRecordsEmptyFile(t *testing.T) {
	_, err := readRecords(context.Background(), strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestReadRecordsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := readRecords(ctx, strings.NewReader("a,b\n1,2\n"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCSVSourceDecodesLatin1(t *testing.T) {
	// "citroën" with the e-diaeresis as the single ISO 8859-1 byte 0xEB.
	raw := []byte("brand,model\ncitro\xebn,c3\n")
	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	src := NewCSVSource(path, nil)
	defer src.Close()
	assert.Equal(t, "csv:"+path, src.Name())

	rs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())

	brand, ok := rs.Records[0].String("brand")
	require.True(t, ok)
	assert.Equal(t, "citroën", brand)
}

func TestCSVSourceMissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "no-such-file.csv"), nil)
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

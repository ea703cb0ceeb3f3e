package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renewables/internal/core"
	"renewables/internal/dataset"
)

const sample = `date,state,renewables
2019-01-01,Texas,20.5
2019-06-01,Iowa,57.1
2020-01-01,Texas,22.0
2019-12-01,Texas,1.5
`

func TestReadBuildsStore(t *testing.T) {
	store, err := Read(strings.NewReader(sample), dataset.ParseOptions{})
	require.NoError(t, err)

	years, err := store.ListYears(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2019, 2020}, years)

	recs, err := store.RecordsForYear(context.Background(), 2019)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, core.Record{Year: 2019, Category: "Iowa", Value: 57.1}, recs[1])

	rows := core.Aggregate(recs)
	require.Len(t, rows, 2)
	assert.Equal(t, "Texas", rows[0].Category)
	assert.InDelta(t, 22.0, rows[0].Value, 1e-9)
}

func TestParseColumnOrderAndExtraColumns(t *testing.T) {
	in := "State,Renewables,extra,Date\nOhio,3.2,x,2018-03-01\n"
	res, err := Parse(strings.NewReader(in), dataset.ParseOptions{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, core.Record{Year: 2018, Category: "Ohio", Value: 3.2}, res.Records[0])
}

func TestParseFailsFastOnMalformedRow(t *testing.T) {
	in := "date,state,renewables\n2019-01-01,Texas,abc\n"
	_, err := Parse(strings.NewReader(in), dataset.ParseOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidRecord))

	var rowErr *dataset.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
}

func TestParseSkipsMalformedRowsWhenAsked(t *testing.T) {
	in := "date,state,renewables\nnot-a-date,Texas,1\n2019-01-01,,1\n2019-01-01,Iowa,4\n\n"
	res, err := Parse(strings.NewReader(in), dataset.ParseOptions{SkipInvalid: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Iowa", res.Records[0].Category)
}

func TestParseMissingHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("when,state,renewables\n2019,Texas,1\n"), dataset.ParseOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing date")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), dataset.ParseOptions{})
	require.Error(t, err)
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	store, err := Load(path, dataset.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, store.Len())
}

func TestParseYearLayouts(t *testing.T) {
	for in, want := range map[string]int{
		"2019-05-01":           2019,
		"2019-05-01T00:00:00Z": 2019,
		"2019/05/01":           2019,
		"05/01/2019":           2019,
		"2019":                 2019,
	} {
		got, err := dataset.ParseYear(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseRejectsNonFiniteValues(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "+Inf", "-inf"} {
		in := "date,state,renewables\n2020-01-01,Iowa," + v + "\n"
		_, err := Read(strings.NewReader(in), dataset.ParseOptions{})
		require.Error(t, err, v)
		assert.ErrorIs(t, err, core.ErrInvalidRecord, v)
		assert.ErrorContains(t, err, "not a finite number", v)
	}

	in := "date,state,renewables\n2020-01-01,Iowa,NaN\n2020-01-01,Ohio,3.5\n"
	res, err := Parse(strings.NewReader(in), dataset.ParseOptions{SkipInvalid: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []core.Row{{Category: "Ohio", Value: 3.5}}, core.Aggregate(res.Records))
}

package results

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
)

func TestParsePerplexity(t *testing.T) {
	ppl, err := ParsePerplexity("perplexity 123.4 sec 1.2")
	require.NoError(t, err)
	assert.InDelta(t, 123.4, ppl, 1e-9)

	_, err = ParsePerplexity("done")
	assert.ErrorIs(t, err, common.ErrMalformedLog)

	_, err = ParsePerplexity("ppl abc")
	assert.ErrorIs(t, err, common.ErrMalformedLog)
}

func TestReadPerplexityUsesLastLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_ppl.500.out")
	require.NoError(t, os.WriteFile(path, []byte("loading model\nppl 999\nppl 201.5\n\n"), 0o644))

	line, err := LastLine(path)
	require.NoError(t, err)
	assert.Equal(t, "ppl 201.5", line)

	ppl, err := ReadPerplexity(path)
	require.NoError(t, err)
	assert.InDelta(t, 201.5, ppl, 1e-9)
}

func TestReadPerplexityMissingOrEmpty(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadPerplexity(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, common.ErrMalformedLog)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = ReadPerplexity(empty)
	assert.ErrorIs(t, err, common.ErrMalformedLog)
}

func TestRecordFinalize(t *testing.T) {
	r := NewRecord("m")
	r.Finalize()
	assert.Equal(t, 0.0, r.AvePpl)

	r.Add(100, 1)
	r.Add(200, 3)
	r.Finalize()
	assert.InDelta(t, 150.0, r.AvePpl, 1e-9)
	assert.InDelta(t, 2.0, r.AveTime, 1e-9)
}

func TestLogAppend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	l := NewLog(dir, "emnlp.test", nil)

	rec := NewRecord("brown.HPYTM.K=10")
	rec.Add(150, 2)
	rec.Finalize()
	require.NoError(t, l.AppendRecord(rec))
	require.NoError(t, l.AppendFailure("brown.DHPYTM.K=10"))

	data, err := os.ReadFile(filepath.Join(dir, "emnlp.test.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"model":"brown.HPYTM.K=10","ppls":[150],"times":[2],"ave_ppl":150,"ave_time":2}`+"\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "emnlp.test.failed"))
	require.NoError(t, err)
	assert.Equal(t, "brown.DHPYTM.K=10\n", string(data))
}

func TestLogConcurrentAppends(t *testing.T) {
	l := NewLog(t.TempDir(), "c", nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.AppendFailure(strings.Repeat("x", 512)))
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(l.FailedPath())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.Len(t, line, 512)
	}
}

func TestValidateLine(t *testing.T) {
	assert.NoError(t, ValidateLine([]byte(`{"model":"m","ppls":[1],"times":[0.5],"ave_ppl":1,"ave_time":0.5}`)))
	assert.Error(t, ValidateLine([]byte(`{"model":"m","ppls":[1]}`)))
	assert.Error(t, ValidateLine([]byte(`{"model":"","ppls":[],"times":[],"ave_ppl":0,"ave_time":0}`)))
	assert.Error(t, ValidateLine([]byte(`not json`)))
}

func TestReadSkipsInvalidLines(t *testing.T) {
	in := strings.Join([]string{
		`{"model":"a","ppls":[300],"times":[1],"ave_ppl":300,"ave_time":1}`,
		`garbage`,
		``,
		`{"model":"b","ppls":[100],"times":[2],"ave_ppl":100,"ave_time":2}`,
		`{"model":"c"}`,
	}, "\n")

	recs, skipped, err := Read(strings.NewReader(in), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, recs, 2)

	SortByPerplexity(recs)
	assert.Equal(t, "b", recs[0].Model)
	assert.Equal(t, "a", recs[1].Model)
}

package derive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLatencyLog_HarnessFormat(t *testing.T) {
	// GIVEN a log exactly as the benchmark harness writes it
	content := "request_id,label,prompt_len,gen_len,total_len,ttft,e2e,avg_itl\n" +
		"0,cpu_offload,1000,100,1100,0.123456,2.500000,0.021000\n" +
		"1,cpu_offload,1000,98,1098,0.130000,2.450000,0.022000\n"
	path := filepath.Join(t.TempDir(), "metrics.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	// WHEN it is read
	records, err := ReadLatencyLog(path)
	require.NoError(t, err)

	// THEN every column is parsed
	require.Len(t, records, 2)
	assert.Equal(t, LatencyRecord{
		RequestID: 0, Label: "cpu_offload", PromptLen: 1000, GenLen: 100, TotalLen: 1100,
		TTFT: 0.123456, E2E: 2.5, AvgITL: 0.021,
	}, records[0])
	assert.Equal(t, 98, records[1].GenLen)
}

func TestReadLatencyLog_ReorderedAndExtraColumns(t *testing.T) {
	content := "avg_itl,device,ttft,prompt_len\n0.02,A100,0.1,512\n"
	path := filepath.Join(t.TempDir(), "metrics.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	records, err := ReadLatencyLog(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 512, records[0].PromptLen)
	assert.Equal(t, 0.1, records[0].TTFT)
	assert.Equal(t, 0.02, records[0].AvgITL)
	assert.Equal(t, 0, records[0].RequestID)
}

func TestReadLatencyLog_MissingRequiredValue_ReturnsError(t *testing.T) {
	content := "prompt_len,ttft,avg_itl\n100,,0.01\n"
	path := filepath.Join(t.TempDir(), "metrics.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := ReadLatencyLog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ttft")
	assert.Contains(t, err.Error(), "line 2")
}

func TestExportLatencyLog_ReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	in := []LatencyRecord{{RequestID: 3, Label: "disk", PromptLen: 2000, GenLen: 50, TotalLen: 2050, TTFT: 0.25, E2E: 1.5, AvgITL: 0.025}}
	require.NoError(t, ExportLatencyLog(path, in))

	out, err := ReadLatencyLog(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

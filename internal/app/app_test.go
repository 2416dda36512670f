package app

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosummary/internal/integrations/llm"
	"geosummary/internal/summary"
)

const sampleReport = "../audit/testdata/sample_report.json"

var cliEnvKeys = []string{
	"LLM_PROVIDER", "LLM_MODEL", "LLM_MAX_TOKENS", "LLM_TEMPERATURE", "LLM_JSON_MODE",
	"LLM_PROMPT_TOKEN_BUDGET", "PAYLOAD_MODE", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	"GEMINI_API_KEY", "EXTERNAL_HTTP_TIMEOUT_SECONDS", "REPLY_LANGUAGE", "LABEL_SET_PATH",
	"SLACK_BOT_TOKEN", "REPORT_CHANNEL_ID", "WATCH_SCHEDULE", "TIMEZONE",
}

func isolateEnv(t *testing.T, provider string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "config.yaml"))
	t.Setenv("DOTENV_PATH", filepath.Join(dir, ".env"))
	for _, k := range cliEnvKeys {
		t.Setenv(k, "")
	}
	t.Setenv("LLM_PROVIDER", provider)
	t.Setenv("TIMEZONE", "UTC")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompactCommand(t *testing.T) {
	out, err := run(t, "compact", sampleReport)
	require.NoError(t, err)
	assert.Contains(t, out, `"urls_count": 3`)
	assert.Contains(t, out, `"https://example.com"`)
	assert.Contains(t, out, `"key_issues"`)
}

func TestExtractCommandDate(t *testing.T) {
	out, err := run(t, "extract", "--date", "2025-01-01", sampleReport)
	require.NoError(t, err)
	assert.Contains(t, out, `"analysis_date": "2025-01-01"`)
	assert.Contains(t, out, `"detailed_results"`)
}

func TestCompactCommandMissingFile(t *testing.T) {
	_, err := run(t, "compact", filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, summary.ErrReportNotFound)
}

func TestSummarizeCommandWithStub(t *testing.T) {
	isolateEnv(t, "stub")
	out, err := run(t, "summarize", sampleReport)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Summary:\nOffline demo reply"), out)
	assert.Contains(t, out, "\n\nRecommendations:\nConfigure llm_provider")
}

func TestSummarizeCommandMissingCredential(t *testing.T) {
	isolateEnv(t, "openai")
	_, err := run(t, "summarize", sampleReport)
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
}

func TestSummarizeCommandMissingReport(t *testing.T) {
	isolateEnv(t, "stub")
	out, err := run(t, "summarize", filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, summary.ErrReportNotFound)
	assert.Contains(t, out, summary.NotFoundSummary)
	assert.Contains(t, out, summary.NotFoundRecommendations)
}

func TestSummarizePostRequiresSlack(t *testing.T) {
	isolateEnv(t, "stub")
	_, err := run(t, "summarize", "--post", sampleReport)
	assert.Error(t, err)
}

func TestWatchRejectsBadSchedule(t *testing.T) {
	isolateEnv(t, "stub")
	_, err := run(t, "watch", "--schedule", "not a cron", sampleReport)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid watch schedule")
}

func TestCommandsRequireOneArgument(t *testing.T) {
	_, err := run(t, "summarize")
	assert.Error(t, err)
	_, err = run(t, "compact", "a.json", "b.json")
	assert.Error(t, err)
}

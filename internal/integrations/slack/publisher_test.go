package slackbot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosummary/internal/domain"
)

type postedMessage struct {
	Channel string
	Text    string
	Blocks  []map[string]any
}

func newMockSlack(t *testing.T, ok bool) (*httptest.Server, *[]postedMessage) {
	t.Helper()
	var posts []postedMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimPrefix(r.URL.Path, "/api/") != "chat.postMessage" {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
			return
		}
		assert.NoError(t, r.ParseForm())
		msg := postedMessage{Channel: r.FormValue("channel"), Text: r.FormValue("text")}
		assert.NoError(t, json.Unmarshal([]byte(r.FormValue("blocks")), &msg.Blocks))
		posts = append(posts, msg)
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "channel_not_found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": msg.Channel, "ts": "1700000000.000100"})
	}))
	t.Cleanup(server.Close)
	return server, &posts
}

func TestPublishPostsBlocks(t *testing.T) {
	server, posts := newMockSlack(t, true)
	p, err := NewPublisher("xoxb-test", "C123", nil, slack.OptionAPIURL(server.URL+"/api/"))
	require.NoError(t, err)

	ts, err := p.Publish(context.Background(), "AI readiness: report.json", domain.ParsedResult{
		Summary:         "Short summary of the audit.",
		Recommendations: "Fix the title.",
	})
	require.NoError(t, err)
	assert.Equal(t, "1700000000.000100", ts)

	require.Len(t, *posts, 1)
	msg := (*posts)[0]
	assert.Equal(t, "C123", msg.Channel)
	assert.Equal(t, "AI readiness: report.json", msg.Text)

	var types []string
	for _, b := range msg.Blocks {
		types = append(types, b["type"].(string))
	}
	assert.Equal(t, []string{"header", "section", "section", "divider", "section", "section"}, types)
	text := msg.Blocks[2]["text"].(map[string]any)["text"]
	assert.Equal(t, "Short summary of the audit.", text)
}

func TestPublishSlackError(t *testing.T) {
	server, _ := newMockSlack(t, false)
	p, err := NewPublisher("xoxb-test", "C404", nil, slack.OptionAPIURL(server.URL+"/api/"))
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), "title", domain.ParsedResult{Summary: "s", Recommendations: "r"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestNewPublisherRequiresTokenAndChannel(t *testing.T) {
	_, err := NewPublisher("", "C1", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewPublisher("xoxb", " ", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBuildBlocksSplitsLongText(t *testing.T) {
	long := strings.Repeat("word ", 1500) // 7500 runes
	blocks := BuildBlocks(strings.Repeat("T", 200), domain.ParsedResult{Summary: long, Recommendations: "r"})

	header := blocks[0].(*slack.HeaderBlock)
	assert.Equal(t, maxHeaderRunes, utf8.RuneCountInString(header.Text.Text))

	// header, label, 3 summary chunks, divider, label, 1 recommendation chunk
	require.Len(t, blocks, 8)
	for _, b := range blocks[2:5] {
		s := b.(*slack.SectionBlock)
		assert.LessOrEqual(t, utf8.RuneCountInString(s.Text.Text), maxSectionRunes)
	}
}

func TestChunkText(t *testing.T) {
	assert.Nil(t, chunkText("   ", 10))
	assert.Equal(t, []string{"abc"}, chunkText("abc", 10))
	assert.Equal(t, []string{"aaaa bbb", "cccc"}, chunkText("aaaa bbb cccc", 10))
	assert.Equal(t, []string{"ááááá", "ááááá", "á"}, chunkText("ááááááááááá", 5))

	var total int
	for _, c := range chunkText(strings.Repeat("x", 7000), 3000) {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 3000)
		total += utf8.RuneCountInString(c)
	}
	assert.Equal(t, 7000, total)
}

package slackbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"geosummary/internal/domain"
)

const (
	// Slack rejects section text over 3000 characters and header text over 150.
	maxSectionRunes = 3000
	maxHeaderRunes  = 150
)

var ErrNotConfigured = errors.New("slack bot token and channel are required")

// Publisher posts summarized audits to one channel.
type Publisher struct {
	api     *slack.Client
	channel string
	logger  *zap.Logger
}

// NewPublisher builds a Slack client for token. Extra options go to slack.New,
// e.g. slack.OptionAPIURL or slack.OptionHTTPClient.
func NewPublisher(token, channel string, logger *zap.Logger, opts ...slack.Option) (*Publisher, error) {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(channel) == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{api: slack.New(token, opts...), channel: channel, logger: logger}, nil
}

// Publish posts the result under a header and returns the message timestamp.
func (p *Publisher) Publish(ctx context.Context, title string, res domain.ParsedResult) (string, error) {
	blocks := BuildBlocks(title, res)
	_, ts, err := p.api.PostMessageContext(ctx, p.channel,
		slack.MsgOptionText(title, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		p.logger.Error("slack post failed", zap.String("channel", p.channel), zap.Error(err))
		return "", fmt.Errorf("post to %s: %w", p.channel, err)
	}
	p.logger.Info("slack post sent",
		zap.String("channel", p.channel),
		zap.String("ts", ts),
		zap.Int("blocks", len(blocks)),
	)
	return ts, nil
}

// BuildBlocks lays out a header, then the summary and the recommendations,
// each split across as many sections as Slack's length limit requires.
func BuildBlocks(title string, res domain.ParsedResult) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, truncate(title, maxHeaderRunes), false, false)),
	}
	blocks = append(blocks, fieldBlocks("Summary", res.Summary)...)
	blocks = append(blocks, slack.NewDividerBlock())
	blocks = append(blocks, fieldBlocks("Recommendations", res.Recommendations)...)
	return blocks
}

func fieldBlocks(label, text string) []slack.Block {
	out := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, "*"+label+"*", false, false), nil, nil),
	}
	for _, chunk := range chunkText(text, maxSectionRunes) {
		out = append(out, slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, chunk, false, false), nil, nil))
	}
	return out
}

// chunkText splits s into pieces of at most max runes, preferring to break
// at a newline or space in the second half of each piece.
func chunkText(s string, max int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var chunks []string
	runes := []rune(s)
	for len(runes) > max {
		cut := max
		for i := max; i > max/2; i-- {
			if runes[i] == '\n' || runes[i] == ' ' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[:cut])))
		runes = []rune(strings.TrimLeft(string(runes[cut:]), " \n"))
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

// Package notify posts submission notifications to a Slack channel.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// Config holds the notification targets.
type Config struct {
	ChannelID       string
	DefaultMemberID string
}

// slackAPI is the slice of the Slack client the notifier uses.
type slackAPI interface {
	GetUserByEmailContext(ctx context.Context, email string) (*slack.User, error)
	InviteUsersToConversationContext(ctx context.Context, channelID string, users ...string) (*slack.Channel, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Service sends best-effort notifications. Every failure is returned to
// the caller as an error; the caller decides to log and discard it.
type Service struct {
	client slackAPI
	cache  *RedisCache
	cfg    Config
}

// New creates a notifier backed by the Slack web API.
func New(botToken string, cfg Config) *Service {
	return &Service{client: slack.New(botToken), cfg: cfg}
}

// NewWithClient creates a notifier from an existing client.
func NewWithClient(client slackAPI, cfg Config) *Service {
	return &Service{client: client, cfg: cfg}
}

// WithCache attaches a directory lookup cache. A nil cache is allowed.
func (s *Service) WithCache(cache *RedisCache) *Service {
	s.cache = cache
	return s
}

// Notify resolves contactEmail against the Slack directory, makes sure the
// resolved user can see the channel, and posts a summary message plus the
// payload as a threaded reply. Directory and invite failures are logged
// and do not stop the notification; only a failed post is an error.
func (s *Service) Notify(ctx context.Context, summary string, payload any, contactEmail string) error {
	userID := s.resolveUserID(ctx, contactEmail)

	tag := contactEmail
	if userID != "" {
		tag = "<@" + userID + ">"
		if _, err := s.client.InviteUsersToConversationContext(ctx, s.cfg.ChannelID, userID); err != nil {
			log.Printf("notify: invite %s to channel %s: %v", tag, s.cfg.ChannelID, err)
		}
	}

	text := headerText(tag, s.cfg.DefaultMemberID, summary)
	channel, timestamp, err := s.client.PostMessageContext(ctx, s.cfg.ChannelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}

	if timestamp == "" {
		return nil
	}
	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, _, err = s.client.PostMessageContext(ctx, channel,
		slack.MsgOptionText("```"+string(pretty)+"```", false),
		slack.MsgOptionTS(timestamp),
	)
	if err != nil {
		return fmt.Errorf("post thread reply: %w", err)
	}
	return nil
}

// resolveUserID returns the Slack user ID for the email, or "" when the
// directory lookup fails. Lookup failure is never fatal.
func (s *Service) resolveUserID(ctx context.Context, email string) string {
	if email == "" {
		return ""
	}
	if s.cache != nil {
		if userID, ok := s.cache.Get(ctx, email); ok {
			return userID
		}
	}
	user, err := s.client.GetUserByEmailContext(ctx, email)
	if err != nil || user == nil {
		log.Printf("notify: lookup user by email (%s): %v", email, err)
		return ""
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, email, user.ID); err != nil {
			log.Printf("notify: cache user lookup (%s): %v", email, err)
		}
	}
	return user.ID
}

func headerText(tag, defaultMemberID, summary string) string {
	return fmt.Sprintf("New Request Submitted by %s.\ncc: <@%s>\n%s", tag, defaultMemberID, summary)
}
